package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/braindrive/bdkeys/internal/controller"
	"github.com/braindrive/bdkeys/internal/theme"
)

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	dim     lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	errMsg  lipgloss.Style
	success lipgloss.Style
	frame   lipgloss.Style
	modal   lipgloss.Style
	keycap  lipgloss.Style
}

func newStyles(mode string) styles {
	s := styles{}
	if mode == theme.Light {
		s.title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25"))
		s.label = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("236"))
		s.dim = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
		s.good = lipgloss.NewStyle().Foreground(lipgloss.Color("28"))
		s.bad = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
		s.errMsg = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
		s.success = lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true)
		s.frame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("250")).
			Padding(1, 2)
		s.modal = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("160")).
			Padding(1, 3)
		s.keycap = lipgloss.NewStyle().Foreground(lipgloss.Color("25"))
		return s
	}
	s.title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	s.label = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	s.dim = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	s.good = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	s.bad = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	s.errMsg = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	s.success = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	s.frame = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(1, 2)
	s.modal = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("203")).
		Padding(1, 3)
	s.keycap = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	return s
}

func (m Model) View() string {
	st := newStyles(m.st.Theme)

	if m.st.Phase == controller.PhaseErrored {
		body := st.title.Render("OpenAI API Key Settings") + "\n\n" +
			st.errMsg.Render(m.st.ErrorMsg) + "\n\n" +
			st.dim.Render("press esc to quit")
		return m.place(st.frame.Render(body))
	}

	if m.st.ConfirmingRemoval {
		return m.place(m.confirmModal(st))
	}

	var b strings.Builder
	b.WriteString(st.title.Render("OpenAI API Key Settings"))
	b.WriteString("\n\n")
	b.WriteString(m.summaryBlock(st))
	b.WriteString("\n")
	b.WriteString(st.label.Render("API key"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.st.Loading:
		b.WriteString("\n" + m.spin.View() + st.dim.Render(" saving..."))
	case m.st.Removing:
		b.WriteString("\n" + m.spin.View() + st.dim.Render(" removing..."))
	case m.st.ErrorMsg != "":
		b.WriteString("\n" + st.errMsg.Render(m.st.ErrorMsg))
	case m.st.SuccessMsg != "":
		b.WriteString("\n" + st.success.Render(m.st.SuccessMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(m.helpLine(st))

	return m.place(st.frame.Render(b.String()))
}

func (m Model) summaryBlock(st styles) string {
	sum := m.st.Summary
	if !sum.HasAPIKey {
		return st.dim.Render("No API key configured.") + "\n"
	}
	valid := st.good.Render("valid")
	if !sum.KeyValid {
		valid = st.bad.Render("invalid")
	}
	line := fmt.Sprintf("Stored key: %s (%s)", sum.MaskedKey, valid)
	if sum.LastUpdated != "" {
		line += st.dim.Render("  updated " + sum.LastUpdated)
	}
	return line + "\n"
}

func (m Model) helpLine(st styles) string {
	sep := st.dim.Render(" · ")
	parts := []string{
		st.keycap.Render("enter") + st.dim.Render(" save"),
		st.keycap.Render("ctrl+o") + st.dim.Render(" show/hide"),
	}
	if m.st.Summary.HasAPIKey {
		parts = append(parts, st.keycap.Render("ctrl+d")+st.dim.Render(" remove"))
	}
	parts = append(parts,
		st.keycap.Render("ctrl+t")+st.dim.Render(" theme"),
		st.keycap.Render("ctrl+r")+st.dim.Render(" refresh"),
		st.keycap.Render("esc")+st.dim.Render(" quit"),
	)
	return strings.Join(parts, sep)
}

func (m Model) confirmModal(st styles) string {
	body := st.label.Render("Remove API key?") + "\n\n" +
		"This deletes the stored OpenAI key for your account." + "\n\n" +
		st.keycap.Render("y") + st.dim.Render("/") + st.keycap.Render("enter") +
		st.dim.Render(" confirm   ") +
		st.keycap.Render("n") + st.dim.Render("/") + st.keycap.Render("esc") +
		st.dim.Render(" cancel")
	return st.modal.Render(body)
}

// place centers content when terminal dimensions are known.
func (m Model) place(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
