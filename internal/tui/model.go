// Package tui renders the credential controller's state as an interactive
// terminal form and forwards user intents back to it.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/braindrive/bdkeys/internal/controller"
	"github.com/braindrive/bdkeys/internal/theme"
)

// stateMsg carries a controller snapshot into the bubbletea loop.
type stateMsg controller.State

// Model is the bubbletea model for the API key settings form.
type Model struct {
	ctx    context.Context
	ctrl   *controller.Controller
	themes *theme.Notifier

	st     controller.State
	input  textinput.Model
	spin   spinner.Model
	width  int
	height int
}

// NewModel creates the settings form model. The controller must not have
// been started yet; Init starts it.
func NewModel(ctx context.Context, ctrl *controller.Controller, themes *theme.Notifier) Model {
	ti := textinput.New()
	ti.Placeholder = "sk-..."
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 200
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	return Model{
		ctx:    ctx,
		ctrl:   ctrl,
		themes: themes,
		st:     ctrl.State(),
		input:  ti,
		spin:   sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		m.startCmd(),
		m.waitForState(),
	)
}

// startCmd runs the controller's initialize sequence off the UI loop.
func (m Model) startCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		ctrl.Start(ctx)
		return nil
	}
}

// waitForState delivers the next controller snapshot. Re-armed after
// every stateMsg.
func (m Model) waitForState() tea.Cmd {
	updates := m.ctrl.Updates()
	return func() tea.Msg {
		return stateMsg(<-updates)
	}
}

func (m Model) saveCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		ctrl.Save(ctx)
		return nil
	}
}

func (m Model) confirmRemovalCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		ctrl.ConfirmRemoval(ctx)
		return nil
	}
}

func (m Model) refreshCmd() tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		ctrl.Refresh(ctx)
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = min(msg.Width-8, 60)
		return m, nil

	case stateMsg:
		m.st = controller.State(msg)
		if m.input.Value() != m.st.Input {
			m.input.SetValue(m.st.Input)
			m.input.CursorEnd()
		}
		if m.st.ShowKey {
			m.input.EchoMode = textinput.EchoNormal
		} else {
			m.input.EchoMode = textinput.EchoPassword
		}
		return m, m.waitForState()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		if m.st.ConfirmingRemoval && msg.String() == "esc" {
			m.ctrl.CancelRemoval()
			return m, nil
		}
		m.ctrl.Stop()
		return m, tea.Quit
	}

	if m.st.ConfirmingRemoval {
		switch msg.String() {
		case "y", "enter":
			return m, m.confirmRemovalCmd()
		case "n":
			m.ctrl.CancelRemoval()
		}
		return m, nil
	}

	// Fatal initialization errors leave only quit keys active.
	if m.st.Phase == controller.PhaseErrored {
		return m, nil
	}

	// Mid-flight operations gate further actions.
	if m.st.Loading || m.st.Removing {
		return m, nil
	}

	switch msg.String() {
	case "enter":
		return m, m.saveCmd()
	case "ctrl+o":
		m.ctrl.ToggleVisibility()
		return m, nil
	case "ctrl+d":
		m.ctrl.RequestRemoval()
		return m, nil
	case "ctrl+t":
		if m.themes != nil {
			m.themes.Toggle()
		}
		return m, nil
	case "ctrl+r":
		return m, m.refreshCmd()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetInput(m.input.Value())
	return m, cmd
}

// Run starts the form and blocks until the user quits. The controller is
// always stopped on the way out.
func Run(ctx context.Context, ctrl *controller.Controller, themes *theme.Notifier) error {
	defer ctrl.Stop()
	p := tea.NewProgram(NewModel(ctx, ctrl, themes), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
