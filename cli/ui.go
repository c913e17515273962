package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/braindrive/bdkeys/internal/controller"
	"github.com/braindrive/bdkeys/internal/theme"
	"github.com/braindrive/bdkeys/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive API key settings form",
	RunE:  runUI,
}

func runUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gw, err := newGateway(cfg)
	if err != nil {
		return err
	}

	themes := theme.NewNotifier(cfg.Theme)
	ctrl := controller.New(gw, themes, slog.Default())
	return tui.Run(cmd.Context(), ctrl, themes)
}
