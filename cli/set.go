package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/braindrive/bdkeys/internal/apikey"
)

var setCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store an OpenAI API key",
	Long: `Store an OpenAI API key in BrainDrive's settings service.

Without an argument the key is read from the terminal with echo
disabled. Passing the key as an argument leaves it in your shell
history; prefer the prompt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gw, err := newGateway(cfg)
	if err != nil {
		return err
	}

	var raw string
	if len(args) == 1 {
		raw = args[0]
	} else {
		raw, err = promptKey(os.Stderr)
		if err != nil {
			return err
		}
	}

	key := apikey.Normalize(raw)
	if err := apikey.Validate(key); err != nil {
		return fmt.Errorf("invalid API key: %w", err)
	}

	ctx := cmd.Context()
	user, err := gw.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("cannot resolve current user at %s: %w", cfg.Server, err)
	}

	// Reuse the existing instance ID so the write updates in place.
	var settingID string
	if status, err := gw.FetchKeyStatus(ctx, user.ID); err == nil && status != nil {
		settingID = status.SettingID
	}

	if _, err := gw.SaveKey(ctx, user.ID, settingID, key); err != nil {
		printError(err.Error())
		return fmt.Errorf("saving API key failed")
	}

	printSuccess("API key saved successfully")
	return nil
}
