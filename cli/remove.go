package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var removeYes bool

var removeCmd = &cobra.Command{
	Use:     "remove",
	Short:   "Delete the stored OpenAI API key",
	Aliases: []string{"rm"},
	RunE:    runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "skip the confirmation prompt")
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gw, err := newGateway(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	user, err := gw.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("cannot resolve current user at %s: %w", cfg.Server, err)
	}
	status, err := gw.FetchKeyStatus(ctx, user.ID)
	if err != nil {
		return err
	}
	if status == nil || !status.HasKey {
		printInfo("No API key stored — nothing to remove.")
		return nil
	}

	if !removeYes {
		ok, err := confirm(bufio.NewReader(os.Stdin), "Remove the stored API key?", os.Stderr)
		if err != nil {
			return err
		}
		if !ok {
			printInfo("Aborted.")
			return nil
		}
	}

	if _, err := gw.SaveKey(ctx, user.ID, status.SettingID, ""); err != nil {
		printError(err.Error())
		return fmt.Errorf("removing API key failed")
	}

	printSuccess("API key removed")
	return nil
}
