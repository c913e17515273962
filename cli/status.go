package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an OpenAI API key is stored and valid",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	if outputJSON {
		out := map[string]any{
			"has_key": false,
		}
		if status != nil {
			out["has_key"] = status.HasKey
			out["key_valid"] = status.KeyValid
			out["masked_key"] = status.MaskedKey
			out["updated_at"] = status.UpdatedAt
		}
		enc, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(enc))
		return nil
	}

	if status == nil || !status.HasKey {
		printInfo("No API key configured. Run 'bdkeys set' to store one.")
		return nil
	}

	validity := "valid"
	if !status.KeyValid {
		validity = "invalid"
	}
	printSuccess(fmt.Sprintf("API key stored: %s (%s)", status.MaskedKey, validity))
	if status.UpdatedAt != "" {
		printInfo("Last updated " + status.UpdatedAt)
	}
	return nil
}
