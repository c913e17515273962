// Package cli implements the bdkeys command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/braindrive/bdkeys/internal/config"
	"github.com/braindrive/bdkeys/internal/gateway"
)

var (
	// rootFlags
	configDir  string
	serverURL  string
	outputJSON bool
)

// rootCmd is the base command. Running it bare opens the interactive form.
var rootCmd = &cobra.Command{
	Use:   "bdkeys",
	Short: "Manage the OpenAI API key for your BrainDrive account",
	Long: `bdkeys — store, inspect and remove the OpenAI API key held in
BrainDrive's settings service.

Get started:
  bdkeys             Open the interactive settings form
  bdkeys status      Show whether a key is stored and valid
  bdkeys set         Store a new key (prompts without echo)
  bdkeys remove      Delete the stored key`,
	SilenceUsage: true,
	RunE:         runUI,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default: ~/.braindrive)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "BrainDrive server URL (default: "+config.DefaultServer+")")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output in JSON format")

	rootCmd.AddCommand(
		uiCmd,
		statusCmd,
		setCmd,
		removeCmd,
	)
}

// resolveConfigDir returns the config directory from flag, env, or default.
func resolveConfigDir() string {
	if configDir != "" {
		return configDir
	}
	if v := os.Getenv("BRAINDRIVE_CONFIG"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".braindrive"
	}
	return home + "/.braindrive"
}

// loadConfig reads the config directory and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolveConfigDir())
	if err != nil {
		return nil, err
	}
	if serverURL != "" {
		cfg.Server = serverURL
	}
	return cfg, nil
}

// newGateway builds a settings-service client from the loaded config.
func newGateway(cfg *config.Config) (*gateway.Client, error) {
	token := cfg.ResolveToken()
	if token == "" {
		return nil, fmt.Errorf("no API token found — set $%s or token_env in %s", config.DefaultTokenEnv, config.FileName)
	}
	return gateway.New(cfg.Server, token), nil
}

func printSuccess(msg string) {
	fmt.Printf("  \033[32m✔\033[0m %s\n", msg)
}

func printInfo(msg string) {
	fmt.Printf("  \033[36m→\033[0m %s\n", msg)
}

func printError(msg string) {
	fmt.Fprintf(os.Stderr, "  \033[31m✗\033[0m %s\n", msg)
}
