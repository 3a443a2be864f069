package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/neonrails-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect Neon Rails configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (NR_* prefix, plus GEMINI_API_KEY and DATABASE_URL)
2. Config file (config.yaml)
3. Default values

Examples:
  neonrails config show
  neonrails config show --config ./configs/dev.yaml`,
	}

	// Add subcommands
	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Display the effective configuration as YAML.

Secrets (the provider key and database password) are masked.

Example:
  neonrails config show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out, err := renderConfig(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// renderConfig marshals a copy of cfg with its secrets masked
func renderConfig(cfg *config.Config) (string, error) {
	masked := *cfg
	masked.Content.APIKey = maskSecret(cfg.Content.APIKey)
	masked.Database.Password = maskSecret(cfg.Database.Password)
	masked.Database.URL = maskPassword(cfg.Database.URL)

	bytes, err := yaml.Marshal(&masked)
	if err != nil {
		return "", fmt.Errorf("failed to render config: %w", err)
	}
	return string(bytes), nil
}
