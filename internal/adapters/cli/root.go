package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "neonrails",
		Short: "Neon Rails - run and inspect a metro network economy",
		Long: `Neon Rails runs the economy of a cyberpunk metro network.

Stations earn fares every tick, grid energy decays with network size, and
random events shift credits and reputation. The daemon serves the network
over HTTP and WebSocket; the other commands inspect what it recorded.

Examples:
  neonrails serve
  neonrails serve --force
  neonrails simulate --ticks 100 --auto-build
  neonrails config show
  neonrails ledger list --type TICK_INCOME --limit 20
  neonrails ledger cash-flow --from-tick 0 --to-tick 500`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: search ., ./configs, /etc/neonrails)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewSimulateCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewLedgerCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
