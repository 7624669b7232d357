package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/daily-real/internal/config"
)

// configFile is the optional YAML file given with --config.
var configFile string

// NewRootCmd creates the root command. Running it without a subcommand
// starts the server, same as "serve".
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daily-real",
		Short: "daily-real - personal finance tracking API",
		Long: `daily-real serves user registration, password login with short-lived
bearer tokens, and bank/credit card account records scoped to their owner.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (YAML)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadConfig merges the config file, the process environment and the
// command's flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.Load(configFile, cmd.Flags(), os.Getenv)
}
