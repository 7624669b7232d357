package main

import (
	"fmt"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command and its up/status subcommands.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long: `Manage the schema of the configured store: postgres when DATABASE_URL
is set, the sqlite file at DB_PATH otherwise.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE:  runMigrateUp,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether each is applied",
		Args:  cobra.NoArgs,
		RunE:  runMigrateStatus,
	})

	return cmd
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	be, err := openBackend(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer be.close()

	cmd.Printf("Running %s migrations...\n", be.name)
	if err := be.migrate(cmd.Context()); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	be, err := openBackend(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer be.close()

	statuses, err := be.status(cmd.Context())
	if err != nil {
		return oops.Code("MIGRATION_STATUS_FAILED").With("driver", be.name).Wrap(err)
	}

	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		cmd.Println(fmt.Sprintf("%05d  %-8s %s", s.Version, state, s.Source))
	}
	return nil
}
