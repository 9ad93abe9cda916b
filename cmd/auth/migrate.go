package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/devnet/internal/auth/app"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd(flags *configFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending migrations to the configured sqlite or postgres database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load(cmd.Flags())
			if err != nil {
				return oops.Code("CONFIG_INVALID").With("operation", "load config").Wrap(err)
			}

			cmd.Println("Running migrations...")
			if err := app.Migrate(cmd.Context(), cfg); err != nil {
				return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
			}

			cmd.Println("Migrations completed successfully")
			return nil
		},
	}
}
