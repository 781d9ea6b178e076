package main

import (
	"github.com/smallbiznis/teamroster/internal/config"
	"github.com/smallbiznis/teamroster/internal/migration"
	"github.com/smallbiznis/teamroster/internal/observability"
	"github.com/smallbiznis/teamroster/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := fx.New(
			config.Module,
			observability.Module,
			db.Module,
			migration.Module,
			fx.NopLogger,
		)
		if err := app.Err(); err != nil {
			return err
		}
		if err := app.Start(cmd.Context()); err != nil {
			return err
		}
		return app.Stop(cmd.Context())
	},
}
