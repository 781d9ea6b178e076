package main

import (
	"context"

	"github.com/smallbiznis/teamroster/internal/clock"
	"github.com/smallbiznis/teamroster/internal/config"
	"github.com/smallbiznis/teamroster/internal/migration"
	"github.com/smallbiznis/teamroster/internal/observability"
	"github.com/smallbiznis/teamroster/internal/server"
	"github.com/smallbiznis/teamroster/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app := fx.New(
			config.Module,
			observability.Module,
			fx.Provide(RegisterSnowflake),
			db.Module,
			clock.Module,
			migration.Module,
			server.Module,
		)

		ctx := cmd.Context()
		if err := app.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
		defer cancel()
		return app.Stop(stopCtx)
	},
}
