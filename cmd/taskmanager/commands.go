package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Sumiattri/task-manager/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, if configured, the Telegram digest bot",
	RunE: func(_ *cobra.Command, _ []string) error {
		return withApp(func(ctx context.Context, a *app.App) error {
			a.Log.Info("task manager starting", "addr", a.Cfg.HTTPAddr, "env", a.Cfg.AppEnv)
			if err := a.Serve(ctx); err != nil {
				return err
			}
			a.Log.Info("shutdown complete")
			return nil
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(_ *cobra.Command, _ []string) error {
		// Opening the application migrates the schema.
		return withApp(func(_ context.Context, a *app.App) error {
			a.Log.Info("schema up to date", "driver", a.Cfg.DBDriver)
			return nil
		})
	},
}

var rescoreCmd = &cobra.Command{
	Use:   "rescore",
	Short: "Recompute every task's priority score under the active rule",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(func(ctx context.Context, a *app.App) error {
			updated, err := a.Services.Tasks.RescoreAll(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("rescored %d task(s)\n", updated)
			return nil
		})
	},
}

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin role to an existing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app.App) error {
			if err := a.Services.Users.Promote(ctx, args[0]); err != nil {
				return err
			}
			cmd.Printf("%s is now an admin\n", args[0])
			return nil
		})
	},
}
