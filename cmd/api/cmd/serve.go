package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"BlackByte_Forum/internal/app"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the schema, seed the admin account and serve HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return withApp(ctx, func(a *app.App) error {
		if err := a.Migrate(); err != nil {
			return err
		}
		if err := a.SeedAdmin(ctx); err != nil {
			return err
		}
		return a.Serve(ctx)
	})
}
