package cmd

import (
	"BlackByte_Forum/internal/app"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			if err := a.Migrate(); err != nil {
				return err
			}
			zap.L().Info("Schema migrated", zap.String("driver", cfg.Database.Driver))
			return nil
		})
	},
}

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the admin account from admin.email / admin.password",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			if err := a.Migrate(); err != nil {
				return err
			}
			if cfg.Admin.Email == "" {
				zap.L().Warn("admin.email not set, nothing to seed")
				return nil
			}
			return a.SeedAdmin(cmd.Context())
		})
	},
}
