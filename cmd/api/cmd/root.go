package cmd

import (
	"context"
	"fmt"
	"os"

	"BlackByte_Forum/internal/app"
	"BlackByte_Forum/internal/config"
	"BlackByte_Forum/internal/pkg"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagConfig string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "forum",
	Short:         "BlackByte forum server",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd.Flags())
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger, err := pkg.NewLogger(cfg.App.Env, cfg.App.LogLevel)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	// 不带子命令时直接启动服务
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config file (default: ./config.yaml)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedAdminCmd, reconcileCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// withApp 构建 App，执行 fn 后释放连接
func withApp(ctx context.Context, fn func(a *app.App) error) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			zap.L().Warn("Close app failed", zap.Error(err))
		}
	}()
	return fn(a)
}
