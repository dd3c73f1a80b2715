package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/musegen/muse-server/internal/app"
	"github.com/musegen/muse-server/internal/config"
	"github.com/musegen/muse-server/internal/logger"
)

func newStartCmd(version string, buildTime string) *cobra.Command {
	return &cobra.Command{
		Use:          "start [config.toml]",
		Short:        "muse-server start",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile := "./config.toml"
			if len(args) > 0 {
				configFile = args[0]
			}
			return run(configFile, version, buildTime)
		},
	}
}

func run(configFile string, version string, buildTime string) error {
	// Local overrides (API keys and the like) come from .env when present.
	_ = godotenv.Load()

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", configFile)
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	level := cfg.LogConfig.Level
	if verbose {
		level = "debug"
	}
	log, err := logger.InitLogger(level, cfg.LogConfig.Format, cfg.LogConfig.File)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting muse-server",
		zap.String("version", version),
		zap.String("build_time", buildTime))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx, cfg, log)
}
