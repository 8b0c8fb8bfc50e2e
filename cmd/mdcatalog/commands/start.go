package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marmos91/mdcatalog/cmd/mdcatalog/cmdutil"
	"github.com/marmos91/mdcatalog/internal/bootstrap"
	"github.com/marmos91/mdcatalog/internal/logger"
	"github.com/marmos91/mdcatalog/internal/telemetry"
	"github.com/marmos91/mdcatalog/pkg/api"
	"github.com/marmos91/mdcatalog/pkg/config"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Open the catalog and serve health and metrics endpoints",
	Long: `Open both catalog stores and run in the foreground until interrupted.

When server.enabled is true (the default) an HTTP server exposes:
  /health        liveness
  /health/ready  readiness, pinging the published and draft stores
  /metrics       Prometheus metrics (when metrics.enabled is true)

Examples:
  # Start with the default config location
  mdcatalog start

  # Start with a custom config and debug logging
  MDCATALOG_LOGGING_LEVEL=DEBUG mdcatalog start --config /etc/mdcatalog/config.yaml`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := cmdutil.LoadConfig()
	if err != nil {
		return err
	}
	if err := cmdutil.InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "mdcatalog",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("Telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingStop, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "mdcatalog",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingStop(); err != nil {
			logger.Error("Profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("Configuration loaded", "source", configSource(cmdutil.Flags.ConfigFile))
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}

	cat, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cat.Close(); err != nil {
			logger.Error("Failed to close catalog", logger.Err(err))
		}
	}()

	if path := watchedConfigPath(cmdutil.Flags.ConfigFile); path != "" {
		go func() {
			err := config.Watch(ctx, path, func(next *config.Config) {
				logger.SetLevel(next.Logging.Level)
				logger.SetFormat(next.Logging.Format)
			})
			if err != nil {
				logger.Warn("Configuration watcher stopped", logger.Err(err))
			}
		}()
	}

	var server *api.Server
	serverDone := make(chan error, 1)
	if cfg.Server.IsEnabled() {
		server = api.NewServer(cfg.Server, cat.Gatherer(), cat.HealthChecks()...)
		go func() {
			serverDone <- server.Start(ctx)
		}()
		logger.Info("API server enabled", "port", server.Port())
	} else {
		logger.Info("API server disabled")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("Catalog is running. Press Ctrl+C to stop.")

	var serveErr error
	select {
	case <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown")
	case <-ctx.Done():
	case serveErr = <-serverDone:
		if serveErr != nil {
			logger.Error("API server error", logger.Err(serveErr))
		}
	}

	cancel()
	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		if err := server.Stop(shutdownCtx); err != nil {
			logger.Error("API server shutdown error", logger.Err(err))
		}
	}

	logger.Info("Catalog stopped")
	return serveErr
}

func configSource(configFile string) string {
	if path := watchedConfigPath(configFile); path != "" {
		return path
	}
	return "defaults"
}

// watchedConfigPath returns the config file to watch for log level changes,
// or "" when running on built-in defaults.
func watchedConfigPath(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return ""
}
