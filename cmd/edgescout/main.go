// Command edgescout is the entry point for the prediction-market research
// pipeline. It loads configuration, validates it, wires dependencies, sets up
// signal handling, and runs the pipeline in the selected mode.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edgescout/internal/app"
	"edgescout/internal/config"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	schedule := flag.Bool("schedule", false, "run continuously on the configured interval")
	intervalHours := flag.Float64("interval", 0, "override scan interval in hours (with -schedule)")
	status := flag.Bool("status", false, "print connectivity and scheduler status, then exit")
	flag.Parse()

	// Setup structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration.
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// Flags take precedence over the configured mode.
	switch {
	case *status:
		cfg.Mode = "status"
	case *schedule:
		cfg.Mode = "scheduled"
	default:
		cfg.Mode = "once"
	}
	if *intervalHours > 0 {
		cfg.Pipeline.ScanInterval.Duration = time.Duration(float64(time.Hour) * *intervalHours)
	}

	// Set log level from config.
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("edgescout starting",
		slog.String("mode", cfg.Mode),
		slog.String("config", *configPath),
	)

	// Create the application.
	application := app.New(cfg, logger)
	defer application.Close()

	// Setup signal handling for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run the application.
	if err := application.Run(ctx); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			logger.Info("application shut down gracefully")
			application.Close()
			os.Exit(130)
		case errors.Is(err, app.ErrNoOpportunities):
			logger.Info("run complete: no opportunities found")
			application.Close()
			os.Exit(1)
		default:
			logger.Error("application exited with error",
				slog.String("error", err.Error()),
			)
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			application.Close()
			os.Exit(1)
		}
	}

	logger.Info("edgescout stopped")
}
