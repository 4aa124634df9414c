package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikeSquared-Agency/chilly/internal/api"
	"github.com/MikeSquared-Agency/chilly/internal/config"
	"github.com/MikeSquared-Agency/chilly/internal/store"
)

const usage = `usage: chilly <command> [flags]

commands:
  generate   build train/val datasets from a Slack export
  serve      run the status API
`

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "generate":
		err = runGenerate(ctx, cfg, os.Args[2:])
	case "serve":
		err = runServe(ctx, cfg)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		slog.Error("chilly failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context, cfg config.Config) error {
	slog.Info("chilly starting", "port", cfg.Port)

	var runs api.RunStore
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		runs = db
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set, run history disabled")
	}

	srv := api.NewServer(cfg.Port, cfg.ManifestPath, runs)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("chilly ready", "port", cfg.Port)

	<-ctx.Done()
	slog.Info("shutting down")
	slog.Info("chilly stopped")
	return nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
