package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ytlantern/internal/config"
	"ytlantern/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	runner, err := newRunner(cfg, logger)
	if err != nil {
		logger.Error("configure daemon", "error", err)
		os.Exit(1)
	}

	if err := runner.Run(ctx); err != nil {
		logger.Error("daemon exited", "error", err)
		os.Exit(1)
	}
}
