package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tuitshoxrux/copilot/app"
	"github.com/tuitshoxrux/copilot/config"
)

func main() {
	dataDir := flag.String("dir", "", "directory of documents to ingest (defaults to INGEST_DATA_DIR)")
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dir := cfg.Ingestion.DataDir
	if *dataDir != "" {
		dir = *dataDir
	}

	if err := run(cfg, logger, dir); err != nil {
		logger.Error("ingestion failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger, dir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = deps.Close() }()

	stored, err := deps.Ingest.Run(ctx, dir)
	if err != nil {
		return err
	}
	logger.Info("ingestion finished", zap.Int("records", stored))
	return nil
}
