package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tuitshoxrux/copilot/config"
	"github.com/tuitshoxrux/copilot/internal/chunker"
	"github.com/tuitshoxrux/copilot/internal/providers"
	"github.com/tuitshoxrux/copilot/internal/providers/openai"
	"github.com/tuitshoxrux/copilot/repositories"
	"github.com/tuitshoxrux/copilot/repositories/postgres"
	"github.com/tuitshoxrux/copilot/services/chat"
	"github.com/tuitshoxrux/copilot/services/ingest"
	"github.com/tuitshoxrux/copilot/services/retrieval"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repositories
	Documents repositories.DocumentRepository

	// Providers
	Embedder  providers.Embedder
	Generator providers.Generator

	// Services
	Retrieval *retrieval.Service
	Chat      *chat.Service
	Ingest    *ingest.Service
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	db, err := postgres.NewDB(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	deps.DB = db

	if err := db.InitSchema(ctx, cfg.Providers.Embedding.Dimension); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	deps.Documents = postgres.NewDocumentRepository(db, logger)

	deps.Embedder = openai.NewEmbedder(openai.EmbedderConfig{
		APIKey:  cfg.Providers.Embedding.APIKey,
		BaseURL: cfg.Providers.Embedding.BaseURL,
		Model:   cfg.Providers.Embedding.Model,
		Timeout: cfg.Providers.Embedding.Timeout,
	}, logger)
	deps.Generator = openai.NewGenerator(openai.GeneratorConfig{
		APIKey:      cfg.Providers.Generation.APIKey,
		BaseURL:     cfg.Providers.Generation.BaseURL,
		Model:       cfg.Providers.Generation.Model,
		Temperature: float32(cfg.Providers.Generation.Temperature),
		Timeout:     cfg.Providers.Generation.Timeout,
	}, logger)

	deps.Retrieval = retrieval.NewService(
		deps.Embedder,
		deps.Documents,
		cfg.Retrieval.Threshold,
		cfg.Retrieval.Limit,
		logger,
	)
	deps.Chat = chat.NewService(deps.Retrieval, deps.Generator, logger)
	deps.Ingest = ingest.NewService(
		chunker.New(cfg.Ingestion.ChunkSize, cfg.Ingestion.ChunkOverlap),
		deps.Embedder,
		deps.Documents,
		cfg.Ingestion.EmbedBatch,
		logger,
	)

	logger.Info("all dependencies initialized",
		zap.String("embedding_model", cfg.Providers.Embedding.Model),
		zap.String("generation_model", cfg.Providers.Generation.Model))
	return deps, nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close() error {
	d.Logger.Info("shutting down dependencies")

	var errs []error
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
