// Package ingest implements the offline pipeline that turns a directory of
// documents into embedded, searchable records.
package ingest

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tuitshoxrux/copilot/internal/chunker"
	"github.com/tuitshoxrux/copilot/internal/loader"
	"github.com/tuitshoxrux/copilot/internal/providers"
	"github.com/tuitshoxrux/copilot/models"
	"github.com/tuitshoxrux/copilot/repositories"
	"github.com/tuitshoxrux/copilot/services"
)

// Service runs the load, chunk, embed, store pipeline.
type Service struct {
	chunker    *chunker.Chunker
	embedder   providers.Embedder
	documents  repositories.DocumentRepository
	embedBatch int
	logger     *zap.Logger
}

// NewService creates a new ingestion service. embedBatch caps how many chunks
// go into a single embedding request.
func NewService(
	c *chunker.Chunker,
	embedder providers.Embedder,
	documents repositories.DocumentRepository,
	embedBatch int,
	logger *zap.Logger,
) *Service {
	if embedBatch < 1 {
		embedBatch = 1
	}
	return &Service{
		chunker:    c,
		embedder:   embedder,
		documents:  documents,
		embedBatch: embedBatch,
		logger:     logger,
	}
}

// Run ingests every supported document under dir and returns the number of
// records stored. The store write is a single atomic batch, so a failed run
// never leaves a partially written corpus.
func (s *Service) Run(ctx context.Context, dir string) (int, error) {
	runID := uuid.New().String()
	logger := s.logger.With(zap.String("run_id", runID), zap.String("dir", dir))
	logger.Info("ingestion run started")

	docs, err := loader.LoadDir(dir)
	if err != nil {
		logger.Error("document load failed", zap.Error(err))
		return 0, services.WrapError(services.ErrorTypeIngestion, "document load failed", err)
	}
	if len(docs) == 0 {
		logger.Warn("no documents found, nothing to ingest")
		return 0, nil
	}

	var chunks []models.Chunk
	for _, doc := range docs {
		parts := s.chunker.Split(doc)
		if len(parts) == 0 {
			logger.Warn("document produced no chunks, skipping",
				zap.String("document", doc.ID))
			continue
		}
		chunks = append(chunks, parts...)
	}
	logger.Info("documents chunked",
		zap.Int("documents", len(docs)), zap.Int("chunks", len(chunks)))
	if len(chunks) == 0 {
		return 0, nil
	}

	records, err := s.embed(ctx, chunks)
	if err != nil {
		logger.Error("chunk embedding failed", zap.Error(err))
		return 0, services.WrapError(services.ErrorTypeIngestion, "chunk embedding failed", err)
	}

	stored, err := s.documents.InsertBatch(ctx, records)
	if err != nil {
		logger.Error("record store failed", zap.Error(err))
		return 0, services.WrapError(services.ErrorTypeIngestion, "record store failed", err)
	}

	logger.Info("ingestion run complete", zap.Int("records", stored))
	return stored, nil
}

// embed turns chunks into storable records, batching embedding requests.
func (s *Service) embed(ctx context.Context, chunks []models.Chunk) ([]models.StoredRecord, error) {
	records := make([]models.StoredRecord, 0, len(chunks))

	for start := 0; start < len(chunks); start += s.embedBatch {
		end := start + s.embedBatch
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, err
		}

		for i, c := range batch {
			records = append(records, models.StoredRecord{
				Content:   c.Text,
				Metadata:  c.Metadata,
				Embedding: embeddings[i],
			})
		}
	}

	return records, nil
}
