// Package retrieval finds the stored passages most relevant to a question.
package retrieval

import (
	"context"

	"go.uber.org/zap"

	"github.com/tuitshoxrux/copilot/internal/providers"
	"github.com/tuitshoxrux/copilot/models"
	"github.com/tuitshoxrux/copilot/repositories"
	"github.com/tuitshoxrux/copilot/services"
)

// Service embeds questions and runs similarity search with metadata
// enrichment over the vector store.
type Service struct {
	embedder  providers.Embedder
	documents repositories.DocumentRepository
	threshold float64
	limit     int
	logger    *zap.Logger
}

// NewService creates a new retrieval service
func NewService(
	embedder providers.Embedder,
	documents repositories.DocumentRepository,
	threshold float64,
	limit int,
	logger *zap.Logger,
) *Service {
	return &Service{
		embedder:  embedder,
		documents: documents,
		threshold: threshold,
		limit:     limit,
		logger:    logger,
	}
}

// Retrieve embeds the question, searches the vector store and enriches the
// matches with full-record metadata. Returns ErrNoRelevantContext when no
// stored passage clears the similarity threshold.
func (s *Service) Retrieve(ctx context.Context, question string) ([]models.Match, error) {
	embedding, err := s.embedder.Embed(ctx, question)
	if err != nil {
		s.logger.Error("question embedding failed", zap.Error(err))
		return nil, services.WrapError(services.ErrorTypeEmbedding, "embedding request failed", err)
	}

	matches, err := s.documents.Search(ctx, embedding, s.threshold, s.limit)
	if err != nil {
		s.logger.Error("similarity search failed", zap.Error(err))
		return nil, services.WrapError(services.ErrorTypeRetrieval, "similarity search failed", err)
	}
	if len(matches) == 0 {
		s.logger.Info("no passages above threshold",
			zap.Float64("threshold", s.threshold))
		return nil, services.ErrNoRelevantContext
	}

	enriched, err := s.enrich(ctx, matches)
	if err != nil {
		s.logger.Error("match enrichment failed", zap.Error(err))
		return nil, services.WrapError(services.ErrorTypeRetrieval, "record lookup failed", err)
	}

	s.logger.Info("retrieval complete",
		zap.Int("matches", len(enriched)),
		zap.Float64("top_score", enriched[0].Score))
	return enriched, nil
}

// enrich joins full-record metadata back onto the ranked matches. The search
// query only projects id, content and score; metadata lives in a second
// lookup so the ranked result set stays narrow. Rank order is preserved.
func (s *Service) enrich(ctx context.Context, matches []models.Match) ([]models.Match, error) {
	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}

	records, err := s.documents.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.StoredRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	enriched := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if rec, ok := byID[m.ID]; ok {
			m.Metadata = rec.Metadata
		}
		enriched = append(enriched, m)
	}
	return enriched, nil
}
