// Package repositories defines the persistence contracts of the service.
package repositories

import (
	"context"

	"github.com/tuitshoxrux/copilot/models"
)

// DocumentRepository is the vector store: it persists embedded chunks and
// answers similarity searches over them.
type DocumentRepository interface {
	// InsertBatch writes all records in one atomic batch and returns the
	// number stored. Either every record is persisted or none is.
	InsertBatch(ctx context.Context, records []models.StoredRecord) (int, error)

	// Search returns up to limit matches with cosine similarity >= threshold,
	// ordered by descending score with ties broken by insertion order. The
	// matches carry id, content and score only; use GetByIDs for metadata.
	Search(ctx context.Context, embedding []float32, threshold float64, limit int) ([]models.Match, error)

	// GetByIDs fetches full records, including metadata, for the given ids.
	GetByIDs(ctx context.Context, ids []int64) ([]models.StoredRecord, error)
}
