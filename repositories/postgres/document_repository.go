package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/tuitshoxrux/copilot/models"
	"github.com/tuitshoxrux/copilot/repositories"
)

// DocumentRepository implements repositories.DocumentRepository on top of
// Postgres with the pgvector extension. Similarity is cosine: the <=>
// operator yields cosine distance, so 1 - distance is the score in [0,1].
type DocumentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *DB, logger *zap.Logger) repositories.DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

// InsertBatch writes all records inside a single transaction so an
// ingestion run never leaves a half-written corpus behind.
func (r *DocumentRepository) InsertBatch(ctx context.Context, records []models.StoredRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO documents (content, metadata, embedding)
		VALUES ($1, $2, $3)
	`
	for _, rec := range records {
		meta, err := json.Marshal(rec.Metadata)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, rec.Content, meta, vectorLiteral(rec.Embedding)); err != nil {
			return 0, fmt.Errorf("failed to insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	r.logger.Debug("record batch stored", zap.Int("count", len(records)))
	return len(records), nil
}

// Search runs the cosine similarity query. Ties in score fall back to id
// order, i.e. insertion order, so ranking is stable.
func (r *DocumentRepository) Search(ctx context.Context, embedding []float32, threshold float64, limit int) ([]models.Match, error) {
	query := `
		SELECT id, content, 1 - (embedding <=> $1) AS similarity
		FROM documents
		WHERE 1 - (embedding <=> $1) >= $2
		ORDER BY similarity DESC, id ASC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, vectorLiteral(embedding), threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(&m.ID, &m.Content, &m.Score); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read matches: %w", err)
	}

	return matches, nil
}

// GetByIDs fetches full records for metadata enrichment.
func (r *DocumentRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.StoredRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, content, metadata
		FROM documents
		WHERE id = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get documents: %w", err)
	}
	defer rows.Close()

	var records []models.StoredRecord
	for rows.Next() {
		var rec models.StoredRecord
		var meta []byte
		if err := rows.Scan(&rec.ID, &rec.Content, &meta); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &rec.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return records, nil
}

// vectorLiteral renders an embedding as a pgvector input literal, e.g.
// "[0.1,0.2,0.3]".
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
