package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tuitshoxrux/copilot/models"
	"github.com/tuitshoxrux/copilot/services"
)

type mockEmbedder struct {
	embedding []float32
	err       error
	calls     int
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	return m.embedding, m.err
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.embedding
	}
	return out, m.err
}

type mockRepository struct {
	matches   []models.Match
	searchErr error
	records   []models.StoredRecord
	lookupErr error

	gotThreshold float64
	gotLimit     int
}

func (m *mockRepository) InsertBatch(ctx context.Context, records []models.StoredRecord) (int, error) {
	return len(records), nil
}

func (m *mockRepository) Search(ctx context.Context, embedding []float32, threshold float64, limit int) ([]models.Match, error) {
	m.gotThreshold = threshold
	m.gotLimit = limit
	return m.matches, m.searchErr
}

func (m *mockRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.StoredRecord, error) {
	return m.records, m.lookupErr
}

func TestRetrieve(t *testing.T) {
	logger := zap.NewNop()

	t.Run("ranked matches are enriched with metadata in rank order", func(t *testing.T) {
		repo := &mockRepository{
			matches: []models.Match{
				{ID: 3, Content: "best", Score: 0.9},
				{ID: 1, Content: "good", Score: 0.7},
				{ID: 7, Content: "fair", Score: 0.5},
			},
			records: []models.StoredRecord{
				{ID: 1, Content: "good", Metadata: map[string]interface{}{"source": "a.md"}},
				{ID: 7, Content: "fair", Metadata: map[string]interface{}{"source": "b.md"}},
				{ID: 3, Content: "best", Metadata: map[string]interface{}{"source": "c.md"}},
			},
		}
		svc := NewService(&mockEmbedder{embedding: []float32{0.1}}, repo, 0.5, 4, logger)

		matches, err := svc.Retrieve(context.Background(), "what is the refund policy?")
		require.NoError(t, err)
		require.Len(t, matches, 3)

		assert.Equal(t, []float64{0.9, 0.7, 0.5},
			[]float64{matches[0].Score, matches[1].Score, matches[2].Score})
		assert.Equal(t, "c.md", matches[0].Metadata["source"])
		assert.Equal(t, "a.md", matches[1].Metadata["source"])
		assert.Equal(t, "b.md", matches[2].Metadata["source"])

		assert.InDelta(t, 0.5, repo.gotThreshold, 1e-9)
		assert.Equal(t, 4, repo.gotLimit)
	})

	t.Run("no match above threshold is not found, not a store failure", func(t *testing.T) {
		repo := &mockRepository{matches: nil}
		svc := NewService(&mockEmbedder{embedding: []float32{0.1}}, repo, 0.5, 4, logger)

		_, err := svc.Retrieve(context.Background(), "question nobody wrote about")
		require.Error(t, err)
		assert.True(t, services.IsNotFoundError(err))
		assert.False(t, services.IsRetrievalError(err))
	})

	t.Run("embedder failure maps to embedding error", func(t *testing.T) {
		embedder := &mockEmbedder{err: errors.New("provider down")}
		svc := NewService(embedder, &mockRepository{}, 0.5, 4, logger)

		_, err := svc.Retrieve(context.Background(), "any question")
		require.Error(t, err)
		assert.True(t, services.IsEmbeddingError(err))
	})

	t.Run("search failure maps to retrieval error", func(t *testing.T) {
		repo := &mockRepository{searchErr: errors.New("connection reset")}
		svc := NewService(&mockEmbedder{embedding: []float32{0.1}}, repo, 0.5, 4, logger)

		_, err := svc.Retrieve(context.Background(), "any question")
		require.Error(t, err)
		assert.True(t, services.IsRetrievalError(err))
	})

	t.Run("lookup failure maps to retrieval error", func(t *testing.T) {
		repo := &mockRepository{
			matches:   []models.Match{{ID: 1, Content: "passage", Score: 0.8}},
			lookupErr: errors.New("connection reset"),
		}
		svc := NewService(&mockEmbedder{embedding: []float32{0.1}}, repo, 0.5, 4, logger)

		_, err := svc.Retrieve(context.Background(), "any question")
		require.Error(t, err)
		assert.True(t, services.IsRetrievalError(err))
	})

	t.Run("missing lookup record keeps the match without metadata", func(t *testing.T) {
		repo := &mockRepository{
			matches: []models.Match{{ID: 5, Content: "orphan", Score: 0.8}},
			records: nil,
		}
		svc := NewService(&mockEmbedder{embedding: []float32{0.1}}, repo, 0.5, 4, logger)

		matches, err := svc.Retrieve(context.Background(), "any question")
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "orphan", matches[0].Content)
		assert.Nil(t, matches[0].Metadata)
	})
}
