package chat

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tuitshoxrux/copilot/internal/providers"
	"github.com/tuitshoxrux/copilot/internal/stream"
	"github.com/tuitshoxrux/copilot/models"
	"github.com/tuitshoxrux/copilot/services"
)

type mockRetriever struct {
	matches     []models.Match
	err         error
	gotQuestion string
}

func (m *mockRetriever) Retrieve(ctx context.Context, question string) ([]models.Match, error) {
	m.gotQuestion = question
	return m.matches, m.err
}

type mockTokenStream struct {
	deltas []string
	err    error // returned after the deltas are exhausted, instead of io.EOF
	pos    int
	closed bool
}

func (m *mockTokenStream) Recv() (string, error) {
	if m.pos >= len(m.deltas) {
		if m.err != nil {
			return "", m.err
		}
		return "", io.EOF
	}
	delta := m.deltas[m.pos]
	m.pos++
	return delta, nil
}

func (m *mockTokenStream) Close() error {
	m.closed = true
	return nil
}

type mockGenerator struct {
	stream    *mockTokenStream
	err       error
	calls     int
	gotPrompt string
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (providers.TokenStream, error) {
	m.calls++
	m.gotPrompt = prompt
	if m.err != nil {
		return nil, m.err
	}
	return m.stream, nil
}

func userTurn(content string) models.ConversationTurn {
	return models.ConversationTurn{Role: models.RoleUser, Content: content}
}

func TestStream(t *testing.T) {
	logger := zap.NewNop()

	t.Run("full response multiplexes sources then deltas", func(t *testing.T) {
		retriever := &mockRetriever{matches: []models.Match{
			{ID: 1, Content: "first passage", Score: 0.9, Metadata: map[string]interface{}{"source": "a.md"}},
			{ID: 2, Content: "second passage", Score: 0.7, Metadata: map[string]interface{}{"source": "b.md"}},
		}}
		tokens := &mockTokenStream{deltas: []string{"The answer ", `is "42".`}}
		generator := &mockGenerator{stream: tokens}
		svc := NewService(retriever, generator, logger)

		var buf bytes.Buffer
		err := svc.Stream(context.Background(),
			[]models.ConversationTurn{userTurn("what is the answer?")},
			stream.NewEncoder(&buf))
		require.NoError(t, err)

		resp, err := stream.Decode(&buf)
		require.NoError(t, err)

		require.Len(t, resp.Sources, 2)
		assert.Equal(t, "first passage", resp.Sources[0].Content)
		assert.Equal(t, "a.md", resp.Sources[0].Metadata["source"])
		assert.Equal(t, "second passage", resp.Sources[1].Content)
		assert.Equal(t, `The answer is "42".`, resp.Text())
		assert.True(t, tokens.closed)
	})

	t.Run("no relevant context stops before generation", func(t *testing.T) {
		retriever := &mockRetriever{err: services.ErrNoRelevantContext}
		generator := &mockGenerator{stream: &mockTokenStream{}}
		svc := NewService(retriever, generator, logger)

		var buf bytes.Buffer
		err := svc.Stream(context.Background(),
			[]models.ConversationTurn{userTurn("undocumented question")},
			stream.NewEncoder(&buf))

		require.Error(t, err)
		assert.True(t, services.IsNotFoundError(err))
		assert.Zero(t, generator.calls)
		assert.Zero(t, buf.Len())
	})

	t.Run("history and question feed the prompt", func(t *testing.T) {
		retriever := &mockRetriever{matches: []models.Match{{ID: 1, Content: "ctx", Score: 0.8}}}
		generator := &mockGenerator{stream: &mockTokenStream{deltas: []string{"ok"}}}
		svc := NewService(retriever, generator, logger)

		var buf bytes.Buffer
		err := svc.Stream(context.Background(), []models.ConversationTurn{
			userTurn("first question"),
			{Role: models.RoleAssistant, Content: "first answer"},
			userTurn("follow-up question"),
		}, stream.NewEncoder(&buf))
		require.NoError(t, err)

		assert.Equal(t, "follow-up question", retriever.gotQuestion)
		assert.Contains(t, generator.gotPrompt, "user: first question")
		assert.Contains(t, generator.gotPrompt, "assistant: first answer")
		assert.Contains(t, generator.gotPrompt, "User: follow-up question")
		assert.NotContains(t, generator.gotPrompt, "user: follow-up question")
	})

	t.Run("generation failure before streaming writes nothing", func(t *testing.T) {
		retriever := &mockRetriever{matches: []models.Match{{ID: 1, Content: "ctx", Score: 0.8}}}
		generator := &mockGenerator{err: errors.New("model unavailable")}
		svc := NewService(retriever, generator, logger)

		var buf bytes.Buffer
		err := svc.Stream(context.Background(),
			[]models.ConversationTurn{userTurn("question")},
			stream.NewEncoder(&buf))

		require.Error(t, err)
		assert.True(t, services.IsGenerationError(err))
		assert.Zero(t, buf.Len())
	})

	t.Run("mid-stream failure leaves a truncated stream", func(t *testing.T) {
		retriever := &mockRetriever{matches: []models.Match{{ID: 1, Content: "ctx", Score: 0.8}}}
		tokens := &mockTokenStream{deltas: []string{"partial "}, err: errors.New("upstream reset")}
		generator := &mockGenerator{stream: tokens}
		svc := NewService(retriever, generator, logger)

		var buf bytes.Buffer
		err := svc.Stream(context.Background(),
			[]models.ConversationTurn{userTurn("question")},
			stream.NewEncoder(&buf))

		require.Error(t, err)
		assert.True(t, services.IsGenerationError(err))

		resp, decodeErr := stream.Decode(&buf)
		require.NoError(t, decodeErr)
		assert.Len(t, resp.Sources, 1)
		assert.Equal(t, "partial ", resp.Text())
		assert.True(t, tokens.closed)
	})

	t.Run("validation", func(t *testing.T) {
		svc := NewService(&mockRetriever{}, &mockGenerator{}, logger)
		var buf bytes.Buffer

		cases := []struct {
			name  string
			turns []models.ConversationTurn
		}{
			{"empty conversation", nil},
			{"final turn not from user", []models.ConversationTurn{
				userTurn("q"), {Role: models.RoleAssistant, Content: "a"},
			}},
			{"blank question", []models.ConversationTurn{userTurn("   ")}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				err := svc.Stream(context.Background(), tc.turns, stream.NewEncoder(&buf))
				require.Error(t, err)
				assert.True(t, services.IsValidationError(err))
			})
		}
		assert.Zero(t, buf.Len())
	})
}
