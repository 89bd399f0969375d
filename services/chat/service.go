// Package chat orchestrates the online query pipeline: retrieve context,
// render the grounded prompt, and relay the generated answer as a frame
// stream.
package chat

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tuitshoxrux/copilot/internal/prompt"
	"github.com/tuitshoxrux/copilot/internal/providers"
	"github.com/tuitshoxrux/copilot/internal/stream"
	"github.com/tuitshoxrux/copilot/models"
	"github.com/tuitshoxrux/copilot/services"
)

// Retriever finds ranked, metadata-enriched matches for a question.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]models.Match, error)
}

// Service drives one chat request end to end.
type Service struct {
	retriever Retriever
	generator providers.Generator
	logger    *zap.Logger
}

// NewService creates a new chat service
func NewService(retriever Retriever, generator providers.Generator, logger *zap.Logger) *Service {
	return &Service{
		retriever: retriever,
		generator: generator,
		logger:    logger,
	}
}

// Stream answers the final user turn of the conversation, writing the
// sources frame followed by the generated deltas to enc.
//
// All errors returned before the first frame is written are clean failures
// the caller can still report as a status code. Once writing begins, a
// failure is returned as a stream-interrupted error and the output is left
// truncated; closing the connection is the only remaining signal.
func (s *Service) Stream(ctx context.Context, turns []models.ConversationTurn, enc *stream.Encoder) error {
	requestID := uuid.New().String()
	logger := s.logger.With(zap.String("chat_id", requestID))

	question, history, err := splitConversation(turns)
	if err != nil {
		return err
	}
	logger.Info("chat request accepted",
		zap.Int("history_turns", len(history)),
		zap.Int("question_length", len(question)))

	matches, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return err
	}

	rendered := prompt.Render(question, history, matches)
	logger.Debug("prompt rendered",
		zap.Int("matches", len(matches)),
		zap.Int("prompt_length", len(rendered)))

	tokens, err := s.generator.Generate(ctx, rendered)
	if err != nil {
		logger.Error("generation request failed", zap.Error(err))
		return services.WrapError(services.ErrorTypeGeneration, "generation request failed", err)
	}
	defer func() { _ = tokens.Close() }()

	if err := enc.WriteSources(matches); err != nil {
		logger.Error("sources frame write failed", zap.Error(err))
		return services.WrapError(services.ErrorTypeGeneration, "stream interrupted", err)
	}

	var deltas int
	for {
		delta, err := tokens.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Error("generation failed mid-stream",
				zap.Int("deltas_sent", deltas), zap.Error(err))
			return services.WrapError(services.ErrorTypeGeneration, "stream interrupted", err)
		}
		if err := enc.WriteDelta(delta); err != nil {
			logger.Warn("client write failed mid-stream",
				zap.Int("deltas_sent", deltas), zap.Error(err))
			return services.WrapError(services.ErrorTypeGeneration, "stream interrupted", err)
		}
		deltas++
	}

	logger.Info("chat response complete", zap.Int("deltas_sent", deltas))
	return nil
}

// splitConversation validates the turn sequence and separates the pending
// question from the history. The final turn must be a non-empty user turn.
func splitConversation(turns []models.ConversationTurn) (string, []models.ConversationTurn, error) {
	if len(turns) == 0 {
		return "", nil, services.NewDomainError(services.ErrorTypeValidation, "conversation has no turns", nil)
	}

	last := turns[len(turns)-1]
	if last.Role != models.RoleUser {
		return "", nil, services.NewDomainError(services.ErrorTypeValidation, "final turn must come from the user", nil)
	}
	if strings.TrimSpace(last.Content) == "" {
		return "", nil, services.ErrEmptyQuestion
	}

	return last.Content, turns[:len(turns)-1], nil
}
