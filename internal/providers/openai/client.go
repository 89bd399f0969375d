// Package openai adapts OpenAI-compatible HTTP APIs to the provider
// interfaces. The generation side targets Groq's OpenAI-compatible endpoint
// by default; the embedding side works against any /embeddings surface.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/tuitshoxrux/copilot/internal/providers"
)

// EmbedderConfig configures the embedding client.
type EmbedderConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GeneratorConfig configures the streaming generation client. Timeout, when
// set, bounds an entire generation including the streaming phase.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// EmbedderClient implements providers.Embedder over an OpenAI-compatible
// embeddings endpoint.
type EmbedderClient struct {
	client *openai.Client
	model  openai.EmbeddingModel
	logger *zap.Logger
}

// NewEmbedder creates an embedding client.
func NewEmbedder(cfg EmbedderConfig, logger *zap.Logger) *EmbedderClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &EmbedderClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  openai.EmbeddingModel(cfg.Model),
		logger: logger,
	}
}

// Embed returns the embedding vector for one text.
func (c *EmbedderClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds all texts in one API call, preserving input order.
func (c *EmbedderClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings response size mismatch: got %d, want %d", len(resp.Data), len(texts))
	}

	// The API reports an index per embedding; order by it rather than
	// trusting response order.
	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	c.logger.Debug("embedded texts", zap.Int("count", len(texts)), zap.String("model", string(c.model)))
	return vectors, nil
}

// GeneratorClient implements providers.Generator over an OpenAI-compatible
// streaming chat completion endpoint. No HTTP client timeout is set here:
// token streams are long-lived and are bounded by the request context
// instead.
type GeneratorClient struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// NewGenerator creates a streaming generation client.
func NewGenerator(cfg GeneratorConfig, logger *zap.Logger) *GeneratorClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &GeneratorClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger,
	}
}

// Generate opens a token stream for the rendered prompt.
func (c *GeneratorClient) Generate(ctx context.Context, prompt string) (providers.TokenStream, error) {
	cancel := func() {}
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Stream:      true,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("chat completion stream: %w", err)
	}
	c.logger.Debug("generation stream opened", zap.String("model", c.model))
	return &tokenStream{stream: stream, cancel: cancel}, nil
}

// tokenStream adapts the SSE chat stream to providers.TokenStream. Recv
// skips keep-alive chunks that carry no content delta.
type tokenStream struct {
	stream *openai.ChatCompletionStream
	cancel context.CancelFunc
}

func (s *tokenStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		return resp.Choices[0].Delta.Content, nil
	}
}

func (s *tokenStream) Close() error {
	s.cancel()
	return s.stream.Close()
}
