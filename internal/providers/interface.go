// Package providers defines the capability interfaces for the opaque model
// services the pipeline depends on. Any concrete provider is a swappable
// implementation behind these interfaces.
package providers

import "context"

// Embedder produces fixed-dimension vector embeddings for text. It is used
// per chunk at ingestion time and per question at query time.
type Embedder interface {
	// Embed returns the embedding for a single input text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one embedding per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces a lazy, finite, non-restartable sequence of text deltas
// for a rendered prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (TokenStream, error)
}

// TokenStream yields generated text deltas one at a time. Recv returns
// io.EOF at end of generation; any other error means the generation failed
// mid-stream. Close releases the in-flight call and must always be called.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}
