// Package embedding provides the embedding provider interface and its adapters:
// an OpenAI-compatible remote client, a local hashing embedder, caching, and retries.
package embedding

import "context"

// Embedder produces vector embeddings for text. Failures are *models.ProviderError.
type Embedder interface {
	// Embed embeds a search query.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch embeds document passages, one vector per text in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the vector length, or 0 when it is only known after the first call.
	Dimensions() int
	Close() error
}
