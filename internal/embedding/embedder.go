// Package embedding provides text embedding providers and caching.
package embedding

import "context"

// Embedder produces vector embeddings for text.
type Embedder interface {
	// Embed returns the embedding for text. A nil vector with a non-nil
	// error means the embedding is unavailable; callers degrade to
	// "no match" rather than failing their whole batch.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int
}
