package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
)

// MockEmbedder is a deterministic embedder for tests and offline runs. The
// vector is derived from token hashes, so texts sharing vocabulary land
// closer in vector space than unrelated texts. The same text always gets
// the same embedding.
type MockEmbedder struct {
	dimensions int

	mu      sync.Mutex
	failFor map[string]bool // Texts configured to fail (tests only)
}

// NewMockEmbedder returns an embedder producing deterministic embeddings
// of the given dimension.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 256
	}
	return &MockEmbedder{
		dimensions: dimensions,
		failFor:    make(map[string]bool),
	}
}

// FailFor makes Embed return an error for the given text.
func (e *MockEmbedder) FailFor(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failFor[text] = true
}

// Embed returns a token-bag embedding so overlapping wording yields high
// cosine similarity.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	shouldFail := e.failFor[text]
	e.mu.Unlock()
	if shouldFail {
		return nil, errEmbeddingUnavailable
	}

	emb := make([]float32, e.dimensions)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?\"'()")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		idx := int(h.Sum32()) % e.dimensions
		if idx < 0 {
			idx += e.dimensions
		}
		emb[idx] += 1
	}

	// Normalize to unit length for cosine similarity
	var sum float64
	for _, v := range emb {
		sum += float64(v * v)
	}
	if sum > 0 {
		norm := 1.0 / math.Sqrt(sum)
		for i := range emb {
			emb[i] *= float32(norm)
		}
	}
	return emb, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}
