package embedding

import (
	"context"
	"math"
)

// MockEmbedder is a deterministic embedder for tests. By default it derives
// a unit-length vector from the text hash, so the same text always gets the
// same embedding. Individual texts can be pinned to exact vectors with
// SetVector, which lets tests construct known similarity geometry.
type MockEmbedder struct {
	dimensions int
	fixed      map[string][]float32
}

// NewMockEmbedder returns a deterministic embedder of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{
		dimensions: dimensions,
		fixed:      make(map[string][]float32),
	}
}

// SetVector pins text to an exact vector, bypassing the hash derivation.
// The vector must have the embedder's dimensionality; it is not normalized,
// so tests can pin zero-magnitude vectors.
func (e *MockEmbedder) SetVector(text string, vec []float32) {
	owned := make([]float32, len(vec))
	copy(owned, vec)
	e.fixed[text] = owned
}

// Embed returns the pinned vector for text if set, otherwise a unit-length
// vector derived from the text hash.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := e.fixed[text]; ok {
		out := make([]float32, len(vec))
		copy(out, vec)
		return out, nil
	}
	h := HashString(text)
	emb := make([]float32, e.dimensions)
	for i := 0; i < e.dimensions; i++ {
		emb[i] = float32(math.Sin(float64(h*(i+1)))*0.1 + 0.01)
	}
	NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int { return e.dimensions }

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error { return nil }
