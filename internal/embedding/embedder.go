// Package embedding provides text embedding backends (local ONNX model,
// OpenAI-compatible APIs, deterministic mock) and an LRU cache.
package embedding

import "context"

// Embedder produces fixed-dimensionality vector embeddings for text.
// For a fixed model, the same text always yields the same vector. Empty
// text is embedded like any other string; it never errors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
