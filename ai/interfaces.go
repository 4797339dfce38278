package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText generates an embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates embeddings for a batch of texts. The returned
	// slice preserves input order. Prefer this over repeated EmbedText
	// calls when indexing.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// AIProvider creates and owns the embedding service, tying its lifecycle
// to one Close call.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	// The provider must not be used after Close.
	Close() error
}
