package ai

import "context"

// Embedder maps text into the fixed-dimension vector space used by the
// index. Ingestion and query must use the same model and version; records
// embedded under a different model are silently incomparable, and the
// pipeline does not auto-detect mixed epochs.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error wrapping core.ErrEmbeddingProvider on failure.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates embeddings for multiple texts in one batch.
	// The returned slice is order-preserving and has the same length as
	// the input. A failure fails the whole batch; no zero vectors are
	// substituted for individual texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer generates an answer from a system instruction and a user turn.
// The model's reasoning is opaque to the pipeline; only the narrow
// prompt-in, text-out contract is relied upon.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete runs one chat completion. Returns an error wrapping
	// core.ErrGenerationProvider on transport or quota failure.
	Complete(ctx context.Context, system, user string) (string, error)
}

// Provider aggregates the AI capabilities for convenient initialization
// and lifecycle management. A provider constructs its services once per
// process; they are shared by all workers and query handlers.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Completer returns the generative completion service.
	Completer() Completer

	// Close releases resources held by the provider and its services.
	Close() error
}
