package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inkwelldocs/inkwell/ai"
	"github.com/inkwelldocs/inkwell/core"
	"github.com/inkwelldocs/inkwell/index"
)

// DefaultTopK is the number of records retrieved per question when the
// caller does not ask for a specific amount.
const DefaultTopK = 2

// Handler answers questions over the indexed corpus: it embeds the
// question, retrieves the nearest records, and asks the completion model
// to answer grounded on them.
type Handler struct {
	embedder   ai.Embedder
	completer  ai.Completer
	index      index.VectorIndex
	collection string
	topK       int
	logger     *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler) error

// WithTopK sets how many records are retrieved per question.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(h *Handler) error {
		if k < 1 {
			return fmt.Errorf("%w: topK must be positive, received %d", core.ErrInvalidConfiguration, k)
		}
		h.topK = k
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) error {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger
		return nil
	}
}

// NewHandler creates a query handler reading from the named collection.
func NewHandler(
	provider ai.Provider,
	vectorIndex index.VectorIndex,
	collection string,
	opts ...Option,
) (*Handler, error) {
	if provider == nil {
		return nil, ErrEmbedderRequired
	}
	if vectorIndex == nil {
		return nil, ErrIndexRequired
	}
	if collection == "" {
		return nil, ErrCollectionRequired
	}

	h := &Handler{
		embedder:   provider.Embedder(),
		completer:  provider.Completer(),
		index:      vectorIndex,
		collection: collection,
		topK:       DefaultTopK,
		logger:     slog.Default().With("component", "query-handler"),
	}
	if h.embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if h.completer == nil {
		return nil, ErrCompleterRequired
	}

	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// Answer runs one retrieval-augmented completion for the question,
// retrieving up to k records; k <= 0 means the handler default. An
// empty retrieval is not an error: the model is asked anyway, with an
// empty context block.
func (h *Handler) Answer(ctx context.Context, question string, k int) (*core.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}
	if k <= 0 {
		k = h.topK
	}

	vector, err := h.embedder.EmbedText(ctx, question)
	if err != nil {
		h.logger.Error("error embedding question", "err", err)
		return nil, fmt.Errorf("embed question: %w", err)
	}

	results, err := h.index.Query(ctx, h.collection, vector, k)
	if err != nil {
		h.logger.Error("error retrieving context", "collection", h.collection, "err", err)
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	if len(results) == 0 {
		h.logger.Warn("no context retrieved for question", "collection", h.collection)
	}

	text, err := h.completer.Complete(ctx, buildSystemPrompt(results), question)
	if err != nil {
		h.logger.Error("error generating answer", "err", err)
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	h.logger.Debug("question answered", "retrieved", len(results), "k", k)
	return &core.Answer{Text: text, Sources: results}, nil
}
