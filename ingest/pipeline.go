package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inkwelldocs/inkwell/ai"
	"github.com/inkwelldocs/inkwell/chunk"
	"github.com/inkwelldocs/inkwell/core"
	"github.com/inkwelldocs/inkwell/index"
	"github.com/inkwelldocs/inkwell/loader"
)

// Pipeline processes one ingestion job end to end:
// load -> split -> embed -> upsert. Stages run strictly in order, and a
// failure at any stage aborts the attempt before anything is written,
// so a failed job never leaves partial index state behind.
type Pipeline struct {
	loader     loader.Loader
	splitter   *chunk.Splitter
	embedder   ai.Embedder
	index      index.VectorIndex
	collection string
	logger     *slog.Logger
}

// NewPipeline creates a processing pipeline writing into the named
// collection. All collaborators are injected; the pipeline holds no
// mutable state of its own and is safe for concurrent use.
func NewPipeline(
	docLoader loader.Loader,
	splitter *chunk.Splitter,
	embedder ai.Embedder,
	vectorIndex index.VectorIndex,
	collection string,
) (*Pipeline, error) {
	if docLoader == nil {
		return nil, ErrLoaderRequired
	}
	if splitter == nil {
		return nil, ErrSplitterRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if vectorIndex == nil {
		return nil, ErrIndexRequired
	}
	if collection == "" {
		return nil, ErrCollectionRequired
	}

	return &Pipeline{
		loader:     docLoader,
		splitter:   splitter,
		embedder:   embedder,
		index:      vectorIndex,
		collection: collection,
		logger:     slog.Default().With("component", "ingest-pipeline"),
	}, nil
}

// Process runs the pipeline for one job. The returned error is the
// stage failure verbatim; the caller decides between retry and
// dead-letter.
func (p *Pipeline) Process(ctx context.Context, job *core.IngestionJob) error {
	logger := p.logger.With("job", job.Id, "file", job.OriginalName, "attempt", job.Attempt)

	pages, err := p.loader.Load(ctx, job.SourcePath)
	if err != nil {
		return fmt.Errorf("load %s: %w", job.SourcePath, err)
	}

	doc := &core.Document{Source: job.SourcePath, Pages: pages}
	chunks := p.splitter.Split(doc)
	if len(chunks) == 0 {
		logger.Warn("document produced no chunks, nothing to index", "pages", len(pages))
		return nil
	}
	logger.Debug("document split", "pages", len(pages), "chunks", len(chunks))

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: expected %d vectors, received %d",
			core.ErrEmbeddingProvider, len(chunks), len(vectors))
	}

	// Collection dimension is known only once the first batch returns.
	if err := p.index.EnsureCollection(ctx, p.collection, len(vectors[0])); err != nil {
		return fmt.Errorf("ensure collection %s: %w", p.collection, err)
	}

	records := make([]core.IndexedRecord, len(chunks))
	for i, c := range chunks {
		records[i] = core.RecordFromChunk(c, vectors[i])
	}

	if err := p.index.Upsert(ctx, p.collection, records); err != nil {
		return fmt.Errorf("upsert %d records: %w", len(records), err)
	}

	logger.Info("document ingested", "chunks", len(records), "collection", p.collection)
	return nil
}
