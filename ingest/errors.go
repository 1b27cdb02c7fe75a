package ingest

import "errors"

var (
	// ErrQueueRequired is returned when a job queue is not provided.
	ErrQueueRequired = errors.New("job queue required")

	// ErrLoaderRequired is returned when a document loader is not provided.
	ErrLoaderRequired = errors.New("document loader required")

	// ErrSplitterRequired is returned when a chunk splitter is not provided.
	ErrSplitterRequired = errors.New("chunk splitter required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrIndexRequired is returned when a vector index is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrCollectionRequired is returned when a collection name is not provided.
	ErrCollectionRequired = errors.New("collection name required")

	// ErrPipelineRequired is returned when a pipeline is not provided.
	ErrPipelineRequired = errors.New("pipeline required")
)
