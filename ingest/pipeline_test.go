package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwelldocs/inkwell/ai/mock"
	"github.com/inkwelldocs/inkwell/chunk"
	"github.com/inkwelldocs/inkwell/core"
	badgerindex "github.com/inkwelldocs/inkwell/index/badger"
	"github.com/inkwelldocs/inkwell/loader"
)

func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func setupPipeline(t *testing.T, embedder *mock.MockEmbedder, size, overlap int) (*Pipeline, *badgerindex.Index) {
	t.Helper()

	idx, err := badgerindex.Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	splitter, err := chunk.New(size, overlap)
	require.NoError(t, err)

	pipeline, err := NewPipeline(loader.NewRegistry(), splitter, embedder, idx, "testing")
	require.NoError(t, err)

	return pipeline, idx
}

func docOfLength(n int) string {
	return strings.Repeat("0123456789", n/10) + strings.Repeat("x", n%10)
}

func TestNewPipelineValidation(t *testing.T) {
	idx, err := badgerindex.Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	splitter, err := chunk.New(1000, 200)
	require.NoError(t, err)
	embedder := mock.NewMockEmbedder()
	registry := loader.NewRegistry()

	tests := []struct {
		name string
		make func() (*Pipeline, error)
		want error
	}{
		{"nil loader", func() (*Pipeline, error) {
			return NewPipeline(nil, splitter, embedder, idx, "testing")
		}, ErrLoaderRequired},
		{"nil splitter", func() (*Pipeline, error) {
			return NewPipeline(registry, nil, embedder, idx, "testing")
		}, ErrSplitterRequired},
		{"nil embedder", func() (*Pipeline, error) {
			return NewPipeline(registry, splitter, nil, idx, "testing")
		}, ErrEmbedderRequired},
		{"nil index", func() (*Pipeline, error) {
			return NewPipeline(registry, splitter, embedder, nil, "testing")
		}, ErrIndexRequired},
		{"empty collection", func() (*Pipeline, error) {
			return NewPipeline(registry, splitter, embedder, idx, "")
		}, ErrCollectionRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.make()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestProcessIngestsDocument(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 16
	pipeline, idx := setupPipeline(t, embedder, 1000, 200)

	content := docOfLength(1500)
	path := writeDoc(t, "report.txt", content)
	job := core.NewIngestionJob(path, "report.txt")

	require.NoError(t, pipeline.Process(context.Background(), job))

	// 1500 chars with size=1000 overlap=200: chunks [0,1000) and [800,1500).
	queryVector, err := embedder.EmbedText(context.Background(), content[800:1500])
	require.NoError(t, err)

	results, err := idx.Query(context.Background(), "testing", queryVector, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, content[800:1500], results[0].Record.Text)
	assert.Equal(t, path, results[0].Record.Metadata.Source)
	assert.Equal(t, 0, results[0].Record.Metadata.Page)

	all, err := idx.Query(context.Background(), "testing", queryVector, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProcessEmbeddingFailureLeavesNoPartialState(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("quota exceeded")
	}
	pipeline, idx := setupPipeline(t, embedder, 1000, 200)

	path := writeDoc(t, "report.txt", docOfLength(1500))
	err := pipeline.Process(context.Background(), core.NewIngestionJob(path, "report.txt"))
	require.Error(t, err)

	// The whole job's upsert is skipped: no records in the collection.
	results, qerr := idx.Query(context.Background(), "testing", make([]float32, 16), 10)
	require.NoError(t, qerr)
	assert.Empty(t, results)
}

func TestProcessVectorCountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		// One vector short: simulates a provider truncating the batch.
		out := make([][]float32, len(texts)-1)
		for i := range out {
			out[i] = []float32{0.1, 0.2}
		}
		return out, nil
	}
	pipeline, _ := setupPipeline(t, embedder, 1000, 200)

	path := writeDoc(t, "report.txt", docOfLength(1500))
	err := pipeline.Process(context.Background(), core.NewIngestionJob(path, "report.txt"))
	assert.ErrorIs(t, err, core.ErrEmbeddingProvider)
}

func TestProcessUnreadableSource(t *testing.T) {
	pipeline, _ := setupPipeline(t, mock.NewMockEmbedder(), 1000, 200)

	job := core.NewIngestionJob(filepath.Join(t.TempDir(), "missing.txt"), "missing.txt")
	err := pipeline.Process(context.Background(), job)
	assert.ErrorIs(t, err, core.ErrUnreadableSource)
}

func TestProcessEmptyDocument(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	pipeline, idx := setupPipeline(t, embedder, 1000, 200)

	path := writeDoc(t, "empty.txt", "")
	require.NoError(t, pipeline.Process(context.Background(), core.NewIngestionJob(path, "empty.txt")))

	results, err := idx.Query(context.Background(), "testing", make([]float32, 384), 10)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, embedder.CallCount())
}

func TestProcessIsIdempotent(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 8
	pipeline, idx := setupPipeline(t, embedder, 1000, 200)

	path := writeDoc(t, "report.txt", docOfLength(1500))
	job := core.NewIngestionJob(path, "report.txt")

	require.NoError(t, pipeline.Process(context.Background(), job))

	probe, err := embedder.EmbedText(context.Background(), docOfLength(1500)[0:1000])
	require.NoError(t, err)
	before, err := idx.Query(context.Background(), "testing", probe, 10)
	require.NoError(t, err)

	// Reprocessing (e.g. redelivery after a lost ack) converges.
	require.NoError(t, pipeline.Process(context.Background(), job))
	after, err := idx.Query(context.Background(), "testing", probe, 10)
	require.NoError(t, err)

	assert.Equal(t, before, after)
	assert.Len(t, after, 2)
}
