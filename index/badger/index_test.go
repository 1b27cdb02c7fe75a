package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwelldocs/inkwell/core"
)

func setupIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(t.TempDir(), false)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func record(id, text string, page int, vector []float32) core.IndexedRecord {
	return core.IndexedRecord{
		Id:     id,
		Vector: vector,
		Text:   text,
		Metadata: core.RecordMetadata{
			Source: "uploads/a.pdf",
			Page:   page,
		},
	}
}

func TestEnsureCollectionIdempotent(t *testing.T) {
	idx := setupIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.EnsureCollection(ctx, "testing", 3))
	require.NoError(t, idx.EnsureCollection(ctx, "testing", 3))
}

func TestEnsureCollectionDimensionMismatch(t *testing.T) {
	idx := setupIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.EnsureCollection(ctx, "testing", 3))
	err := idx.EnsureCollection(ctx, "testing", 5)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestUpsertCreatesCollectionLazily(t *testing.T) {
	idx := setupIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "testing", []core.IndexedRecord{
		record("r1", "chunk", 0, []float32{1, 0, 0}),
	}))

	// Dimension was fixed by the first upsert.
	err := idx.EnsureCollection(ctx, "testing", 5)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	assert.NoError(t, idx.EnsureCollection(ctx, "testing", 3))
}

func TestQueryRanksBySimilarity(t *testing.T) {
	idx := setupIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "testing", []core.IndexedRecord{
		record("east", "east chunk", 0, []float32{1, 0, 0}),
		record("north", "north chunk", 1, []float32{0, 1, 0}),
		record("northeast", "northeast chunk", 2, []float32{1, 1, 0}),
	}))

	results, err := idx.Query(ctx, "testing", []float32{1, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "east", results[0].Record.Id)
	assert.Equal(t, "northeast", results[1].Record.Id)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestQueryShortCollection(t *testing.T) {
	idx := setupIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "testing", []core.IndexedRecord{
		record("r1", "only chunk", 0, []float32{1, 0, 0}),
	}))

	results, err := idx.Query(ctx, "testing", []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestQueryMissingCollection(t *testing.T) {
	idx := setupIndex(t)

	results, err := idx.Query(context.Background(), "absent", []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQueryTiesBreakByInsertionOrder(t *testing.T) {
	idx := setupIndex(t)
	ctx := context.Background()

	// Identical vectors: scores tie, insertion order decides.
	require.NoError(t, idx.Upsert(ctx, "testing", []core.IndexedRecord{
		record("first", "a", 0, []float32{1, 0, 0}),
		record("second", "b", 1, []float32{1, 0, 0}),
		record("third", "c", 2, []float32{1, 0, 0}),
	}))

	results, err := idx.Query(ctx, "testing", []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Record.Id)
	assert.Equal(t, "second", results[1].Record.Id)
	assert.Equal(t, "third", results[2].Record.Id)
}

func TestUpsertIdempotent(t *testing.T) {
	idx := setupIndex(t)
	ctx := context.Background()

	batch := []core.IndexedRecord{
		record("r1", "a", 0, []float32{1, 0, 0}),
		record("r2", "b", 1, []float32{0, 1, 0}),
	}
	require.NoError(t, idx.Upsert(ctx, "testing", batch))

	before, err := idx.Query(ctx, "testing", []float32{1, 0, 0}, 10)
	require.NoError(t, err)

	require.NoError(t, idx.Upsert(ctx, "testing", batch))
	after, err := idx.Query(ctx, "testing", []float32{1, 0, 0}, 10)
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestQueryDeterministic(t *testing.T) {
	idx := setupIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, "testing", []core.IndexedRecord{
		record("r1", "a", 0, []float32{0.5, 0.5, 0}),
		record("r2", "b", 1, []float32{0.4, 0.6, 0}),
		record("r3", "c", 2, []float32{0.6, 0.4, 0}),
	}))

	first, err := idx.Query(ctx, "testing", []float32{1, 1, 0}, 3)
	require.NoError(t, err)
	second, err := idx.Query(ctx, "testing", []float32{1, 1, 0}, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestUpsertValidatesRecords(t *testing.T) {
	idx := setupIndex(t)

	err := idx.Upsert(context.Background(), "testing", []core.IndexedRecord{
		{Id: "bad", Text: "no vector"},
	})
	assert.ErrorIs(t, err, core.ErrInvalidRecord)
}

func TestInMemoryIndex(t *testing.T) {
	idx, err := Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, "testing", []core.IndexedRecord{
		record("r1", "chunk", 0, []float32{1, 0}),
	}))

	results, err := idx.Query(ctx, "testing", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "r1", results[0].Record.Id)
}
