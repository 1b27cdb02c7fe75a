package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwelldocs/inkwell/core"
)

func TestTextLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello inkwell"), 0o644))

	pages, err := NewText().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "hello inkwell", pages[0].Text)
	assert.Equal(t, 0, pages[0].Index)
}

func TestTextLoadMissingFile(t *testing.T) {
	_, err := NewText().Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, core.ErrUnreadableSource)
}

func TestPDFLoadMissingFile(t *testing.T) {
	_, err := NewPDF().Load(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, core.ErrUnreadableSource)
}

func TestPDFLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garbage.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

	_, err := NewPDF().Load(context.Background(), path)
	assert.ErrorIs(t, err, core.ErrUnreadableSource)
}

func TestRegistryDispatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "readme.MD")
	require.NoError(t, os.WriteFile(path, []byte("# title"), 0o644))

	r := NewRegistry()
	pages, err := r.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "# title", pages[0].Text)
}

func TestRegistryUnsupportedExtension(t *testing.T) {
	r := NewRegistry()
	_, err := r.Load(context.Background(), "archive.zip")
	assert.ErrorIs(t, err, core.ErrUnreadableSource)
}

func TestRegistryRegisterOverride(t *testing.T) {
	r := NewRegistry()
	r.Register(".pdf", NewText())

	dir := t.TempDir()
	path := filepath.Join(dir, "plain.pdf")
	require.NoError(t, os.WriteFile(path, []byte("pretend pdf"), 0o644))

	pages, err := r.Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "pretend pdf", pages[0].Text)
}

func TestTextLoadCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewText().Load(ctx, "whatever.txt")
	assert.ErrorIs(t, err, context.Canceled)
}
