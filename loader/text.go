package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/inkwelldocs/inkwell/core"
)

// Text loads a plain-text file as a single page.
type Text struct{}

// NewText creates a plain-text loader.
func NewText() *Text {
	return &Text{}
}

var _ Loader = (*Text)(nil)

// Load reads the whole file as one page with index 0.
func (t *Text) Load(ctx context.Context, path string) ([]core.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrUnreadableSource, path, err)
	}

	return []core.Page{{Text: string(data), Index: 0}}, nil
}
