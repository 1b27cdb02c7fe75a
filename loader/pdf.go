package loader

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"

	"github.com/inkwelldocs/inkwell/core"
)

// PDF extracts one core.Page per PDF page.
type PDF struct {
	logger *slog.Logger
}

// NewPDF creates a PDF loader.
func NewPDF() *PDF {
	return &PDF{logger: slog.Default().With("component", "pdf-loader")}
}

var _ Loader = (*PDF)(nil)

// Load opens the PDF at path and extracts the plain text of every page.
// Pages the library cannot decode fail the whole load; a document indexed
// with silently missing pages would be unciteable.
func (p *PDF) Load(ctx context.Context, path string) ([]core.Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", core.ErrUnreadableSource, path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]core.Page, 0, total)

	for num := 1; num <= total; num++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: extract page %d of %s: %w", core.ErrUnreadableSource, num, path, err)
		}

		pages = append(pages, core.Page{Text: text, Index: num - 1})
	}

	p.logger.Debug("extracted pdf", "path", path, "pages", len(pages))
	return pages, nil
}
