// Copyright 2026 Inkwell Documents
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/inkwelldocs/inkwell/core"
)

// Loader extracts page-structured text from a source file. Loading is
// side-effect-free beyond reading the file; the upload layer owns the
// file's lifecycle.
type Loader interface {
	// Load reads the file at path and returns its pages in order.
	// Returns an error wrapping core.ErrUnreadableSource if the file is
	// missing, corrupt, or of an unsupported type.
	Load(ctx context.Context, path string) ([]core.Page, error)
}

// Registry selects a Loader by file extension. The zero value is empty;
// use NewRegistry for the default set of formats.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry creates a registry with the built-in loaders: PDF for
// .pdf, plain text for .txt and .md.
func NewRegistry() *Registry {
	r := &Registry{loaders: make(map[string]Loader)}
	r.Register(".pdf", NewPDF())
	text := NewText()
	r.Register(".txt", text)
	r.Register(".md", text)
	return r
}

// Register maps a file extension (with leading dot, case-insensitive)
// to a loader, replacing any previous mapping.
func (r *Registry) Register(ext string, l Loader) {
	if r.loaders == nil {
		r.loaders = make(map[string]Loader)
	}
	r.loaders[strings.ToLower(ext)] = l
}

// Load dispatches to the loader registered for the path's extension.
func (r *Registry) Load(ctx context.Context, path string) ([]core.Page, error) {
	ext := strings.ToLower(filepath.Ext(path))
	l, ok := r.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %q", core.ErrUnreadableSource, ext)
	}
	return l.Load(ctx, path)
}

var _ Loader = (*Registry)(nil)
