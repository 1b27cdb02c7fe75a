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


package chunk

import (
	"fmt"

	"github.com/inkwelldocs/inkwell/core"
)

const (
	// DefaultSize is the default chunk width in characters.
	DefaultSize = 1000

	// DefaultOverlap is the default shared context between adjacent chunks.
	DefaultOverlap = 200
)

// Splitter cuts page text into overlapping fixed-size windows. It is a
// pure function of its inputs: the same pages and settings always produce
// the same chunks.
type Splitter struct {
	size    int
	overlap int
}

// New creates a Splitter. Overlap must be smaller than size; a window
// that advances by size-overlap characters would otherwise never make
// progress.
func New(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be greater than zero", core.ErrInvalidConfiguration, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap %d cannot be negative", core.ErrInvalidConfiguration, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than size %d", core.ErrInvalidConfiguration, overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Size returns the configured chunk width.
func (s *Splitter) Size() int { return s.size }

// Overlap returns the configured overlap width.
func (s *Splitter) Overlap() int { return s.overlap }

// Split walks each page's text in a sliding window of the configured
// size, advancing by size-overlap. Offsets are counted in runes, never
// bytes, so a window boundary cannot tear a multi-byte character. The
// final partial window of a page is emitted as-is. Chunks never cross
// page boundaries, so every chunk's provenance is exactly one page.
// Empty pages produce no chunks.
//
// For a page of length L runes the number of chunks is
// ceil((L-overlap)/(size-overlap)), or exactly one when L <= size.
func (s *Splitter) Split(doc *core.Document) []core.Chunk {
	if doc == nil {
		return nil
	}

	step := s.size - s.overlap
	var chunks []core.Chunk

	for _, page := range doc.Pages {
		if page.Text == "" {
			continue
		}
		text := []rune(page.Text)

		chunkIndex := 0
		for start := 0; ; start += step {
			end := start + s.size
			if end > len(text) {
				end = len(text)
			}

			overlap := s.overlap
			if chunkIndex == 0 {
				overlap = 0
			}

			chunks = append(chunks, core.Chunk{
				Text:       string(text[start:end]),
				Source:     doc.Source,
				PageIndex:  page.Index,
				ChunkIndex: chunkIndex,
				Overlap:    overlap,
			})
			chunkIndex++

			if end == len(text) {
				break
			}
		}
	}

	return chunks
}
