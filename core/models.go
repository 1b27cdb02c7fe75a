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


package core

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
)

// IngestionJob is the unit of work carried by the job queue.
// It points at an uploaded file on disk; the upload layer owns the file
// and must keep it readable until a worker has processed the job.
type IngestionJob struct {
	Id           string    `json:"id"`
	SourcePath   string    `json:"source_path"`
	OriginalName string    `json:"original_name"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
	Attempt      int       `json:"attempt"`
}

// NewIngestionJob creates a job for the file at sourcePath with a fresh ID.
func NewIngestionJob(sourcePath, originalName string) *IngestionJob {
	return &IngestionJob{
		Id:           uuid.NewString(),
		SourcePath:   sourcePath,
		OriginalName: originalName,
		EnqueuedAt:   time.Now().UTC(),
	}
}

// Page is one page of extracted document text. Index is zero-based.
type Page struct {
	Text  string
	Index int
}

// Document is the transient, page-structured form of one uploaded file.
// It exists only while a worker processes the corresponding job.
type Document struct {
	Source string
	Pages  []Page
}

// Chunk is a bounded window of one page's text. Adjacent chunks on the
// same page share Overlap characters of context. A chunk never spans
// two pages, so Source and PageIndex always identify its provenance.
type Chunk struct {
	Text       string
	Source     string
	PageIndex  int
	ChunkIndex int
	Overlap    int
}

// RecordMetadata is the citation metadata persisted with every indexed record.
type RecordMetadata struct {
	Source string `json:"source"`
	Page   int    `json:"page"`
}

// IndexedRecord is the durable (vector, text, metadata) tuple stored in a
// vector index collection. The vector is immutable once created.
type IndexedRecord struct {
	Id       string         `json:"id"`
	Vector   []float32      `json:"vector"`
	Text     string         `json:"text"`
	Metadata RecordMetadata `json:"metadata"`
}

// RecordIdFor derives a stable record ID from a chunk's provenance so that
// re-ingesting the same document overwrites records instead of duplicating
// them. The ID is a UUID in the RFC 4122 shape expected by vector stores,
// generated deterministically from (source, page, chunk).
func RecordIdFor(source string, pageIndex, chunkIndex int) string {
	h := fnv.New128a()
	h.Write([]byte(source))
	var idx [8]byte
	binary.LittleEndian.PutUint32(idx[0:4], uint32(pageIndex))
	binary.LittleEndian.PutUint32(idx[4:8], uint32(chunkIndex))
	h.Write(idx[:])
	sum := h.Sum(nil)
	return fmt.Sprintf("%x-%x-%x-%x-%x", sum[0:4], sum[4:6], sum[6:8], sum[8:10], sum[10:16])
}

// RecordFromChunk builds an IndexedRecord for a chunk and its embedding.
func RecordFromChunk(chunk Chunk, vector []float32) IndexedRecord {
	return IndexedRecord{
		Id:     RecordIdFor(chunk.Source, chunk.PageIndex, chunk.ChunkIndex),
		Vector: vector,
		Text:   chunk.Text,
		Metadata: RecordMetadata{
			Source: chunk.Source,
			Page:   chunk.PageIndex,
		},
	}
}

// RetrievalResult is one ranked hit from a vector index query.
type RetrievalResult struct {
	Record IndexedRecord `json:"record"`
	Score  float32       `json:"score"`
}

// Answer is the outcome of a retrieval-augmented query: the generated text
// plus the retrieved records it was grounded on, in ranked order.
type Answer struct {
	Text    string            `json:"answer"`
	Sources []RetrievalResult `json:"sources"`
}
