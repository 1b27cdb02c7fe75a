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

import "errors"

// Failure taxonomy shared across the pipeline. Components wrap these
// sentinels with fmt.Errorf("%w: ...") so callers can classify failures
// with errors.Is without depending on a concrete backend.
var (
	// ErrQueueUnavailable indicates the job queue's backing store cannot be reached.
	ErrQueueUnavailable = errors.New("job queue unavailable")

	// ErrUnreadableSource indicates a source file is missing, corrupt,
	// or of an unsupported type.
	ErrUnreadableSource = errors.New("unreadable source document")

	// ErrInvalidConfiguration indicates a component was configured with
	// values that violate its preconditions.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmbeddingProvider indicates the embedding service failed.
	// Embedding failures always propagate; a silently substituted vector
	// would poison retrieval quality.
	ErrEmbeddingProvider = errors.New("embedding provider failure")

	// ErrDimensionMismatch indicates a collection already exists with a
	// different vector dimension.
	ErrDimensionMismatch = errors.New("collection dimension mismatch")

	// ErrIndexUnavailable indicates the vector index cannot be reached.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrGenerationProvider indicates the generative completion service failed.
	ErrGenerationProvider = errors.New("generation provider failure")
)

// Domain validation errors
var (
	// ErrInvalidJob indicates an IngestionJob failed validation.
	ErrInvalidJob = errors.New("invalid ingestion job")

	// ErrEmptySourcePath indicates a job's SourcePath field is empty.
	ErrEmptySourcePath = errors.New("source path cannot be empty")

	// ErrInvalidRecord indicates an IndexedRecord failed validation.
	ErrInvalidRecord = errors.New("invalid indexed record")

	// ErrEmptyVector indicates a record has no embedding vector.
	ErrEmptyVector = errors.New("vector cannot be empty")

	// ErrEmptyText indicates a record has no text content.
	ErrEmptyText = errors.New("text cannot be empty")
)
