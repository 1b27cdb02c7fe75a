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


package index

import (
	"context"

	"github.com/inkwelldocs/inkwell/core"
)

// VectorIndex is the durable store of (vector, text, metadata) tuples,
// partitioned into named collections. Implementations must be safe for
// concurrent use; workers and query handlers share one instance.
type VectorIndex interface {
	// EnsureCollection creates the collection with the given vector
	// dimension if it does not exist. Idempotent; returns an error
	// wrapping core.ErrDimensionMismatch if the collection exists with
	// a different dimension.
	EnsureCollection(ctx context.Context, name string, dimension int) error

	// Upsert writes a batch of records into the collection. The batch
	// is all-or-nothing at this boundary: on error, no record of the
	// batch may be reported as committed. Returns an error wrapping
	// core.ErrIndexUnavailable on transport failure.
	Upsert(ctx context.Context, collection string, records []core.IndexedRecord) error

	// Query returns up to k records nearest to the vector, ranked by
	// descending similarity with ties broken by insertion order. A
	// missing collection or one holding fewer than k records yields a
	// short or empty result, not an error.
	Query(ctx context.Context, collection string, vector []float32, k int) ([]core.RetrievalResult, error)

	// Close releases backend resources.
	Close() error
}
