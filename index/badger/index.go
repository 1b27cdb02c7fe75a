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


package badger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/inkwelldocs/inkwell/core"
	"github.com/inkwelldocs/inkwell/index"
)

// Key layout:
//
//	meta:{collection}         vector dimension, big-endian uint32
//	seq:{collection}          insertion counter, big-endian uint64
//	rec:{collection}:{id}     storedRecord JSON
const (
	metaPrefix   = "meta:"
	seqPrefix    = "seq:"
	recordPrefix = "rec:"
)

// Index implements index.VectorIndex on an embedded BadgerDB with a
// brute-force cosine scan. It suits single-node deployments and tests;
// larger corpora belong on the Qdrant backend.
type Index struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ index.VectorIndex = (*Index)(nil)

// storedRecord wraps a record with its insertion sequence number, which
// breaks ranking ties to keep retrieval deterministic. Re-upserting an
// existing ID keeps the original sequence.
type storedRecord struct {
	Record core.IndexedRecord `json:"record"`
	Seq    uint64             `json:"seq"`
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a BadgerDB-backed index at the specified path, creating
// the directory if needed. Pass inMemory=true for an ephemeral index.
func Open(filePath string, inMemory bool) (*Index, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger index: %w", core.ErrIndexUnavailable, err)
	}

	return &Index{
		db:     db,
		logger: slog.Default().With("component", "badger-index"),
	}, nil
}

// Close closes the underlying database.
func (i *Index) Close() error {
	return i.db.Close()
}

// EnsureCollection records the collection's dimension if absent and
// verifies it if present.
func (i *Index) EnsureCollection(ctx context.Context, name string, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: dimension %d must be positive", core.ErrInvalidConfiguration, dimension)
	}

	return i.db.Update(func(tx *badger.Txn) error {
		return ensureCollection(tx, name, dimension)
	})
}

func ensureCollection(tx *badger.Txn, name string, dimension int) error {
	key := []byte(metaPrefix + name)
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		var buf [4]byte
		binary.BigEndian.PutUint32(buf[:], uint32(dimension))
		return tx.Set(key, buf[:])
	}
	if err != nil {
		return err
	}

	var existing int
	err = item.Value(func(val []byte) error {
		existing = int(binary.BigEndian.Uint32(val))
		return nil
	})
	if err != nil {
		return err
	}
	if existing != dimension {
		return fmt.Errorf("%w: collection %q has dimension %d, want %d",
			core.ErrDimensionMismatch, name, existing, dimension)
	}
	return nil
}

// Upsert writes the batch inside one read-write transaction, which is
// what makes it all-or-nothing. The collection is created lazily from
// the first record's dimension.
func (i *Index) Upsert(ctx context.Context, collection string, records []core.IndexedRecord) error {
	if len(records) == 0 {
		return nil
	}
	for idx := range records {
		if err := core.ValidateRecord(&records[idx]); err != nil {
			return err
		}
	}

	err := i.db.Update(func(tx *badger.Txn) error {
		if err := ensureCollection(tx, collection, len(records[0].Vector)); err != nil {
			return err
		}

		seq, err := readSeq(tx, collection)
		if err != nil {
			return err
		}

		for _, rec := range records {
			key := []byte(recordPrefix + collection + ":" + rec.Id)

			stored := storedRecord{Record: rec}
			existing, err := tx.Get(key)
			switch {
			case err == nil:
				// Keep the original insertion sequence on overwrite.
				var prev storedRecord
				if err := existing.Value(func(val []byte) error {
					return json.Unmarshal(val, &prev)
				}); err != nil {
					return err
				}
				stored.Seq = prev.Seq
			case errors.Is(err, badger.ErrKeyNotFound):
				seq++
				stored.Seq = seq
			default:
				return err
			}

			payload, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			if err := tx.Set(key, payload); err != nil {
				return err
			}
		}

		return writeSeq(tx, collection, seq)
	})
	if err != nil {
		if errors.Is(err, core.ErrDimensionMismatch) {
			return err
		}
		return fmt.Errorf("%w: upsert %d records into %q: %w",
			core.ErrIndexUnavailable, len(records), collection, err)
	}

	i.logger.Debug("records upserted", "collection", collection, "count", len(records))
	return nil
}

// Query scans the collection and ranks every record by cosine
// similarity, breaking ties by insertion order. A missing collection
// yields an empty result.
func (i *Index) Query(ctx context.Context, collection string, vector []float32, k int) ([]core.RetrievalResult, error) {
	if k <= 0 {
		return nil, nil
	}

	var hits []storedRecord

	err := i.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recordPrefix + collection + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var stored storedRecord
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			})
			if err != nil {
				return err
			}
			hits = append(hits, stored)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: scan %q: %w", core.ErrIndexUnavailable, collection, err)
	}

	results := make([]core.RetrievalResult, 0, len(hits))
	for _, hit := range hits {
		results = append(results, core.RetrievalResult{
			Record: hit.Record,
			Score:  cosineSimilarity(vector, hit.Record.Vector),
		})
	}

	seqOf := make(map[string]uint64, len(hits))
	for _, hit := range hits {
		seqOf[hit.Record.Id] = hit.Seq
	}
	slices.SortFunc(results, func(a, b core.RetrievalResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		// Equal scores: earlier insertion wins.
		if seqOf[a.Record.Id] < seqOf[b.Record.Id] {
			return -1
		}
		if seqOf[a.Record.Id] > seqOf[b.Record.Id] {
			return 1
		}
		return 0
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

func readSeq(tx *badger.Txn, collection string) (uint64, error) {
	item, err := tx.Get([]byte(seqPrefix + collection))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var seq uint64
	err = item.Value(func(val []byte) error {
		seq = binary.BigEndian.Uint64(val)
		return nil
	})
	return seq, err
}

func writeSeq(tx *badger.Txn, collection string, seq uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	return tx.Set([]byte(seqPrefix+collection), buf[:])
}

// cosineSimilarity compares vectors regardless of magnitude. Mismatched
// lengths score zero; such records belong to another embedding epoch.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
