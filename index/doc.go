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


// Package index defines the vector index abstraction the pipeline writes
// to at ingestion time and reads from at query time.
//
// Two backends implement it:
//
//   - index/qdrant: REST adapter for a Qdrant server, the deployment
//     default
//   - index/badger: embedded BadgerDB store with a brute-force cosine
//     scan, for single-node setups and tests
//
// Collections are created lazily on first upsert once the embedding
// dimension is known; this core never deletes a collection.
package index
