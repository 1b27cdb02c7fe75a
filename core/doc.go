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


// Package core defines the domain model shared by every stage of the
// ingestion and retrieval pipeline, together with the failure taxonomy
// the stages report against.
//
// The model follows one uploaded file through the system:
//
//   - IngestionJob: queued pointer to an uploaded file
//   - Document / Page: transient page-structured text extracted by a loader
//   - Chunk: bounded, overlapping window of one page's text
//   - IndexedRecord: (vector, text, metadata) tuple persisted in a collection
//   - RetrievalResult / Answer: ranked hits and the composed query response
//
// The package has no dependencies on queue, index, or AI backends; those
// layers depend on core, never the other way around.
package core
