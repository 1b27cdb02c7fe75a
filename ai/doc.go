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


// Package ai defines the narrow capability interfaces for the external
// AI services the pipeline depends on: text embedding and generative
// completion. Both are treated as opaque, slow, network-bound providers
// with a prompt-in/result-out contract; nothing in the pipeline assumes
// a particular model, dimension, or vendor beyond what configuration
// supplies.
//
// The package is designed around three interfaces:
//
//   - Embedder: text to fixed-dimension vectors, single and batch forms
//   - Completer: system + user prompt to generated answer text
//   - Provider: aggregates both for initialization and lifecycle
//
// Implementation sub-packages:
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles with behavior injection
//
// Public constructors in ai/openai return interface types to prevent
// coupling to the concrete implementation; mock constructors return
// concrete types so tests can script behavior and assert call counts.
//
// One embedding-space epoch per deployment: the embedding model used at
// ingestion time must be the one used at query time. This is a documented
// precondition, not something the pipeline detects.
package ai
