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


// Package ingest contains the asynchronous half of the system: a
// bounded worker pool that drains the job queue and a per-job pipeline
// running load -> split -> embed -> upsert.
//
// Failure semantics: a stage failure aborts only that job's attempt and
// returns the job to the queue, which retries it up to the configured
// limit before dead-lettering. Failures are isolated per job; one bad
// document never stalls the pool.
//
// Shutdown is a graceful drain: cancelling the Run context stops new
// claims while in-flight jobs finish. There is no mid-job cancellation.
package ingest
