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

import "fmt"

// ValidateJob validates an IngestionJob before it is enqueued.
//
// Validation rules:
//   - SourcePath must not be empty
//   - Attempt must not be negative
//
// NOT validated:
//   - Id (assigned by NewIngestionJob or the queue backend)
//   - OriginalName (informational only, used for operator reporting)
func ValidateJob(job *IngestionJob) error {
	if job == nil {
		return fmt.Errorf("%w: job is nil", ErrInvalidJob)
	}

	if job.SourcePath == "" {
		return fmt.Errorf("%w: %w", ErrInvalidJob, ErrEmptySourcePath)
	}

	if job.Attempt < 0 {
		return fmt.Errorf("%w: attempt count %d is negative", ErrInvalidJob, job.Attempt)
	}

	return nil
}

// ValidateRecord validates an IndexedRecord before it is upserted.
//
// Validation rules:
//   - Vector must not be empty
//   - Text must not be empty
func ValidateRecord(record *IndexedRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyVector)
	}

	if record.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyText)
	}

	return nil
}
