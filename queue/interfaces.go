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


package queue

import (
	"context"
	"errors"

	"github.com/inkwelldocs/inkwell/core"
)

// ErrEmpty is returned by Dequeue when no job became available within
// the backend's poll window. Callers poll again; it is not a failure.
var ErrEmpty = errors.New("no job available")

// Queue is the durable, at-least-once work channel between the upload
// front door and the worker pool. Enqueue returns as soon as durability
// is confirmed; it never waits for processing.
// Implementations must be safe for concurrent use.
type Queue interface {
	// Enqueue persists the job and makes it available to workers.
	// Returns the job ID, or an error wrapping core.ErrQueueUnavailable
	// if the backing store cannot be reached.
	Enqueue(ctx context.Context, job *core.IngestionJob) (string, error)

	// Dequeue claims the next job for exclusive processing. The claim
	// holds until the delivery is acknowledged or its visibility timeout
	// expires, after which the job is redelivered to another worker.
	// Returns ErrEmpty when no job is currently available.
	Dequeue(ctx context.Context) (*Delivery, error)

	// DeadLetters returns up to limit jobs that exhausted their retry
	// budget, most recent first, so an operator can inspect and replay.
	DeadLetters(ctx context.Context, limit int) ([]*core.IngestionJob, error)

	// Close releases the backend connection. In-flight claims are left
	// to expire and redeliver.
	Close() error
}

// Delivery is one claimed job together with its settlement handles.
// Exactly one of Ack or Nack should be called; a delivery that is never
// settled redelivers after the visibility timeout.
type Delivery struct {
	Job *core.IngestionJob

	ack  func(ctx context.Context) error
	nack func(ctx context.Context, cause error) error
}

// NewDelivery wires a claimed job to its backend settlement functions.
// Backends call this; consumers only use Ack and Nack.
func NewDelivery(
	job *core.IngestionJob,
	ack func(ctx context.Context) error,
	nack func(ctx context.Context, cause error) error,
) *Delivery {
	return &Delivery{Job: job, ack: ack, nack: nack}
}

// Ack confirms successful processing and destroys the job.
func (d *Delivery) Ack(ctx context.Context) error {
	return d.ack(ctx)
}

// Nack reports a failed attempt. The job is redelivered for another
// attempt, or dead-lettered once the retry limit is exhausted.
func (d *Delivery) Nack(ctx context.Context, cause error) error {
	return d.nack(ctx, cause)
}
