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


package ingest

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/inkwelldocs/inkwell/queue"
)

// DefaultConcurrency is the default worker pool width.
const DefaultConcurrency = 100

// Pool drains the job queue with a bounded set of workers. Each worker
// processes one job to completion before claiming the next; workers
// share nothing but the injected queue and index clients, both of which
// are safe under concurrent use.
type Pool struct {
	queue    queue.Queue
	pipeline *Pipeline
	workers  *ants.Pool
	logger   *slog.Logger
	inFlight sync.WaitGroup
}

// Option configures a Pool.
type Option func(*Pool) error

// WithConcurrency sets the worker pool width.
// Default is DefaultConcurrency.
func WithConcurrency(size int) Option {
	return func(p *Pool) error {
		if size < 1 {
			size = 1
		}

		if p.workers != nil {
			p.workers.Release()
		}

		workers, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.workers = workers
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPool creates a worker pool draining jobs from q through pipeline.
func NewPool(q queue.Queue, pipeline *Pipeline, opts ...Option) (*Pool, error) {
	if q == nil {
		return nil, ErrQueueRequired
	}
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}

	workers, err := ants.NewPool(DefaultConcurrency)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		queue:    q,
		pipeline: pipeline,
		workers:  workers,
		logger:   slog.Default().With("component", "ingest-pool"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Run claims jobs until ctx is cancelled, then drains: no new claims
// are made and in-flight jobs run to completion. Jobs are never
// cancelled mid-flight; an interrupted worker's claim would simply
// expire and redeliver.
func (p *Pool) Run(ctx context.Context) error {
	p.logger.Info("worker pool started", "concurrency", p.workers.Cap())

	for {
		if ctx.Err() != nil {
			break
		}

		delivery, err := p.queue.Dequeue(ctx)
		if errors.Is(err, queue.ErrEmpty) {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}
		if err != nil {
			p.logger.Error("error claiming job", "err", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		p.inFlight.Add(1)
		submitErr := p.workers.Submit(func() {
			defer p.inFlight.Done()
			p.handle(delivery)
		})
		if submitErr != nil {
			p.inFlight.Done()
			p.logger.Error("error submitting job to pool", "job", delivery.Job.Id, "err", submitErr)
			p.settleNack(delivery, submitErr)
		}
	}

	p.logger.Info("worker pool draining")
	p.inFlight.Wait()
	p.logger.Info("worker pool stopped")
	return nil
}

// handle runs one claimed job. Processing uses a fresh context: a
// drain must not abort jobs that are already running.
func (p *Pool) handle(delivery *queue.Delivery) {
	ctx := context.Background()
	job := delivery.Job

	if err := p.pipeline.Process(ctx, job); err != nil {
		p.logger.Error("job attempt failed",
			"job", job.Id,
			"file", job.OriginalName,
			"attempt", job.Attempt,
			"err", err)
		p.settleNack(delivery, err)
		return
	}

	if err := delivery.Ack(ctx); err != nil {
		// The claim will expire and the job will rerun; upserts are
		// idempotent so the rerun converges.
		p.logger.Error("error acknowledging job", "job", job.Id, "err", err)
	}
}

func (p *Pool) settleNack(delivery *queue.Delivery, cause error) {
	if err := delivery.Nack(context.Background(), cause); err != nil {
		p.logger.Error("error returning job to queue", "job", delivery.Job.Id, "err", err)
	}
}

// Release frees the worker pool. The pool should not be used after
// calling Release.
func (p *Pool) Release() {
	if p.workers != nil {
		p.workers.Release()
	}
}
