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


package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inkwelldocs/inkwell/core"
	"github.com/inkwelldocs/inkwell/queue"
)

const (
	defaultNamespace         = "inkwell"
	defaultMaxAttempts       = 3
	defaultVisibilityTimeout = 5 * time.Minute
	defaultPollInterval      = 250 * time.Millisecond
)

// Queue implements queue.Queue on Redis. Pending and processing jobs
// live in lists, claims in a sorted set scored by visibility deadline,
// and job payloads in per-job hashes. A background reaper returns
// expired claims to the pending list, which is what makes delivery
// at-least-once across worker crashes.
type Queue struct {
	client            *redis.Client
	namespace         string
	maxAttempts       int
	visibilityTimeout time.Duration
	pollInterval      time.Duration
	logger            *slog.Logger

	stopReaper chan struct{}
	reaperDone sync.WaitGroup
	closeOnce  sync.Once
}

var _ queue.Queue = (*Queue)(nil)

// Option configures a Queue.
type Option func(*Queue) error

// WithNamespace sets the key prefix shared by all queue structures.
// Default is "inkwell".
func WithNamespace(ns string) Option {
	return func(q *Queue) error {
		if ns == "" {
			return fmt.Errorf("%w: namespace cannot be empty", core.ErrInvalidConfiguration)
		}
		q.namespace = ns
		return nil
	}
}

// WithMaxAttempts sets the retry limit before a job is dead-lettered.
// Default is 3.
func WithMaxAttempts(n int) Option {
	return func(q *Queue) error {
		if n < 1 {
			return fmt.Errorf("%w: max attempts %d must be at least 1", core.ErrInvalidConfiguration, n)
		}
		q.maxAttempts = n
		return nil
	}
}

// WithVisibilityTimeout sets how long a claim holds before an unsettled
// job is redelivered. Default is 5 minutes; it should exceed the longest
// expected single-job processing time.
func WithVisibilityTimeout(d time.Duration) Option {
	return func(q *Queue) error {
		if d <= 0 {
			return fmt.Errorf("%w: visibility timeout must be positive", core.ErrInvalidConfiguration)
		}
		q.visibilityTimeout = d
		return nil
	}
}

// WithPollInterval sets how long Dequeue waits between checks when the
// pending list is empty. Default is 250ms.
func WithPollInterval(d time.Duration) Option {
	return func(q *Queue) error {
		if d <= 0 {
			return fmt.Errorf("%w: poll interval must be positive", core.ErrInvalidConfiguration)
		}
		q.pollInterval = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) error {
		if logger == nil {
			logger = slog.Default()
		}
		q.logger = logger
		return nil
	}
}

// New creates a Redis-backed queue on an injected client. The client's
// lifecycle belongs to the caller; Close stops the reaper but leaves the
// connection open for other components sharing it.
func New(client *redis.Client, opts ...Option) (*Queue, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}

	q := &Queue{
		client:            client,
		namespace:         defaultNamespace,
		maxAttempts:       defaultMaxAttempts,
		visibilityTimeout: defaultVisibilityTimeout,
		pollInterval:      defaultPollInterval,
		logger:            slog.Default().With("component", "redis-queue"),
		stopReaper:        make(chan struct{}),
	}

	for _, opt := range opts {
		if err := opt(q); err != nil {
			return nil, err
		}
	}

	q.reaperDone.Add(1)
	go q.reaperLoop()

	return q, nil
}

// Enqueue persists the job hash and pushes its ID onto the pending list
// in one transaction. Returns once Redis confirms the write.
func (q *Queue) Enqueue(ctx context.Context, job *core.IngestionJob) (string, error) {
	if err := core.ValidateJob(job); err != nil {
		return "", err
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("marshal job %s: %w", job.Id, err)
	}

	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.jobKey(job.Id), fieldPayload, payload, fieldAttempt, 0)
		pipe.LPush(ctx, q.pendingKey(), job.Id)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: enqueue %s: %w", core.ErrQueueUnavailable, job.Id, err)
	}

	q.logger.Info("job enqueued", "job", job.Id, "file", job.OriginalName)
	return job.Id, nil
}

// claimScript moves the next pending job into processing and records
// its visibility deadline in one atomic step. Without that atomicity a
// worker dying between the two writes would leave a processing entry
// the reaper never scans, stranding the job forever.
// KEYS: pending, processing, claims. ARGV: deadline millis.
var claimScript = redis.NewScript(`
local id = redis.call("LMOVE", KEYS[1], KEYS[2], "RIGHT", "LEFT")
if not id then
	return false
end
redis.call("ZADD", KEYS[3], ARGV[1], id)
return id
`)

// Dequeue claims the next pending job. The claim deadline lands in the
// same atomic script as the LMOVE, so a worker crash at any later point
// still leads to redelivery.
func (q *Queue) Dequeue(ctx context.Context) (*queue.Delivery, error) {
	deadline := time.Now().Add(q.visibilityTimeout)
	id, err := claimScript.Run(ctx, q.client,
		[]string{q.pendingKey(), q.processingKey(), q.claimsKey()},
		deadline.UnixMilli(),
	).Text()
	if errors.Is(err, redis.Nil) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(q.pollInterval):
			return nil, queue.ErrEmpty
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: claim: %w", core.ErrQueueUnavailable, err)
	}

	attempt, err := q.client.HIncrBy(ctx, q.jobKey(id), fieldAttempt, 1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: count attempt %s: %w", core.ErrQueueUnavailable, id, err)
	}

	job, err := q.readJob(ctx, id)
	if err != nil {
		return nil, err
	}
	job.Attempt = int(attempt)

	q.logger.Debug("job claimed", "job", id, "attempt", job.Attempt)

	return queue.NewDelivery(job,
		func(ctx context.Context) error { return q.ack(ctx, id) },
		func(ctx context.Context, cause error) error { return q.settle(ctx, job, cause) },
	), nil
}

// DeadLetters returns up to limit dead-lettered jobs, most recent first.
func (q *Queue) DeadLetters(ctx context.Context, limit int) ([]*core.IngestionJob, error) {
	if limit <= 0 {
		limit = 10
	}
	ids, err := q.client.LRange(ctx, q.deadKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: read dead letters: %w", core.ErrQueueUnavailable, err)
	}

	jobs := make([]*core.IngestionJob, 0, len(ids))
	for _, id := range ids {
		job, err := q.readJob(ctx, id)
		if err != nil {
			q.logger.Warn("dead-lettered job payload unreadable", "job", id, "err", err)
			continue
		}
		attempt, err := q.client.HGet(ctx, q.jobKey(id), fieldAttempt).Int()
		if err == nil {
			job.Attempt = attempt
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// Close stops the reaper. The Redis client is injected and stays open.
func (q *Queue) Close() error {
	q.closeOnce.Do(func() {
		close(q.stopReaper)
	})
	q.reaperDone.Wait()
	return nil
}

// ack destroys a settled job: claim, processing entry, and payload.
func (q *Queue) ack(ctx context.Context, id string) error {
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.processingKey(), 1, id)
		pipe.ZRem(ctx, q.claimsKey(), id)
		pipe.Del(ctx, q.jobKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: ack %s: %w", core.ErrQueueUnavailable, id, err)
	}
	q.logger.Debug("job acknowledged", "job", id)
	return nil
}

// settle handles a failed attempt: requeue while the retry budget lasts,
// dead-letter once it is exhausted.
func (q *Queue) settle(ctx context.Context, job *core.IngestionJob, cause error) error {
	causeText := "unknown"
	if cause != nil {
		causeText = cause.Error()
	}

	dead := job.Attempt >= q.maxAttempts
	destination := q.pendingKey()
	if dead {
		destination = q.deadKey()
	}

	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.processingKey(), 1, job.Id)
		pipe.ZRem(ctx, q.claimsKey(), job.Id)
		pipe.HSet(ctx, q.jobKey(job.Id), fieldLastError, causeText)
		pipe.LPush(ctx, destination, job.Id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: settle %s: %w", core.ErrQueueUnavailable, job.Id, err)
	}

	if dead {
		// Operator-facing report; dead letters are never silently dropped.
		q.logger.Error("job dead-lettered",
			"job", job.Id,
			"file", job.OriginalName,
			"attempts", job.Attempt,
			"last_error", causeText)
	} else {
		q.logger.Warn("job attempt failed, requeued",
			"job", job.Id,
			"attempt", job.Attempt,
			"err", causeText)
	}
	return nil
}

func (q *Queue) readJob(ctx context.Context, id string) (*core.IngestionJob, error) {
	payload, err := q.client.HGet(ctx, q.jobKey(id), fieldPayload).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: read job %s: %w", core.ErrQueueUnavailable, id, err)
	}

	var job core.IngestionJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		return nil, fmt.Errorf("unmarshal job %s: %w", id, err)
	}
	return &job, nil
}

// reaperLoop periodically returns expired claims to the pending list.
func (q *Queue) reaperLoop() {
	defer q.reaperDone.Done()

	interval := q.visibilityTimeout / 2
	if interval > 30*time.Second {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-q.stopReaper:
			return
		case <-ticker.C:
			if err := q.reclaimExpired(context.Background()); err != nil {
				q.logger.Error("error reclaiming expired jobs", "err", err)
			}
		}
	}
}

// reclaimExpired redelivers every claim whose visibility deadline has
// passed. ZRem arbitrates between concurrent reapers: whoever removes
// the claim owns the redelivery.
func (q *Queue) reclaimExpired(ctx context.Context) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	ids, err := q.client.ZRangeByScore(ctx, q.claimsKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: now,
	}).Result()
	if err != nil {
		return fmt.Errorf("%w: scan claims: %w", core.ErrQueueUnavailable, err)
	}

	for _, id := range ids {
		removed, err := q.client.ZRem(ctx, q.claimsKey(), id).Result()
		if err != nil {
			return fmt.Errorf("%w: release claim %s: %w", core.ErrQueueUnavailable, id, err)
		}
		if removed == 0 {
			continue
		}

		job, err := q.readJob(ctx, id)
		if err != nil {
			q.logger.Error("expired claim has unreadable payload", "job", id, "err", err)
			continue
		}
		attempt, err := q.client.HGet(ctx, q.jobKey(id), fieldAttempt).Int()
		if err == nil {
			job.Attempt = attempt
		}

		q.logger.Warn("claim expired, redelivering", "job", id, "attempt", job.Attempt)

		dead := job.Attempt >= q.maxAttempts
		destination := q.pendingKey()
		if dead {
			destination = q.deadKey()
		}
		_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.LRem(ctx, q.processingKey(), 1, id)
			pipe.HSet(ctx, q.jobKey(id), fieldLastError, "visibility timeout expired")
			pipe.LPush(ctx, destination, id)
			return nil
		})
		if err != nil {
			return fmt.Errorf("%w: redeliver %s: %w", core.ErrQueueUnavailable, id, err)
		}
		if dead {
			q.logger.Error("job dead-lettered after expired claim",
				"job", id,
				"file", job.OriginalName,
				"attempts", job.Attempt)
		}
	}

	return q.rearmOrphans(ctx)
}

// rearmOrphans gives a visibility deadline to any processing entry that
// has no claims member. Claims are written atomically with the LMOVE,
// so such entries only come from older deployments or manual surgery;
// re-arming them hands the job back to the normal expiry path instead
// of leaving it stranded in processing forever.
func (q *Queue) rearmOrphans(ctx context.Context) error {
	ids, err := q.client.LRange(ctx, q.processingKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("%w: scan processing: %w", core.ErrQueueUnavailable, err)
	}

	deadline := float64(time.Now().Add(q.visibilityTimeout).UnixMilli())
	for _, id := range ids {
		added, err := q.client.ZAddNX(ctx, q.claimsKey(), redis.Z{
			Score:  deadline,
			Member: id,
		}).Result()
		if err != nil {
			return fmt.Errorf("%w: rearm %s: %w", core.ErrQueueUnavailable, id, err)
		}
		if added > 0 {
			q.logger.Warn("processing entry had no claim, re-armed", "job", id)
		}
	}
	return nil
}
