// Package gather executes batches of independent fetch tasks with a
// concurrency ceiling. Tasks are partitioned into consecutive chunks;
// each chunk runs concurrently and the scheduler cools down between
// chunks so a single configured rate budget governs all fan-out
// traffic of a harvest run.
package gather

import (
	"context"
	"time"

	"github.com/altum-labs/docharvest/internal/logger"
)

const (
	// DefaultChunkSize is the number of tasks run concurrently per chunk.
	DefaultChunkSize = 100

	// DefaultCooldown is the pause between consecutive chunks.
	DefaultCooldown = time.Second
)

// Task is one independent unit of work. Implementations only read
// their own closure state and must honour ctx cancellation at their
// suspension points.
type Task[T any] func(ctx context.Context) (T, error)

// Result pairs a task's value with its error. Results[i] always
// corresponds to tasks[i].
type Result[T any] struct {
	Value T
	Err   error
}

// Policy selects how task failures are handled.
type Policy int

const (
	// Collect records per-task errors and keeps going; the batch
	// always runs to completion.
	Collect Policy = iota

	// FailFast propagates the first error (lowest task index) and
	// stops scheduling further chunks. In-flight tasks of the failing
	// chunk are allowed to finish.
	FailFast
)

// Options tune a Throttled run. Zero values fall back to defaults.
type Options struct {
	// ChunkSize caps how many tasks run concurrently.
	ChunkSize int

	// Cooldown is the wait after every completed chunk except the last.
	Cooldown time.Duration

	// Policy selects fail-fast or collect error handling.
	Policy Policy
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Cooldown <= 0 {
		o.Cooldown = DefaultCooldown
	}
	return o
}

// Throttled runs all tasks under the chunking cap and returns their
// results in input order. Under Collect the returned error is only a
// context error; per-task failures are in the results. Under FailFast
// the first task error is returned and the remaining tasks keep their
// zero Result with Err set to the context's cancellation cause.
func Throttled[T any](ctx context.Context, tasks []Task[T], opts Options) ([]Result[T], error) {
	opts = opts.withDefaults()
	results := make([]Result[T], len(tasks))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var firstErr error
	for start := 0; start < len(tasks); start += opts.ChunkSize {
		end := start + opts.ChunkSize
		if end > len(tasks) {
			end = len(tasks)
		}

		if err := runCtx.Err(); err != nil {
			markSkipped(results[start:end], err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		runChunk(runCtx, tasks[start:end], results[start:end])

		if opts.Policy == FailFast {
			for i := start; i < end; i++ {
				if results[i].Err != nil {
					firstErr = results[i].Err
					cancel()
					break
				}
			}
		}

		if end < len(tasks) && runCtx.Err() == nil {
			logger.Debug("gather: chunk of %d done, cooling down %s", end-start, opts.Cooldown)
			if err := sleep(runCtx, opts.Cooldown); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	if opts.Policy == FailFast && firstErr != nil {
		return results, firstErr
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// runChunk executes one chunk's tasks concurrently. Each task writes
// only its own result slot, so no further synchronisation is needed
// beyond the completion channel.
func runChunk[T any](ctx context.Context, tasks []Task[T], results []Result[T]) {
	done := make(chan struct{})
	for i := range tasks {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			value, err := tasks[i](ctx)
			results[i] = Result[T]{Value: value, Err: err}
		}(i)
	}
	for range tasks {
		<-done
	}
}

func markSkipped[T any](results []Result[T], err error) {
	for i := range results {
		results[i].Err = err
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
