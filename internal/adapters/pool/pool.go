// Package pool runs a batch of independent tasks on a bounded set of worker
// goroutines.
//
// The recalculation pass uses it to process tenants concurrently without
// unbounded fan-out. Each task owns its own result slot, so aggregation needs
// no locking and no outcome can be lost or duplicated. Parallelism here is an
// optimization: with size 1 the pass degrades to a sequential loop with
// identical semantics.
package pool

import (
	"context"
	"sync"
	"time"

	"github.com/driftwatch/driftwatch/pkg/metrics"
)

// defaultSize bounds concurrency when the caller does not configure it.
const defaultSize = 4

// Task is one unit of batch work. Tasks must isolate their own failures;
// the pool never interprets them.
type Task func(ctx context.Context)

// Pool executes tasks with bounded concurrency.
type Pool struct {
	size int
}

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithSize sets the number of concurrent workers.
func WithSize(size int) Option {
	return func(p *Pool) {
		if size > 0 {
			p.size = size
		}
	}
}

// New creates a Pool.
func New(opts ...Option) *Pool {
	p := &Pool{size: defaultSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns the configured worker count.
func (p *Pool) Size() int {
	return p.size
}

// Run executes every task and blocks until all have finished. The batch
// always runs to completion: ctx is forwarded to tasks, never used to
// abandon undispatched work, so every task gets exactly one execution.
func (p *Pool) Run(ctx context.Context, tasks []Task) {
	if len(tasks) == 0 {
		return
	}

	workers := p.size
	if workers > len(tasks) {
		workers = len(tasks)
	}
	metrics.UpdateBatchWorkerCount(workers)

	taskCh := make(chan Task)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for task := range taskCh {
				start := time.Now()
				task(ctx)
				metrics.RecordBatchTaskLatency(float64(time.Since(start).Milliseconds()))
			}
		}()
	}

	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)
	wg.Wait()
}
