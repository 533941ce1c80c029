// Package workers manages the agent's background jobs. It defines the
// Worker interface and a Workers aggregate that runs every registered
// worker on its own goroutine under a shared cancellation context.
package workers

import (
	"context"
	"sync"
)

// Worker is a long-running background job. Run blocks until ctx is
// cancelled.
type Worker interface {
	Run(ctx context.Context)
}

// Workers runs a set of workers and waits for all of them to stop.
type Workers struct {
	workers []Worker
	wg      sync.WaitGroup
}

// NewWorkers aggregates the given workers.
func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Run starts every worker on its own goroutine. It returns immediately;
// use Wait to block until all workers have observed ctx cancellation.
func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		w.wg.Add(1)
		go func(worker Worker) {
			defer w.wg.Done()
			worker.Run(ctx)
		}(worker)
	}
}

// Wait blocks until every started worker has returned.
func (w *Workers) Wait() {
	w.wg.Wait()
}
