// Package worker runs blocking engine calls on a fixed pool so a slow
// upstream call never stalls the request dispatcher.
package worker

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// ErrQueueFull signals the bounded queue rejected the task; callers shed
// load instead of blocking.
var ErrQueueFull = errors.New("worker queue full")

// ErrStopped signals a submission after Stop
var ErrStopped = errors.New("worker pool stopped")

type task struct {
	ctx  context.Context
	run  func()
	done chan struct{}
	ran  bool
}

// Pool is a fixed-size worker pool with a bounded queue
type Pool struct {
	tasks    chan *task
	workers  int
	wg       sync.WaitGroup
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
	logger   zerolog.Logger
}

// New creates a pool with the given worker count and queue depth
func New(workers, queueDepth int) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if queueDepth <= 0 {
		queueDepth = workers * 4
	}

	return &Pool{
		tasks:   make(chan *task, queueDepth),
		workers: workers,
		logger:  zerolog.New(os.Stdout).With().Timestamp().Logger(),
	}
}

// Start launches the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info().Int("workers", p.workers).Msg("Worker pool started")
}

// Stop drains the pool and waits for in-flight tasks. Submissions after
// Stop fail with ErrStopped.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
		close(p.tasks)
		p.wg.Wait()
		p.logger.Info().Msg("Worker pool stopped")
	})
}

// QueueLen returns the number of queued tasks
func (p *Pool) QueueLen() int {
	return len(p.tasks)
}

// Do submits fn and blocks until it has run or ctx is done. Returns
// ErrQueueFull without blocking when the queue is at capacity. A task
// whose context is already cancelled when dequeued is skipped.
func (p *Pool) Do(ctx context.Context, fn func()) error {
	t := &task{ctx: ctx, run: fn, done: make(chan struct{})}

	// The read lock holds off Stop closing the channel mid-send
	p.mu.RLock()
	if p.stopped {
		p.mu.RUnlock()
		return ErrStopped
	}
	select {
	case p.tasks <- t:
		p.mu.RUnlock()
	default:
		p.mu.RUnlock()
		return ErrQueueFull
	}

	select {
	case <-t.done:
		if !t.ran {
			return t.ctx.Err()
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for t := range p.tasks {
		if t.ctx.Err() == nil {
			t.ran = true
			t.run()
		}
		close(t.done)
	}
}
