// internal/worker/pool.go
package worker

import (
	"context"
	"sync"
)

// Pool bounds how many tasks run at once
type Pool struct {
	wg      sync.WaitGroup
	workers chan struct{}
}

// NewPool creates a pool that runs at most size tasks concurrently
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		workers: make(chan struct{}, size),
	}
}

// Size returns the concurrency limit
func (p *Pool) Size() int {
	return cap(p.workers)
}

// Do runs task on the calling goroutine once a worker slot is free.
// It returns ctx.Err() without running task if ctx ends first.
func (p *Pool) Do(ctx context.Context, task func()) error {
	if err := p.acquire(ctx); err != nil {
		return err
	}
	defer p.release()

	task()
	return nil
}

// Submit runs task in a new goroutine once a worker slot is free. It blocks
// while the pool is full and gives up when ctx ends.
func (p *Pool) Submit(ctx context.Context, task func()) error {
	if err := p.acquire(ctx); err != nil {
		return err
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.release()

		task()
	}()
	return nil
}

// Wait waits for all submitted tasks to complete
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) acquire(ctx context.Context) error {
	select {
	case p.workers <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) release() {
	<-p.workers
}
