// Package taskpool implements the bounded worker pool the orchestrator
// (C6) dispatches run-generation and merge tasks onto: a counting
// semaphore paired with a WaitGroup, grounded on the reference project's
// own parallel-task manager. It schedules bare functions; the
// orchestrator's own completion protocol (tagged messages, not return
// values) is layered on top by the caller.
package taskpool

import (
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Task is a unit of work submitted to a Pool.
type Task func() error

// Pool bounds how many Tasks run concurrently. The zero value is not
// usable; construct with New.
type Pool struct {
	wg        sync.WaitGroup
	semaphore chan struct{}

	mu   sync.Mutex
	errs *multierror.Error
}

// New returns a Pool that runs at most workerCount Tasks concurrently.
func New(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{semaphore: make(chan struct{}, workerCount)}
}

// Go submits fn to run once a slot is free. Go itself may block until a
// slot opens; it does not block until fn completes.
func (p *Pool) Go(fn Task) {
	p.semaphore <- struct{}{}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() { <-p.semaphore }()
		if err := fn(); err != nil {
			p.mu.Lock()
			p.errs = multierror.Append(p.errs, err)
			p.mu.Unlock()
		}
	}()
}

// Wait blocks until every submitted Task has returned, then returns the
// aggregated error (nil if every Task succeeded).
func (p *Pool) Wait() error {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.errs == nil {
		return nil
	}
	return p.errs.ErrorOrNil()
}

// Size reports the pool's concurrency limit.
func (p *Pool) Size() int {
	return cap(p.semaphore)
}
