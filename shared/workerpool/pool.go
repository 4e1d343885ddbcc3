// Package workerpool runs CPU-heavy jobs on a fixed number of goroutines so
// request handlers cannot saturate every core at once.
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var ErrClosed = errors.New("worker pool is closed")

type job struct {
	fn   func() error
	done chan error
}

// Pool is a fixed-size set of workers fed through an unbuffered queue.
type Pool struct {
	jobs chan job
	quit chan struct{}
	wg   sync.WaitGroup

	closeOnce sync.Once
	busy      atomic.Int64
}

// New starts size workers. A non-positive size means one worker.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		jobs: make(chan job),
		quit: make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case j := <-p.jobs:
			p.busy.Add(1)
			j.done <- j.fn()
			p.busy.Add(-1)
		}
	}
}

// Do hands fn to a free worker and waits for its result. If ctx ends before
// a worker picks the job up, Do returns ctx.Err() and fn never runs. Once
// started, fn runs to completion.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	j := job{fn: fn, done: make(chan error, 1)}

	select {
	case <-p.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case p.jobs <- j:
	}

	return <-j.done
}

// Busy reports how many workers are running a job right now.
func (p *Pool) Busy() int {
	return int(p.busy.Load())
}

// Close stops the workers after their current job. Safe to call twice.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}
