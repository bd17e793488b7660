// Package loop provides a single-threaded event loop. Functions posted to a
// Loop run one at a time, in posting order, each to completion before the
// next starts.
package loop

import (
	"context"
	"sync"

	"github.com/spiffcs/webtask/internal/transport"
)

// Ensure Loop implements transport.Dispatcher.
var _ transport.Dispatcher = (*Loop)(nil)

// Loop is a serial executor. Post never blocks; the queue is unbounded.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// New creates an idle loop.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn. It is safe to call from any goroutine, including from
// a function running on the loop.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued functions.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Run executes posted functions until ctx is done. Functions still queued
// when ctx ends are left unrun.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fn, ok := l.next()
			if !ok {
				break
			}
			fn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// RunPending executes whatever is queued, including anything posted while
// it runs, and returns the number of functions run.
func (l *Loop) RunPending() int {
	n := 0
	for {
		fn, ok := l.next()
		if !ok {
			return n
		}
		fn()
		n++
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}
