// Package transporttest provides a scripted transport.Transport whose
// exchanges are resolved by hand, for tests that need to control when and
// whether a response arrives.
package transporttest

import (
	"context"
	"sync"

	"github.com/spiffcs/webtask/internal/transport"
)

// Ensure Recorder implements transport.Transport.
var _ transport.Transport = (*Recorder)(nil)

// Call is one recorded exchange.
type Call struct {
	Request transport.Request
	Ctx     context.Context

	done     func(transport.Result)
	mu       sync.Mutex
	resolved bool
}

// Resolve delivers res to the waiting callback. Only the first call has any
// effect, as with a real transport.
func (c *Call) Resolve(res transport.Result) {
	c.mu.Lock()
	if c.resolved {
		c.mu.Unlock()
		return
	}
	c.resolved = true
	c.mu.Unlock()
	c.done(res)
}

// Resolved reports whether Resolve has been called.
func (c *Call) Resolved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved
}

// Recorder records every Do call and never resolves by itself.
type Recorder struct {
	mu    sync.Mutex
	calls []*Call
}

// Do records the exchange.
func (r *Recorder) Do(ctx context.Context, req transport.Request, done func(transport.Result)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, &Call{Request: req, Ctx: ctx, done: done})
}

// Calls returns the recorded exchanges in order.
func (r *Recorder) Calls() []*Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Last returns the most recent exchange, or nil.
func (r *Recorder) Last() *Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}
