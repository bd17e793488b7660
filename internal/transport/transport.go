// Package transport is the network surface consumed by request tasks: one
// asynchronous exchange per call, resolved later through a callback.
package transport

import "context"

// Request is one HTTP-like exchange to issue.
type Request struct {
	Method string
	URL    string
	Header map[string]string
	Body   string
}

// Result is what the transport delivers. Err is set on transport-level
// failure, in which case the other fields are zero.
type Result struct {
	Status int
	Header map[string]string
	Body   string
	Err    error
}

// Transport issues requests. Do must not block; done is called once, later,
// on whatever the implementation defines as its delivery context.
type Transport interface {
	Do(ctx context.Context, req Request, done func(Result))
}

// Dispatcher runs callbacks on an event loop.
type Dispatcher interface {
	Post(fn func())
}

// DispatchFunc adapts a function to a Dispatcher.
type DispatchFunc func(fn func())

// Post calls f(fn).
func (f DispatchFunc) Post(fn func()) {
	f(fn)
}

// inline runs callbacks on the calling goroutine.
var inline = DispatchFunc(func(fn func()) { fn() })
