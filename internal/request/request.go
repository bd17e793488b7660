// Package request bridges one asynchronous network exchange into an
// application's message sink.
//
// Cancellation is best effort: the transport offers no abort, so Cancel
// only guarantees that the eventual response is discarded rather than
// delivered. The transfer itself keeps running and its bandwidth is not
// reclaimed.
package request

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/spiffcs/webtask/internal/log"
	"github.com/spiffcs/webtask/internal/task"
	"github.com/spiffcs/webtask/internal/transport"
)

// ErrMissingDependency is returned by Send when the transport, translator
// or sink is nil.
var ErrMissingDependency = errors.New("request: transport, translator and sink are required")

// Response is what a Translator receives. On transport failure Err is set
// and Status is zero; non-2xx statuses are ordinary responses.
type Response struct {
	Status int
	Header map[string]string
	Body   string
	Err    error
}

// OK reports whether the exchange completed with a 2xx status.
func (r Response) OK() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 300
}

// Translator turns a response into a message.
type Translator func(Response) task.Message

// Ensure Task implements task.Cancellable.
var _ task.Cancellable = (*Task)(nil)

// Task owns one outstanding request and delivers at most one message.
type Task struct {
	id        string
	desc      Descriptor
	translate Translator
	sink      task.Sink
	token     task.Token
}

// Send validates d, issues it through tr without blocking, and returns the
// task that will push exactly one message to sink when the exchange
// completes, unless cancelled first.
func Send(ctx context.Context, tr transport.Transport, d Descriptor, translate Translator, sink task.Sink) (*Task, error) {
	if tr == nil || translate == nil || sink == nil {
		return nil, ErrMissingDependency
	}
	if err := validateHeaders(d.Header); err != nil {
		return nil, err
	}
	if d.Method == "" {
		d.Method = http.MethodGet
	}
	d.Method = strings.ToUpper(d.Method)

	t := &Task{
		id:        task.NewID(),
		desc:      d,
		translate: translate,
		sink:      sink,
	}

	log.Debug("request sent", "task", t.id, "method", d.Method, "url", d.URL)
	tr.Do(ctx, transport.Request{
		Method: d.Method,
		URL:    d.URL,
		Header: d.Header,
		Body:   d.Body,
	}, t.complete)

	return t, nil
}

// complete is the transport callback.
func (t *Task) complete(res transport.Result) {
	if !t.token.Deliver() {
		log.Trace("response discarded", "task", t.id, "state", t.token.State(), "status", res.Status)
		return
	}

	resp := Response{
		Status: res.Status,
		Header: res.Header,
		Body:   res.Body,
		Err:    res.Err,
	}
	if resp.Err != nil {
		log.Info("request failed", "task", t.id, "url", t.desc.URL, "error", resp.Err)
	} else {
		log.Info("request complete", "task", t.id, "url", t.desc.URL, "status", resp.Status)
	}
	t.sink.Push(t.translate(resp))
}

// ID returns the task's log correlation id.
func (t *Task) ID() string {
	return t.id
}

// Descriptor returns the request as issued.
func (t *Task) Descriptor() Descriptor {
	return t.desc
}

// IsActive reports whether the response is still awaited.
func (t *Task) IsActive() bool {
	return t.token.Active()
}

// Cancel suppresses delivery of the eventual response. It does not abort
// the transfer. Calling it after completion or a previous Cancel is a no-op.
func (t *Task) Cancel() {
	if t.token.Cancel() {
		log.Debug("request cancelled", "task", t.id, "url", t.desc.URL)
	}
}
