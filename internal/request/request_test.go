package request

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spiffcs/webtask/internal/loop"
	"github.com/spiffcs/webtask/internal/task"
	"github.com/spiffcs/webtask/internal/transport"
	"github.com/spiffcs/webtask/internal/transport/transporttest"
)

type fetched struct {
	Resp Response
}

func toMessage(r Response) task.Message {
	return fetched{Resp: r}
}

func TestSendDeliversExactlyOnce(t *testing.T) {
	rec := &transporttest.Recorder{}
	q := &task.Queue{}

	rt, err := Send(context.Background(), rec, Get("http://api.local/items"), toMessage, q)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if !rt.IsActive() {
		t.Fatal("expected task active before resolution")
	}

	call := rec.Last()
	if call == nil {
		t.Fatal("expected transport to receive a request")
	}
	if call.Request.Method != http.MethodGet || call.Request.URL != "http://api.local/items" {
		t.Errorf("unexpected request %+v", call.Request)
	}

	call.Resolve(transport.Result{
		Status: 200,
		Header: map[string]string{"content-type": "application/json"},
		Body:   `[1,2]`,
	})
	call.Resolve(transport.Result{Status: 500})

	if rt.IsActive() {
		t.Error("expected task inactive after resolution")
	}
	msgs := q.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected exactly one push, got %d", len(msgs))
	}
	got := msgs[0].(fetched).Resp
	if got.Status != 200 || got.Body != `[1,2]` || got.Header["content-type"] != "application/json" {
		t.Errorf("expected translated response to match transport, got %+v", got)
	}
	if !got.OK() {
		t.Error("expected OK() for 200")
	}
}

func TestCancelBeforeResolutionSuppressesPush(t *testing.T) {
	rec := &transporttest.Recorder{}
	q := &task.Queue{}

	rt, err := Send(context.Background(), rec, Get("http://api.local/slow"), toMessage, q)
	if err != nil {
		t.Fatal(err)
	}

	rt.Cancel()
	if rt.IsActive() {
		t.Error("expected task inactive immediately after Cancel")
	}

	rec.Last().Resolve(transport.Result{Status: 200, Body: "late"})
	if q.Len() != 0 {
		t.Errorf("expected no push after cancel, got %d", q.Len())
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	rec := &transporttest.Recorder{}
	rt, err := Send(context.Background(), rec, Get("http://api.local/"), toMessage, &task.Queue{})
	if err != nil {
		t.Fatal(err)
	}

	rt.Cancel()
	rt.Cancel()
	if rt.IsActive() {
		t.Error("expected inactive after repeated Cancel")
	}
}

func TestCancelAfterCompletionIsNoop(t *testing.T) {
	rec := &transporttest.Recorder{}
	q := &task.Queue{}
	rt, err := Send(context.Background(), rec, Get("http://api.local/"), toMessage, q)
	if err != nil {
		t.Fatal(err)
	}

	rec.Last().Resolve(transport.Result{Status: 204})
	rt.Cancel()

	if q.Len() != 1 {
		t.Errorf("expected delivered message to stand, got %d pushes", q.Len())
	}
}

func TestTransportFailureIsDelivered(t *testing.T) {
	rec := &transporttest.Recorder{}
	q := &task.Queue{}
	if _, err := Send(context.Background(), rec, Get("http://api.local/"), toMessage, q); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("connection refused")
	rec.Last().Resolve(transport.Result{Err: boom})

	msgs := q.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected failure to be delivered as a message, got %d pushes", len(msgs))
	}
	got := msgs[0].(fetched).Resp
	if !errors.Is(got.Err, boom) || got.Status != 0 {
		t.Errorf("expected failure response, got %+v", got)
	}
	if got.OK() {
		t.Error("expected OK() false on failure")
	}
}

func TestSendValidatesHeaders(t *testing.T) {
	tests := []struct {
		name   string
		header map[string]string
		bad    string
	}{
		{"invalid utf-8 value", map[string]string{"Accept": "ok", "X-Bin": "\xff\xfe"}, "X-Bin"},
		{"control character", map[string]string{"X-Line": "a\nb"}, "X-Line"},
		{"invalid name", map[string]string{"Bad Name": "v"}, "Bad Name"},
		{"first offender by name", map[string]string{"Z-Bad": "\x00", "A-Bad": "\x00"}, "A-Bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &transporttest.Recorder{}
			d := Get("http://api.local/")
			d.Header = tt.header

			_, err := Send(context.Background(), rec, d, toMessage, &task.Queue{})
			var encErr *EncodingError
			if !errors.As(err, &encErr) {
				t.Fatalf("expected EncodingError, got %v", err)
			}
			if encErr.Header != tt.bad {
				t.Errorf("expected offending header %q, got %q", tt.bad, encErr.Header)
			}
			if len(rec.Calls()) != 0 {
				t.Error("expected no request issued when validation fails")
			}
		})
	}
}

func TestSendRequiresDependencies(t *testing.T) {
	rec := &transporttest.Recorder{}
	q := &task.Queue{}

	if _, err := Send(context.Background(), nil, Get("http://x/"), toMessage, q); !errors.Is(err, ErrMissingDependency) {
		t.Errorf("expected ErrMissingDependency for nil transport, got %v", err)
	}
	if _, err := Send(context.Background(), rec, Get("http://x/"), nil, q); !errors.Is(err, ErrMissingDependency) {
		t.Errorf("expected ErrMissingDependency for nil translator, got %v", err)
	}
	if _, err := Send(context.Background(), rec, Get("http://x/"), toMessage, nil); !errors.Is(err, ErrMissingDependency) {
		t.Errorf("expected ErrMissingDependency for nil sink, got %v", err)
	}
}

func TestSendNormalizesMethod(t *testing.T) {
	rec := &transporttest.Recorder{}
	d := Descriptor{URL: "http://api.local/"}
	if _, err := Send(context.Background(), rec, d, toMessage, &task.Queue{}); err != nil {
		t.Fatal(err)
	}
	d.Method = "delete"
	if _, err := Send(context.Background(), rec, d, toMessage, &task.Queue{}); err != nil {
		t.Fatal(err)
	}

	calls := rec.Calls()
	if calls[0].Request.Method != http.MethodGet {
		t.Errorf("expected default GET, got %q", calls[0].Request.Method)
	}
	if calls[1].Request.Method != http.MethodDelete {
		t.Errorf("expected DELETE, got %q", calls[1].Request.Method)
	}
}

func TestDescriptorHelpers(t *testing.T) {
	base := Post("http://api.local/items", `{"n":1}`)
	withCT := base.WithHeader("Content-Type", "application/json")

	if base.Header != nil {
		t.Error("expected WithHeader not to modify the receiver")
	}
	if withCT.Method != http.MethodPost || withCT.Header["Content-Type"] != "application/json" {
		t.Errorf("unexpected descriptor %+v", withCT)
	}

	rec := &transporttest.Recorder{}
	rt, err := Send(context.Background(), rec, withCT, toMessage, &task.Queue{})
	if err != nil {
		t.Fatal(err)
	}
	if got := rt.Descriptor(); got.Body != `{"n":1}` || got.URL != "http://api.local/items" {
		t.Errorf("expected task to keep its descriptor, got %+v", got)
	}
	if rec.Last().Request.Header["Content-Type"] != "application/json" {
		t.Errorf("expected header forwarded to transport, got %v", rec.Last().Request.Header)
	}
}

func TestEndToEndOverHTTPAndLoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Task", "yes")
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	l := loop.New()
	tr := transport.NewHTTP(transport.WithDispatcher(l))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got Response
	sink := task.SinkFunc(func(m task.Message) {
		got = m.(fetched).Resp
		cancel()
	})

	rt, err := Send(ctx, tr, Get(srv.URL), toMessage, sink)
	if err != nil {
		t.Fatal(err)
	}

	_ = l.Run(ctx)

	if rt.IsActive() {
		t.Error("expected task inactive after delivery")
	}
	if got.Status != 200 || got.Body != "hello" || got.Header["x-task"] != "yes" {
		t.Errorf("unexpected response %+v", got)
	}
}
