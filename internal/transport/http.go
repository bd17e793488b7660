package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spiffcs/webtask/internal/log"
	"golang.org/x/oauth2"
)

// Ensure HTTP implements Transport.
var _ Transport = (*HTTP)(nil)

// HTTP is a Transport backed by net/http. Each request runs on its own
// goroutine; completions are handed to the configured Dispatcher.
//
// Under js/wasm, net/http uses the browser's fetch API, so the same
// transport serves both environments.
type HTTP struct {
	client        *http.Client
	dispatcher    Dispatcher
	userAgent     string
	defaultHeader map[string]string
	// token is intentionally unexported. NEVER add String(), MarshalJSON(),
	// or any method that could expose this value in logs or serialized output.
	token string
}

// Option configures an HTTP transport.
type Option func(*HTTP)

// WithClient sets the underlying HTTP client.
func WithClient(c *http.Client) Option {
	return func(h *HTTP) {
		h.client = c
	}
}

// WithDispatcher sets where completions are delivered. The default runs
// them on the request goroutine.
func WithDispatcher(d Dispatcher) Option {
	return func(h *HTTP) {
		h.dispatcher = d
	}
}

// WithToken authenticates every request with a bearer token.
func WithToken(token string) Option {
	return func(h *HTTP) {
		h.token = token
	}
}

// WithUserAgent sets the User-Agent header unless a request sets its own.
func WithUserAgent(ua string) Option {
	return func(h *HTTP) {
		h.userAgent = ua
	}
}

// WithDefaultHeaders sets headers added to requests that do not set them.
func WithDefaultHeaders(hdr map[string]string) Option {
	return func(h *HTTP) {
		h.defaultHeader = hdr
	}
}

// NewHTTP creates an HTTP transport.
func NewHTTP(opts ...Option) *HTTP {
	h := &HTTP{
		client:     &http.Client{},
		dispatcher: inline,
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: h.token})
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, h.client)
		h.client = oauth2.NewClient(ctx, ts)
	}
	return h
}

// Do issues req without blocking and delivers the outcome through done.
func (h *HTTP) Do(ctx context.Context, req Request, done func(Result)) {
	go func() {
		start := time.Now()
		res := h.roundTrip(ctx, req)
		log.Debug("transport complete",
			"method", req.Method,
			"url", req.URL,
			"status", res.Status,
			"error", res.Err,
			"elapsed", time.Since(start).Round(time.Millisecond))
		h.dispatcher.Post(func() { done(res) })
	}()
}

func (h *HTTP) roundTrip(ctx context.Context, req Request) Result {
	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return Result{Err: fmt.Errorf("failed to build request: %w", err)}
	}
	for k, v := range h.defaultHeader {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}
	if h.userAgent != "" && httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return Result{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return Result{
		Status: resp.StatusCode,
		Header: flattenHeader(resp.Header),
		Body:   string(data),
	}
}

// flattenHeader mirrors the fetch API's Headers iteration: lower-case
// names, repeated values joined with ", ".
func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[strings.ToLower(k)] = strings.Join(vs, ", ")
	}
	return out
}
