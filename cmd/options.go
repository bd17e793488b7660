package cmd

import "time"

// Options holds the shared command-line options for the webtask CLI.
type Options struct {
	Format    string
	Verbosity int
	TUI       *bool // nil = auto-detect, true = force TUI, false = disable TUI

	// Request options
	Method  string   // Empty picks GET, or POST when Data is set
	Headers []string // "Name: value"
	Data    string
	Timeout time.Duration
	Include bool // Print response headers
	Full    bool // Print the whole body
	Fail    bool // Exit non-zero on non-2xx

	// Counter options
	StartURL string

	// Profiling options
	CPUProfile string // Write CPU profile to file
	MemProfile string // Write memory profile to file
	Trace      string // Write execution trace to file
}

// Option is a functional option for configuring Options.
type Option func(*Options)

// NewOptions creates a new Options with defaults and applies any provided options.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFormat sets the output format (text, json).
func WithFormat(format string) Option {
	return func(o *Options) {
		o.Format = format
	}
}

// WithVerbosity sets the verbosity level.
func WithVerbosity(v int) Option {
	return func(o *Options) {
		o.Verbosity = v
	}
}

// WithTUI controls TUI mode (nil = auto-detect, true = force, false = disable).
func WithTUI(tui *bool) Option {
	return func(o *Options) {
		o.TUI = tui
	}
}

// WithMethod sets the request method.
func WithMethod(method string) Option {
	return func(o *Options) {
		o.Method = method
	}
}

// WithHeaders sets extra request headers in "Name: value" form.
func WithHeaders(headers ...string) Option {
	return func(o *Options) {
		o.Headers = headers
	}
}

// WithData sets the request body.
func WithData(data string) Option {
	return func(o *Options) {
		o.Data = data
	}
}

// WithTimeout sets how long a fetch may run before it is cancelled.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithStartURL sets the counter window's initial location.
func WithStartURL(url string) Option {
	return func(o *Options) {
		o.StartURL = url
	}
}

// profiles returns the configured profile outputs.
func (o *Options) profiles() profiles {
	return profiles{cpu: o.CPUProfile, mem: o.MemProfile, trace: o.Trace}
}
