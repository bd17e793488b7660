package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/webtask/config"
	"github.com/spiffcs/webtask/internal/constants"
	"github.com/spiffcs/webtask/internal/format"
	"github.com/spiffcs/webtask/internal/log"
	"github.com/spiffcs/webtask/internal/loop"
	"github.com/spiffcs/webtask/internal/output"
	"github.com/spiffcs/webtask/internal/request"
	"github.com/spiffcs/webtask/internal/task"
	"github.com/spiffcs/webtask/internal/transport"
	"github.com/spiffcs/webtask/internal/tui"
	"golang.org/x/sync/errgroup"
)

// starter issues a request task whose message goes to the given sink.
type starter func(task.Sink) (task.Cancellable, error)

// NewCmdFetch creates the fetch command.
func NewCmdFetch(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch URL",
		Short: "Send one request and print the response",
		Long: `Sends a single request through a cancellable request task and prints
the response once it is delivered.

The request is cancelled when --timeout elapses or on Ctrl+C. A cancelled
request is abandoned: its response, if one arrives, is discarded.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Method, "request", "X", "", "Request method (default GET, or POST with --data)")
	cmd.Flags().StringArrayVarP(&opts.Headers, "header", "H", nil, "Extra header as 'Name: value' (repeatable)")
	cmd.Flags().StringVarP(&opts.Data, "data", "d", "", "Request body")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", constants.DefaultTimeout, "Cancel the request after this long (0 disables)")
	cmd.Flags().BoolVarP(&opts.Include, "include", "i", false, "Print response headers")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "Print the whole body instead of a preview")
	cmd.Flags().BoolVar(&opts.Fail, "fail", false, "Exit non-zero when the status is not 2xx")

	return cmd
}

func runFetch(cmd *cobra.Command, url string, opts *Options) error {
	stop, err := opts.profiles().start()
	if err != nil {
		return err
	}
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	outFormat, err := resolveFormat(opts, cfg)
	if err != nil {
		return err
	}

	useTUI := shouldUseTUI(opts)
	initLogging(opts, useTUI)

	timeout := opts.Timeout
	if !cmd.Flags().Changed("timeout") {
		if timeout, err = cfg.GetTimeout(); err != nil {
			return err
		}
	}

	desc, err := buildDescriptor(url, opts)
	if err != nil {
		return err
	}

	l := loop.New()
	tr := transport.NewHTTP(
		transport.WithDispatcher(l),
		transport.WithUserAgent(cfg.GetUserAgent(version)),
		transport.WithDefaultHeaders(cfg.DefaultHeaders),
		transport.WithToken(cfg.GetToken()),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log.Debug("fetch", "method", desc.Method, "url", desc.URL, "timeout", timeout, "tui", useTUI)
	if log.IsDebug() {
		for _, line := range format.Headers(desc.Header) {
			log.Debug("request header", "header", line)
		}
	}

	start := func(sink task.Sink) (task.Cancellable, error) {
		t, err := request.Send(ctx, tr, desc, tui.FetchTranslator, sink)
		if err != nil {
			return nil, err
		}
		log.Debug("request issued", "task", t.ID())
		return t, nil
	}

	res, err := fetchOnLoop(ctx, l, start, func(ctx context.Context, start starter) (tui.FetchResult, error) {
		if useTUI {
			return tui.RunFetch(ctx, desc.Method+" "+desc.URL, start)
		}
		return awaitFetch(ctx, start)
	})
	if err != nil {
		return err
	}

	result := output.Result{
		Method:    desc.Method,
		URL:       desc.URL,
		Status:    res.Response.Status,
		Header:    res.Response.Header,
		Body:      res.Response.Body,
		Err:       res.Response.Err,
		Cancelled: res.Cancelled,
		Elapsed:   res.Elapsed,
	}
	if res.Cancelled {
		result.Err = res.Err
	}

	if err := newFormatter(outFormat, opts).FormatResult(result, cmd.OutOrStdout()); err != nil {
		return err
	}
	return fetchOutcome(result, opts.Fail)
}

// fetchOnLoop runs l on its own goroutine for as long as wait takes. The
// loop outlives ctx so a response racing the deadline is still settled.
func fetchOnLoop(ctx context.Context, l *loop.Loop, start starter, wait func(context.Context, starter) (tui.FetchResult, error)) (tui.FetchResult, error) {
	loopCtx, stopLoop := context.WithCancel(context.Background())

	var res tui.FetchResult
	g := new(errgroup.Group)
	g.Go(func() error {
		if err := l.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		defer stopLoop()
		var err error
		res, err = wait(ctx, start)
		return err
	})

	if err := g.Wait(); err != nil {
		return tui.FetchResult{}, err
	}
	return res, nil
}

// awaitFetch is the non-interactive path: block until the message arrives
// or ctx ends, cancelling the task in the latter case.
func awaitFetch(ctx context.Context, start starter) (tui.FetchResult, error) {
	msgs := make(task.Chan, 1)
	began := time.Now()

	t, err := start(msgs)
	if err != nil {
		return tui.FetchResult{}, err
	}

	log.Progress("waiting for response...")
	select {
	case m := <-msgs:
		log.ProgressDone()
		fm, ok := m.(tui.FetchedMsg)
		if !ok {
			return tui.FetchResult{}, fmt.Errorf("unexpected message %T", m)
		}
		return tui.FetchResult{Response: fm.Response, Elapsed: time.Since(began)}, nil
	case <-ctx.Done():
		t.Cancel()
		log.Info("request cancelled", "cause", context.Cause(ctx))
		return tui.FetchResult{Cancelled: true, Err: context.Cause(ctx), Elapsed: time.Since(began)}, nil
	}
}

// fetchOutcome maps a printed result to the command's exit error.
func fetchOutcome(r output.Result, failOnStatus bool) error {
	switch {
	case r.Cancelled:
		return fmt.Errorf("request cancelled: %w", r.Err)
	case r.Err != nil:
		return fmt.Errorf("request failed: %w", r.Err)
	case failOnStatus && (r.Status < 200 || r.Status > 299):
		return fmt.Errorf("server returned %d", r.Status)
	}
	return nil
}

// buildDescriptor assembles the request from the fetch flags.
func buildDescriptor(url string, opts *Options) (request.Descriptor, error) {
	d := request.Get(url)
	if opts.Data != "" {
		d = request.Post(url, opts.Data)
	}
	if opts.Method != "" {
		d.Method = strings.ToUpper(opts.Method)
	}

	for _, h := range opts.Headers {
		name, value, err := parseHeader(h)
		if err != nil {
			return request.Descriptor{}, err
		}
		d = d.WithHeader(name, value)
	}
	return d, nil
}

// parseHeader splits a "Name: value" flag.
func parseHeader(s string) (string, string, error) {
	name, value, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", fmt.Errorf("invalid header %q: expected 'Name: value'", s)
	}
	return name, strings.TrimSpace(value), nil
}

// initLogging suppresses logs while a TUI owns the terminal.
func initLogging(opts *Options, useTUI bool) {
	var w io.Writer = os.Stderr
	if useTUI {
		w = io.Discard
	}
	log.Initialize(opts.Verbosity, w)
}
