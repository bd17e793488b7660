package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spiffcs/webtask/config"
	"github.com/spiffcs/webtask/internal/browser/memory"
	"github.com/spiffcs/webtask/internal/counter"
	"github.com/spiffcs/webtask/internal/tui"
)

var errNotInteractive = errors.New("the counter needs an interactive terminal; use 'webtask replay' to script a session")

// NewCmdCounter creates the counter command.
func NewCmdCounter(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Run the routed counter interactively",
		Long: `Mounts the routed counter on an in-memory window. Links change the
location fragment, which the counter's navigation task turns into
increment and decrement messages. Back and forward walk the window's
history.

Logs are discarded while the counter owns the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCounter(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.StartURL, "start-url", "", "Initial location (default from config)")

	return cmd
}

func runCounter(cmd *cobra.Command, opts *Options) error {
	if !interactive(opts) {
		return errNotInteractive
	}
	initLogging(opts, true)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	routes, err := counter.ParseRoutes(cfg.Routes)
	if err != nil {
		return fmt.Errorf("invalid routes in config: %w", err)
	}

	startURL := opts.StartURL
	if startURL == "" {
		startURL = cfg.GetStartURL()
	}
	w, err := memory.New(startURL)
	if err != nil {
		return err
	}

	value, err := tui.RunCounter(w, routes)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Final count: %d\n", value)
	return nil
}

// interactive is shouldUseTUI without the verbosity and format opt-outs,
// which the counter has no fallback for.
func interactive(opts *Options) bool {
	if opts.TUI != nil {
		return *opts.TUI
	}
	return tui.ShouldUseTUI()
}
