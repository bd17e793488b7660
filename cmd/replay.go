package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spiffcs/webtask/config"
	"github.com/spiffcs/webtask/internal/counter"
	"github.com/spiffcs/webtask/internal/log"
	"github.com/spiffcs/webtask/internal/replay"
)

// NewCmdReplay creates the replay command.
func NewCmdReplay(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay SCRIPT",
		Short: "Drive the routed counter from a YAML script",
		Long: `Mounts the routed counter on an in-memory window and runs each step
of SCRIPT against it, reporting which messages were delivered to the
counter and which were returned to the caller.

Example script:

  start_url: https://counter.local/
  steps:
    - load
    - navigate: "#increment"
    - push: "#decrement"
    - back
    - destroy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.StartURL, "start-url", "", "Initial location when the script sets none (default from config)")

	return cmd
}

func runReplay(cmd *cobra.Command, path string, opts *Options) error {
	stop, err := opts.profiles().start()
	if err != nil {
		return err
	}
	defer stop()

	initLogging(opts, false)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	format, err := resolveFormat(opts, cfg)
	if err != nil {
		return err
	}

	script, err := replay.LoadFile(path)
	if err != nil {
		return err
	}
	routes, err := counter.ParseRoutes(cfg.Routes)
	if err != nil {
		return fmt.Errorf("invalid routes in config: %w", err)
	}

	startURL := opts.StartURL
	if startURL == "" {
		startURL = cfg.GetStartURL()
	}

	log.Info("replaying script", "path", path, "steps", len(script.Steps))
	report, err := replay.Run(script, replay.Options{StartURL: startURL, Routes: routes})
	if err != nil {
		return err
	}

	return newFormatter(format, opts).FormatReplay(report, cmd.OutOrStdout())
}
