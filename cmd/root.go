package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spiffcs/webtask/config"
	"github.com/spiffcs/webtask/internal/output"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := NewOptions()

	rootCmd := &cobra.Command{
		Use:   "webtask",
		Short: "Cancellable navigation and request tasks",
		Long: `A CLI for exercising cancellable browser tasks outside a browser.

fetch sends one request through a request task and prints the response.
counter runs the routed counter against an in-memory window.
replay drives the same counter from a YAML script.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	addCommonFlags(rootCmd, opts)

	rootCmd.AddCommand(NewCmdFetch(opts))
	rootCmd.AddCommand(NewCmdCounter(opts))
	rootCmd.AddCommand(NewCmdReplay(opts))
	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}

// addCommonFlags adds the flags every subcommand understands.
func addCommonFlags(cmd *cobra.Command, opts *Options) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.Format, "output", "o", "", "Output format (text, json; default from config)")
	flags.CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	flags.Var(newTUIFlag(opts), "tui", "Enable/disable TUI (default: auto-detect)")
	flags.Lookup("tui").NoOptDefVal = "true"

	// Profiling flags
	flags.StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	flags.StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	flags.StringVar(&opts.Trace, "trace", "", "Write execution trace to file")
}

// resolveFormat settles the output format from the flag or the config and
// records it in opts.
func resolveFormat(opts *Options, cfg *config.Config) (output.Format, error) {
	name := opts.Format
	if name == "" {
		name = cfg.DefaultFormat
	}
	format, ok := output.ParseFormat(name)
	if !ok {
		return "", fmt.Errorf("invalid output format: %s (must be text or json)", name)
	}
	opts.Format = string(format)
	return format, nil
}

// newFormatter returns the formatter for format, applying the text options.
func newFormatter(format output.Format, opts *Options) output.Formatter {
	if format == output.FormatText {
		return &output.TextFormatter{Headers: opts.Include, Full: opts.Full}
	}
	return output.NewFormatter(format)
}
