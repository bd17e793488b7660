package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spiffcs/webtask/internal/output"
	"github.com/spiffcs/webtask/internal/tui"
)

// tuiFlag implements pflag.Value for the tri-state --tui flag.
type tuiFlag struct {
	opts *Options
}

func newTUIFlag(opts *Options) *tuiFlag {
	return &tuiFlag{opts: opts}
}

func (f *tuiFlag) String() string {
	if f.opts.TUI == nil {
		return "auto"
	}
	return strconv.FormatBool(*f.opts.TUI)
}

// Set accepts auto or anything strconv.ParseBool does.
func (f *tuiFlag) Set(s string) error {
	if strings.EqualFold(s, "auto") {
		f.opts.TUI = nil
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid value %q: use true, false, or auto", s)
	}
	f.opts.TUI = &v
	return nil
}

func (f *tuiFlag) Type() string {
	return "bool"
}

// IsBoolFlag lets a bare --tui mean true.
func (f *tuiFlag) IsBoolFlag() bool {
	return true
}

// shouldUseTUI determines whether to use TUI based on options.
func shouldUseTUI(opts *Options) bool {
	// Disable TUI when verbose logging is requested so logs are visible
	if opts.Verbosity > 0 {
		return false
	}
	// JSON output is never mixed with a progress display
	if opts.Format == string(output.FormatJSON) {
		return false
	}
	if opts.TUI != nil {
		return *opts.TUI
	}
	return tui.ShouldUseTUI()
}
