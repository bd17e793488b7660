package tui

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spiffcs/webtask/internal/browser/memory"
	"github.com/spiffcs/webtask/internal/counter"
	"github.com/spiffcs/webtask/internal/task"
	"golang.org/x/term"
)

// Ensure ProgramSink implements task.Sink.
var _ task.Sink = ProgramSink{}

// ProgramSink delivers task messages into a running Bubble Tea program.
// Push blocks until the program accepts the message, so it must not be
// called from inside Update.
type ProgramSink struct {
	Program *tea.Program
}

// Push sends m to the program.
func (s ProgramSink) Push(m task.Message) {
	if s.Program == nil {
		return
	}
	s.Program.Send(m)
}

// RunFetch starts the task through start, shows a spinner until its message
// arrives on the sink or ctx ends, and returns the outcome.
func RunFetch(ctx context.Context, label string, start func(task.Sink) (task.Cancellable, error)) (FetchResult, error) {
	msgs := make(task.Chan, 1)
	t, err := start(msgs)
	if err != nil {
		return FetchResult{}, err
	}

	// Don't use alt screen - render inline
	p := tea.NewProgram(NewFetchModel(ctx, label, t, msgs))
	final, err := p.Run()
	if err != nil {
		t.Cancel()
		return FetchResult{}, err
	}

	fm, ok := final.(FetchModel)
	if !ok {
		return FetchResult{}, fmt.Errorf("unexpected model type %T", final)
	}
	return fm.Result(), nil
}

// RunCounter mounts the routed counter on w and blocks until the user
// quits. The app is destroyed on return.
func RunCounter(w *memory.Window, routes map[string]counter.Msg) (int64, error) {
	model := NewCounterModel(w)
	p := tea.NewProgram(model, tea.WithAltScreen())

	app, err := counter.Start(w, routes, ProgramSink{Program: p})
	if err != nil {
		return 0, err
	}
	defer app.Destroy()
	model.Attach(app)

	final, err := p.Run()
	if err != nil {
		return 0, err
	}
	cm, ok := final.(CounterModel)
	if !ok {
		return 0, fmt.Errorf("unexpected model type %T", final)
	}
	return cm.Value(), nil
}

// ShouldUseTUI returns true if the TUI should be used based on environment.
func ShouldUseTUI() bool {
	// Check if stdout is a TTY
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}

	if os.Getenv("TERM") == "dumb" {
		return false
	}

	// Check for CI environment variables
	ciVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"GITLAB_CI",
		"BUILDKITE",
	}

	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return false
		}
	}

	return true
}
