package replay

import (
	"fmt"

	"github.com/spiffcs/webtask/internal/browser/memory"
	"github.com/spiffcs/webtask/internal/counter"
	"github.com/spiffcs/webtask/internal/log"
	"github.com/spiffcs/webtask/internal/loop"
	"github.com/spiffcs/webtask/internal/task"
)

// StepResult records one executed step.
type StepResult struct {
	Index     int      `json:"index"`
	Step      string   `json:"step"`
	Href      string   `json:"href"`
	Delivered []string `json:"delivered,omitempty"`
	Returned  string   `json:"returned,omitempty"`
	Error     string   `json:"error,omitempty"`
	Value     int64    `json:"value"`
}

// Report is the outcome of a replay.
type Report struct {
	StartURL string       `json:"start_url"`
	Steps    []StepResult `json:"steps"`
	Final    int64        `json:"final"`
}

// Options configures Run.
type Options struct {
	// StartURL is used when the script does not set one.
	StartURL string
	// Routes are used when the script does not set any.
	Routes map[string]counter.Msg
}

// Run executes s. Messages the app delivers are posted to an event loop
// and applied to the model after each step, in delivery order.
func Run(s *Script, opts Options) (*Report, error) {
	start := s.StartURL
	if start == "" {
		start = opts.StartURL
	}

	routes := opts.Routes
	if len(s.Routes) > 0 {
		parsed, err := counter.ParseRoutes(s.Routes)
		if err != nil {
			return nil, err
		}
		routes = parsed
	}

	w, err := memory.New(start)
	if err != nil {
		return nil, err
	}

	l := loop.New()
	var model counter.Model
	var delivered []string

	sink := task.SinkFunc(func(m task.Message) {
		l.Post(func() {
			model.Update(m)
			delivered = append(delivered, counter.Describe(m))
		})
	})

	app, err := counter.Start(w, routes, sink)
	if err != nil {
		return nil, err
	}
	defer app.Destroy()

	report := &Report{StartURL: start}
	for i, step := range s.Steps {
		delivered = nil
		res := StepResult{Index: i + 1, Step: step.String()}

		returned, err := apply(step, w, app)
		switch {
		case err != nil:
			res.Error = err.Error()
			log.Debug("replay step failed", "step", res.Step, "error", err)
		case returned != nil:
			model.Update(returned)
			res.Returned = counter.Describe(returned)
		}

		l.RunPending()

		res.Delivered = delivered
		res.Value = model.Value
		res.Href, _ = w.Href()
		report.Steps = append(report.Steps, res)
	}

	report.Final = model.Value
	return report, nil
}

// apply performs one step. The returned message is non-nil only for push.
func apply(step Step, w *memory.Window, app *counter.App) (task.Message, error) {
	switch step.Action {
	case ActionLoad:
		w.FireLoad()
	case ActionBack:
		if !w.Back() {
			return nil, fmt.Errorf("no history entry to go back to")
		}
	case ActionForward:
		if !w.Forward() {
			return nil, fmt.Errorf("no history entry to go forward to")
		}
	case ActionNavigate:
		return nil, w.Navigate(step.Arg)
	case ActionPush:
		return app.Push(step.Arg)
	case ActionHash:
		return nil, w.SetLocation(step.Arg)
	case ActionDestroy:
		app.Destroy()
	default:
		return nil, fmt.Errorf("unsupported action %q", step.Action)
	}
	return nil, nil
}
