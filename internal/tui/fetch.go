package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spiffcs/webtask/internal/format"
	"github.com/spiffcs/webtask/internal/request"
	"github.com/spiffcs/webtask/internal/task"
)

// FetchResult is the outcome the fetch view ends with.
type FetchResult struct {
	Response  request.Response
	Cancelled bool
	Err       error
	Elapsed   time.Duration
}

// FetchModel is the Bubble Tea model for one in-flight request.
type FetchModel struct {
	ctx     context.Context
	label   string
	task    task.Cancellable
	msgs    task.Chan
	spinner spinner.Model
	status  Status
	started time.Time
	result  FetchResult
	width   int
	now     func() time.Time
}

// NewFetchModel creates a fetch view for t, whose messages arrive on msgs.
// When ctx ends first the task is cancelled.
func NewFetchModel(ctx context.Context, label string, t task.Cancellable, msgs task.Chan) FetchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return FetchModel{
		ctx:     ctx,
		label:   label,
		task:    t,
		msgs:    msgs,
		spinner: s,
		status:  StatusRunning,
		started: time.Now(),
		width:   80,
		now:     time.Now,
	}
}

// Init initializes the model.
func (m FetchModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForMessage(m.msgs),
		waitForContext(m.ctx),
	)
}

// Update handles messages.
func (m FetchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m.cancel(nil), tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.status != StatusRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case FetchedMsg:
		if m.status != StatusRunning {
			return m, nil
		}
		m.result.Response = msg.Response
		m.result.Elapsed = m.now().Sub(m.started)
		if msg.Response.Err != nil {
			m.status = StatusError
		} else {
			m.status = StatusComplete
		}
		return m, tea.Quit

	case ctxDoneMsg:
		return m.cancel(msg.err), tea.Quit

	case doneMsg:
		return m.cancel(nil), tea.Quit
	}

	return m, nil
}

func (m FetchModel) cancel(err error) FetchModel {
	if m.status != StatusRunning {
		return m
	}
	m.task.Cancel()
	m.status = StatusCancelled
	m.result.Cancelled = true
	m.result.Err = err
	m.result.Elapsed = m.now().Sub(m.started)
	return m
}

// Result returns the outcome once the view has quit.
func (m FetchModel) Result() FetchResult {
	return m.result
}

// Status returns the current status.
func (m FetchModel) Status() Status {
	return m.status
}

// View renders the model.
func (m FetchModel) View() string {
	icon := StatusIcon(m.status, m.spinner.View())
	label := format.Truncate(m.label, max(m.width-20, 10))
	line := fmt.Sprintf("  %s %s", icon, labelStyle.Render(label))

	switch m.status {
	case StatusRunning:
		elapsed := m.now().Sub(m.started).Round(100 * time.Millisecond)
		line += " " + messageStyle.Render(fmt.Sprintf("(%s)", elapsed))
		line += "\n" + footerStyle.Render("  Press Ctrl+C to cancel")
	case StatusComplete:
		resp := m.result.Response
		summary := fmt.Sprintf("%s · %s · %s", format.Status(resp.Status), format.Bytes(len(resp.Body)), m.result.Elapsed.Round(time.Millisecond))
		if resp.OK() {
			line += " " + messageStyle.Render(summary)
		} else {
			line += " " + warnStyle.Render(summary)
		}
	case StatusError:
		line += " " + errorStyle.Render(m.result.Response.Err.Error())
	case StatusCancelled:
		reason := "cancelled"
		if m.result.Err != nil {
			reason = fmt.Sprintf("cancelled: %v", m.result.Err)
		}
		line += " " + warnStyle.Render(reason)
	}

	return line + "\n"
}

// waitForMessage creates a command that waits for the next task message.
func waitForMessage(msgs task.Chan) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-msgs
		if !ok {
			return doneMsg{}
		}
		return msg
	}
}

// waitForContext creates a command that reports when ctx ends.
func waitForContext(ctx context.Context) tea.Cmd {
	if ctx == nil {
		return nil
	}
	return func() tea.Msg {
		<-ctx.Done()
		return ctxDoneMsg{err: context.Cause(ctx)}
	}
}
