package tui

import (
	"github.com/spiffcs/webtask/internal/request"
	"github.com/spiffcs/webtask/internal/task"
)

// Status is the state of a fetch in the progress display.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusComplete
	StatusError
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusComplete:
		return "complete"
	case StatusError:
		return "error"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// FetchedMsg carries a completed response into the fetch view.
type FetchedMsg struct {
	Response request.Response
}

// FetchTranslator is the request.Translator the fetch view expects.
func FetchTranslator(r request.Response) task.Message {
	return FetchedMsg{Response: r}
}

// historyMsg reports the outcome of a back or forward move.
type historyMsg struct {
	moved bool
	dir   string
}

// ctxDoneMsg signals that the host's context ended before a response.
type ctxDoneMsg struct {
	err error
}

// doneMsg signals that the message channel was closed.
type doneMsg struct{}
