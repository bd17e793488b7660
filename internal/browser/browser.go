// Package browser describes the browser location/history surface consumed
// by navigation tasks.
package browser

import (
	"errors"

	"github.com/spiffcs/webtask/internal/location"
)

var (
	// ErrUnavailable is returned when the host exposes no location or
	// history object, as in a non-browser context.
	ErrUnavailable = errors.New("browser location/history unavailable")

	// ErrCrossOrigin is returned when a history write targets another origin.
	ErrCrossOrigin = errors.New("history write to a different origin")

	// ErrUnsupportedEvent is returned when a host cannot subscribe to an
	// event kind.
	ErrUnsupportedEvent = errors.New("unsupported event kind")
)

// EventKind identifies a navigation event.
type EventKind int

const (
	PopState         EventKind = iota // user back/forward, or fragment navigation
	Load                              // initial page load
	ProgrammaticPush                  // app-initiated push; never dispatched by a host
)

func (k EventKind) String() string {
	switch k {
	case PopState:
		return "popstate"
	case Load:
		return "load"
	case ProgrammaticPush:
		return "push"
	default:
		return "unknown"
	}
}

// State is an application-supplied history state blob. It is never
// inspected here.
type State any

// Event is a navigation notification delivered to a listener.
type Event struct {
	Kind     EventKind
	State    State
	Location location.Location // location at dispatch time, when the host knows it
}

// Listener is a registration returned by Host.Listen.
type Listener interface {
	// Remove withdraws the registration. Calling it twice is a no-op.
	Remove()
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func()

// Remove calls f.
func (f ListenerFunc) Remove() {
	f()
}

// Host is the browser window surface.
type Host interface {
	// Href returns the live location href.
	Href() (string, error)

	// PushState writes a new history entry without dispatching PopState.
	PushState(state State, title, url string) error

	// Listen subscribes fn to events of the given kind.
	Listen(kind EventKind, fn func(Event)) (Listener, error)
}
