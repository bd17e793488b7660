// Package navigation keeps application state in step with browser history.
//
// A Task listens for back/forward (PopState) and initial page load (Load)
// events and turns each into one message on the sink. Load is delivered at
// most once; its listener is removed after the first delivery. Navigation the
// application asks for through PushState or PushHash does not come back
// through the sink: the resulting message is returned to the caller, which
// decides what to do with it during its own update.
package navigation

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spiffcs/webtask/internal/browser"
	"github.com/spiffcs/webtask/internal/location"
	"github.com/spiffcs/webtask/internal/log"
	"github.com/spiffcs/webtask/internal/task"
)

var (
	// ErrInitialization is returned by New when the host has no usable
	// location/history surface.
	ErrInitialization = errors.New("navigation task initialization failed")

	// ErrNavigation is returned when the host rejects a history write.
	ErrNavigation = errors.New("history write rejected")
)

// Translator turns a location and its history state into a message.
type Translator func(location.Location, browser.State) task.Message

// Ensure Task implements task.Cancellable.
var _ task.Cancellable = (*Task)(nil)

// Task owns one subscription to a host's navigation events.
type Task struct {
	id        string
	host      browser.Host
	translate Translator
	sink      task.Sink

	// token doubles as the liveness flag checked by every listener, so a
	// registration the host fails to withdraw still delivers nothing.
	token task.Token

	// loaded is set by the first Load delivery.
	loaded atomic.Bool

	mu   sync.Mutex
	pop  browser.Listener
	load browser.Listener
}

// New subscribes to PopState and Load on host. Cancel removes whichever
// registrations remain.
func New(host browser.Host, translate Translator, sink task.Sink) (*Task, error) {
	if host == nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, browser.ErrUnavailable)
	}
	if translate == nil || sink == nil {
		return nil, fmt.Errorf("%w: translator and sink are required", ErrInitialization)
	}
	if _, err := host.Href(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	t := &Task{
		id:        task.NewID(),
		host:      host,
		translate: translate,
		sink:      sink,
	}

	pop, err := host.Listen(browser.PopState, t.handle)
	if err != nil {
		return nil, fmt.Errorf("%w: listen %s: %w", ErrInitialization, browser.PopState, err)
	}
	load, err := host.Listen(browser.Load, t.handle)
	if err != nil {
		pop.Remove()
		return nil, fmt.Errorf("%w: listen %s: %w", ErrInitialization, browser.Load, err)
	}

	t.mu.Lock()
	t.pop, t.load = pop, load
	t.mu.Unlock()

	// A host may dispatch Load from inside Listen.
	if t.loaded.Load() {
		t.dropLoad()
	}

	log.Debug("navigation task started", "task", t.id)
	return t, nil
}

// handle delivers one event. The location is read from the host at this
// moment rather than taken from the event.
func (t *Task) handle(ev browser.Event) {
	if !t.token.Active() {
		log.Trace("navigation event after cancel ignored", "task", t.id, "event", ev.Kind)
		return
	}
	if ev.Kind == browser.Load {
		if !t.loaded.CompareAndSwap(false, true) {
			log.Trace("repeated load ignored", "task", t.id)
			return
		}
		defer t.dropLoad()
	}

	loc, err := t.readLocation()
	if err != nil {
		log.Warn("failed to read location", "task", t.id, "event", ev.Kind, "error", err)
		return
	}

	var state browser.State
	if ev.Kind == browser.PopState {
		state = ev.State
	}

	log.Debug("navigation event", "task", t.id, "event", ev.Kind, "href", loc.Href)
	t.sink.Push(t.translate(loc, state))
}

func (t *Task) readLocation() (location.Location, error) {
	href, err := t.host.Href()
	if err != nil {
		return location.Location{}, err
	}
	return location.Parse(href)
}

// ID returns the task's log correlation id.
func (t *Task) ID() string {
	return t.id
}

// IsActive reports whether the task is still subscribed.
func (t *Task) IsActive() bool {
	return t.token.Active()
}

// CurrentLocation reads the live location. It is never cached, because
// code outside this task can change it.
func (t *Task) CurrentLocation() (location.Location, error) {
	if !t.token.Active() {
		return location.Location{}, task.ErrInactive
	}
	return t.readLocation()
}

// PushState writes a history entry and returns the message for the new
// location. An empty url keeps the current location. The sink is not
// touched and no PopState follows.
func (t *Task) PushState(state browser.State, title, url string) (task.Message, error) {
	if !t.token.Active() {
		return nil, task.ErrInactive
	}

	if url == "" {
		cur, err := t.host.Href()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNavigation, err)
		}
		url = cur
	}

	if err := t.host.PushState(state, title, url); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNavigation, err)
	}

	loc, err := t.readLocation()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNavigation, err)
	}

	log.Debug("history push", "task", t.id, "href", loc.Href)
	return t.translate(loc, state), nil
}

// PushHash pushes the current location with its fragment replaced by hash
// and returns the resulting message. An empty hash clears the fragment.
func (t *Task) PushHash(hash string) (task.Message, error) {
	cur, err := t.CurrentLocation()
	if err != nil {
		return nil, err
	}
	next, err := cur.WithHash(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNavigation, err)
	}
	return t.PushState(nil, "", next.Href)
}

// Cancel removes the remaining listeners. Calling it again is a no-op.
func (t *Task) Cancel() {
	if !t.token.Cancel() {
		return
	}
	t.removeListeners()
	log.Debug("navigation task cancelled", "task", t.id)
}

// dropLoad withdraws the Load registration once its one delivery is done.
func (t *Task) dropLoad() {
	t.mu.Lock()
	load := t.load
	t.load = nil
	t.mu.Unlock()

	if load != nil {
		load.Remove()
	}
}

func (t *Task) removeListeners() {
	t.mu.Lock()
	pop, load := t.pop, t.load
	t.pop, t.load = nil, nil
	t.mu.Unlock()

	for _, l := range []browser.Listener{pop, load} {
		if l != nil {
			l.Remove()
		}
	}
}
