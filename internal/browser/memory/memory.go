// Package memory provides an in-process browser.Host with a history stack.
// It backs the CLI and the tests, where no real window exists.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spiffcs/webtask/internal/browser"
	"github.com/spiffcs/webtask/internal/location"
	"github.com/spiffcs/webtask/internal/log"
)

// Ensure Window implements browser.Host.
var _ browser.Host = (*Window)(nil)

type entry struct {
	loc   location.Location
	state browser.State
	title string
}

// Window is an in-memory browser window. Listeners are invoked
// synchronously on the goroutine that triggers the event, outside the
// window's lock, so a listener may call back into the window. A nil
// *Window behaves as a host without location or history.
type Window struct {
	mu        sync.Mutex
	detached  bool
	entries   []entry
	index     int
	listeners map[browser.EventKind]map[int]func(browser.Event)
	nextID    int
}

// New creates a window whose single history entry is startURL.
func New(startURL string) (*Window, error) {
	loc, err := location.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start url: %w", err)
	}
	return &Window{
		entries:   []entry{{loc: loc}},
		listeners: make(map[browser.EventKind]map[int]func(browser.Event)),
	}, nil
}

// Detached creates a window with no location or history, as seen from a
// non-browser context.
func Detached() *Window {
	return &Window{
		detached:  true,
		listeners: make(map[browser.EventKind]map[int]func(browser.Event)),
	}
}

// Href returns the current entry's href.
func (w *Window) Href() (string, error) {
	if w == nil {
		return "", browser.ErrUnavailable
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.detached {
		return "", browser.ErrUnavailable
	}
	return w.entries[w.index].loc.Href, nil
}

// PushState appends a history entry after the current one, discarding any
// forward entries. An empty url keeps the current location. No listener is
// invoked.
func (w *Window) PushState(state browser.State, title, url string) error {
	if w == nil {
		return browser.ErrUnavailable
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.detached {
		return browser.ErrUnavailable
	}

	cur := w.entries[w.index].loc
	next := cur
	if url != "" {
		loc, err := location.Resolve(cur.Href, url)
		if err != nil {
			return err
		}
		if !loc.SameOrigin(cur) {
			return fmt.Errorf("%w: %s from %s", browser.ErrCrossOrigin, loc.Origin, cur.Origin)
		}
		next = loc
	}

	w.entries = append(w.entries[:w.index+1], entry{loc: next, state: state, title: title})
	w.index++
	log.Trace("history push", "href", next.Href, "length", len(w.entries))
	return nil
}

// Listen registers fn for PopState or Load events.
func (w *Window) Listen(kind browser.EventKind, fn func(browser.Event)) (browser.Listener, error) {
	if w == nil {
		return nil, browser.ErrUnavailable
	}
	if kind != browser.PopState && kind != browser.Load {
		return nil, fmt.Errorf("%w: %s", browser.ErrUnsupportedEvent, kind)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.detached {
		return nil, browser.ErrUnavailable
	}

	id := w.nextID
	w.nextID++
	if w.listeners[kind] == nil {
		w.listeners[kind] = make(map[int]func(browser.Event))
	}
	w.listeners[kind][id] = fn

	var once sync.Once
	return browser.ListenerFunc(func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.listeners[kind], id)
			w.mu.Unlock()
		})
	}), nil
}

// Listeners returns the number of registered listeners for kind.
func (w *Window) Listeners(kind browser.EventKind) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners[kind])
}

// Back moves one entry back and dispatches PopState. It reports whether
// there was an entry to move to.
func (w *Window) Back() bool {
	return w.Go(-1)
}

// Forward moves one entry forward and dispatches PopState.
func (w *Window) Forward() bool {
	return w.Go(1)
}

// Go moves delta entries through history and dispatches PopState with the
// target entry's state.
func (w *Window) Go(delta int) bool {
	w.mu.Lock()
	target := w.index + delta
	if w.detached || delta == 0 || target < 0 || target >= len(w.entries) {
		w.mu.Unlock()
		return false
	}
	w.index = target
	e := w.entries[target]
	fns := w.snapshot(browser.PopState)
	w.mu.Unlock()

	dispatch(fns, browser.Event{Kind: browser.PopState, State: e.state, Location: e.loc})
	return true
}

// Navigate follows a same-document link such as "#increment": it pushes an
// entry with no state and dispatches PopState, as browsers do for fragment
// navigation.
func (w *Window) Navigate(url string) error {
	if err := w.PushState(nil, "", url); err != nil {
		return err
	}

	w.mu.Lock()
	loc := w.entries[w.index].loc
	fns := w.snapshot(browser.PopState)
	w.mu.Unlock()

	dispatch(fns, browser.Event{Kind: browser.PopState, Location: loc})
	return nil
}

// FireLoad dispatches the Load event for the current entry.
func (w *Window) FireLoad() {
	w.mu.Lock()
	if w.detached {
		w.mu.Unlock()
		return
	}
	loc := w.entries[w.index].loc
	fns := w.snapshot(browser.Load)
	w.mu.Unlock()

	dispatch(fns, browser.Event{Kind: browser.Load, Location: loc})
}

// SetLocation replaces the current entry's location without dispatching
// anything, as code outside any task might do.
func (w *Window) SetLocation(url string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.detached {
		return browser.ErrUnavailable
	}
	loc, err := location.Resolve(w.entries[w.index].loc.Href, url)
	if err != nil {
		return err
	}
	w.entries[w.index].loc = loc
	return nil
}

// Len returns the number of history entries.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// Index returns the position of the current entry.
func (w *Window) Index() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index
}

// Title returns the title stored with the current entry.
func (w *Window) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.detached {
		return ""
	}
	return w.entries[w.index].title
}

// snapshot returns the listeners for kind in registration order.
// Callers hold mu.
func (w *Window) snapshot(kind browser.EventKind) []func(browser.Event) {
	ids := make([]int, 0, len(w.listeners[kind]))
	for id := range w.listeners[kind] {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fns := make([]func(browser.Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, w.listeners[kind][id])
	}
	return fns
}

func dispatch(fns []func(browser.Event), ev browser.Event) {
	log.Trace("dispatch", "event", ev.Kind, "href", ev.Location.Href, "listeners", len(fns))
	for _, fn := range fns {
		fn(ev)
	}
}
