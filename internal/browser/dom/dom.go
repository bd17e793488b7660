//go:build js && wasm

package dom

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"syscall/js"

	"github.com/spiffcs/webtask/internal/browser"
)

// Ensure Window implements browser.Host.
var _ browser.Host = (*Window)(nil)

var eventNames = map[browser.EventKind]string{
	browser.PopState: "popstate",
	browser.Load:     "load",
}

// Window wraps the global window object. A nil *Window behaves as a host
// without location or history.
type Window struct {
	win js.Value
}

// New returns the current window, or browser.ErrUnavailable when the
// global scope has no window with location and history (a worker, say).
func New() (*Window, error) {
	return newWindow(js.Global().Get("window"))
}

func newWindow(win js.Value) (*Window, error) {
	if !defined(win) || !defined(win.Get("location")) || !defined(win.Get("history")) {
		return nil, browser.ErrUnavailable
	}
	return &Window{win: win}, nil
}

func defined(v js.Value) bool {
	return !v.IsUndefined() && !v.IsNull()
}

// Href returns window.location.href.
func (w *Window) Href() (href string, err error) {
	if w == nil {
		return "", browser.ErrUnavailable
	}
	defer recoverJS(&err)
	loc := w.win.Get("location")
	if !defined(loc) {
		return "", browser.ErrUnavailable
	}
	return loc.Get("href").String(), nil
}

// PushState calls history.pushState. A SecurityError thrown for a
// cross-origin url is returned wrapped in browser.ErrCrossOrigin.
//
// state is stored as-is when syscall/js can represent it (nil, js.Value,
// strings, numbers, bools, []any and map[string]any of those). Anything
// else is stored as its JSON encoding parsed into a plain object, so a
// later popstate hands back a js.Value, not the original Go type.
func (w *Window) PushState(state browser.State, title, url string) (err error) {
	if w == nil {
		return browser.ErrUnavailable
	}
	v, err := jsState(state)
	if err != nil {
		return err
	}

	defer recoverJS(&err)
	var target any
	if url != "" {
		target = url
	}
	w.win.Get("history").Call("pushState", v, title, target)
	return nil
}

// jsState converts a history state for pushState.
func jsState(state browser.State) (js.Value, error) {
	if v, ok := valueOf(state); ok {
		return v, nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return js.Value{}, fmt.Errorf("history state %T is not representable: %w", state, err)
	}
	return js.Global().Get("JSON").Call("parse", string(data)), nil
}

// valueOf is js.ValueOf without the panic for unsupported types.
func valueOf(x any) (v js.Value, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return js.ValueOf(x), true
}

// Listen adds an event listener on window. The returned Listener removes it
// and releases the Go callback.
func (w *Window) Listen(kind browser.EventKind, fn func(browser.Event)) (browser.Listener, error) {
	if w == nil {
		return nil, browser.ErrUnavailable
	}
	name, ok := eventNames[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", browser.ErrUnsupportedEvent, kind)
	}

	cb := js.FuncOf(func(_ js.Value, args []js.Value) any {
		ev := browser.Event{Kind: kind}
		if kind == browser.PopState && len(args) > 0 {
			ev.State = args[0].Get("state")
		}
		fn(ev)
		return nil
	})
	w.win.Call("addEventListener", name, cb)

	var once sync.Once
	return browser.ListenerFunc(func() {
		once.Do(func() {
			w.win.Call("removeEventListener", name, cb)
			cb.Release()
		})
	}), nil
}

// recoverJS converts a JavaScript exception raised through syscall/js into
// an error.
func recoverJS(err *error) {
	r := recover()
	if r == nil {
		return
	}
	var jsErr js.Error
	if e, ok := r.(error); ok && errors.As(e, &jsErr) {
		if jsErr.Value.Get("name").String() == "SecurityError" {
			*err = fmt.Errorf("%w: %s", browser.ErrCrossOrigin, jsErr.Error())
			return
		}
		*err = jsErr
		return
	}
	if e, ok := r.(error); ok {
		*err = e
		return
	}
	*err = fmt.Errorf("javascript error: %v", r)
}
