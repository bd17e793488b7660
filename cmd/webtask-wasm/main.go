//go:build js && wasm

// Command webtask-wasm mounts the counter on the page it is loaded into.
// The count is mirrored to the global webtaskCount and the document title;
// webtaskPush(hash) moves to a new fragment.
package main

import (
	"fmt"
	"os"
	"syscall/js"

	"github.com/spiffcs/webtask/internal/browser"
	"github.com/spiffcs/webtask/internal/browser/dom"
	"github.com/spiffcs/webtask/internal/counter"
	"github.com/spiffcs/webtask/internal/location"
	"github.com/spiffcs/webtask/internal/log"
	"github.com/spiffcs/webtask/internal/task"
)

func main() {
	log.Initialize(log.LevelInfo, os.Stderr)

	w, err := dom.New()
	if err != nil {
		log.Error("no window to mount on", "error", err)
		os.Exit(1)
	}

	var model counter.Model
	apply := func(m task.Message) {
		if model.Update(m) {
			render(model.Value)
		}
	}

	routes := counter.DefaultRoutes()
	app, err := counter.Start(w, routes, task.SinkFunc(apply))
	if err != nil {
		log.Error("failed to start counter", "error", err)
		os.Exit(1)
	}
	render(model.Value)

	// The load event has already fired when the module starts late.
	if js.Global().Get("document").Get("readyState").String() == "complete" {
		routeCurrent(w, routes, apply)
	}

	push := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		m, err := app.Push(args[0].String())
		if err != nil {
			log.Warn("push failed", "error", err)
			return err.Error()
		}
		apply(m)
		return nil
	})
	js.Global().Set("webtaskPush", push)

	done := make(chan struct{})
	unload := js.FuncOf(func(js.Value, []js.Value) any {
		app.Destroy()
		close(done)
		return nil
	})
	opts := js.Global().Get("Object").New()
	opts.Set("once", true)
	js.Global().Get("window").Call("addEventListener", "pagehide", unload, opts)

	<-done
	js.Global().Delete("webtaskPush")
	push.Release()
	unload.Release()
}

func routeCurrent(host browser.Host, routes map[string]counter.Msg, apply func(task.Message)) {
	href, err := host.Href()
	if err != nil {
		log.Warn("cannot read location", "error", err)
		return
	}
	loc, err := location.Parse(href)
	if err != nil {
		log.Warn("cannot parse location", "href", href, "error", err)
		return
	}
	apply(counter.Router(routes)(loc, nil))
}

func render(v int64) {
	js.Global().Set("webtaskCount", v)
	js.Global().Get("document").Set("title", fmt.Sprintf("count: %d", v))
}
