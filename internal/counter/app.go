package counter

import (
	"github.com/spiffcs/webtask/internal/browser"
	"github.com/spiffcs/webtask/internal/log"
	"github.com/spiffcs/webtask/internal/navigation"
	"github.com/spiffcs/webtask/internal/task"
)

// App is a mounted counter. It owns one navigation task; Destroy releases
// it.
type App struct {
	owner task.Owner
	nav   *navigation.Task
}

// Start subscribes to host navigation. Routed messages go to sink; the
// caller applies them to a Model on its own loop.
func Start(host browser.Host, routes map[string]Msg, sink task.Sink) (*App, error) {
	if routes == nil {
		routes = DefaultRoutes()
	}

	nav, err := navigation.New(host, Router(routes), sink)
	if err != nil {
		return nil, err
	}

	a := &App{nav: nav}
	a.owner.Adopt(nav)
	log.Debug("counter mounted", "task", nav.ID(), "routes", len(routes))
	return a, nil
}

// Push moves to the location with the given fragment and returns the
// routed message for it. Nothing is sent to the sink.
func (a *App) Push(hash string) (task.Message, error) {
	return a.nav.PushHash(hash)
}

// Hash returns the live fragment.
func (a *App) Hash() (string, error) {
	loc, err := a.nav.CurrentLocation()
	if err != nil {
		return "", err
	}
	return loc.Hash, nil
}

// Active reports whether the app is still listening.
func (a *App) Active() bool {
	return a.owner.Active() > 0
}

// Destroy cancels every task the app holds.
func (a *App) Destroy() {
	a.owner.Destroy()
}
