// Package counter is a small routed application built on navigation tasks:
// the fragment of the current location increments or decrements a count.
package counter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spiffcs/webtask/internal/browser"
	"github.com/spiffcs/webtask/internal/location"
	"github.com/spiffcs/webtask/internal/log"
	"github.com/spiffcs/webtask/internal/navigation"
	"github.com/spiffcs/webtask/internal/task"
)

// Msg is a counter action.
type Msg int

const (
	None Msg = iota
	Increment
	Decrement
)

func (m Msg) String() string {
	switch m {
	case Increment:
		return "increment"
	case Decrement:
		return "decrement"
	default:
		return "none"
	}
}

// Bulk applies several actions in order.
type Bulk []Msg

func (b Bulk) String() string {
	names := make([]string, len(b))
	for i, m := range b {
		names[i] = m.String()
	}
	return "bulk(" + strings.Join(names, ",") + ")"
}

// Describe names a message for display.
func Describe(msg task.Message) string {
	if s, ok := msg.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", msg)
}

// ParseAction maps an action name to a Msg. Matching is case-insensitive.
func ParseAction(name string) (Msg, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "increment", "inc", "+":
		return Increment, nil
	case "decrement", "dec", "-":
		return Decrement, nil
	case "none", "":
		return None, nil
	default:
		return None, fmt.Errorf("unknown counter action %q", name)
	}
}

// DefaultRoutes returns the built-in fragment routes.
func DefaultRoutes() map[string]Msg {
	return map[string]Msg{
		"#increment": Increment,
		"#decrement": Decrement,
	}
}

// ParseRoutes converts a fragment to action-name table, as found in
// configuration, into routes. An empty table yields DefaultRoutes.
func ParseRoutes(table map[string]string) (map[string]Msg, error) {
	if len(table) == 0 {
		return DefaultRoutes(), nil
	}

	hashes := make([]string, 0, len(table))
	for h := range table {
		hashes = append(hashes, h)
	}
	sort.Strings(hashes)

	routes := make(map[string]Msg, len(table))
	for _, h := range hashes {
		msg, err := ParseAction(table[h])
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", h, err)
		}
		routes[normalizeHash(h)] = msg
	}
	return routes, nil
}

// Router returns a translator that maps the location fragment to a Msg.
// Fragments are compared case-insensitively; unknown fragments yield None.
func Router(routes map[string]Msg) navigation.Translator {
	table := make(map[string]Msg, len(routes))
	for h, m := range routes {
		table[normalizeHash(h)] = m
	}

	return func(loc location.Location, _ browser.State) task.Message {
		msg, ok := table[strings.ToLower(loc.Hash)]
		if !ok {
			log.Trace("no route for fragment", "hash", loc.Hash)
			return None
		}
		return msg
	}
}

func normalizeHash(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if h != "" && !strings.HasPrefix(h, "#") {
		h = "#" + h
	}
	return h
}

// Model holds the count.
type Model struct {
	Value int64
}

// Update applies msg and reports whether the count changed in a way worth
// redrawing. None and unrecognised messages report false.
func (m *Model) Update(msg task.Message) bool {
	switch msg := msg.(type) {
	case Msg:
		switch msg {
		case Increment:
			m.Value++
			log.Debug("plus one", "value", m.Value)
			return true
		case Decrement:
			m.Value--
			log.Debug("minus one", "value", m.Value)
			return true
		default:
			log.Debug("no action")
			return false
		}
	case Bulk:
		changed := false
		for _, sub := range msg {
			if m.Update(sub) {
				changed = true
			}
		}
		log.Debug("bulk action", "count", len(msg), "value", m.Value)
		return changed
	default:
		return false
	}
}
