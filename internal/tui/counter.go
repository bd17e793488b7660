package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spiffcs/webtask/internal/browser/memory"
	"github.com/spiffcs/webtask/internal/counter"
	"github.com/spiffcs/webtask/internal/log"
	"github.com/spiffcs/webtask/internal/task"
)

type counterKeys struct {
	Increment key.Binding
	Decrement key.Binding
	Twice     key.Binding
	LinkInc   key.Binding
	LinkDec   key.Binding
	PushInc   key.Binding
	PushDec   key.Binding
	Back      key.Binding
	Forward   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultCounterKeys() counterKeys {
	return counterKeys{
		Increment: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "increment")),
		Decrement: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "decrement")),
		Twice:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "increment twice")),
		LinkInc:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "go to #increment")),
		LinkDec:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "go to #decrement")),
		PushInc:   key.NewBinding(key.WithKeys("I"), key.WithHelp("I", "push #increment")),
		PushDec:   key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "push #decrement")),
		Back:      key.NewBinding(key.WithKeys("left", "b"), key.WithHelp("←/b", "back")),
		Forward:   key.NewBinding(key.WithKeys("right", "f"), key.WithHelp("→/f", "forward")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k counterKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Increment, k.Decrement, k.LinkInc, k.LinkDec, k.Back, k.Forward, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k counterKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Increment, k.Decrement, k.Twice},
		{k.LinkInc, k.LinkDec, k.PushInc, k.PushDec},
		{k.Back, k.Forward, k.Help, k.Quit},
	}
}

// counterSession is shared by every copy of a CounterModel so the app can
// be attached after the program that feeds it has been created.
type counterSession struct {
	window *memory.Window
	app    *counter.App
}

// CounterModel is the Bubble Tea model for the routed counter.
type CounterModel struct {
	session *counterSession
	model   counter.Model
	keys    counterKeys
	help    help.Model
	last    string
	status  string
	err     error
	width   int
}

// NewCounterModel creates a counter view over w.
func NewCounterModel(w *memory.Window) CounterModel {
	return CounterModel{
		session: &counterSession{window: w},
		keys:    defaultCounterKeys(),
		help:    help.New(),
		last:    "none",
		width:   80,
	}
}

// Attach binds the running app. Every copy of the model sees it.
func (m CounterModel) Attach(app *counter.App) {
	m.session.app = app
}

// Value returns the current count.
func (m CounterModel) Value() int64 {
	return m.model.Value
}

// Init fires the window's load event, which routes the initial location.
func (m CounterModel) Init() tea.Cmd {
	w := m.session.window
	return func() tea.Msg {
		w.FireLoad()
		return nil
	}
}

// Update handles messages.
func (m CounterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case counter.Msg, counter.Bulk:
		m.apply(msg, "route")
		return m, nil

	case historyMsg:
		if !msg.moved {
			m.status = fmt.Sprintf("nothing to go %s to", msg.dir)
		} else {
			m.status = ""
		}
		return m, nil
	}

	return m, nil
}

func (m CounterModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := m.session.window

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Increment):
		m.apply(counter.Increment, "button")
	case key.Matches(msg, m.keys.Decrement):
		m.apply(counter.Decrement, "button")
	case key.Matches(msg, m.keys.Twice):
		m.apply(counter.Bulk{counter.Increment, counter.Increment}, "button")
	case key.Matches(msg, m.keys.LinkInc):
		return m, navigate(w, "#increment")
	case key.Matches(msg, m.keys.LinkDec):
		return m, navigate(w, "#decrement")
	case key.Matches(msg, m.keys.PushInc):
		m.push("#increment")
	case key.Matches(msg, m.keys.PushDec):
		m.push("#decrement")
	case key.Matches(msg, m.keys.Back):
		return m, history(w, -1)
	case key.Matches(msg, m.keys.Forward):
		return m, history(w, 1)
	}
	return m, nil
}

// push writes a history entry and applies the returned message directly;
// the app's sink sees nothing.
func (m *CounterModel) push(hash string) {
	if m.session.app == nil {
		return
	}
	msg, err := m.session.app.Push(hash)
	if err != nil {
		m.err = err
		log.Warn("push failed", "hash", hash, "error", err)
		return
	}
	m.err = nil
	m.apply(msg, "push")
}

func (m *CounterModel) apply(msg task.Message, source string) {
	m.model.Update(msg)
	m.last = fmt.Sprintf("%s (%s)", counter.Describe(msg), source)
}

// navigate follows a fragment link. The window dispatches PopState from
// the command goroutine so the routed message reaches Update through the
// program rather than re-entering it.
func navigate(w *memory.Window, hash string) tea.Cmd {
	return func() tea.Msg {
		if err := w.Navigate(hash); err != nil {
			log.Warn("navigation failed", "hash", hash, "error", err)
		}
		return nil
	}
}

func history(w *memory.Window, delta int) tea.Cmd {
	dir := "back"
	if delta > 0 {
		dir = "forward"
	}
	return func() tea.Msg {
		return historyMsg{moved: w.Go(delta), dir: dir}
	}
}

// View renders the model.
func (m CounterModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Routed counter") + "\n\n")
	b.WriteString(dimStyle.Render("Use the keys below or go to ") +
		linkStyle.Render("#increment") + dimStyle.Render(" or ") +
		linkStyle.Render("#decrement") + "\n\n")
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.model.Value)) + "\n")

	w := m.session.window
	href, _ := w.Href()
	b.WriteString(messageStyle.Render(fmt.Sprintf("  %s  [%d/%d]", href, w.Index()+1, w.Len())) + "\n")
	b.WriteString(messageStyle.Render("  last: "+m.last) + "\n")

	if m.err != nil {
		b.WriteString("  " + errorStyle.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString("  " + warnStyle.Render(m.status) + "\n")
	}

	b.WriteString(footerStyle.Render(m.help.View(m.keys)))
	b.WriteString("\n")
	return b.String()
}
