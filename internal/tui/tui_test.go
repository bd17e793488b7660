package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spiffcs/webtask/internal/browser/memory"
	"github.com/spiffcs/webtask/internal/counter"
	"github.com/spiffcs/webtask/internal/request"
	"github.com/spiffcs/webtask/internal/task"
)

type fakeTask struct {
	cancels int
}

func (f *fakeTask) IsActive() bool { return f.cancels == 0 }
func (f *fakeTask) Cancel()        { f.cancels++ }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStatusDistinct(t *testing.T) {
	statuses := []Status{StatusPending, StatusRunning, StatusComplete, StatusError, StatusCancelled}
	seen := make(map[string]bool)

	for _, s := range statuses {
		if seen[s.String()] {
			t.Errorf("duplicate status name: %s", s)
		}
		seen[s.String()] = true
	}
}

func TestStatusIcon(t *testing.T) {
	if StatusIcon(StatusRunning, "X") == StatusIcon(StatusComplete, "X") {
		t.Error("expected running and complete icons to differ")
	}
	if !strings.Contains(StatusIcon(StatusRunning, "X"), "X") {
		t.Error("expected running icon to use the spinner frame")
	}
}

func TestFetchTranslator(t *testing.T) {
	msg := FetchTranslator(request.Response{Status: 201})
	fm, ok := msg.(FetchedMsg)
	if !ok || fm.Response.Status != 201 {
		t.Errorf("expected FetchedMsg with status 201, got %#v", msg)
	}
}

func TestFetchModelComplete(t *testing.T) {
	ft := &fakeTask{}
	m := NewFetchModel(context.Background(), "GET https://api.local/", ft, make(task.Chan, 1))

	updated, cmd := m.Update(FetchedMsg{Response: request.Response{Status: 200, Body: "ok"}})
	fm := updated.(FetchModel)

	if fm.Status() != StatusComplete {
		t.Errorf("expected complete, got %s", fm.Status())
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
	if fm.Result().Response.Body != "ok" || fm.Result().Cancelled {
		t.Errorf("unexpected result %+v", fm.Result())
	}
	if ft.cancels != 0 {
		t.Error("expected no cancel on completion")
	}
	if !strings.Contains(fm.View(), "200 OK") {
		t.Errorf("expected status in view, got %q", fm.View())
	}
}

func TestFetchModelTransportError(t *testing.T) {
	m := NewFetchModel(context.Background(), "GET x", &fakeTask{}, make(task.Chan, 1))

	updated, _ := m.Update(FetchedMsg{Response: request.Response{Err: errors.New("refused")}})
	fm := updated.(FetchModel)

	if fm.Status() != StatusError {
		t.Errorf("expected error status, got %s", fm.Status())
	}
	if !strings.Contains(fm.View(), "refused") {
		t.Errorf("expected error in view, got %q", fm.View())
	}
}

func TestFetchModelCtrlCCancelsTask(t *testing.T) {
	ft := &fakeTask{}
	m := NewFetchModel(context.Background(), "GET x", ft, make(task.Chan, 1))

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	fm := updated.(FetchModel)

	if ft.cancels != 1 {
		t.Errorf("expected one cancel, got %d", ft.cancels)
	}
	if !fm.Result().Cancelled || fm.Status() != StatusCancelled {
		t.Errorf("expected cancelled result, got %+v", fm.Result())
	}

	// A response that slips through after cancel is ignored.
	updated, _ = fm.Update(FetchedMsg{Response: request.Response{Status: 200}})
	if updated.(FetchModel).Status() != StatusCancelled {
		t.Error("expected status to stay cancelled")
	}
	if ft.cancels != 1 {
		t.Errorf("expected cancel called once, got %d", ft.cancels)
	}
}

func TestFetchModelContextDone(t *testing.T) {
	ft := &fakeTask{}
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	m := NewFetchModel(ctx, "GET x", ft, make(task.Chan, 1))

	msg := waitForContext(ctx)()
	updated, _ := m.Update(msg)
	fm := updated.(FetchModel)

	if ft.cancels != 1 {
		t.Errorf("expected task cancelled on context end, got %d", ft.cancels)
	}
	if !errors.Is(fm.Result().Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", fm.Result().Err)
	}
}

func TestWaitForMessage(t *testing.T) {
	ch := make(task.Chan, 1)
	ch.Push(FetchedMsg{Response: request.Response{Status: 204}})

	msg := waitForMessage(ch)()
	if fm, ok := msg.(FetchedMsg); !ok || fm.Response.Status != 204 {
		t.Errorf("expected FetchedMsg, got %#v", msg)
	}

	close(ch)
	if _, ok := waitForMessage(ch)().(doneMsg); !ok {
		t.Error("expected doneMsg when channel closed")
	}
}

func newCounter(t *testing.T) (CounterModel, *memory.Window, *task.Queue) {
	t.Helper()
	w, err := memory.New("https://app.example/")
	if err != nil {
		t.Fatal(err)
	}
	q := &task.Queue{}
	app, err := counter.Start(w, nil, q)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(app.Destroy)

	m := NewCounterModel(w)
	m.Attach(app)
	return m, w, q
}

func feed(m CounterModel, msgs ...tea.Msg) CounterModel {
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(CounterModel)
	}
	return m
}

func TestCounterButtons(t *testing.T) {
	m, _, q := newCounter(t)

	m = feed(m, runes("+"), runes("+"), runes("-"), runes("t"))
	if m.Value() != 3 {
		t.Errorf("expected 3, got %d", m.Value())
	}
	if q.Len() != 0 {
		t.Error("expected buttons not to route through the sink")
	}
}

func TestCounterLinkRoutesThroughSink(t *testing.T) {
	m, w, q := newCounter(t)

	_, cmd := m.Update(runes("i"))
	if cmd == nil {
		t.Fatal("expected navigation command")
	}
	cmd()

	msgs := q.Drain()
	if len(msgs) != 1 || msgs[0] != counter.Increment {
		t.Fatalf("expected [Increment] from the sink, got %v", msgs)
	}
	m = feed(m, msgs[0])
	if m.Value() != 1 {
		t.Errorf("expected 1, got %d", m.Value())
	}
	if href, _ := w.Href(); !strings.HasSuffix(href, "#increment") {
		t.Errorf("expected window at #increment, got %s", href)
	}
}

func TestCounterPushAppliesReturnedMessage(t *testing.T) {
	m, w, q := newCounter(t)

	m = feed(m, runes("D"))
	if m.Value() != -1 {
		t.Errorf("expected -1, got %d", m.Value())
	}
	if q.Len() != 0 {
		t.Error("expected push not to reach the sink")
	}
	if w.Len() != 2 {
		t.Errorf("expected a new history entry, got %d entries", w.Len())
	}
}

func TestCounterHistory(t *testing.T) {
	m, _, q := newCounter(t)
	m = feed(m, runes("I"))

	_, cmd := m.Update(runes("b"))
	msg := cmd()
	if hm, ok := msg.(historyMsg); !ok || !hm.moved {
		t.Fatalf("expected successful back, got %#v", msg)
	}
	if got := q.Drain(); len(got) != 1 || got[0] != counter.None {
		t.Errorf("expected [None] for start entry, got %v", got)
	}

	_, cmd = m.Update(runes("b"))
	m = feed(m, cmd())
	if !strings.Contains(m.View(), "nothing to go back to") {
		t.Errorf("expected status in view, got %q", m.View())
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	cmd()
	if got := q.Drain(); len(got) != 1 || got[0] != counter.Increment {
		t.Errorf("expected [Increment] going forward, got %v", got)
	}
}

func TestCounterInitFiresLoad(t *testing.T) {
	w, err := memory.New("https://app.example/#decrement")
	if err != nil {
		t.Fatal(err)
	}
	q := &task.Queue{}
	app, err := counter.Start(w, nil, q)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Destroy()

	m := NewCounterModel(w)
	m.Attach(app)
	m.Init()()

	if got := q.Drain(); len(got) != 1 || got[0] != counter.Decrement {
		t.Errorf("expected initial [Decrement], got %v", got)
	}
}

func TestCounterQuitAndHelp(t *testing.T) {
	m, _, _ := newCounter(t)

	m = feed(m, runes("?"))
	if !m.help.ShowAll {
		t.Error("expected full help after ?")
	}

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestProgramSinkNilProgram(t *testing.T) {
	// Must not panic.
	ProgramSink{}.Push(counter.Increment)
}
