package task

import (
	"sync"
	"testing"
)

// fakeTask counts cancellations so tests can detect duplicate releases.
type fakeTask struct {
	token   Token
	cancels int
}

func (f *fakeTask) IsActive() bool { return f.token.Active() }

func (f *fakeTask) Cancel() {
	if f.token.Cancel() {
		f.cancels++
	}
}

func TestTokenTransitions(t *testing.T) {
	tests := []struct {
		name  string
		steps func(*Token) []bool
		want  []bool
		final State
	}{
		{
			name:  "deliver then cancel",
			steps: func(tk *Token) []bool { return []bool{tk.Deliver(), tk.Cancel()} },
			want:  []bool{true, false},
			final: StateDelivered,
		},
		{
			name:  "cancel then deliver",
			steps: func(tk *Token) []bool { return []bool{tk.Cancel(), tk.Deliver()} },
			want:  []bool{true, false},
			final: StateCancelled,
		},
		{
			name:  "double cancel",
			steps: func(tk *Token) []bool { return []bool{tk.Cancel(), tk.Cancel()} },
			want:  []bool{true, false},
			final: StateCancelled,
		},
		{
			name:  "double deliver",
			steps: func(tk *Token) []bool { return []bool{tk.Deliver(), tk.Deliver()} },
			want:  []bool{true, false},
			final: StateDelivered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tk Token
			if !tk.Active() {
				t.Fatal("expected zero token to be active")
			}
			got := tt.steps(&tk)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("step %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
			if tk.State() != tt.final {
				t.Errorf("expected final state %s, got %s", tt.final, tk.State())
			}
			if tk.Active() {
				t.Error("expected token to be inactive")
			}
		})
	}
}

func TestTokenExactlyOneWinner(t *testing.T) {
	for i := 0; i < 50; i++ {
		var tk Token
		var wins int
		var mu sync.Mutex
		var wg sync.WaitGroup

		for _, op := range []func() bool{tk.Deliver, tk.Cancel, tk.Deliver, tk.Cancel} {
			wg.Add(1)
			go func(op func() bool) {
				defer wg.Done()
				if op() {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}(op)
		}
		wg.Wait()

		if wins != 1 {
			t.Fatalf("expected exactly one transition, got %d", wins)
		}
	}
}

func TestStateString(t *testing.T) {
	if StatePending.String() != "pending" {
		t.Errorf("expected pending, got %s", StatePending)
	}
	if State(42).String() != "unknown" {
		t.Errorf("expected unknown, got %s", State(42))
	}
}

func TestQueue(t *testing.T) {
	var q Queue
	q.Push("a")
	q.Push("b")

	if q.Len() != 2 {
		t.Fatalf("expected 2 messages, got %d", q.Len())
	}
	msgs := q.Messages()
	if msgs[0] != "a" || msgs[1] != "b" {
		t.Errorf("expected [a b], got %v", msgs)
	}

	drained := q.Drain()
	if len(drained) != 2 {
		t.Errorf("expected 2 drained messages, got %d", len(drained))
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue after drain, got %d", q.Len())
	}
}

func TestSinkAdapters(t *testing.T) {
	var got []Message
	var s Sink = SinkFunc(func(m Message) { got = append(got, m) })
	s.Push(1)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("expected [1], got %v", got)
	}

	ch := make(Chan, 1)
	s = ch
	s.Push("x")
	if m := <-ch; m != "x" {
		t.Errorf("expected x, got %v", m)
	}
}

func TestOwnerDestroyCancelsActiveTasks(t *testing.T) {
	var o Owner
	a, b := &fakeTask{}, &fakeTask{}
	o.Adopt(a)
	o.Adopt(b)

	b.Cancel()
	if o.Active() != 1 {
		t.Errorf("expected 1 active task, got %d", o.Active())
	}

	o.Destroy()
	o.Destroy()

	if a.IsActive() || b.IsActive() {
		t.Error("expected all tasks inactive after Destroy")
	}
	if a.cancels != 1 || b.cancels != 1 {
		t.Errorf("expected one release per task, got %d and %d", a.cancels, b.cancels)
	}
}

func TestOwnerAdoptAfterDestroy(t *testing.T) {
	var o Owner
	o.Destroy()

	late := &fakeTask{}
	o.Adopt(late)
	if late.IsActive() {
		t.Error("expected task adopted after Destroy to be cancelled")
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if len(a) != 8 {
		t.Errorf("expected 8 character id, got %q", a)
	}
	if a == b {
		t.Errorf("expected distinct ids, got %q twice", a)
	}
}
