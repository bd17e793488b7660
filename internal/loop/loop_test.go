package loop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRunPendingOrder(t *testing.T) {
	l := New()
	var got []int
	for i := 0; i < 5; i++ {
		n := i
		l.Post(func() { got = append(got, n) })
	}

	if l.Pending() != 5 {
		t.Fatalf("expected 5 pending, got %d", l.Pending())
	}
	if n := l.RunPending(); n != 5 {
		t.Errorf("expected 5 functions run, got %d", n)
	}
	for i, v := range got {
		if v != i {
			t.Errorf("expected FIFO order, got %v", got)
			break
		}
	}
}

func TestPostFromLoopRunsAfterCurrentTurn(t *testing.T) {
	l := New()
	var got []string
	l.Post(func() {
		l.Post(func() { got = append(got, "posted") })
		got = append(got, "first")
	})
	l.Post(func() { got = append(got, "second") })

	l.RunPending()

	want := []string{"first", "second", "posted"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
			break
		}
	}
}

func TestRunSerializesConcurrentPosts(t *testing.T) {
	l := New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const total = 200
	var running, count int
	var overlap bool
	var wg sync.WaitGroup

	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Post(func() {
				running++
				if running > 1 {
					overlap = true
				}
				count++
				running--
				if count == total {
					cancel()
				}
			})
		}()
	}

	err := l.Run(ctx)
	wg.Wait()

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if overlap {
		t.Error("expected posted functions never to overlap")
	}
	if count != total {
		t.Errorf("expected %d functions run, got %d", total, count)
	}
}

func TestRunStopsOnContextDone(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	l.Post(func() { ran = true })

	if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if ran {
		t.Error("expected queued function not to run after cancel")
	}
}
