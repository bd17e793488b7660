package task

import "sync"

// Owner holds the tasks created by one component. Destroying the owner
// cancels every task it still holds, so no listener or callback outlives
// the component that created it.
//
// The zero value is ready to use.
type Owner struct {
	mu        sync.Mutex
	tasks     []Cancellable
	destroyed bool
}

// Adopt hands t to the owner. If the owner was already destroyed, t is
// cancelled immediately.
func (o *Owner) Adopt(t Cancellable) {
	o.mu.Lock()
	if o.destroyed {
		o.mu.Unlock()
		t.Cancel()
		return
	}

	// Drop tasks that finished on their own.
	live := o.tasks[:0]
	for _, held := range o.tasks {
		if held.IsActive() {
			live = append(live, held)
		}
	}
	o.tasks = append(live, t)
	o.mu.Unlock()
}

// Active returns the number of held tasks that are still active.
func (o *Owner) Active() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, t := range o.tasks {
		if t.IsActive() {
			n++
		}
	}
	return n
}

// Destroy cancels every held task that is still active. Calling it more
// than once is a no-op.
func (o *Owner) Destroy() {
	o.mu.Lock()
	if o.destroyed {
		o.mu.Unlock()
		return
	}
	o.destroyed = true
	tasks := o.tasks
	o.tasks = nil
	o.mu.Unlock()

	for _, t := range tasks {
		if t.IsActive() {
			t.Cancel()
		}
	}
}
