// Package task defines the lifecycle contract shared by navigation and
// request tasks, and the sink through which tasks deliver messages.
package task

import (
	"errors"

	"github.com/google/uuid"
)

// ErrInactive is returned when an operation is attempted on a cancelled task.
var ErrInactive = errors.New("task is no longer active")

// Message is the owning application's event type. Tasks never inspect it.
type Message any

// Cancellable is implemented by every task type.
type Cancellable interface {
	// IsActive reports whether the task still holds its subscriptions.
	// It has no side effects.
	IsActive() bool

	// Cancel releases everything the task holds. It is idempotent and
	// IsActive returns false once it returns.
	Cancel()
}

// NewID returns a short identifier used to correlate a task's log lines.
func NewID() string {
	return uuid.NewString()[:8]
}
