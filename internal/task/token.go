package task

import "sync/atomic"

// State is the state of a one-shot Token.
type State int32

const (
	StatePending State = iota
	StateDelivered
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateDelivered:
		return "delivered"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Token is a one-shot completion token. It leaves StatePending exactly once,
// either by Deliver or by Cancel, whichever happens first.
//
// The zero value is a pending token.
type Token struct {
	state atomic.Int32
}

// State returns the current state.
func (t *Token) State() State {
	return State(t.state.Load())
}

// Active reports whether the token is still pending.
func (t *Token) Active() bool {
	return t.State() == StatePending
}

// Deliver moves a pending token to StateDelivered. It returns false if the
// token already left StatePending, in which case the caller must not deliver.
func (t *Token) Deliver() bool {
	return t.state.CompareAndSwap(int32(StatePending), int32(StateDelivered))
}

// Cancel moves a pending token to StateCancelled. It returns false if the
// token already left StatePending.
func (t *Token) Cancel() bool {
	return t.state.CompareAndSwap(int32(StatePending), int32(StateCancelled))
}
