package task

import "sync"

// Sink receives the messages a task produces.
type Sink interface {
	Push(Message)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Message)

// Push calls f(m).
func (f SinkFunc) Push(m Message) {
	f(m)
}

// Chan is a Sink backed by a channel. Push blocks when the channel is full;
// messages are never dropped.
type Chan chan Message

// Push sends m on the channel.
func (c Chan) Push(m Message) {
	c <- m
}

// Queue is a Sink that records messages in arrival order.
type Queue struct {
	mu   sync.Mutex
	msgs []Message
}

// Push appends m to the queue.
func (q *Queue) Push(m Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, m)
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.msgs)
}

// Messages returns a copy of the queued messages.
func (q *Queue) Messages() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Message, len(q.msgs))
	copy(out, q.msgs)
	return out
}

// Drain returns the queued messages and empties the queue.
func (q *Queue) Drain() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.msgs
	q.msgs = nil
	return out
}
