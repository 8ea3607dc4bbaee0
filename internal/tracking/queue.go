// Package tracking delivers analytics events off the flow's critical path.
// The controller enqueues into a bounded Queue without blocking and a
// Worker drains it into the real sink.
package tracking

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/petrijr/intakeflow/pkg/api"
)

// ErrQueueFull is returned by Track when the event was dropped.
var ErrQueueFull = errors.New("tracking queue full")

// Queue is a bounded FIFO of flow events backed by a buffered channel.
// It is safe for concurrent use.
type Queue struct {
	ch      chan api.FlowEvent
	dropped atomic.Int64
}

// NewQueue creates a queue with the given capacity; non-positive values
// default to 1024.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Queue{ch: make(chan api.FlowEvent, capacity)}
}

var _ api.EventSink = (*Queue)(nil)

// Track enqueues ev without blocking. When the queue is full the event is
// dropped and counted.
func (q *Queue) Track(ctx context.Context, ev api.FlowEvent) error {
	select {
	case q.ch <- ev:
		return nil
	default:
		q.dropped.Add(1)
		return ErrQueueFull
	}
}

// Dequeue blocks until an event is available or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (api.FlowEvent, error) {
	select {
	case ev := <-q.ch:
		return ev, nil
	case <-ctx.Done():
		return api.FlowEvent{}, ctx.Err()
	}
}

// TryDequeue returns the next event if one is queued.
func (q *Queue) TryDequeue() (api.FlowEvent, bool) {
	select {
	case ev := <-q.ch:
		return ev, true
	default:
		return api.FlowEvent{}, false
	}
}

func (q *Queue) Len() int {
	return len(q.ch)
}

// Dropped returns the number of events lost to a full queue.
func (q *Queue) Dropped() int64 {
	return q.dropped.Load()
}
