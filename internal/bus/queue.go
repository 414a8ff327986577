package bus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"pricestream/internal/model"
)

const DefaultCapacity = 100

var ErrQueueClosed = errors.New("event queue closed")

// Queue is a bounded FIFO between one producer and one consumer.
// A full queue suspends the producer; events are never dropped.
type Queue struct {
	ch      chan model.StreamEvent
	stopped chan struct{}

	closed   uint32
	stopOnce sync.Once
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{
		ch:      make(chan model.StreamEvent, capacity),
		stopped: make(chan struct{}),
	}
}

// Publish enqueues an event, blocking while the queue is full.
// It must only be called from the producer goroutine.
func (q *Queue) Publish(ctx context.Context, e model.StreamEvent) error {
	if atomic.LoadUint32(&q.closed) != 0 {
		return ErrQueueClosed
	}
	select {
	case <-q.stopped:
		return ErrQueueClosed
	default:
	}

	select {
	case q.ch <- e:
		return nil
	case <-q.stopped:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close marks the end of input. Queued events remain readable.
// It must only be called from the producer goroutine.
func (q *Queue) Close() {
	if atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		close(q.ch)
	}
}

// Stop is called by the consumer when it gives up reading. Pending events are
// abandoned and a suspended producer is released with ErrQueueClosed.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stopped)
	})
}

// Next blocks until an event is available. It returns false once the queue is
// closed and drained, stopped, or ctx is done.
func (q *Queue) Next(ctx context.Context) (model.StreamEvent, bool) {
	select {
	case <-q.stopped:
		return model.StreamEvent{}, false
	case <-ctx.Done():
		return model.StreamEvent{}, false
	default:
	}

	select {
	case e, ok := <-q.ch:
		return e, ok
	case <-q.stopped:
		return model.StreamEvent{}, false
	case <-ctx.Done():
		return model.StreamEvent{}, false
	}
}

// Run consumes events until the context is done or the queue is closed.
func (q *Queue) Run(ctx context.Context, handler func(model.StreamEvent)) {
	for {
		e, ok := q.Next(ctx)
		if !ok {
			return
		}
		handler(e)
	}
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return cap(q.ch)
}
