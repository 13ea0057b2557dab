package audio

import (
	"context"
	"sync"
)

// Queue is the FIFO buffer decoupling the socket-receive loop from the
// transcription pipeline. Put never blocks; Get suspends until an item is
// available or the context is done. A nil frame is the end-of-stream
// sentinel: it is always the last item enqueued and is observed by exactly
// one Get, after which the consumer loop exits.
//
// By default the queue is unbounded: real-time audio arrives at a bounded
// rate, so growth only occurs while the consumer stalls. An optional
// capacity applies a drop-oldest policy instead, since blocking the socket
// reader would stall keepalive handling.
type Queue struct {
	mu       sync.Mutex
	items    [][]byte
	capacity int
	closed   bool
	dropped  int

	wake chan struct{}
}

// NewQueue creates a queue. A capacity of zero means unbounded.
func NewQueue(capacity int) *Queue {
	return &Queue{
		capacity: capacity,
		wake:     make(chan struct{}, 1),
	}
}

// Put enqueues a frame. A nil frame marks the end of the stream; anything
// enqueued after it is discarded.
func (q *Queue) Put(frame []byte) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	if frame == nil {
		q.closed = true
	} else if q.capacity > 0 && len(q.items) >= q.capacity {
		q.items = q.items[1:]
		q.dropped++
	}
	q.items = append(q.items, frame)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Get dequeues the next frame, suspending until one is available. It returns
// (nil, nil) exactly once, for the end-of-stream sentinel. A context error
// leaves the queue contents untouched.
func (q *Queue) Get(ctx context.Context) ([]byte, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			frame := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return frame, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.wake:
		}
	}
}

// Len reports the number of buffered items, including a pending sentinel.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped reports how many frames the drop-oldest policy has discarded.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
