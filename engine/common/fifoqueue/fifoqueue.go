package fifoqueue

import (
	"fmt"
	"math"
	"sync"

	"github.com/ef-ds/deque"
)

// FifoQueue is a concurrency safe FIFO queue of bounded capacity. Pushing to
// a full queue drops the element instead of blocking, so producers on the
// network path never wait for the consuming worker.
type FifoQueue[T any] struct {
	mu       sync.Mutex
	elements deque.Deque
	capacity int
	observer LengthObserver
}

// LengthObserver is called with the new queue length after every successful
// push or pop. It is invoked outside the queue's lock and must not block.
type LengthObserver func(length int)

type options struct {
	capacity int
	observer LengthObserver
}

// Option configures a FifoQueue at construction.
type Option func(*options) error

// WithCapacity bounds the number of elements the queue holds.
func WithCapacity(capacity int) Option {
	return func(o *options) error {
		if capacity < 1 {
			return fmt.Errorf("queue capacity must be positive, got %d", capacity)
		}
		o.capacity = capacity
		return nil
	}
}

// WithLengthObserver installs a callback reporting length changes, typically
// a metrics gauge.
func WithLengthObserver(observer LengthObserver) Option {
	return func(o *options) error {
		if observer == nil {
			return fmt.Errorf("length observer must not be nil")
		}
		o.observer = observer
		return nil
	}
}

// NewFifoQueue creates an empty queue. Without WithCapacity the queue is
// effectively unbounded.
func NewFifoQueue[T any](opts ...Option) (*FifoQueue[T], error) {
	o := &options{
		capacity: math.MaxInt,
		observer: func(int) {},
	}
	for _, apply := range opts {
		err := apply(o)
		if err != nil {
			return nil, fmt.Errorf("invalid queue option: %w", err)
		}
	}
	return &FifoQueue[T]{
		capacity: o.capacity,
		observer: o.observer,
	}, nil
}

// Push appends the element to the tail of the queue. Returns false if the
// queue is full, in which case the element is dropped.
func (q *FifoQueue[T]) Push(element T) bool {
	q.mu.Lock()
	if q.elements.Len() >= q.capacity {
		q.mu.Unlock()
		return false
	}
	q.elements.PushBack(element)
	length := q.elements.Len()
	q.mu.Unlock()

	q.observer(length)
	return true
}

// Pop removes and returns the head of the queue. Returns false if the queue
// is empty.
func (q *FifoQueue[T]) Pop() (T, bool) {
	q.mu.Lock()
	head, ok := q.elements.PopFront()
	length := q.elements.Len()
	q.mu.Unlock()

	if !ok {
		var zero T
		return zero, false
	}
	q.observer(length)
	return head.(T), true
}

// Len returns the number of queued elements.
func (q *FifoQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.elements.Len()
}
