package watch

import (
	"context"
	"errors"
	"sync"

	"github.com/onflow/flow-blocksync/storage"
)

// Registry keeps track of readers waiting for keys to be written. Stores use
// it to implement NotifyRead on top of plain reads and writes: the writer
// calls Publish after a successful write, and every waiter of the key
// re-reads the value.
type Registry struct {
	mu     sync.Mutex
	closed chan struct{}
	subs   map[string]map[*Subscription]struct{}
}

// Subscription is a one-shot notification for a single key. The channel
// returned by Notified is closed when the key is published.
type Subscription struct {
	registry *Registry
	key      string
	notified chan struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		closed: make(chan struct{}),
		subs:   make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers interest in the key.
// Expected errors during normal operations:
//   - storage.ErrClosed if the registry has been closed
func (r *Registry) Subscribe(key []byte) (*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isClosed() {
		return nil, storage.ErrClosed
	}

	sub := &Subscription{
		registry: r,
		key:      string(key),
		notified: make(chan struct{}),
	}
	waiting, ok := r.subs[sub.key]
	if !ok {
		waiting = make(map[*Subscription]struct{})
		r.subs[sub.key] = waiting
	}
	waiting[sub] = struct{}{}
	return sub, nil
}

// Publish wakes up all subscribers of the key.
func (r *Registry) Publish(key []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	waiting, ok := r.subs[string(key)]
	if !ok {
		return
	}
	delete(r.subs, string(key))
	for sub := range waiting {
		close(sub.notified)
	}
}

// Subscribers returns the number of subscribers of the key.
func (r *Registry) Subscribers(key []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs[string(key)])
}

// Close releases all subscribers. It is safe to call Close more than once.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isClosed() {
		return
	}
	close(r.closed)
	r.subs = make(map[string]map[*Subscription]struct{})
}

// Closed returns a channel which is closed when the registry is closed.
func (r *Registry) Closed() <-chan struct{} {
	return r.closed
}

// IsClosed returns whether the registry has been closed.
func (r *Registry) IsClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isClosed()
}

func (r *Registry) isClosed() bool {
	select {
	case <-r.closed:
		return true
	default:
		return false
	}
}

// Notified returns the channel closed once the key has been published.
func (s *Subscription) Notified() <-chan struct{} {
	return s.notified
}

// Unsubscribe removes the subscription. It is a no-op if the key has
// already been published.
func (s *Subscription) Unsubscribe() {
	r := s.registry
	r.mu.Lock()
	defer r.mu.Unlock()

	waiting, ok := r.subs[s.key]
	if !ok {
		return
	}
	delete(waiting, s)
	if len(waiting) == 0 {
		delete(r.subs, s.key)
	}
}

// Wait returns the value of the key as soon as read finds it. The
// subscription is taken before every read, so a write between the read and
// the wait is never missed.
// Expected errors during normal operations:
//   - storage.ErrClosed if the registry is closed before the key is read
//   - the context error if the context is cancelled first
func (r *Registry) Wait(ctx context.Context, key []byte, read func([]byte) ([]byte, error)) ([]byte, error) {
	for {
		sub, err := r.Subscribe(key)
		if err != nil {
			return nil, err
		}

		value, err := read(key)
		if err == nil {
			sub.Unsubscribe()
			return value, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			sub.Unsubscribe()
			return nil, err
		}

		select {
		case <-ctx.Done():
			sub.Unsubscribe()
			return nil, ctx.Err()
		case <-r.closed:
			return nil, storage.ErrClosed
		case <-sub.Notified():
		}
	}
}
