package watch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-blocksync/storage"
	"github.com/onflow/flow-blocksync/utils/unittest"
)

// memory is a trivial map backed reader for exercising the registry.
type memory struct {
	sync.Mutex
	values map[string][]byte
}

func newMemory() *memory {
	return &memory{values: make(map[string][]byte)}
}

func (m *memory) read(key []byte) ([]byte, error) {
	m.Lock()
	defer m.Unlock()
	value, ok := m.values[string(key)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return value, nil
}

func (m *memory) write(key, value []byte) {
	m.Lock()
	m.values[string(key)] = value
	m.Unlock()
}

func TestWait_Present(t *testing.T) {
	registry := NewRegistry()
	mem := newMemory()
	mem.write([]byte("a"), []byte("value"))

	value, err := registry.Wait(context.Background(), []byte("a"), mem.read)
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), value)
	assert.Equal(t, 0, registry.Subscribers([]byte("a")))
}

func TestWait_ManyWaitersLateWrite(t *testing.T) {
	registry := NewRegistry()
	mem := newMemory()
	key := []byte("late")

	const waiters = 10
	var wg sync.WaitGroup
	wg.Add(waiters)
	for i := 0; i < waiters; i++ {
		go func() {
			defer wg.Done()
			value, err := registry.Wait(context.Background(), key, mem.read)
			assert.NoError(t, err)
			assert.Equal(t, []byte("value"), value)
		}()
	}

	require.Eventually(t, func() bool {
		return registry.Subscribers(key) == waiters
	}, time.Second, 5*time.Millisecond)

	mem.write(key, []byte("value"))
	registry.Publish(key)

	unittest.RequireReturnsBefore(t, wg.Wait, time.Second, "waiters were not woken up")
	assert.Equal(t, 0, registry.Subscribers(key))
}

func TestWait_OtherKeyDoesNotWake(t *testing.T) {
	registry := NewRegistry()
	mem := newMemory()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = registry.Wait(context.Background(), []byte("a"), mem.read)
	}()

	require.Eventually(t, func() bool {
		return registry.Subscribers([]byte("a")) == 1
	}, time.Second, 5*time.Millisecond)

	mem.write([]byte("b"), []byte("value"))
	registry.Publish([]byte("b"))
	unittest.RequireNeverClosedWithin(t, done, 50*time.Millisecond, "waiter returned for another key")

	registry.Close()
	unittest.RequireCloseBefore(t, done, time.Second, "waiter was not released on close")
}

func TestWait_Close(t *testing.T) {
	registry := NewRegistry()
	mem := newMemory()

	errs := make(chan error, 1)
	go func() {
		_, err := registry.Wait(context.Background(), []byte("a"), mem.read)
		errs <- err
	}()

	require.Eventually(t, func() bool {
		return registry.Subscribers([]byte("a")) == 1
	}, time.Second, 5*time.Millisecond)
	registry.Close()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, storage.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("waiter was not released on close")
	}

	// waiting on a closed registry fails immediately
	_, err := registry.Wait(context.Background(), []byte("a"), mem.read)
	assert.ErrorIs(t, err, storage.ErrClosed)
	// closing twice is fine
	registry.Close()
}

func TestWait_Cancel(t *testing.T) {
	registry := NewRegistry()
	mem := newMemory()

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := registry.Wait(ctx, []byte("a"), mem.read)
		errs <- err
	}()

	require.Eventually(t, func() bool {
		return registry.Subscribers([]byte("a")) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("waiter was not released on cancellation")
	}
	assert.Equal(t, 0, registry.Subscribers([]byte("a")))
}
