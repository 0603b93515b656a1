// Package storagetest contains behaviour tests shared by all storage.Store
// backends.
package storagetest

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

// NewStoreFunc creates a fresh, empty store for a single test.
type NewStoreFunc func(t *testing.T) storage.Store

// RunStoreTests runs the common store behaviour tests against the backend.
func RunStoreTests(t *testing.T, newStore NewStoreFunc) {
	t.Run("read missing key", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Read([]byte("missing"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("write then read", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Write([]byte("key"), []byte("value")))
		value, err := store.Read([]byte("key"))
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), value)

		require.NoError(t, store.Write([]byte("key"), []byte("other")))
		value, err = store.Read([]byte("key"))
		require.NoError(t, err)
		assert.Equal(t, []byte("other"), value)
	})

	t.Run("notify read returns present value eagerly", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Write([]byte("key"), []byte("value")))

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		value, err := store.NotifyRead(ctx, []byte("key"))
		require.NoError(t, err)
		assert.Equal(t, []byte("value"), value)
	})

	t.Run("notify read wakes all waiters on write", func(t *testing.T) {
		store := newStore(t)
		key := []byte("late")

		const waiters = 5
		var started, finished sync.WaitGroup
		started.Add(waiters)
		finished.Add(waiters)
		for i := 0; i < waiters; i++ {
			go func() {
				defer finished.Done()
				started.Done()
				value, err := store.NotifyRead(context.Background(), key)
				assert.NoError(t, err)
				assert.Equal(t, []byte("value"), value)
			}()
		}
		started.Wait()

		require.NoError(t, store.Write(key, []byte("value")))
		unittest.RequireReturnsBefore(t, finished.Wait, 2*time.Second, "waiters were not woken up by write")
	})

	t.Run("notify read is cancellable", func(t *testing.T) {
		store := newStore(t)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		_, err := store.NotifyRead(ctx, []byte("never"))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("close releases waiters", func(t *testing.T) {
		store := newStore(t)
		errs := make(chan error, 1)
		go func() {
			_, err := store.NotifyRead(context.Background(), []byte("never"))
			errs <- err
		}()

		// give the waiter a chance to subscribe; releasing it is required either way
		time.Sleep(20 * time.Millisecond)
		require.NoError(t, store.Close())

		select {
		case err := <-errs:
			assert.ErrorIs(t, err, storage.ErrClosed)
		case <-time.After(2 * time.Second):
			t.Fatal("waiter was not released by close")
		}

		_, err := store.Read([]byte("key"))
		assert.ErrorIs(t, err, storage.ErrClosed)
		assert.ErrorIs(t, store.Write([]byte("key"), []byte("value")), storage.ErrClosed)
		require.NoError(t, store.Close())
	})
}
