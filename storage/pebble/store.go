package pebble

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/hashicorp/go-multierror"

	"github.com/onflow/flow-blocksync/storage"
	"github.com/onflow/flow-blocksync/storage/watch"
)

// Store implements storage.Store on top of a pebble database.
type Store struct {
	mu     sync.RWMutex
	db     *pebble.DB
	owned  bool
	closed bool
	watch  *watch.Registry
}

var _ storage.Store = (*Store)(nil)

// Open opens the pebble database in the given directory. The database is
// closed when the store is closed.
func Open(dir string) (*Store, error) {
	cache := pebble.NewCache(1 << 20)
	defer cache.Unref()
	db, err := pebble.Open(dir, DefaultPebbleOptions(cache))
	if err != nil {
		return nil, fmt.Errorf("could not open pebble db: %w", err)
	}
	s := NewStore(db)
	s.owned = true
	return s, nil
}

// DefaultPebbleOptions returns the options used for block storage.
func DefaultPebbleOptions(cache *pebble.Cache) *pebble.Options {
	return &pebble.Options{
		Cache:                    cache,
		MemTableSize:             64 << 20,
		MaxConcurrentCompactions: func() int { return 4 },
	}
}

// NewStore wraps an already open database. The caller remains responsible
// for closing the database, which must happen after the store is closed.
func NewStore(db *pebble.DB) *Store {
	return &Store{
		db:    db,
		watch: watch.NewRegistry(),
	}
}

func (s *Store) Read(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, storage.ErrClosed
	}

	val, closer, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("could not load data: %w", err)
	}
	defer closer.Close()

	// the value is only valid until the closer is closed
	value := make([]byte, len(val))
	copy(value, val)
	return value, nil
}

func (s *Store) Write(key []byte, value []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return storage.ErrClosed
	}

	err := s.db.Set(key, value, pebble.Sync)
	if err != nil {
		return fmt.Errorf("could not store data: %w", err)
	}
	s.watch.Publish(key)
	return nil
}

func (s *Store) NotifyRead(ctx context.Context, key []byte) ([]byte, error) {
	return s.watch.Wait(ctx, key, s.Read)
}

// Close releases all pending NotifyRead calls and closes the database if it
// was opened by the store. Pebble panics when a database is closed twice, so
// repeated calls are no-ops.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.watch.Close()

	var result *multierror.Error
	if s.owned {
		err := s.db.Close()
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("could not close pebble db: %w", err))
		}
	}
	return result.ErrorOrNil()
}
