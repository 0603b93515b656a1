package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v2"
	"github.com/hashicorp/go-multierror"

	"github.com/onflow/flow-blocksync/storage"
	"github.com/onflow/flow-blocksync/storage/watch"
)

// Store implements storage.Store on top of a badger database.
type Store struct {
	mu     sync.RWMutex
	db     *badger.DB
	owned  bool
	closed bool
	watch  *watch.Registry
}

var _ storage.Store = (*Store)(nil)

// Open opens the badger database in the given directory. The database is
// closed when the store is closed.
func Open(dir string) (*Store, error) {
	opts := badger.
		DefaultOptions(dir).
		WithKeepL0InMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("could not open badger db: %w", err)
	}
	s := NewStore(db)
	s.owned = true
	return s, nil
}

// NewStore wraps an already open database. The caller remains responsible
// for closing the database.
func NewStore(db *badger.DB) *Store {
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

	var value []byte
	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return fmt.Errorf("could not load data: %w", err)
		}
		value, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("could not copy value: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Store) Write(key []byte, value []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return storage.ErrClosed
	}

	// badger commits are synced to disk before Update returns
	err := s.db.Update(func(tx *badger.Txn) error {
		return tx.Set(key, value)
	})
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
// was opened by the store.
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
			result = multierror.Append(result, fmt.Errorf("could not close badger db: %w", err))
		}
	}
	return result.ErrorOrNil()
}
