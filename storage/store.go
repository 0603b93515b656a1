package storage

import (
	"context"

	"github.com/onflow/flow-blocksync/model/flow"
)

// Store is a durable key-value store which can notify readers about the
// arrival of a key.
type Store interface {
	// Read returns the value stored under the key. It never blocks waiting
	// for the key to appear.
	// Expected errors during normal operations:
	//   - ErrNotFound if no value is stored under the key
	//   - ErrClosed if the store has been closed
	Read(key []byte) ([]byte, error)

	// Write durably stores the value under the key, and wakes up all
	// pending NotifyRead calls for the key. The write is durable when Write
	// returns.
	Write(key []byte, value []byte) error

	// NotifyRead returns the value stored under the key. If the key is not
	// present yet, it blocks until the key is written. Any number of callers
	// may wait for the same key concurrently.
	// Expected errors during normal operations:
	//   - ErrClosed if the store is closed before the key is written
	//   - the context error if the context is cancelled first
	NotifyRead(ctx context.Context, key []byte) ([]byte, error)

	// Close closes the store and fails all pending NotifyRead calls with
	// ErrClosed.
	Close() error
}

// Blocks represents persistent storage for blocks.
type Blocks interface {
	// Store stores the block under its ID. Storing a block which is already
	// present is a no-op.
	Store(block *flow.Block) error

	// ByID returns the block with the given ID.
	// Expected errors during normal operations:
	//   - ErrNotFound if no block with the ID is stored
	//   - ErrCorrupted if the stored block cannot be decoded
	ByID(blockID flow.Identifier) (*flow.Block, error)

	// Exists returns whether a block with the given ID is stored.
	Exists(blockID flow.Identifier) (bool, error)

	// WaitFor blocks until a block with the given ID is stored.
	// Expected errors during normal operations:
	//   - ErrClosed if the underlying store is closed first
	//   - the context error if the context is cancelled first
	WaitFor(ctx context.Context, blockID flow.Identifier) error
}
