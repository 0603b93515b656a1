package operation

import (
	"context"
	"errors"
	"fmt"

	"github.com/onflow/flow-blocksync/model/flow"
	"github.com/onflow/flow-blocksync/storage"
)

// BlockKey returns the key under which the block with the given ID is stored.
func BlockKey(blockID flow.Identifier) []byte {
	return MakePrefix(codeBlock, blockID)
}

// InsertBlock encodes the block and writes it under its ID.
// No errors are expected during normal operation.
func InsertBlock(store storage.Store, blockID flow.Identifier, block *flow.Block) error {
	val, err := encodeEntity(block)
	if err != nil {
		return err
	}
	err = store.Write(BlockKey(blockID), val)
	if err != nil {
		return fmt.Errorf("could not write block: %w", err)
	}
	return nil
}

// RetrieveBlock reads and decodes the block with the given ID.
// Expected errors during normal operations:
//   - storage.ErrNotFound if the block is not stored
//   - storage.ErrCorrupted if the stored value cannot be decoded
func RetrieveBlock(store storage.Store, blockID flow.Identifier, block *flow.Block) error {
	val, err := store.Read(BlockKey(blockID))
	if err != nil {
		return err
	}
	return decodeValue(val, block)
}

// BlockExists checks whether the block with the given ID is stored.
// No errors are expected during normal operation.
func BlockExists(store storage.Store, blockID flow.Identifier) (bool, error) {
	_, err := store.Read(BlockKey(blockID))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("could not check block existence: %w", err)
}

// WaitForBlock blocks until the block with the given ID is stored.
// Expected errors during normal operations:
//   - storage.ErrClosed if the store is closed first
//   - the context error if the context is cancelled first
func WaitForBlock(ctx context.Context, store storage.Store, blockID flow.Identifier) error {
	_, err := store.NotifyRead(ctx, BlockKey(blockID))
	return err
}
