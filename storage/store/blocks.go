package store

import (
	"context"
	"fmt"

	"github.com/onflow/flow-blocksync/model/flow"
	"github.com/onflow/flow-blocksync/storage"
	"github.com/onflow/flow-blocksync/storage/operation"
)

// Blocks implements block storage on top of a key-value store, with an LRU
// cache for recently used blocks.
type Blocks struct {
	db    storage.Store
	cache *Cache[flow.Identifier, *flow.Block]
}

var _ storage.Blocks = (*Blocks)(nil)

// NewBlocks creates block storage caching up to cacheSize blocks.
func NewBlocks(db storage.Store, cacheSize uint) *Blocks {
	store := func(blockID flow.Identifier, block *flow.Block) error {
		return operation.InsertBlock(db, blockID, block)
	}

	retrieve := func(blockID flow.Identifier) (*flow.Block, error) {
		var block flow.Block
		err := operation.RetrieveBlock(db, blockID, &block)
		return &block, err
	}

	b := &Blocks{
		db: db,
		cache: newCache(
			withLimit[flow.Identifier, *flow.Block](cacheSize),
			withStore(store),
			withRetrieve(retrieve),
		),
	}
	return b
}

func (b *Blocks) Store(block *flow.Block) error {
	blockID := block.ID()
	exists, err := b.Exists(blockID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	err = b.cache.Put(blockID, block)
	if err != nil {
		return fmt.Errorf("could not store block %x: %w", blockID, err)
	}
	return nil
}

func (b *Blocks) ByID(blockID flow.Identifier) (*flow.Block, error) {
	block, err := b.cache.Get(blockID)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve block %x: %w", blockID, err)
	}
	return block, nil
}

func (b *Blocks) Exists(blockID flow.Identifier) (bool, error) {
	if b.cache.IsCached(blockID) {
		return true, nil
	}
	return operation.BlockExists(b.db, blockID)
}

func (b *Blocks) WaitFor(ctx context.Context, blockID flow.Identifier) error {
	if b.cache.IsCached(blockID) {
		return nil
	}
	err := operation.WaitForBlock(ctx, b.db, blockID)
	if err != nil {
		return fmt.Errorf("could not wait for block %x: %w", blockID, err)
	}
	return nil
}
