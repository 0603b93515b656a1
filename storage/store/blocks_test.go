package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-blocksync/model/flow"
	"github.com/onflow/flow-blocksync/storage"
	bstorage "github.com/onflow/flow-blocksync/storage/badger"
	"github.com/onflow/flow-blocksync/storage/operation"
	"github.com/onflow/flow-blocksync/storage/store"
	"github.com/onflow/flow-blocksync/utils/unittest"
)

func openBlocks(t *testing.T, cacheSize uint) (*store.Blocks, storage.Store) {
	db, err := bstorage.Open(unittest.TempDir(t))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return store.NewBlocks(db, cacheSize), db
}

func TestBlocks_StoreAndRetrieve(t *testing.T) {
	blocks, _ := openBlocks(t, 10)
	block := unittest.BlockFixture()

	_, err := blocks.ByID(block.ID())
	assert.ErrorIs(t, err, storage.ErrNotFound)
	exists, err := blocks.Exists(block.ID())
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, blocks.Store(block))
	// storing the same block again is a no-op
	require.NoError(t, blocks.Store(block))

	exists, err = blocks.Exists(block.ID())
	require.NoError(t, err)
	assert.True(t, exists)

	retrieved, err := blocks.ByID(block.ID())
	require.NoError(t, err)
	assert.True(t, block.Equals(retrieved))
	assert.Equal(t, block.ID(), retrieved.ID())
}

// TestBlocks_ReadThrough verifies that blocks evicted from the cache, or
// written by another instance, are read back from the database.
func TestBlocks_ReadThrough(t *testing.T) {
	blocks, db := openBlocks(t, 1)
	chain := unittest.BlockchainFixture(4)
	for _, block := range chain {
		require.NoError(t, blocks.Store(block))
	}

	fresh := store.NewBlocks(db, 1)
	for _, block := range chain {
		retrieved, err := blocks.ByID(block.ID())
		require.NoError(t, err)
		assert.Equal(t, block.ID(), retrieved.ID())

		retrieved, err = fresh.ByID(block.ID())
		require.NoError(t, err)
		assert.Equal(t, block.ID(), retrieved.ID())
	}
}

// TestBlocks_Genesis verifies that the genesis block survives an encoding
// round trip with an unchanged ID.
func TestBlocks_Genesis(t *testing.T) {
	blocks, db := openBlocks(t, 10)
	genesis := flow.Genesis()
	require.NoError(t, blocks.Store(genesis))

	retrieved, err := store.NewBlocks(db, 10).ByID(genesis.ID())
	require.NoError(t, err)
	assert.True(t, retrieved.CertifiedByGenesisQC())
	assert.Equal(t, genesis.ID(), retrieved.ID())
}

func TestBlocks_Corrupted(t *testing.T) {
	blocks, db := openBlocks(t, 10)
	blockID := unittest.IdentifierFixture()
	require.NoError(t, db.Write(operation.BlockKey(blockID), []byte("definitely not a block")))

	_, err := blocks.ByID(blockID)
	assert.ErrorIs(t, err, storage.ErrCorrupted)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestBlocks_WaitFor(t *testing.T) {
	blocks, _ := openBlocks(t, 10)
	block := unittest.BlockFixture()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, blocks.WaitFor(ctx, block.ID()))
	}()
	unittest.RequireNeverClosedWithin(t, done, 50*time.Millisecond, "wait returned before the block was stored")

	require.NoError(t, blocks.Store(block))
	unittest.RequireCloseBefore(t, done, time.Second, "wait did not return after the block was stored")

	// returns immediately for stored blocks
	unittest.RequireReturnsBefore(t, func() {
		require.NoError(t, blocks.WaitFor(ctx, block.ID()))
	}, time.Second, "wait for stored block blocked")
}

func TestBlocks_WaitForClosed(t *testing.T) {
	blocks, db := openBlocks(t, 10)

	errs := make(chan error, 1)
	go func() {
		errs <- blocks.WaitFor(context.Background(), unittest.IdentifierFixture())
	}()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, db.Close())

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, storage.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("wait was not released by close")
	}
}
