package synchronization

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-blocksync/model/flow"
	"github.com/onflow/flow-blocksync/module"
	"github.com/onflow/flow-blocksync/module/irrecoverable"
	"github.com/onflow/flow-blocksync/module/metrics"
	mockmodule "github.com/onflow/flow-blocksync/module/mock"
	"github.com/onflow/flow-blocksync/network/stub"
	"github.com/onflow/flow-blocksync/storage"
	bstorage "github.com/onflow/flow-blocksync/storage/badger"
	"github.com/onflow/flow-blocksync/storage/store"
	"github.com/onflow/flow-blocksync/utils/unittest"
)

// core is a minimal consensus core. It stores blocks whose parent is stored,
// and hands all other blocks to the synchronization engine.
type core struct {
	blocks    storage.Blocks
	engine    *Engine
	delivered chan flow.Identifier
}

var _ module.SyncedBlockConsumer = (*core)(nil)
var _ module.ReceivedBlockConsumer = (*core)(nil)

func (c *core) onBlock(block *flow.Block) error {
	exists, err := c.blocks.Exists(block.ParentID())
	if err != nil {
		return err
	}
	if !exists && !block.QC.IsGenesis() {
		c.engine.Enqueue(block)
		return nil
	}
	return c.blocks.Store(block)
}

func (c *core) OnReceivedBlock(_ flow.Identifier, block *flow.Block) error {
	return c.onBlock(block)
}

func (c *core) OnSyncedBlock(block *flow.Block) error {
	err := c.blocks.Store(block)
	if err != nil {
		return err
	}
	c.delivered <- block.ID()
	return nil
}

type node struct {
	id     flow.Identifier
	db     storage.Store
	blocks *store.Blocks
	core   *core
	engine *Engine
}

func newNode(t *testing.T, hub *stub.Hub) *node {
	db, err := bstorage.Open(unittest.TempDir(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	blocks := store.NewBlocks(db, 100)
	require.NoError(t, blocks.Store(flow.Genesis()))

	n := &node{
		id:     unittest.IdentifierFixture(),
		db:     db,
		blocks: blocks,
	}
	n.core = &core{
		blocks:    blocks,
		delivered: make(chan flow.Identifier, 100),
	}
	n.engine, err = NewEngine(
		unittest.Logger(),
		metrics.NewNoopCollector(),
		metrics.NewNoopCollector(),
		stub.NewNetwork(n.id, hub),
		blocks,
		n.core,
		n.core,
	)
	require.NoError(t, err)
	n.core.engine = n.engine
	return n
}

func startEngines(t *testing.T, nodes ...*node) {
	ctx, cancel := irrecoverable.NewMockSignalerContextWithCancel(t, context.Background())
	for _, n := range nodes {
		n.engine.Start(ctx)
	}
	for _, n := range nodes {
		unittest.RequireCloseBefore(t, n.engine.Ready(), time.Second, "engine did not start")
	}
	t.Cleanup(func() {
		cancel()
		for _, n := range nodes {
			unittest.RequireCloseBefore(t, n.engine.Done(), time.Second, "engine did not shut down")
		}
	})
}

// TestEngine_CatchUp verifies that a replica receiving a block far ahead of
// its own chain fetches all missing ancestors from another replica, stores
// them parents first, and can resolve the three-chain afterwards.
func TestEngine_CatchUp(t *testing.T) {
	hub := stub.NewNetworkHub()
	ahead := newNode(t, hub)
	behind := newNode(t, hub)
	startEngines(t, ahead, behind)

	chain := unittest.BlockchainFixture(5)
	for _, block := range chain {
		require.NoError(t, ahead.blocks.Store(block))
	}

	tip := unittest.BlockWithParentFixture(chain[4])
	require.NoError(t, behind.core.onBlock(tip))

	// the genesis child arrives in a response and is stored right away,
	// every other block is delivered by the synchronizer once its parent is stored
	expected := []flow.Identifier{chain[1].ID(), chain[2].ID(), chain[3].ID(), chain[4].ID(), tip.ID()}
	for _, blockID := range expected {
		select {
		case delivered := <-behind.core.delivered:
			assert.Equal(t, blockID, delivered)
		case <-time.After(2 * time.Second):
			t.Fatalf("block %x not delivered", blockID)
		}
	}

	for _, block := range append(chain, tip) {
		exists, err := behind.blocks.Exists(block.ID())
		require.NoError(t, err)
		assert.True(t, exists, "block %x missing", block.ID())
	}

	threeChain, ok, err := behind.engine.GetAncestors(unittest.BlockWithParentFixture(tip))
	require.NoError(t, err)
	require.True(t, ok)
	expectedChain := flow.ThreeChain{B0: chain[3], B1: chain[4], B2: tip}
	if diff := cmp.Diff(expectedChain, threeChain, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("unexpected three-chain (-want +got):\n%s", diff)
	}
}

// TestEngine_UnknownBlock verifies that nothing is delivered while no
// replica knows the missing parent.
func TestEngine_UnknownBlock(t *testing.T) {
	hub := stub.NewNetworkHub()
	first := newNode(t, hub)
	second := newNode(t, hub)
	startEngines(t, first, second)

	orphan := unittest.BlockFixture()
	_, ok, err := first.engine.GetAncestors(orphan)
	require.NoError(t, err)
	assert.False(t, ok)

	select {
	case blockID := <-first.core.delivered:
		t.Fatalf("unexpected delivery of %x", blockID)
	case <-time.After(100 * time.Millisecond):
	}
}

// TestNewEngine_DuplicateRegistration verifies that only one engine can be
// registered with a network.
func TestNewEngine_DuplicateRegistration(t *testing.T) {
	hub := stub.NewNetworkHub()
	net := stub.NewNetwork(unittest.IdentifierFixture(), hub)

	newEngine := func() (*Engine, error) {
		return NewEngine(
			unittest.Logger(),
			metrics.NewNoopCollector(),
			metrics.NewNoopCollector(),
			net,
			store.NewBlocks(nil, 10),
			mockmodule.NewSyncedBlockConsumer(t),
			mockmodule.NewReceivedBlockConsumer(t),
		)
	}

	_, err := newEngine()
	require.NoError(t, err)
	_, err = newEngine()
	require.Error(t, err)
}
