package synchronization

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-blocksync/model/flow"
	"github.com/onflow/flow-blocksync/module/metrics"
	mockmodule "github.com/onflow/flow-blocksync/module/mock"
	"github.com/onflow/flow-blocksync/network/mocknetwork"
	"github.com/onflow/flow-blocksync/storage"
	mockstorage "github.com/onflow/flow-blocksync/storage/mock"
	"github.com/onflow/flow-blocksync/storage/operation"
	"github.com/onflow/flow-blocksync/utils/unittest"
)

// TestGetAncestors_FullChain verifies that the three-chain of a block is
// resolved from storage without any network traffic.
func (s *SynchronizerSuite) TestGetAncestors_FullChain() {
	s.start()
	chain := unittest.ChainFixtureFrom(3, s.genesis)
	for _, block := range chain {
		require.NoError(s.T(), s.blocks.Store(block))
	}
	block := unittest.BlockWithParentFixture(chain[2])

	threeChain, ok, err := s.sync.GetAncestors(block)
	require.NoError(s.T(), err)
	require.True(s.T(), ok)
	s.Assert().Equal(chain[0].ID(), threeChain.B0.ID())
	s.Assert().Equal(chain[1].ID(), threeChain.B1.ID())
	s.Assert().Equal(chain[2].ID(), threeChain.B2.ID())

	// resolving again yields the same chain
	again, ok, err := s.sync.GetAncestors(block)
	require.NoError(s.T(), err)
	require.True(s.T(), ok)
	s.Assert().Equal(threeChain.B0.ID(), again.B0.ID())
	s.Assert().Equal(threeChain.B1.ID(), again.B1.ID())
	s.Assert().Equal(threeChain.B2.ID(), again.B2.ID())

	s.requireNoRequest(50 * time.Millisecond)
	s.requireNoDelivery(0)
}

// TestGetAncestors_GenesisBase verifies that ancestors of blocks close to the
// genesis block resolve to the genesis block.
func (s *SynchronizerSuite) TestGetAncestors_GenesisBase() {
	s.start()
	genesisID := s.genesis.ID()

	s.Run("certified by genesis QC", func() {
		block := unittest.BlockFixture(func(b *flow.Block) {
			b.QC = flow.GenesisQC()
		})
		threeChain, ok, err := s.sync.GetAncestors(block)
		require.NoError(s.T(), err)
		require.True(s.T(), ok)
		s.Assert().Equal(genesisID, threeChain.B0.ID())
		s.Assert().Equal(genesisID, threeChain.B1.ID())
		s.Assert().Equal(genesisID, threeChain.B2.ID())
	})

	s.Run("grandchild of genesis", func() {
		child := unittest.BlockWithParentFixture(s.genesis)
		require.NoError(s.T(), s.blocks.Store(child))
		block := unittest.BlockWithParentFixture(child)

		threeChain, ok, err := s.sync.GetAncestors(block)
		require.NoError(s.T(), err)
		require.True(s.T(), ok)
		s.Assert().Equal(genesisID, threeChain.B0.ID())
		s.Assert().Equal(genesisID, threeChain.B1.ID())
		s.Assert().Equal(child.ID(), threeChain.B2.ID())
	})

	s.requireNoRequest(50 * time.Millisecond)
}

// TestGetAncestors_MissingParent verifies that a block with a missing parent
// yields no three-chain, triggers exactly one request for the parent no matter
// how often it is resolved, and is delivered once the parent arrives.
func (s *SynchronizerSuite) TestGetAncestors_MissingParent() {
	s.start()
	parent := unittest.BlockWithParentFixture(s.genesis)
	block := unittest.BlockWithParentFixture(parent)

	for i := 0; i < 3; i++ {
		threeChain, ok, err := s.sync.GetAncestors(block)
		require.NoError(s.T(), err)
		s.Assert().False(ok)
		s.Assert().Equal(flow.ThreeChain{}, threeChain)
	}
	s.requireRequest(parent.ID())
	s.requireNoRequest(50 * time.Millisecond)

	require.NoError(s.T(), s.blocks.Store(parent))
	s.requireDelivered(block.ID())
	s.requireNoDelivery(50 * time.Millisecond)
}

// TestGetAncestors_PendingLimit verifies that a block with a missing parent is
// rejected with ErrSyncQueueFull while the pending limit is reached, instead
// of being reported as scheduled without a request.
func (s *SynchronizerSuite) TestGetAncestors_PendingLimit() {
	s.start(WithMaxPendingAncestors(1))
	parentA := unittest.BlockWithParentFixture(s.genesis)
	blockA := unittest.BlockWithParentFixture(parentA)
	s.Require().True(s.sync.Enqueue(blockA))
	s.requireRequest(parentA.ID())

	parentB := unittest.BlockWithParentFixture(s.genesis)
	blockB := unittest.BlockWithParentFixture(parentB)
	threeChain, ok, err := s.sync.GetAncestors(blockB)
	s.Require().ErrorIs(err, ErrSyncQueueFull)
	s.Assert().False(ok)
	s.Assert().Equal(flow.ThreeChain{}, threeChain)
	s.requireNoRequest(50 * time.Millisecond)

	// once the pending ancestor resolved, there is room again
	require.NoError(s.T(), s.blocks.Store(parentA))
	s.requireDelivered(blockA.ID())

	_, ok, err = s.sync.GetAncestors(blockB)
	require.NoError(s.T(), err)
	s.Assert().False(ok)
	s.requireRequest(parentB.ID())
}

// TestGetAncestors_MissingAncestor verifies that a stored parent without
// stored ancestors is reported as a MissingAncestorError, without requesting
// the ancestor.
func (s *SynchronizerSuite) TestGetAncestors_MissingAncestor() {
	s.start()
	chain := unittest.ChainFixtureFrom(2, s.genesis)
	require.NoError(s.T(), s.blocks.Store(chain[1]))
	block := unittest.BlockWithParentFixture(chain[1])

	_, ok, err := s.sync.GetAncestors(block)
	require.Error(s.T(), err)
	s.Assert().False(ok)
	require.True(s.T(), IsMissingAncestorError(err))
	s.Assert().ErrorIs(err, storage.ErrNotFound)

	var missing MissingAncestorError
	require.True(s.T(), errors.As(err, &missing))
	s.Assert().Equal(chain[1].ID(), missing.BlockID)
	s.Assert().Equal(chain[0].ID(), missing.AncestorID)

	s.requireNoRequest(50 * time.Millisecond)
}

// TestGetAncestors_CorruptedParent verifies that an undecodable parent is
// reported as corrupted storage.
func (s *SynchronizerSuite) TestGetAncestors_CorruptedParent() {
	s.start()
	parent := unittest.BlockWithParentFixture(s.genesis)
	require.NoError(s.T(), s.db.Write(operation.BlockKey(parent.ID()), []byte{0xc1, 0xff, 0x00}))
	block := unittest.BlockWithParentFixture(parent)

	_, ok, err := s.sync.GetAncestors(block)
	require.Error(s.T(), err)
	s.Assert().False(ok)
	s.Assert().ErrorIs(err, storage.ErrCorrupted)
	s.Assert().False(IsMissingAncestorError(err))

	s.requireNoRequest(50 * time.Millisecond)
}

// TestGetAncestors_NoGrandparentLookup verifies that only the parent is looked
// up when it is missing, and the block is handed to the synchronizer.
func TestGetAncestors_NoGrandparentLookup(t *testing.T) {
	blocks := mockstorage.NewBlocks(t)
	sync, err := NewSynchronizer(
		unittest.Logger(),
		metrics.NewNoopCollector(),
		blocks,
		mocknetwork.NewConduit(t),
		mockmodule.NewSyncedBlockConsumer(t),
	)
	require.NoError(t, err)

	parent := unittest.BlockFixture()
	block := unittest.BlockWithParentFixture(parent)
	blocks.On("ByID", parent.ID()).Return(nil, storage.ErrNotFound).Once()

	_, ok, err := sync.GetAncestors(block)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, sync.inbound.Len())
	blocks.AssertNumberOfCalls(t, "ByID", 1)
}

// TestGetAncestors_StorageFailure verifies that unexpected storage errors are
// passed on and do not schedule the block for synchronization.
func TestGetAncestors_StorageFailure(t *testing.T) {
	blocks := mockstorage.NewBlocks(t)
	sync, err := NewSynchronizer(
		unittest.Logger(),
		metrics.NewNoopCollector(),
		blocks,
		mocknetwork.NewConduit(t),
		mockmodule.NewSyncedBlockConsumer(t),
	)
	require.NoError(t, err)

	exception := errors.New("disk on fire")
	blocks.On("ByID", mock.Anything).Return(nil, exception).Once()

	_, ok, err := sync.GetAncestors(unittest.BlockFixture())
	assert.ErrorIs(t, err, exception)
	assert.False(t, ok)
	assert.Equal(t, 0, sync.inbound.Len())
}

// TestGetAncestors_QueueFull verifies that a block with a missing parent is
// rejected with ErrSyncQueueFull if the inbound queue has no room for it.
func TestGetAncestors_QueueFull(t *testing.T) {
	blocks := mockstorage.NewBlocks(t)
	sync, err := NewSynchronizer(
		unittest.Logger(),
		metrics.NewNoopCollector(),
		blocks,
		mocknetwork.NewConduit(t),
		mockmodule.NewSyncedBlockConsumer(t),
		WithInboundQueueCapacity(1),
	)
	require.NoError(t, err)

	// the synchronizer is not started, so the queue stays full
	require.True(t, sync.Enqueue(unittest.BlockFixture()))

	block := unittest.BlockFixture()
	blocks.On("ByID", block.ParentID()).Return(nil, storage.ErrNotFound).Once()

	_, ok, err := sync.GetAncestors(block)
	assert.ErrorIs(t, err, ErrSyncQueueFull)
	assert.False(t, ok)
	assert.Equal(t, 1, sync.inbound.Len())
}
