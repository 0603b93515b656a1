package synchronization

import (
	"errors"
	"fmt"

	"github.com/onflow/flow-blocksync/model/flow"
	"github.com/onflow/flow-blocksync/storage"
)

// GetAncestors returns the three-chain preceding the given block, where B2 is
// the parent of the block, B1 the parent of B2 and B0 the parent of B1.
// Ancestors of blocks certified by the genesis QC resolve to the genesis block.
//
// If the parent of the block is not stored, the block is handed to the
// synchronizer, which requests the parent and delivers the block once the
// parent arrives, and (ThreeChain{}, false, nil) is returned. The three-chain
// is only valid if the boolean is true.
//
// Expected errors during normal operations:
//   - ErrSyncQueueFull if the parent is missing and the block could not be
//     scheduled for synchronization
//   - storage.ErrCorrupted if a stored ancestor cannot be decoded
//   - MissingAncestorError if the parent is stored but B1 or B0 is not
func (s *Synchronizer) GetAncestors(block *flow.Block) (flow.ThreeChain, bool, error) {
	b2, err := s.getPreviousBlock(block)
	if errors.Is(err, storage.ErrNotFound) {
		err = s.schedule(block)
		if err != nil {
			return flow.ThreeChain{}, false, err
		}
		return flow.ThreeChain{}, false, nil
	}
	if err != nil {
		return flow.ThreeChain{}, false, fmt.Errorf("could not get parent: %w", err)
	}

	b1, err := s.requireAncestor(b2)
	if err != nil {
		return flow.ThreeChain{}, false, err
	}
	b0, err := s.requireAncestor(b1)
	if err != nil {
		return flow.ThreeChain{}, false, err
	}

	return flow.ThreeChain{B0: b0, B1: b1, B2: b2}, true, nil
}

// schedule hands a block with a missing parent to the worker. The pending
// limit is checked up front, so that the caller learns about the drop. A
// block racing other blocks for the last pending slot can still be dropped
// by the worker.
// Expected errors during normal operations:
//   - ErrSyncQueueFull if the block could not be scheduled
func (s *Synchronizer) schedule(block *flow.Block) error {
	pending := s.pending.size()
	if pending >= s.config.MaxPendingAncestors {
		blockID := block.ID()
		s.log.Warn().
			Hex("block_id", blockID[:]).
			Uint("pending", pending).
			Msg("too many pending ancestors, rejecting block")
		s.metrics.PendingBlockDropped()
		return fmt.Errorf("%d ancestors pending, cannot schedule block %x: %w", pending, blockID, ErrSyncQueueFull)
	}
	if !s.Enqueue(block) {
		return fmt.Errorf("cannot schedule block %x: %w", block.ID(), ErrSyncQueueFull)
	}
	return nil
}

// getPreviousBlock returns the parent of the block, which is the genesis block
// if the block is certified by the genesis QC.
// Expected errors during normal operations:
//   - storage.ErrNotFound if the parent is not stored
//   - storage.ErrCorrupted if the parent cannot be decoded
func (s *Synchronizer) getPreviousBlock(block *flow.Block) (*flow.Block, error) {
	if block.CertifiedByGenesisQC() {
		return flow.Genesis(), nil
	}
	return s.blocks.ByID(block.ParentID())
}

// requireAncestor returns the parent of a stored block. Since blocks are only
// stored after their parent, the parent must be stored as well.
// Expected errors during normal operations:
//   - MissingAncestorError if the parent is not stored
//   - storage.ErrCorrupted if the parent cannot be decoded
func (s *Synchronizer) requireAncestor(block *flow.Block) (*flow.Block, error) {
	parent, err := s.getPreviousBlock(block)
	if errors.Is(err, storage.ErrNotFound) {
		blockID := block.ID()
		parentID := block.ParentID()
		s.log.Error().
			Hex("block_id", blockID[:]).
			Hex("ancestor_id", parentID[:]).
			Msg("stored block without stored parent")
		return nil, NewMissingAncestorError(blockID, parentID, err)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get ancestor: %w", err)
	}
	return parent, nil
}
