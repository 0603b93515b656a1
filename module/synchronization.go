package module

import (
	"github.com/onflow/flow-blocksync/model/flow"
)

// SyncedBlockConsumer consumes blocks whose ancestry has been made available
// locally. It is implemented by the consensus core.
type SyncedBlockConsumer interface {
	// OnSyncedBlock is called exactly once for every block which was held back
	// because its parent was missing, after the parent has been stored.
	// Any error returned is considered irrecoverable.
	OnSyncedBlock(block *flow.Block) error
}

// AncestorResolver resolves the three direct ancestors of a block, which the
// consensus core needs to evaluate the commit rule.
type AncestorResolver interface {
	// GetAncestors returns the three-chain preceding the given block.
	// If the parent of the block is not yet known locally, it schedules the block
	// for synchronization and returns false. The three-chain is only valid when
	// the boolean is true.
	// Expected errors during normal operations:
	//   - synchronization.ErrSyncQueueFull if the parent is not known and the
	//     block could not be scheduled; no request was sent and the caller
	//     should try again later
	//   - storage.ErrCorrupted if a stored block could not be decoded
	//   - synchronization.MissingAncestorError if the parent is known but one of
	//     the older ancestors is not
	GetAncestors(block *flow.Block) (flow.ThreeChain, bool, error)
}

// ReceivedBlockConsumer consumes blocks which other replicas sent in response
// to our sync requests. It is implemented by the consensus core, which
// validates and stores them like any other proposal.
type ReceivedBlockConsumer interface {
	// OnReceivedBlock is called for every block of a block response.
	// Any error returned is considered irrecoverable.
	OnReceivedBlock(originID flow.Identifier, block *flow.Block) error
}
