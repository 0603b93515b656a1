package messages

import (
	"github.com/onflow/flow-blocksync/model/flow"
)

// SyncRequest is part of the synchronization protocol and represents an
// active (pulling) attempt to retrieve a missing ancestor of a block that is
// waiting to be delivered to consensus.
type SyncRequest struct {
	Nonce   uint64
	BlockID flow.Identifier
}

// BlockResponse is part of the synchronization protocol and represents the
// reply to a SyncRequest. It contains the requested block. Responders which
// do not know the block do not reply at all.
type BlockResponse struct {
	Nonce  uint64
	Blocks []*flow.Block
}
