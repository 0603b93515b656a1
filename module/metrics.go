package module

// SynchronizerMetrics tracks the state of the block synchronizer.
type SynchronizerMetrics interface {
	// InboundQueueSize reports the number of blocks waiting in the inbound queue.
	InboundQueueSize(size uint)

	// InboundBlockDropped is called when a block could not be queued because
	// the inbound queue is full.
	InboundBlockDropped()

	// PendingAncestors reports the number of distinct ancestors currently
	// being synchronized.
	PendingAncestors(count uint)

	// SyncRequestSent is called each time a request for a missing ancestor is
	// published. Re-requests are reported with retry set to true.
	SyncRequestSent(retry bool)

	// BlockDelivered is called when a held back block is handed to consensus.
	BlockDelivered()

	// PendingBlockDropped is called when a block is dropped because too many
	// ancestors are pending.
	PendingBlockDropped()

	// AncestorWaitFailed is called when waiting for an ancestor failed.
	AncestorWaitFailed()

	// AncestorAbandoned is called when an ancestor was given up on after
	// the maximum number of requests.
	AncestorAbandoned()
}

// SyncRequestHandlerMetrics tracks how inbound sync requests are served.
type SyncRequestHandlerMetrics interface {
	// SyncRequestReceived is called for every inbound sync request.
	SyncRequestReceived()

	// BlockResponseSent is called when a requested block was sent back.
	BlockResponseSent()

	// SyncRequestMissed is called when a requested block is not known locally.
	SyncRequestMissed()
}
