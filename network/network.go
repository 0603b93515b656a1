package network

// Network represents the network layer of the node. Engines register with it
// to receive messages from other replicas, and use the returned conduit to
// send messages to them.
type Network interface {
	// Register subscribes the message processor to all messages addressed
	// to this node. Only one processor can be registered per node.
	Register(processor MessageProcessor) (Conduit, error)
}
