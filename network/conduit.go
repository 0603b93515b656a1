package network

import (
	"github.com/onflow/flow-blocksync/model/flow"
)

// Conduit represents the interface for engines to communicate with the
// other replicas of the committee over the network.
type Conduit interface {
	// Publish submits an event to the network layer for unreliable delivery
	// to the given targets. When no targets are given, the event is delivered
	// to every other replica of the committee.
	Publish(event interface{}, targetIDs ...flow.Identifier) error

	// Unicast submits an event to the network layer for reliable delivery
	// to a single target.
	Unicast(event interface{}, targetID flow.Identifier) error
}

// MessageProcessor represents a component which receives messages from the
// networking layer.
type MessageProcessor interface {
	// Process is called with every message received from the origin node.
	// Implementations must not block. Errors returned are logged by the
	// network layer and otherwise ignored.
	Process(originID flow.Identifier, event interface{}) error
}
