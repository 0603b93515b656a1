package stub

import (
	"fmt"
	"sync"

	"github.com/onflow/flow-blocksync/model/flow"
	"github.com/onflow/flow-blocksync/network"
)

// Network is an in-memory network layer for testing engines against each
// other. Events are delivered synchronously to the message processor of the
// receiving node, so the processor must not block.
type Network struct {
	sync.Mutex
	hub       *Hub
	nodeID    flow.Identifier
	processor network.MessageProcessor
}

var _ network.Network = (*Network)(nil)
var _ network.Conduit = (*Network)(nil)

// NewNetwork creates a network for the given node and plugs it into the hub.
func NewNetwork(nodeID flow.Identifier, hub *Hub) *Network {
	net := &Network{
		hub:    hub,
		nodeID: nodeID,
	}
	hub.Plug(net)
	return net
}

// Register installs the message processor receiving events addressed to
// this node and returns the conduit to send events with.
func (n *Network) Register(processor network.MessageProcessor) (network.Conduit, error) {
	n.Lock()
	defer n.Unlock()
	if n.processor != nil {
		return nil, fmt.Errorf("node %x already has a registered processor", n.nodeID)
	}
	n.processor = processor
	return n, nil
}

// Publish delivers the event to the given targets, or to all other nodes of
// the hub when no targets are given.
func (n *Network) Publish(event interface{}, targetIDs ...flow.Identifier) error {
	if len(targetIDs) == 0 {
		for _, receiver := range n.hub.others(n.nodeID) {
			err := receiver.deliver(n.nodeID, event)
			if err != nil {
				return fmt.Errorf("could not publish event to %x: %w", receiver.nodeID, err)
			}
		}
		return nil
	}
	for _, targetID := range targetIDs {
		err := n.Unicast(event, targetID)
		if err != nil {
			return err
		}
	}
	return nil
}

// Unicast delivers the event to a single target.
func (n *Network) Unicast(event interface{}, targetID flow.Identifier) error {
	receiver, ok := n.hub.GetNetwork(targetID)
	if !ok {
		return network.UnknownTargetError{TargetID: targetID}
	}
	return receiver.deliver(n.nodeID, event)
}

func (n *Network) deliver(originID flow.Identifier, event interface{}) error {
	n.Lock()
	processor := n.processor
	n.Unlock()

	// nodes without an engine silently drop events, like a real network would
	if processor == nil {
		return nil
	}
	err := processor.Process(originID, event)
	if err != nil {
		return fmt.Errorf("could not process event from %x: %w", originID, err)
	}
	return nil
}
