package stub

import (
	"sync"

	"github.com/onflow/flow-blocksync/model/flow"
)

// Hub connects in-memory networks so that they can deliver events to each
// other directly.
type Hub struct {
	mu       sync.RWMutex
	networks map[flow.Identifier]*Network
}

// NewNetworkHub returns a Hub without any networks plugged in.
func NewNetworkHub() *Hub {
	return &Hub{
		networks: make(map[flow.Identifier]*Network),
	}
}

// GetNetwork returns the network of the given node.
func (hub *Hub) GetNetwork(nodeID flow.Identifier) (*Network, bool) {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	net, ok := hub.networks[nodeID]
	return net, ok
}

// Plug stores the reference of the network in the hub, so that other
// networks can find it.
func (hub *Hub) Plug(net *Network) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.networks[net.nodeID] = net
}

// others returns the networks of all nodes except the given one.
func (hub *Hub) others(nodeID flow.Identifier) []*Network {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	nets := make([]*Network, 0, len(hub.networks))
	for id, net := range hub.networks {
		if id == nodeID {
			continue
		}
		nets = append(nets, net)
	}
	return nets
}
