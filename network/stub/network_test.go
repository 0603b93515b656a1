package stub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-blocksync/model/messages"
	"github.com/onflow/flow-blocksync/network"
	"github.com/onflow/flow-blocksync/network/mocknetwork"
	"github.com/onflow/flow-blocksync/utils/unittest"
)

func TestNetwork_PublishReachesAllOtherNodes(t *testing.T) {
	hub := NewNetworkHub()
	ids := unittest.IdentifierListFixture(3)
	nets := make([]*Network, len(ids))
	processors := make([]*mocknetwork.MessageProcessor, len(ids))
	for i, id := range ids {
		nets[i] = NewNetwork(id, hub)
		processors[i] = mocknetwork.NewMessageProcessor(t)
	}
	conduit, err := nets[0].Register(processors[0])
	require.NoError(t, err)
	for i := 1; i < len(nets); i++ {
		_, err = nets[i].Register(processors[i])
		require.NoError(t, err)
	}

	req := &messages.SyncRequest{Nonce: 7, BlockID: unittest.IdentifierFixture()}
	processors[1].On("Process", ids[0], req).Return(nil).Once()
	processors[2].On("Process", ids[0], req).Return(nil).Once()

	require.NoError(t, conduit.Publish(req))
}

func TestNetwork_Unicast(t *testing.T) {
	hub := NewNetworkHub()
	sender := NewNetwork(unittest.IdentifierFixture(), hub)
	receiverID := unittest.IdentifierFixture()
	receiver := NewNetwork(receiverID, hub)

	processor := mocknetwork.NewMessageProcessor(t)
	_, err := receiver.Register(processor)
	require.NoError(t, err)
	conduit, err := sender.Register(mocknetwork.NewMessageProcessor(t))
	require.NoError(t, err)

	// a second processor cannot be registered
	_, err = receiver.Register(mocknetwork.NewMessageProcessor(t))
	require.Error(t, err)

	res := &messages.BlockResponse{Nonce: 1}
	processor.On("Process", sender.nodeID, res).Return(nil).Once()
	require.NoError(t, conduit.Unicast(res, receiverID))

	err = conduit.Unicast(res, unittest.IdentifierFixture())
	assert.True(t, network.IsUnknownTargetError(err))
}
