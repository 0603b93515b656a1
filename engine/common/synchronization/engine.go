package synchronization

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/onflow/flow-blocksync/model/flow"
	"github.com/onflow/flow-blocksync/module"
	"github.com/onflow/flow-blocksync/module/component"
	"github.com/onflow/flow-blocksync/module/irrecoverable"
	"github.com/onflow/flow-blocksync/module/util"
	"github.com/onflow/flow-blocksync/network"
	"github.com/onflow/flow-blocksync/storage"
)

// Engine wires block synchronization into the network layer. It registers
// with the network, publishes the sync requests of its Synchronizer, and
// handles the sync requests and block responses of other replicas with its
// RequestHandler.
type Engine struct {
	*component.ComponentManager
	synchronizer   *Synchronizer
	requestHandler *RequestHandler
}

var _ network.MessageProcessor = (*Engine)(nil)
var _ module.AncestorResolver = (*Engine)(nil)

// NewEngine creates the synchronization engine and registers it with the
// network. The core receives blocks once their parent is stored, and the
// blocks other replicas sent in response to our requests.
func NewEngine(
	log zerolog.Logger,
	syncMetrics module.SynchronizerMetrics,
	handlerMetrics module.SyncRequestHandlerMetrics,
	net network.Network,
	blocks storage.Blocks,
	synced module.SyncedBlockConsumer,
	received module.ReceivedBlockConsumer,
	opts ...OptionFunc,
) (*Engine, error) {
	e := &Engine{}

	con, err := net.Register(e)
	if err != nil {
		return nil, fmt.Errorf("could not register engine: %w", err)
	}

	e.synchronizer, err = NewSynchronizer(log, syncMetrics, blocks, con, synced, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create synchronizer: %w", err)
	}
	e.requestHandler, err = NewRequestHandler(log, handlerMetrics, blocks, con, received)
	if err != nil {
		return nil, fmt.Errorf("could not create request handler: %w", err)
	}

	e.ComponentManager = component.NewComponentManagerBuilder().
		AddWorker(e.runComponents).
		Build()

	return e, nil
}

// runComponents starts the synchronizer and the request handler, and runs
// until both have shut down.
func (e *Engine) runComponents(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	e.synchronizer.Start(ctx)
	e.requestHandler.Start(ctx)

	<-util.AllReady(e.synchronizer, e.requestHandler)
	ready()

	<-util.AllDone(e.synchronizer, e.requestHandler)
}

// Process implements network.MessageProcessor.
func (e *Engine) Process(originID flow.Identifier, event interface{}) error {
	return e.requestHandler.Process(originID, event)
}

// Enqueue hands a block with a possibly missing parent to the synchronizer.
func (e *Engine) Enqueue(block *flow.Block) bool {
	return e.synchronizer.Enqueue(block)
}

// GetAncestors implements module.AncestorResolver.
func (e *Engine) GetAncestors(block *flow.Block) (flow.ThreeChain, bool, error) {
	return e.synchronizer.GetAncestors(block)
}
