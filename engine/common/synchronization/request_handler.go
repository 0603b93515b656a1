package synchronization

import (
	"errors"
	"fmt"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"

	"github.com/onflow/flow-blocksync/engine"
	"github.com/onflow/flow-blocksync/engine/common/fifoqueue"
	"github.com/onflow/flow-blocksync/model/flow"
	"github.com/onflow/flow-blocksync/model/messages"
	"github.com/onflow/flow-blocksync/module"
	"github.com/onflow/flow-blocksync/module/component"
	"github.com/onflow/flow-blocksync/module/irrecoverable"
	"github.com/onflow/flow-blocksync/network"
	"github.com/onflow/flow-blocksync/storage"
)

// defaultSyncRequestQueueCapacity maximum number of requesters with a queued sync request
const defaultSyncRequestQueueCapacity = 500

// defaultBlockResponseQueueCapacity maximum capacity of block responses queue
const defaultBlockResponseQueueCapacity = 500

// defaultRequestWorkers number of workers serving sync requests concurrently
const defaultRequestWorkers = 8

// blockResponse is a queued block response together with its sender
type blockResponse struct {
	originID flow.Identifier
	response *messages.BlockResponse
}

// RequestHandler is the network facing side of block synchronization. It
// answers sync requests of other replicas with the requested block, and
// forwards the blocks other replicas sent in response to our own requests to
// the consensus core. Once the core stored such a block, the synchronizer
// waiting for it delivers the blocks held back behind it.
type RequestHandler struct {
	*component.ComponentManager
	log      zerolog.Logger
	metrics  module.SyncRequestHandlerMetrics
	blocks   storage.Blocks
	con      network.Conduit
	consumer module.ReceivedBlockConsumer

	pendingRequests  *RequestQueue
	pendingResponses *fifoqueue.FifoQueue[blockResponse]
	notifier         engine.Notifier
	pool             *workerpool.WorkerPool
}

var _ network.MessageProcessor = (*RequestHandler)(nil)
var _ component.Component = (*RequestHandler)(nil)

func NewRequestHandler(
	log zerolog.Logger,
	metrics module.SyncRequestHandlerMetrics,
	blocks storage.Blocks,
	con network.Conduit,
	consumer module.ReceivedBlockConsumer,
) (*RequestHandler, error) {

	responses, err := fifoqueue.NewFifoQueue[blockResponse](fifoqueue.WithCapacity(defaultBlockResponseQueueCapacity))
	if err != nil {
		return nil, fmt.Errorf("could not create block response queue: %w", err)
	}

	r := &RequestHandler{
		log:              log.With().Str("engine", "sync_request_handler").Logger(),
		metrics:          metrics,
		blocks:           blocks,
		con:              con,
		consumer:         consumer,
		pendingRequests:  NewRequestQueue(defaultSyncRequestQueueCapacity),
		pendingResponses: responses,
		notifier:         engine.NewNotifier(),
		pool:             workerpool.New(defaultRequestWorkers),
	}

	r.ComponentManager = component.NewComponentManagerBuilder().
		AddWorker(r.processingLoop).
		Build()

	return r, nil
}

// Process queues messages received from other replicas. It never blocks.
// Expected errors during normal operations:
//   - network.InvalidMessageError for messages of an unexpected type
func (r *RequestHandler) Process(originID flow.Identifier, event interface{}) error {
	switch msg := event.(type) {
	case *messages.SyncRequest:
		r.metrics.SyncRequestReceived()
		r.pendingRequests.Push(originID, msg)
	case *messages.BlockResponse:
		if !r.pendingResponses.Push(blockResponse{originID: originID, response: msg}) {
			r.log.Warn().Hex("origin_id", originID[:]).Msg("block response queue full, dropping response")
			return nil
		}
	default:
		return network.NewInvalidMessageError(originID, event)
	}
	r.notifier.Notify()
	return nil
}

func (r *RequestHandler) processingLoop(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	defer r.pool.StopWait()

	ready()

	doneSignal := ctx.Done()
	newMessageSignal := r.notifier.Channel()
	for {
		select {
		case <-doneSignal:
			return
		case <-newMessageSignal:
			r.dispatchRequests()
			err := r.processResponses() // no errors expected during normal operations
			if err != nil {
				ctx.Throw(err)
			}
		}
	}
}

// dispatchRequests hands all queued sync requests to the worker pool.
func (r *RequestHandler) dispatchRequests() {
	for {
		originID, req, ok := r.pendingRequests.Pop()
		if !ok {
			return
		}
		r.pool.Submit(func() {
			r.onSyncRequest(originID, req)
		})
	}
}

// onSyncRequest replies to a sync request with the requested block, if we
// have it. Failures are logged and otherwise ignored, since the requester
// repeats its request.
func (r *RequestHandler) onSyncRequest(originID flow.Identifier, req *messages.SyncRequest) {
	log := r.log.With().
		Hex("origin_id", originID[:]).
		Hex("block_id", req.BlockID[:]).
		Uint64("nonce", req.Nonce).
		Logger()

	block, err := r.blocks.ByID(req.BlockID)
	if errors.Is(err, storage.ErrNotFound) {
		log.Debug().Msg("requested block not known")
		r.metrics.SyncRequestMissed()
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("could not retrieve requested block")
		return
	}

	res := &messages.BlockResponse{
		Nonce:  req.Nonce,
		Blocks: []*flow.Block{block},
	}
	err = r.con.Unicast(res, originID)
	if err != nil {
		log.Warn().Err(err).Msg("could not send block response")
		return
	}
	r.metrics.BlockResponseSent()
}

// processResponses forwards the blocks of all queued block responses to the
// consensus core.
// No errors are expected during normal operation.
func (r *RequestHandler) processResponses() error {
	for {
		res, ok := r.pendingResponses.Pop()
		if !ok {
			return nil
		}
		for _, block := range res.response.Blocks {
			if block == nil || block.QC == nil {
				r.log.Warn().Hex("origin_id", res.originID[:]).Msg("dropping malformed block in response")
				continue
			}
			err := r.consumer.OnReceivedBlock(res.originID, block)
			if err != nil {
				return irrecoverable.NewExceptionf("could not forward received block: %w", err)
			}
		}
	}
}
