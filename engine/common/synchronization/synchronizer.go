package synchronization

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
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

// waitResult is reported by a waiter once the wait for its ancestor ended.
type waitResult struct {
	entry *pendingAncestor
	err   error
}

// Synchronizer holds back blocks whose parent is not stored locally yet. For
// every missing parent it publishes a sync request and waits for the parent
// to be written to storage, after which all blocks waiting for it are handed
// to the consensus core. Requests for parents which do not arrive are
// repeated with exponential backoff.
//
// All synchronization state is owned by a single worker routine. Blocks enter
// through a bounded inbound queue, so Enqueue never blocks.
type Synchronizer struct {
	*component.ComponentManager
	log      zerolog.Logger
	metrics  module.SynchronizerMetrics
	blocks   storage.Blocks
	con      network.Conduit
	consumer module.SyncedBlockConsumer
	config   *Config

	inbound         *fifoqueue.FifoQueue[*flow.Block]
	inboundNotifier engine.Notifier
	delivered       *lru.Cache[flow.Identifier, struct{}] // recently delivered blocks

	// owned by the worker routine
	pending *pendingAncestors
	results chan waitResult
	waiters sync.WaitGroup
}

var _ module.AncestorResolver = (*Synchronizer)(nil)
var _ component.Component = (*Synchronizer)(nil)

// NewSynchronizer creates a new Synchronizer. Sync requests are published to
// the whole committee through the given conduit, and blocks are delivered to
// the consumer once their parent is stored.
func NewSynchronizer(
	log zerolog.Logger,
	metrics module.SynchronizerMetrics,
	blocks storage.Blocks,
	con network.Conduit,
	consumer module.SyncedBlockConsumer,
	opts ...OptionFunc,
) (*Synchronizer, error) {

	config := DefaultConfig()
	for _, apply := range opts {
		apply(config)
	}
	err := config.validate()
	if err != nil {
		return nil, fmt.Errorf("invalid synchronizer config: %w", err)
	}

	inbound, err := fifoqueue.NewFifoQueue[*flow.Block](
		fifoqueue.WithCapacity(int(config.InboundQueueCapacity)),
		fifoqueue.WithLengthObserver(func(length int) { metrics.InboundQueueSize(uint(length)) }),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create inbound queue: %w", err)
	}

	delivered, err := lru.New[flow.Identifier, struct{}](int(config.DeliveredCacheSize))
	if err != nil {
		return nil, fmt.Errorf("could not create delivered block cache: %w", err)
	}

	s := &Synchronizer{
		log:             log.With().Str("engine", "synchronizer").Logger(),
		metrics:         metrics,
		blocks:          blocks,
		con:             con,
		consumer:        consumer,
		config:          config,
		inbound:         inbound,
		inboundNotifier: engine.NewNotifier(),
		delivered:       delivered,
		pending:         newPendingAncestors(),
		results:         make(chan waitResult),
	}

	s.ComponentManager = component.NewComponentManagerBuilder().
		AddWorker(s.processingLoop).
		Build()

	return s, nil
}

// Enqueue hands a block to the synchronizer. The block is delivered to the
// consumer as soon as its parent is stored. Returns false if the inbound
// queue is full and the block was dropped.
// Enqueue never blocks and is safe for concurrent use.
func (s *Synchronizer) Enqueue(block *flow.Block) bool {
	if s.inbound.Push(block) {
		s.inboundNotifier.Notify()
		return true
	}

	blockID := block.ID()
	s.log.Warn().
		Hex("block_id", blockID[:]).
		Uint64("view", block.View).
		Msg("inbound queue full, dropping block")
	s.metrics.InboundBlockDropped()
	return false
}

// processingLoop is the single worker routine of the synchronizer. It is the
// only routine accessing the pending ancestors.
func (s *Synchronizer) processingLoop(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	defer s.waiters.Wait()
	defer s.pending.clear()

	ticker := time.NewTicker(s.config.RetryScanInterval)
	defer ticker.Stop()

	ready()

	doneSignal := ctx.Done()
	inboundSignal := s.inboundNotifier.Channel()
	for {
		select {
		case <-doneSignal:
			return
		case <-inboundSignal:
			err := s.processInboundBlocks(ctx) // no errors expected during normal operations
			if err != nil {
				ctx.Throw(err)
			}
		case result := <-s.results:
			err := s.onWaitResult(ctx, result) // no errors expected during normal operations
			if err != nil {
				ctx.Throw(err)
			}
		case now := <-ticker.C:
			err := s.retryDueRequests(now) // no errors expected during normal operations
			if err != nil {
				ctx.Throw(err)
			}
		}
	}
}

// processInboundBlocks processes blocks until the inbound queue is empty, or
// the synchronizer is shutting down.
// No errors are expected during normal operation.
func (s *Synchronizer) processInboundBlocks(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		block, ok := s.inbound.Pop()
		if !ok {
			return nil
		}
		err := s.onBlock(ctx, block)
		if err != nil {
			return err
		}
	}
}

// onBlock delivers the block right away if its parent is stored. Otherwise,
// the block is added to the pending ancestor of its parent, which is created
// and requested if it does not exist yet.
// No errors are expected during normal operation.
func (s *Synchronizer) onBlock(ctx context.Context, block *flow.Block) error {
	blockID := block.ID()
	ancestorID := block.ParentID()
	log := s.log.With().
		Hex("block_id", blockID[:]).
		Uint64("view", block.View).
		Hex("ancestor_id", ancestorID[:]).
		Logger()

	if s.delivered.Contains(blockID) {
		log.Debug().Msg("block already delivered, ignoring")
		return nil
	}

	// blocks certified by the genesis QC have the genesis block as parent,
	// which is always known
	if block.CertifiedByGenesisQC() {
		return s.deliver(block)
	}

	entry, ok := s.pending.get(ancestorID)
	if ok {
		if entry.addBlock(block) {
			log.Debug().Int("waiting", len(entry.blocks)).Msg("block waits for pending ancestor")
		}
		return nil
	}

	exists, err := s.blocks.Exists(ancestorID)
	if err != nil {
		if errors.Is(err, storage.ErrClosed) {
			return nil
		}
		return fmt.Errorf("could not check ancestor %x: %w", ancestorID, err)
	}
	if exists {
		return s.deliver(block)
	}

	if s.pending.size() >= s.config.MaxPendingAncestors {
		log.Warn().
			Uint("pending", s.pending.size()).
			Msg("too many pending ancestors, dropping block")
		s.metrics.PendingBlockDropped()
		return nil
	}

	waitCtx, cancel := context.WithCancel(ctx)
	entry = s.pending.add(ancestorID, block, cancel, s.config.newBackoff())

	s.waiters.Add(1)
	go s.waitForAncestor(waitCtx, entry)

	err = s.request(entry, time.Now())
	if err != nil {
		return err
	}
	s.metrics.PendingAncestors(s.pending.size())

	log.Info().Msg("block ancestor missing, requested from committee")
	return nil
}

// waitForAncestor blocks until the ancestor of the entry is stored, or the
// wait is cancelled, and reports the result to the worker.
func (s *Synchronizer) waitForAncestor(ctx context.Context, entry *pendingAncestor) {
	defer s.waiters.Done()

	err := s.blocks.WaitFor(ctx, entry.ancestorID)
	select {
	case s.results <- waitResult{entry: entry, err: err}:
	case <-ctx.Done():
	}
}

// onWaitResult delivers all blocks waiting for an ancestor which has been
// stored. If the wait failed, the entry is removed so that the ancestor is
// requested again when another block refers to it.
// No errors are expected during normal operation.
func (s *Synchronizer) onWaitResult(ctx context.Context, result waitResult) error {
	entry := result.entry
	if !s.pending.remove(entry) {
		// the entry was abandoned while the result was in flight
		return nil
	}
	s.metrics.PendingAncestors(s.pending.size())

	if result.err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.log.Error().Err(result.err).
			Hex("ancestor_id", entry.ancestorID[:]).
			Int("dropped_blocks", len(entry.blocks)).
			Msg("failed to wait for ancestor")
		s.metrics.AncestorWaitFailed()
		return nil
	}

	s.log.Debug().
		Hex("ancestor_id", entry.ancestorID[:]).
		Int("blocks", len(entry.blocks)).
		Uint64("requests", entry.requests).
		Msg("ancestor stored, delivering waiting blocks")

	for _, block := range entry.blocks {
		err := s.deliver(block)
		if err != nil {
			return err
		}
	}
	return nil
}

// retryDueRequests requests every pending ancestor whose backoff delay has
// passed again, and abandons ancestors which have been requested too often.
// No errors are expected during normal operation.
func (s *Synchronizer) retryDueRequests(now time.Time) error {
	for _, entry := range s.pending.due(now) {
		if entry.exhausted {
			s.pending.remove(entry)
			s.log.Warn().
				Hex("ancestor_id", entry.ancestorID[:]).
				Uint64("requests", entry.requests).
				Int("dropped_blocks", len(entry.blocks)).
				Msg("ancestor not received, abandoning")
			s.metrics.AncestorAbandoned()
			s.metrics.PendingAncestors(s.pending.size())
			continue
		}

		err := s.request(entry, now)
		if err != nil {
			return err
		}
		s.log.Debug().
			Hex("ancestor_id", entry.ancestorID[:]).
			Uint64("requests", entry.requests).
			Msg("ancestor requested again")
	}
	return nil
}

// request publishes a sync request for the ancestor of the entry and
// schedules the next one.
// No errors are expected during normal operation.
func (s *Synchronizer) request(entry *pendingAncestor, now time.Time) error {
	req := &messages.SyncRequest{
		Nonce:   rand.Uint64(),
		BlockID: entry.ancestorID,
	}
	err := s.con.Publish(req)
	if err != nil {
		return irrecoverable.NewExceptionf("could not publish sync request for %x: %w", entry.ancestorID, err)
	}
	s.metrics.SyncRequestSent(entry.requests > 0)
	entry.requests++
	entry.scheduleNext(now, s.config.RetryMaxInterval)
	return nil
}

// deliver hands the block to the consumer, unless it has been delivered
// recently.
// No errors are expected during normal operation.
func (s *Synchronizer) deliver(block *flow.Block) error {
	blockID := block.ID()
	if s.delivered.Contains(blockID) {
		return nil
	}
	err := s.consumer.OnSyncedBlock(block)
	if err != nil {
		return irrecoverable.NewExceptionf("could not deliver synced block %x: %w", blockID, err)
	}
	s.delivered.Add(blockID, struct{}{})
	s.metrics.BlockDelivered()
	return nil
}
