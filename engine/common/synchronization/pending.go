package synchronization

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/atomic"

	"github.com/onflow/flow-blocksync/model/flow"
)

// pendingAncestor tracks a missing ancestor together with all blocks waiting
// for it. The blocks are kept in arrival order, without duplicates.
type pendingAncestor struct {
	ancestorID flow.Identifier
	blocks     []*flow.Block
	blockIDs   map[flow.Identifier]struct{}

	cancel      context.CancelFunc // stops the wait for the ancestor
	backoff     retry.Backoff
	requests    uint64    // number of requests sent so far
	nextRequest time.Time // when the next request, or the abandonment, is due
	exhausted   bool      // no further requests; abandon once nextRequest is due
}

// addBlock appends the block to the waiting list. Returns false if the block
// is already waiting.
func (p *pendingAncestor) addBlock(block *flow.Block) bool {
	blockID := block.ID()
	if _, ok := p.blockIDs[blockID]; ok {
		return false
	}
	p.blockIDs[blockID] = struct{}{}
	p.blocks = append(p.blocks, block)
	return true
}

// scheduleNext computes the deadline of the next request from the backoff.
// Once the backoff is exhausted, the entry is abandoned after maxDelay.
func (p *pendingAncestor) scheduleNext(now time.Time, maxDelay time.Duration) {
	delay, stop := p.backoff.Next()
	if stop {
		p.exhausted = true
		delay = maxDelay
	}
	p.nextRequest = now.Add(delay)
}

// pendingAncestors is the set of missing ancestors currently synchronized,
// keyed by ancestor ID. It must only be modified by the synchronizer's
// worker. Only size is safe for concurrent use.
type pendingAncestors struct {
	entries map[flow.Identifier]*pendingAncestor
	count   *atomic.Uint64
}

func newPendingAncestors() *pendingAncestors {
	return &pendingAncestors{
		entries: make(map[flow.Identifier]*pendingAncestor),
		count:   atomic.NewUint64(0),
	}
}

// add creates a new entry for the ancestor with the block as its first
// waiting block. The ancestor must not be pending already.
func (p *pendingAncestors) add(ancestorID flow.Identifier, block *flow.Block, cancel context.CancelFunc, backoff retry.Backoff) *pendingAncestor {
	entry := &pendingAncestor{
		ancestorID: ancestorID,
		blockIDs:   make(map[flow.Identifier]struct{}),
		cancel:     cancel,
		backoff:    backoff,
	}
	entry.addBlock(block)
	p.entries[ancestorID] = entry
	p.count.Store(uint64(len(p.entries)))
	return entry
}

func (p *pendingAncestors) get(ancestorID flow.Identifier) (*pendingAncestor, bool) {
	entry, ok := p.entries[ancestorID]
	return entry, ok
}

// remove removes the entry if it is the current entry for its ancestor.
// Entries are compared by identity, so a stale entry of an ancestor which
// has been abandoned and requested again is not mistaken for the new one.
func (p *pendingAncestors) remove(entry *pendingAncestor) bool {
	current, ok := p.entries[entry.ancestorID]
	if !ok || current != entry {
		return false
	}
	delete(p.entries, entry.ancestorID)
	p.count.Store(uint64(len(p.entries)))
	entry.cancel()
	return true
}

// due returns all entries whose next request is due at the given time.
func (p *pendingAncestors) due(now time.Time) []*pendingAncestor {
	var due []*pendingAncestor
	for _, entry := range p.entries {
		if !now.Before(entry.nextRequest) {
			due = append(due, entry)
		}
	}
	return due
}

func (p *pendingAncestors) size() uint {
	return uint(p.count.Load())
}

// clear cancels the waits of all entries and empties the set.
func (p *pendingAncestors) clear() {
	for ancestorID, entry := range p.entries {
		entry.cancel()
		delete(p.entries, ancestorID)
	}
	p.count.Store(0)
}
