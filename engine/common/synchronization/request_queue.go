package synchronization

import (
	"sync"

	"github.com/onflow/flow-blocksync/model/flow"
	"github.com/onflow/flow-blocksync/model/messages"
)

// RequestQueue holds inbound sync requests keyed by requester. A requester
// has at most one queued request, its latest one, so a single replica
// cannot crowd out the others.
type RequestQueue struct {
	mu       sync.Mutex
	capacity uint
	requests map[flow.Identifier]*messages.SyncRequest
}

func NewRequestQueue(capacity uint) *RequestQueue {
	return &RequestQueue{
		capacity: capacity,
		requests: make(map[flow.Identifier]*messages.SyncRequest, capacity),
	}
}

// Push queues the request, replacing any request of the same origin. When a
// new origin arrives at a full queue, the request of an arbitrary other
// origin makes room for it.
func (q *RequestQueue) Push(originID flow.Identifier, req *messages.SyncRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, queued := q.requests[originID]
	if !queued && uint(len(q.requests)) >= q.capacity {
		for victim := range q.requests {
			delete(q.requests, victim)
			break
		}
	}
	q.requests[originID] = req
}

// Pop removes and returns a request of an arbitrary origin.
func (q *RequestQueue) Pop() (flow.Identifier, *messages.SyncRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for originID, req := range q.requests {
		delete(q.requests, originID)
		return originID, req, true
	}
	return flow.ZeroID, nil, false
}

func (q *RequestQueue) Len() uint {
	q.mu.Lock()
	defer q.mu.Unlock()
	return uint(len(q.requests))
}
