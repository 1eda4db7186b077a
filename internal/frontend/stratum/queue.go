package stratum

import (
	"context"
	"sync"

	"github.com/codechain-miner/goworker/internal/submit"
)

// outboundQueue is the unbounded MPSC queue described in spec §4.4/§5: any
// number of producers enqueue submissions, the session's single writer
// drains them in FIFO order. A buffered channel can't grow past its
// capacity, so this is backed by a plain slice guarded by a mutex with a
// one-slot wake signal, the common Go stand-in for an unbounded channel.
type outboundQueue struct {
	mu    sync.Mutex
	items []submit.StratumRequest
	wake  chan struct{}
}

func newOutboundQueue() *outboundQueue {
	return &outboundQueue{wake: make(chan struct{}, 1)}
}

// push enqueues item and wakes the writer if it is waiting.
func (q *outboundQueue) push(item submit.StratumRequest) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// pop dequeues the oldest item, if any, without blocking.
func (q *outboundQueue) pop() (submit.StratumRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return submit.StratumRequest{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

// wait blocks until push wakes it or ctx is done, returning false in the
// latter case.
func (q *outboundQueue) wait(ctx context.Context) bool {
	select {
	case <-q.wake:
		return true
	case <-ctx.Done():
		return false
	}
}
