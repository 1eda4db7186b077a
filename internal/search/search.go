// Package search drives a pow.Solver across the nonce space for one job,
// checking between solver steps whether it has been superseded by a more
// recent job.
package search

import (
	"math"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"

	"github.com/codechain-miner/goworker/internal/pow"
)

// Counter is the process-wide, strictly non-decreasing job id source
// described in spec §4.2/§9. The zero value starts at 0; callers that need
// the Stratum front-end's historical starting point of 1 should call
// Next() once and discard the result, or use NewCounter(1).
type Counter struct {
	next uint64
}

// NewCounter returns a Counter whose first Next() call returns start.
func NewCounter(start uint64) *Counter {
	return &Counter{next: start}
}

// Next atomically assigns and returns the next id.
func (c *Counter) Next() uint64 {
	return atomic.AddUint64(&c.next, 1) - 1
}

// Current atomically reads the next id that would be assigned; this is the
// value search loops compare their assigned id plus the jobs window against.
func (c *Counter) Current() uint64 {
	return atomic.LoadUint64(&c.next)
}

// Work drives solver across the nonce space [0, math.MaxUint64] for
// (header, target), checking counter between solver steps. It returns the
// first solution found, or nil if the search space is exhausted or the
// search is superseded: counter.Current() > id+jobs+1 at some check point.
//
// id must be the value returned by counter.Next() for this search; jobs is
// the concurrency window (spec §4.2). The +1 compensates for this search's
// own Next() call, which already advanced Current() past id before Work
// started: with jobs=0, a lone in-flight search must not see itself as
// superseding its own job.
func Work(counter *Counter, id uint64, header pow.Header, target pow.Target, solver pow.Solver, jobs uint64) pow.Solution {
	log.Debug("search started", "id", id, "jobs", jobs)

	for nonce := uint64(0); ; nonce++ {
		solver.Init(header, nonce, target)
		for !solver.Finished() {
			if counter.Current() > id+jobs+1 {
				log.Debug("search superseded", "id", id)
				return nil
			}
			if solution, ok := solver.Proceed(); ok {
				log.Debug("search found solution", "id", id, "nonce", nonce)
				return solution
			}
		}
		if nonce == math.MaxUint64 {
			break
		}
	}

	log.Debug("search exhausted nonce space", "id", id)
	return nil
}
