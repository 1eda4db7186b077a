// Package blake implements the Blake solver variant: a one-shot Blake2b-256
// hash test per nonce.
package blake

import (
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2b"

	"github.com/codechain-miner/goworker/internal/pow"
)

// Solver is the Blake pow.Solver: hash the header-with-nonce and compare
// against the target. init/proceed/finished follow the pow.Solver contract
// exactly; proceed always completes the solver after a single call.
type Solver struct {
	message  pow.Header
	nonce    uint64
	target   pow.Target
	finished bool
}

// New returns a fresh, unseated Blake solver.
func New() *Solver {
	return &Solver{}
}

// Init seats the solver for one candidate nonce.
func (s *Solver) Init(header pow.Header, nonce uint64, target pow.Target) {
	s.message = header.WithNonce(nonce)
	s.nonce = nonce
	s.target = target
	s.finished = false
}

// Proceed hashes the seated message and reports a solution when the hash
// satisfies the target.
func (s *Solver) Proceed() (pow.Solution, bool) {
	if s.finished {
		return nil, false
	}
	s.finished = true

	digest := blake2b.Sum256(s.message.Bytes())
	if !s.target.Satisfies(digest[:]) {
		return nil, false
	}

	nonceBytes, err := rlp.EncodeToBytes(s.nonce)
	if err != nil {
		// rlp.EncodeToBytes on a uint64 cannot fail; treat as unreachable.
		return nil, false
	}
	return pow.Solution{nonceBytes}, true
}

// Finished reports whether Proceed has run since the last Init.
func (s *Solver) Finished() bool {
	return s.finished
}
