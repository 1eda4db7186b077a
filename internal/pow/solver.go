// Package pow defines the minimal contract every proof-of-work solver
// implements, plus the Header/Target/Solution types that flow between the
// front-ends, the search loop and the solvers themselves.
package pow

import (
	"encoding/binary"
	"math/big"
)

// HeaderSize is the width of the message a Solver hashes. The first 8 bytes
// double as the nonce field: init() overwrites them in little-endian order
// rather than appending the nonce, per the original implementation.
const HeaderSize = 32

// Header is the 32-byte hash identifying the work item being mined.
type Header [HeaderSize]byte

// WithNonce returns a copy of h with its first 8 bytes replaced by nonce,
// encoded little-endian. This is the exact byte layout the original
// implementation used; it is preserved here rather than "corrected" to an
// append, per the documented open question in spec §9.
func (h Header) WithNonce(nonce uint64) Header {
	var out Header
	copy(out[:], h[:])
	binary.LittleEndian.PutUint64(out[:8], nonce)
	return out
}

// Bytes returns the header as a plain byte slice.
func (h Header) Bytes() []byte { return h[:] }

// Target is a 256-bit unsigned upper bound: a candidate hash is accepted
// when, read as a big-endian unsigned integer, it is <= Target.
type Target struct {
	v *big.Int
}

// NewTarget wraps an existing big.Int. The big.Int must not be negative.
func NewTarget(v *big.Int) Target {
	return Target{v: new(big.Int).Set(v)}
}

// Int returns the target's big.Int value.
func (t Target) Int() *big.Int { return t.v }

// Satisfies reports whether hash, read big-endian, is <= the target.
func (t Target) Satisfies(hash []byte) bool {
	h := new(big.Int).SetBytes(hash)
	return h.Cmp(t.v) <= 0
}

// Solution is the ordered sequence of byte strings a Solver emits on a hit:
// one element (the RLP-encoded nonce) for Blake, two (nonce, proof) for
// Cuckoo.
type Solution [][]byte

// Solver is the sealed, single-candidate state machine every algorithm
// implements. A Solver is never shared across goroutines: it is created by
// a Factory, handed to exactly one search loop, and discarded afterwards.
//
// Contract:
//   - Init seats the solver for one candidate nonce and clears Finished.
//   - Proceed performs one unit of work and returns at most one Solution;
//     it always leaves the solver Finished afterwards.
//   - Finished reports whether Proceed has run since the last Init.
type Solver interface {
	Init(header Header, nonce uint64, target Target)
	Proceed() (Solution, bool)
	Finished() bool
}

// Factory produces one independently-owned Solver per call. It must be safe
// to call concurrently from multiple goroutines; the Solvers it returns must
// never share mutable state with each other.
type Factory func() Solver
