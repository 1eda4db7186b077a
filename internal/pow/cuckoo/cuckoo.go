// Package cuckoo implements the Cuckoo Cycle solver variant of pow.Solver.
//
// The graph search itself is sealed per the specification (the real solver
// is an external collaborator whose internals are out of scope); this is a
// reference implementation of the standard SipHash-keyed bipartite Cuckoo
// Cycle scheme, sized for the configs this miner is actually asked to run,
// not a competitive production solver.
package cuckoo

import (
	"encoding/binary"

	"github.com/aead/siphash"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2b"

	"github.com/codechain-miner/goworker/internal/pow"
)

// Config parameterizes one Cuckoo instance, mirroring
// original_source/src/worker/cuckoo.rs::CuckooConfig.
type Config struct {
	MaxVertex   int
	MaxEdge     int
	CycleLength int
}

// Solver is the Cuckoo pow.Solver: run the cycle search on the header-with-
// nonce message, then Blake2b-hash the RLP-encoded proof and compare to the
// target.
type Solver struct {
	cfg      Config
	message  pow.Header
	nonce    uint64
	target   pow.Target
	finished bool
}

// New returns a fresh, unseated Cuckoo solver for the given parameters.
func New(cfg Config) *Solver {
	return &Solver{cfg: cfg}
}

// Init seats the solver for one candidate nonce.
func (s *Solver) Init(header pow.Header, nonce uint64, target pow.Target) {
	s.message = header.WithNonce(nonce)
	s.nonce = nonce
	s.target = target
	s.finished = false
}

// Proceed runs the cycle search once and reports a solution when a cycle is
// found and its proof hash satisfies the target.
func (s *Solver) Proceed() (pow.Solution, bool) {
	if s.finished {
		return nil, false
	}
	s.finished = true

	proof, ok := solve(s.message.Bytes(), s.cfg)
	if !ok {
		return nil, false
	}

	proofBytes, err := rlp.EncodeToBytes(proof)
	if err != nil {
		return nil, false
	}
	digest := blake2b.Sum256(proofBytes)
	if !s.target.Satisfies(digest[:]) {
		return nil, false
	}

	nonceBytes, err := rlp.EncodeToBytes(s.nonce)
	if err != nil {
		return nil, false
	}
	return pow.Solution{nonceBytes, proofBytes}, true
}

// Finished reports whether Proceed has run since the last Init.
func (s *Solver) Finished() bool {
	return s.finished
}

// siphashKey derives a 16-byte SipHash key from the header-with-nonce
// message, keying the bipartite edge generation.
func siphashKey(message []byte) []byte {
	h := blake2b.Sum256(message)
	return h[:16]
}

// edge returns the two endpoints of edge i in the bipartite Cuckoo graph:
// one node in the low half [0, side), one in the high half [side, 2*side).
func edge(key []byte, side uint64, i uint64) (u, v uint64) {
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], 2*i)
	u = siphash.Sum64(key, buf[:]) % side

	binary.LittleEndian.PutUint64(buf[:], 2*i+1)
	v = side + siphash.Sum64(key, buf[:])%side

	return u, v
}

// solve searches for a cycle of exactly cfg.CycleLength edges in the
// bipartite graph generated from message, returning the participating edge
// indices in ascending order on success.
func solve(message []byte, cfg Config) ([]uint32, bool) {
	if cfg.MaxEdge <= 0 || cfg.CycleLength <= 0 || cfg.CycleLength%2 != 0 {
		return nil, false
	}
	side := uint64(cfg.MaxVertex) / 2
	if side == 0 {
		return nil, false
	}
	key := siphashKey(message)

	adj := make(map[uint64][]struct {
		edge  uint32
		other uint64
	}, cfg.MaxVertex)
	for i := 0; i < cfg.MaxEdge; i++ {
		u, v := edge(key, side, uint64(i))
		adj[u] = append(adj[u], struct {
			edge  uint32
			other uint64
		}{uint32(i), v})
		adj[v] = append(adj[v], struct {
			edge  uint32
			other uint64
		}{uint32(i), u})
	}

	visitedEdge := make(map[uint32]bool, cfg.MaxEdge)
	visitedNode := make(map[uint64]bool, cfg.MaxVertex)
	path := make([]uint32, 0, cfg.CycleLength)

	var dfs func(start, current uint64, depth int) []uint32
	dfs = func(start, current uint64, depth int) []uint32 {
		if depth == cfg.CycleLength {
			return append([]uint32{}, path...)
		}
		for _, e := range adj[current] {
			// start may only be re-entered by the cycle's last edge.
			if visitedEdge[e.edge] || visitedNode[e.other] || (e.other == start) != (depth+1 == cfg.CycleLength) {
				continue
			}
			visitedEdge[e.edge] = true
			visitedNode[e.other] = true
			path = append(path, e.edge)

			if found := dfs(start, e.other, depth+1); found != nil {
				return found
			}

			path = path[:len(path)-1]
			visitedEdge[e.edge] = false
			visitedNode[e.other] = false
		}
		return nil
	}

	for start := uint64(0); start < uint64(cfg.MaxVertex); start++ {
		if _, ok := adj[start]; !ok {
			continue
		}
		if found := dfs(start, start, 0); found != nil {
			sorted := append([]uint32{}, found...)
			sortUint32(sorted)
			return sorted, true
		}
	}
	return nil, false
}

func sortUint32(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
