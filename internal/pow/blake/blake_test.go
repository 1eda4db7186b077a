package blake_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/codechain-miner/goworker/internal/pow"
	"github.com/codechain-miner/goworker/internal/pow/blake"
)

func TestSolverContractSingleStep(t *testing.T) {
	s := blake.New()
	target := pow.NewTarget(big.NewInt(0)) // impossible target

	s.Init(pow.Header{}, 0, target)
	require.False(t, s.Finished())

	_, ok := s.Proceed()
	require.False(t, ok)
	require.True(t, s.Finished())

	// a second Proceed without Init yields nothing further
	_, ok = s.Proceed()
	require.False(t, ok)
}

func TestSolverEmitsSolutionUnderMaxTarget(t *testing.T) {
	s := blake.New()
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	target := pow.NewTarget(max)

	s.Init(pow.Header{}, 7, target)
	solution, ok := s.Proceed()
	require.True(t, ok)
	require.Len(t, solution, 1)

	var nonce uint64
	require.NoError(t, rlp.DecodeBytes(solution[0], &nonce))
	require.Equal(t, uint64(7), nonce)
}

func TestSolverHashesHeaderWithNonce(t *testing.T) {
	var header pow.Header
	nonce := uint64(42)
	message := header.WithNonce(nonce)
	want := blake2b.Sum256(message.Bytes())
	wantInt := new(big.Int).SetBytes(want[:])

	// a target equal to the expected hash is met...
	s := blake.New()
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	s.Init(header, nonce, pow.NewTarget(wantInt))
	solution, ok := s.Proceed()
	require.True(t, ok)

	var gotNonce uint64
	require.NoError(t, rlp.DecodeBytes(solution[0], &gotNonce))
	require.Equal(t, nonce, gotNonce)

	// ...and a target one below it is not, so the solver compared exactly
	// Blake2b-256 of the header-with-nonce.
	s.Init(header, nonce, pow.NewTarget(new(big.Int).Sub(wantInt, big.NewInt(1))))
	_, ok = s.Proceed()
	require.False(t, ok)

	// sanity: recomputing the same hash independently agrees with what the
	// solver would have compared against the target.
	require.True(t, pow.NewTarget(max).Satisfies(want[:]))
}
