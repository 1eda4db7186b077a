package search_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codechain-miner/goworker/internal/pow"
	"github.com/codechain-miner/goworker/internal/pow/blake"
	"github.com/codechain-miner/goworker/internal/search"
)

func TestCounterAssignsSequentialIDs(t *testing.T) {
	c := search.NewCounter(5)
	require.Equal(t, uint64(5), c.Next())
	require.Equal(t, uint64(6), c.Next())
	require.Equal(t, uint64(7), c.Current())
}

func TestWorkFindsSolutionUnderMaxTarget(t *testing.T) {
	counter := search.NewCounter(0)
	id := counter.Next()

	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	solution := search.Work(counter, id, pow.Header{}, pow.NewTarget(max), blake.New(), 1)

	require.NotNil(t, solution)
	require.Len(t, solution, 1)
}

func TestWorkReturnsNilWhenSuperseded(t *testing.T) {
	counter := search.NewCounter(0)
	id := counter.Next()
	counter.Next() // a later job is already in flight

	solution := search.Work(counter, id, pow.Header{}, pow.NewTarget(big.NewInt(0)), blake.New(), 0)

	require.Nil(t, solution)
}
