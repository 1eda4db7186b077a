package frontend_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codechain-miner/goworker/internal/frontend"
	"github.com/codechain-miner/goworker/internal/pow"
)

func TestParseJobAcceptsPrefixedAndBareHex(t *testing.T) {
	headerHex := "0x" + repeat("ab", pow.HeaderSize)
	targetHex := repeat("ff", 32) // no 0x prefix

	header, target, err := frontend.ParseJob(headerHex, targetHex)
	require.NoError(t, err)
	require.Equal(t, byte(0xab), header[0])
	require.NotNil(t, target.Int())
}

func TestParseJobAcceptsOddLengthTarget(t *testing.T) {
	headerHex := "0x" + repeat("00", pow.HeaderSize)

	_, target, err := frontend.ParseJob(headerHex, "0xa")
	require.NoError(t, err)
	require.Equal(t, int64(10), target.Int().Int64())
}

func TestParseJobRejectsWrongHeaderLength(t *testing.T) {
	_, _, err := frontend.ParseJob("0x0102", "0xff")
	require.Error(t, err)
}

func TestParseJobRejectsMalformedHex(t *testing.T) {
	headerHex := "0x" + repeat("ab", pow.HeaderSize)
	_, _, err := frontend.ParseJob(headerHex, "0xzz")
	require.Error(t, err)
}

func repeat(pair string, n int) string {
	out := make([]byte, 0, len(pair)*n)
	for i := 0; i < n; i++ {
		out = append(out, pair...)
	}
	return string(out)
}
