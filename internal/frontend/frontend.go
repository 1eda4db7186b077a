// Package frontend defines the shared Runner contract both transports
// implement, and the job-parsing helpers common to them.
package frontend

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/codechain-miner/goworker/internal/pow"
)

// Runner selects and drives exactly one transport (spec §4.6). Run blocks
// for the lifetime of the front-end; it spawns one worker goroutine per
// incoming job, handing it an independently-owned Solver from factory.
type Runner interface {
	Run(factory pow.Factory, jobs uint64) error
}

// ParseJob decodes a (headerHex, targetHex) pair as sent by either
// transport. Both strings may be "0x"-prefixed or bare hex (spec §4.3/§9);
// the header must decode to exactly pow.HeaderSize bytes.
func ParseJob(headerHex, targetHex string) (pow.Header, pow.Target, error) {
	headerBytes, err := decodeHex(headerHex)
	if err != nil {
		return pow.Header{}, pow.Target{}, fmt.Errorf("invalid header: %w", err)
	}
	if len(headerBytes) != pow.HeaderSize {
		return pow.Header{}, pow.Target{}, fmt.Errorf("header must be %d bytes, got %d", pow.HeaderSize, len(headerBytes))
	}
	var header pow.Header
	copy(header[:], headerBytes)

	targetBytes, err := decodeHex(targetHex)
	if err != nil {
		return pow.Header{}, pow.Target{}, fmt.Errorf("invalid target: %w", err)
	}
	target := pow.NewTarget(new(big.Int).SetBytes(targetBytes))

	return header, target, nil
}

// decodeHex accepts hex with or without a "0x"/"0X" prefix, unlike
// hexutil.Decode which requires one.
func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	if len(s) == 2 {
		return nil, fmt.Errorf("empty hex string")
	}
	if len(s)%2 != 0 {
		s = "0x0" + s[2:]
	}
	return hexutil.Decode(s)
}
