// Package submit formats a (header, solution) pair as a seal and dispatches
// it to whichever transport produced the job.
package submit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"

	"github.com/codechain-miner/goworker/internal/pow"
)

// Seal renders a Solution as the wire format: an ordered list of
// "0x"-prefixed lowercase hex strings.
func Seal(solution pow.Solution) []string {
	seal := make([]string, len(solution))
	for i, elem := range solution {
		seal[i] = hexutil.Encode(elem)
	}
	return seal
}

// HeaderHex renders a Header as "0x" + lowercase hex.
func HeaderHex(header pow.Header) string {
	return hexutil.Encode(header.Bytes())
}

// HTTP submits a solved (header, solution) pair to the chain node's HTTP
// JSON-RPC endpoint as a miner_submitWork call. Errors are logged and
// otherwise swallowed: the solution is simply lost (spec §4.5/§7).
func HTTP(client *http.Client, submitPort uint16, header pow.Header, solution pow.Solution) {
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "miner_submitWork",
		"params":  []interface{}{HeaderHex(header), Seal(solution)},
		"id":      nil,
	}
	blob, err := json.Marshal(body)
	if err != nil {
		log.Warn("failed to encode submission", "err", err)
		return
	}

	url := fmt.Sprintf("http://127.0.0.1:%d/", submitPort)
	resp, err := client.Post(url, "application/json", bytes.NewReader(blob))
	if err != nil {
		log.Warn("submission failed", "url", url, "err", err)
		return
	}
	defer resp.Body.Close()

	log.Info("submitted solution", "header", HeaderHex(header))
}

// StratumRequest is the mining.submit JSON-RPC request body; Stratum
// sessions enqueue it on their outbound queue rather than posting it
// directly (spec §4.4/§4.5).
type StratumRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// Stratum builds the mining.submit request for a solved job. jobID is the
// session-local job counter value assigned when the job was dispatched.
func Stratum(jobID uint64, header pow.Header, solution pow.Solution) StratumRequest {
	return StratumRequest{
		JSONRPC: "2.0",
		ID:      jobID,
		Method:  "mining.submit",
		Params:  []interface{}{HeaderHex(header), Seal(solution)},
	}
}
