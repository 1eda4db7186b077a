package stratum

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codechain-miner/goworker/internal/minererr"
	"github.com/codechain-miner/goworker/internal/pow"
	"github.com/codechain-miner/goworker/internal/pow/blake"
	"github.com/codechain-miner/goworker/internal/search"
)

func TestWriteLineThenReadLineRoundTrips(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_ = writeLine(client, map[string]int{"a": 1})
	}()

	reader := bufio.NewReaderSize(server, maxLineSize)
	line, err := readLine(reader)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(line))
}

func TestReadLineReportsClosedOnEOF(t *testing.T) {
	client, server := net.Pipe()
	reader := bufio.NewReaderSize(server, maxLineSize)
	client.Close()

	_, err := readLine(reader)
	require.True(t, errors.Is(err, minererr.Closed))
}

func TestAuthenticateSucceedsOnMatchingID(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	serverReader := bufio.NewReaderSize(server, maxLineSize)
	done := make(chan error, 1)
	go func() {
		line, err := readLine(serverReader)
		if err != nil {
			done <- err
			return
		}
		var req map[string]interface{}
		if err := json.Unmarshal(line, &req); err != nil {
			done <- err
			return
		}
		done <- writeLine(server, map[string]interface{}{"id": 1, "result": true})
	}()

	clientReader := bufio.NewReaderSize(client, maxLineSize)
	err := authenticate(client, clientReader, "worker1", "x")
	require.NoError(t, err)
	require.NoError(t, <-done)
}

func TestAuthenticateFailsOnRejectedResult(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	serverReader := bufio.NewReaderSize(server, maxLineSize)
	go func() {
		_, _ = readLine(serverReader)
		_ = writeLine(server, map[string]interface{}{"id": 1, "result": false})
	}()

	clientReader := bufio.NewReaderSize(client, maxLineSize)
	err := authenticate(client, clientReader, "worker1", "x")
	require.True(t, errors.Is(err, minererr.Authenticate))
}

func TestDispatchRejectsWrongParamShape(t *testing.T) {
	r := NewRunner(Config{})
	queue := newOutboundQueue()
	jobID := search.NewCounter(1)
	factory := func() pow.Solver { return blake.New() }

	err := r.dispatch(json.RawMessage(`["only-one"]`), queue, jobID, factory, 1)
	require.Error(t, err)
}

func TestDispatchSpawnsWorkerThatEnqueuesSubmission(t *testing.T) {
	r := NewRunner(Config{})
	queue := newOutboundQueue()
	jobID := search.NewCounter(1)
	factory := func() pow.Solver { return blake.New() }

	headerHex := "0x" + repeatHex("00", pow.HeaderSize)
	maxTargetHex := "0x" + repeatHex("ff", 32)
	params, err := json.Marshal([]string{headerHex, maxTargetHex})
	require.NoError(t, err)

	require.NoError(t, r.dispatch(json.RawMessage(params), queue, jobID, factory, 1))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := queue.pop(); ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("expected the dispatched worker to enqueue a submission")
}

func repeatHex(pair string, n int) string {
	out := make([]byte, 0, len(pair)*n)
	for i := 0; i < n; i++ {
		out = append(out, pair...)
	}
	return string(out)
}
