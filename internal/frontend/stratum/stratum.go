// Package stratum implements the Stratum front-end (spec §4.4): a single
// outbound TCP session carrying line-delimited JSON, walking through
// Connecting -> Authenticating -> Working and terminal on any error.
package stratum

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/sync/errgroup"

	"github.com/codechain-miner/goworker/internal/frontend"
	"github.com/codechain-miner/goworker/internal/minererr"
	"github.com/codechain-miner/goworker/internal/pow"
	"github.com/codechain-miner/goworker/internal/search"
	"github.com/codechain-miner/goworker/internal/submit"
)

const maxLineSize = 1 << 20

// Config holds the peer address and credentials used at Connecting /
// Authenticating.
type Config struct {
	Addr string // host:port, e.g. "127.0.0.1:3333"
	ID   string
	Pass string
}

// Runner is the Stratum frontend.Runner. Its SupersessionCounter starts at
// 1, per spec §3.
type Runner struct {
	cfg     Config
	counter *search.Counter
}

// NewRunner builds a Stratum Runner for cfg.
func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:     cfg,
		counter: search.NewCounter(1),
	}
}

// Run dials the peer, authenticates, then serves mining.notify jobs until
// the connection errors or closes. It never reconnects (spec §9).
func (r *Runner) Run(factory pow.Factory, jobs uint64) error {
	conn, err := net.Dial("tcp", r.cfg.Addr)
	if err != nil {
		return fmt.Errorf("%w: %v", minererr.Connect, err)
	}
	defer conn.Close()
	log.Info("stratum connected", "addr", r.cfg.Addr)

	reader := bufio.NewReaderSize(conn, maxLineSize)

	if err := authenticate(conn, reader, r.cfg.ID, r.cfg.Pass); err != nil {
		return err
	}
	log.Info("stratum authenticated", "id", r.cfg.ID)

	return r.serve(conn, reader, factory, jobs)
}

// rpcFrame is the loose envelope every inbound Stratum line is decoded
// into while Working; Params is left raw because its shape depends on
// Method.
type rpcFrame struct {
	ID     *int            `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func authenticate(conn net.Conn, reader *bufio.Reader, id, pwd string) error {
	request := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "mining.authorize",
		"params":  []string{id, pwd},
	}
	if err := writeLine(conn, request); err != nil {
		return err
	}

	line, err := readLine(reader)
	if err != nil {
		return err
	}

	var response struct {
		ID     int  `json:"id"`
		Result bool `json:"result"`
	}
	if err := json.Unmarshal(line, &response); err != nil {
		return fmt.Errorf("%w: %v", minererr.Incomplete, err)
	}
	if response.ID != 1 || !response.Result {
		return minererr.Authenticate
	}
	return nil
}

// serve runs the Working state: a writer goroutine drains the outbound
// queue onto conn, a reader goroutine reads inbound lines and dispatches
// mining.notify jobs to worker goroutines. Either goroutine returning ends
// the session.
func (r *Runner) serve(conn net.Conn, reader *bufio.Reader, factory pow.Factory, jobs uint64) error {
	queue := newOutboundQueue()
	jobID := search.NewCounter(1)

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		return runWriter(ctx, conn, queue)
	})

	g.Go(func() error {
		return r.runReader(conn, reader, queue, jobID, factory, jobs)
	})

	return g.Wait()
}

func runWriter(ctx context.Context, conn net.Conn, queue *outboundQueue) error {
	for {
		for {
			item, ok := queue.pop()
			if !ok {
				break
			}
			if err := writeLine(conn, item); err != nil {
				return err
			}
		}
		if !queue.wait(ctx) {
			return ctx.Err()
		}
	}
}

func (r *Runner) runReader(conn net.Conn, reader *bufio.Reader, queue *outboundQueue, jobID *search.Counter, factory pow.Factory, jobs uint64) error {
	for {
		line, err := readLine(reader)
		if err != nil {
			return err
		}

		var frame rpcFrame
		if err := json.Unmarshal(line, &frame); err != nil {
			return fmt.Errorf("%w: %v", minererr.Incomplete, err)
		}

		switch {
		case frame.Method == "mining.notify":
			if err := r.dispatch(frame.Params, queue, jobID, factory, jobs); err != nil {
				log.Warn("malformed mining.notify", "err", err)
			}
		case frame.Method != "":
			log.Warn("unsupported method", "method", frame.Method)
		case frame.Error != nil:
			log.Warn("stratum error", "code", frame.Error.Code, "message", frame.Error.Message)
		default:
			// response to a submission we don't wait on, or otherwise
			// uninteresting: ignore.
		}
	}
}

func (r *Runner) dispatch(rawParams json.RawMessage, queue *outboundQueue, jobID *search.Counter, factory pow.Factory, jobs uint64) error {
	var params []string
	if err := json.Unmarshal(rawParams, &params); err != nil || len(params) != 2 {
		return fmt.Errorf("expected [headerHex, targetHex] params: %v", err)
	}

	header, target, err := frontend.ParseJob(params[0], params[1])
	if err != nil {
		return err
	}

	id := jobID.Next()
	solver := factory()
	searchID := r.counter.Next()

	go r.work(searchID, id, header, target, solver, jobs, queue)
	return nil
}

// work runs the search loop on its own goroutine and, on a hit, enqueues
// the submission for the writer to send. A panic here is isolated to this
// goroutine (spec §4.6).
func (r *Runner) work(searchID, jobID uint64, header pow.Header, target pow.Target, solver pow.Solver, jobs uint64, queue *outboundQueue) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("worker panicked", "search_id", searchID, "recovered", rec)
		}
	}()

	solution := search.Work(r.counter, searchID, header, target, solver, jobs)
	if solution == nil {
		return
	}
	queue.push(submit.Stratum(jobID, header, solution))
}

func writeLine(conn net.Conn, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", minererr.Incomplete, err)
	}
	data = append(data, '\n')

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("%w: %v", minererr.Io, err)
	}
	return nil
}

func readLine(reader *bufio.Reader) ([]byte, error) {
	line, err := reader.ReadBytes('\n')
	if err != nil {
		if len(line) == 0 {
			if err == io.EOF {
				return nil, minererr.Closed
			}
			return nil, fmt.Errorf("%w: %v", minererr.Io, err)
		}
		return nil, fmt.Errorf("%w: %v", minererr.Incomplete, err)
	}
	return line[:len(line)-1], nil
}
