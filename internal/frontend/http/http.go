// Package http implements the HTTP front-end (spec §4.3): a loopback-only
// request/response server with a single POST / route that accepts a job,
// spawns a worker and acknowledges immediately.
package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/log"
	"github.com/julienschmidt/httprouter"

	"github.com/codechain-miner/goworker/internal/frontend"
	"github.com/codechain-miner/goworker/internal/pow"
	"github.com/codechain-miner/goworker/internal/search"
	"github.com/codechain-miner/goworker/internal/submit"
)

// Config holds the two ports the HTTP front-end needs: where it listens for
// jobs, and where it posts solved submissions.
type Config struct {
	ListenPort uint16
	SubmitPort uint16
}

// Runner is the HTTP frontend.Runner. Its SupersessionCounter starts at 0,
// matching spec §3.
type Runner struct {
	cfg     Config
	counter *search.Counter
	client  *http.Client
}

// NewRunner builds an HTTP Runner for cfg.
func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:     cfg,
		counter: search.NewCounter(0),
		client:  &http.Client{},
	}
}

// job is the inbound POST body: {"result": [headerHex, targetHex]}.
type job struct {
	Result [2]string `json:"result"`
}

// Run binds 127.0.0.1:ListenPort and blocks serving jobs until the server
// errors out.
func (r *Runner) Run(factory pow.Factory, jobs uint64) error {
	router := httprouter.New()
	router.HandleMethodNotAllowed = false // unmatched method/path both yield 404, per spec §4.3
	router.POST("/", r.handle(factory, jobs))

	addr := fmt.Sprintf("127.0.0.1:%d", r.cfg.ListenPort)
	log.Info("http front-end starting", "addr", addr, "submit_port", r.cfg.SubmitPort, "jobs", jobs)

	return http.ListenAndServe(addr, router)
}

func (r *Runner) handle(factory pow.Factory, jobs uint64) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var parsed job
		if err := json.Unmarshal(body, &parsed); err != nil {
			log.Warn("could not parse job body", "err", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		header, target, err := frontend.ParseJob(parsed.Result[0], parsed.Result[1])
		if err != nil {
			log.Warn("could not parse job fields", "err", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		solver := factory()
		id := r.counter.Next()
		go r.work(id, header, target, solver, jobs)

		w.WriteHeader(http.StatusOK)
	}
}

// work runs the search loop on its own goroutine and submits any solution
// found. A panic here is isolated to this goroutine (spec §4.6 failure
// semantics: "worker panic isolated to its thread").
func (r *Runner) work(id uint64, header pow.Header, target pow.Target, solver pow.Solver, jobs uint64) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("worker panicked", "id", id, "recovered", rec)
		}
	}()

	solution := search.Work(r.counter, id, header, target, solver, jobs)
	if solution == nil {
		return
	}
	submit.HTTP(r.client, r.cfg.SubmitPort, header, solution)
}
