// Package minererr defines the error taxonomy shared by both front-ends
// (spec §7). Each Kind is a sentinel wrapped with optional context via
// fmt.Errorf("%w", ...), so callers use errors.Is(err, minererr.Closed) etc.
package minererr

import "errors"

// Kind values are the sentinels every front-end error wraps.
var (
	// Incomplete: malformed JSON or a partial frame observed at EOF.
	Incomplete = errors.New("parsed message is incomplete or malformed")
	// Closed: the remote peer closed the connection (zero-byte read).
	Closed = errors.New("connection closed by peer")
	// Io: a socket read/write failed.
	Io = errors.New("io error")
	// Connect: the initial TCP dial failed.
	Connect = errors.New("connect failed")
	// Authenticate: the mining.authorize response was missing or false.
	Authenticate = errors.New("authentication failed")
	// Execute: the dispatcher could not spawn a worker.
	Execute = errors.New("executor refused to spawn task")
	// ParseJob: an inbound HTTP job body failed to parse.
	ParseJob = errors.New("could not parse job")
	// SubmitFailure: an outbound submission failed to deliver.
	SubmitFailure = errors.New("submission failed")
)
