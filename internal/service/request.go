package service

import (
	"bytes"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrAbandoned is the reply error for a request whose submitter stopped waiting
// before the dispatch loop reached it.
var ErrAbandoned = errors.New("request abandoned")

// Reply is what the dispatch loop hands back for a foreground request.
type Reply struct {
	Result string // digit string; empty for previews
	Body   []byte // canvases in region order, then the raw frame when the pass completed
	Err    error
}

// Request is a pending foreground classification. The dispatch loop owns body
// from dequeue until it sends the reply; the submitter only reads the reply.
type Request struct {
	ID      string
	Preview bool // canvases and frame only: no inference, nothing logged

	body      bytes.Buffer
	done      chan Reply
	abandoned atomic.Bool
}

// NewRequest creates a request with a fresh ID.
func NewRequest(preview bool) *Request {
	return &Request{
		ID:      uuid.NewString(),
		Preview: preview,
		done:    make(chan Reply, 1),
	}
}

// Done delivers exactly one Reply once the request has been served.
func (r *Request) Done() <-chan Reply {
	return r.done
}

// Abandon tells the dispatch loop the submitter no longer waits for the reply.
// A request that is still queued is then skipped without capturing a frame;
// one already being served runs to completion.
func (r *Request) Abandon() {
	r.abandoned.Store(true)
}

func (r *Request) isAbandoned() bool {
	return r.abandoned.Load()
}

func (r *Request) reply(result string, err error) {
	r.done <- Reply{Result: result, Body: r.body.Bytes(), Err: err}
}
