/*
Copyright 2026 The Tibia-QueryManager Authors.
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package queryobj implements the ref-counted Query object shared between
// a connection and a worker.
package queryobj

import (
	"fmt"
	"sync/atomic"

	"github.com/Nottinghster/tibia-querymanager/internal/wire"
)

// Status is the outcome of handling a query. OK/ERROR/FAILED are
// wire-visible; PENDING is internal-only and must be converted to FAILED
// before a response is ever sent.
type Status int32

const (
	StatusOK      Status = 0
	StatusError   Status = 1
	StatusFailed  Status = 3
	StatusPending Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusFailed:
		return "FAILED"
	case StatusPending:
		return "PENDING"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// Type is a query type code, the first byte of every request payload.
// Handlers are registered against these in internal/handlers.
type Type int

// Query is the single-owner-or-shared buffer pair passed between a
// connection and a worker. The request and response views share one
// backing array so a PENDING retry always sees the untouched original
// request: a handler must not begin writing its response
// until it knows the query is finished.
type Query struct {
	refCount int32 // atomic; see Enqueue/Done

	Type   Type
	Status Status

	// WorldID is populated by the authorization gate's internal
	// INTERNAL_RESOLVE_WORLD round trip and is otherwise
	// zero.
	WorldID int

	buffer []byte

	reqReader     *wire.Reader
	respWriter    *wire.Writer
	respBodyStart int // offset where the status byte (and body) begins, after the reserved header

	onWorkerDone func() // optional; see SetWorkerDoneCallback
}

// New allocates a Query with refcount 1 and a zeroed buffer of the
// configured size.
func New(bufferSize int) *Query {
	return &Query{
		refCount: 1,
		buffer:   make([]byte, bufferSize),
	}
}

// RefCount returns the current reference count, for tests and invariant
// checks.
func (q *Query) RefCount() int32 { return atomic.LoadInt32(&q.refCount) }

// Enqueue performs the 1→2 ownership handoff required before a Query is
// handed to the worker queue: the connection keeps its reference and the
// queue/worker gets a second one. Any other starting refcount is a bug and
// is refused rather than corrupting the count.
func (q *Query) Enqueue() bool {
	return atomic.CompareAndSwapInt32(&q.refCount, 1, 2)
}

// Done releases one reference. The caller must not touch q afterwards if
// this was the last reference; Go's GC means there's no explicit free, but
// the contract of exactly two Done calls per Query that ever entered the
// queue still holds.
func (q *Query) Done() {
	if atomic.AddInt32(&q.refCount, -1) < 0 {
		panic("queryobj: Done called more times than references held")
	}
}

// BeginRequest resets the query for building a fresh internal request
// (used only by the authorization gate's INTERNAL_RESOLVE_WORLD call).
// It returns a Writer positioned right after the type byte.
func (q *Query) BeginRequest(t Type) *wire.Writer {
	q.Type = t
	w := wire.NewWriter(q.buffer)
	w.WriteByte(byte(t))
	return w
}

// FinishRequest commits a request built with BeginRequest, installing it
// as the query's request view.
func (q *Query) FinishRequest(w *wire.Writer) bool {
	if w.Overflowed() || w.Position() < 1 {
		return false
	}
	q.reqReader = wire.NewReader(q.buffer[:w.Position()])
	// Skip the type byte; handlers read parameters after it.
	q.reqReader.ReadByte()
	return true
}

// SetRequest installs a request view over bytes already received by the
// connection state machine. typ is the first payload byte, already
// consumed by the caller.
func (q *Query) SetRequest(payload []byte, typ Type) {
	q.Type = typ
	q.reqReader = wire.NewReader(payload)
	q.reqReader.ReadByte()
}

// Request returns the reader over the request payload (past the type
// byte), for handlers to decode parameters from.
func (q *Query) Request() *wire.Reader { return q.reqReader }

// SetWorkerDoneCallback installs a hook the worker pool invokes once it
// has finished handling this query (after the response is built, before
// the worker's Done()). The connection state machine uses this to wake
// its poller without the worker needing a reference to the connection:
// once the Query's refcount has returned to 1, the worker is done and the
// connection can move on to writing the response.
func (q *Query) SetWorkerDoneCallback(fn func()) { q.onWorkerDone = fn }

// NotifyWorkerDone invokes the installed callback, if any. Called by the
// worker pool exactly once per query, after handling and before Done().
func (q *Query) NotifyWorkerDone() {
	if q.onWorkerDone != nil {
		q.onWorkerDone()
	}
}

// Buffer exposes the single backing array, for the connection state
// machine's socket read/write loop.
func (q *Query) Buffer() []byte { return q.buffer }

const (
	headerShort    = wire.ShortHeaderSize
	headerExtended = wire.ExtendedHeaderSize
)

// beginResponse resets the write view and reserves room for the widest
// possible frame header (2-byte marker + 4-byte length), so the body can
// always be written starting at a fixed offset; finalize() later
// compacts the header down to the short 2-byte form when the payload is
// small enough. Rather than inserting bytes into an already-written
// buffer, the worst case is reserved up front and shrunk on finalize.
func (q *Query) beginResponse(status Status) *wire.Writer {
	q.Status = status
	w := wire.NewWriter(q.buffer)
	w.WriteUint16(0) // placeholder short length
	w.WriteUint32(0) // placeholder extended length
	q.respBodyStart = w.Position()
	w.WriteByte(byte(status))
	q.respWriter = w
	return w
}

// finalize writes the real frame header now that the full body has been
// written, compacting to the short form when possible. It returns the
// bytes ready to be sent on the wire, or ok=false if the response
// overflowed the buffer, in which case the query's status becomes FAILED.
func (q *Query) finalize() (out []byte, ok bool) {
	w := q.respWriter
	if w == nil || w.Overflowed() {
		return nil, false
	}

	bodyLen := w.Position() - q.respBodyStart
	if bodyLen < 0 {
		return nil, false
	}

	if bodyLen < int(wire.ExtendedMarker) {
		// Compact: move the body down to right after the short header.
		copy(q.buffer[headerShort:headerShort+bodyLen], q.buffer[q.respBodyStart:q.respBodyStart+bodyLen])
		wire.PutUint16LE(q.buffer[0:2], uint16(bodyLen))
		return q.buffer[:headerShort+bodyLen], true
	}

	wire.PutUint16LE(q.buffer[0:2], uint16(wire.ExtendedMarker))
	wire.PutUint32LE(q.buffer[2:6], uint32(bodyLen))
	return q.buffer[:headerExtended+bodyLen], true
}

// Ok builds an OK response with no body beyond the status byte.
func (q *Query) Ok() {
	q.beginResponse(StatusOK)
}

// Error builds an ERROR response carrying a single handler-local error
// code byte.
func (q *Query) Error(errorCode uint8) {
	w := q.beginResponse(StatusError)
	w.WriteByte(errorCode)
}

// Failed builds an empty FAILED response.
func (q *Query) Failed() {
	q.beginResponse(StatusFailed)
}

// ResponseBody returns the response bytes written so far, status byte
// included, for internal (non-wire) consumers such as the authorization
// gate's INTERNAL_RESOLVE_WORLD round trip, which never goes out over a
// socket.
func (q *Query) ResponseBody() []byte {
	if q.respWriter == nil {
		return nil
	}
	return q.buffer[q.respBodyStart:q.respWriter.Position()]
}

// ResponseWriter returns the writer for a handler to append a body to,
// after Ok/Error has set the status byte. Handlers that need a payload
// beyond the bare status call this following Ok().
func (q *Query) ResponseWriter() *wire.Writer {
	return q.respWriter
}

// FinishResponse finalizes the response frame in place and returns the
// ready-to-send bytes. If finalization fails (overflow), the query is
// downgraded to FAILED and that response is finalized instead, which
// cannot itself overflow.
func (q *Query) FinishResponse() []byte {
	out, ok := q.finalize()
	if ok {
		return out
	}
	q.Failed()
	out, _ = q.finalize()
	return out
}
