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

// Package conntrack implements the connection state machine: a loopback-
// only TCP front end that turns a byte stream into authorized, typed
// requests and routes them to the worker queue, built on an evio-driven
// phase switch.
package conntrack

import (
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/tidwall/evio"

	"github.com/Nottinghster/tibia-querymanager/internal/authgate"
	"github.com/Nottinghster/tibia-querymanager/internal/config"
	"github.com/Nottinghster/tibia-querymanager/internal/hostcache"
	"github.com/Nottinghster/tibia-querymanager/internal/logging"
	"github.com/Nottinghster/tibia-querymanager/internal/queryobj"
	"github.com/Nottinghster/tibia-querymanager/internal/queue"
	"github.com/Nottinghster/tibia-querymanager/internal/wire"
)

// Server owns the fixed connection slot array and the evio event loop
// driving it. The slot array and host cache are touched only by the
// connection goroutine(s) evio runs on.
type Server struct {
	cfg   config.Config
	queue *queue.Queue
	hosts *hostcache.Cache

	mu    sync.Mutex
	slots []*Connection

	events evio.Events

	shutdown chan struct{}
}

// New builds a server with a fixed MaxConnections slot array.
func New(cfg config.Config, q *queue.Queue) *Server {
	s := &Server{
		cfg:      cfg,
		queue:    q,
		hosts:    hostcache.New(cfg.MaxCachedHostNames, time.Duration(cfg.HostNameExpireTime)*time.Millisecond),
		slots:    make([]*Connection, cfg.MaxConnections),
		shutdown: make(chan struct{}),
	}
	for i := range s.slots {
		s.slots[i] = newConnection(cfg.QueryBufferSize)
	}

	s.events.Serving = s.onServing
	s.events.Opened = s.onOpened
	s.events.Closed = s.onClosed
	s.events.Data = s.onData
	s.events.Tick = s.onTick

	return s
}

// Serve binds the loopback listener and runs the event loop until Stop is
// called. A second defense-in-depth loopback check happens per-connection
// in onOpened.
func (s *Server) Serve() error {
	addr := "tcp://127.0.0.1:" + strconv.Itoa(s.cfg.QueryManagerPort)
	return evio.Serve(s.events, addr)
}

func (s *Server) onServing(el evio.Server) (action evio.Action) {
	logging.WithField("port", s.cfg.QueryManagerPort).Info("conntrack: listening on loopback")
	return evio.None
}

// onOpened assigns a free slot to the accepted socket, rejecting non-
// loopback peers immediately.
func (s *Server) onOpened(c evio.Conn) ([]byte, evio.Options, evio.Action) {
	host, _, _ := net.SplitHostPort(c.RemoteAddr().String())
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		logging.WithField("remote", c.RemoteAddr().String()).Warn("conntrack: rejecting non-loopback peer")
		return nil, evio.Options{}, evio.Close
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var slot *Connection
	for _, candidate := range s.slots {
		if candidate.state == stateFree {
			slot = candidate
			break
		}
	}
	if slot == nil {
		logging.Warn("conntrack: no free connection slot, closing")
		return nil, evio.Options{}, evio.Close
	}

	slot.activate(c, c.RemoteAddr().String())
	c.SetContext(slot)

	return nil, evio.Options{}, evio.None
}

func (s *Server) onClosed(c evio.Conn, err error) evio.Action {
	slot, ok := c.Context().(*Connection)
	if ok && slot != nil {
		s.mu.Lock()
		slot.reset()
		s.mu.Unlock()
	}
	return evio.None
}

// onTick drives the idle reaper. It also observes
// the shutdown flag so Stop() can unwind the loop.
func (s *Server) onTick() (delay time.Duration, action evio.Action) {
	select {
	case <-s.shutdown:
		return 0, evio.Shutdown
	default:
	}

	now := time.Now()
	maxIdle := time.Duration(s.cfg.MaxConnectionIdleTime) * time.Millisecond
	s.mu.Lock()
	for _, slot := range s.slots {
		if slot.state != stateFree && !slot.closing && slot.idleFor(now) > maxIdle {
			logging.WithField("remote", slot.remoteAddr).Debug("conntrack: closing connection idle past MaxConnectionIdleTime")
			slot.closing = true
			conn := slot.conn
			if conn != nil {
				conn.Wake()
			}
		}
	}
	s.mu.Unlock()

	return time.Second, evio.None
}

// onData is the heart of the state machine: it feeds newly-arrived bytes
// through the framer, and on a complete frame walks REQUEST → (RESPONSE |
// immediate reply) → WRITING.
func (s *Server) onData(c evio.Conn, in []byte) (out []byte, action evio.Action) {
	slot, ok := c.Context().(*Connection)
	if !ok || slot == nil {
		return nil, evio.Close
	}

	if in == nil {
		if slot.closing {
			return nil, evio.Close
		}
		// A wake call: a worker finished this slot's in-flight query.
		return s.tryFinishResponse(slot)
	}

	if slot.state != stateReading {
		// A request arrived while the previous one hadn't been fully
		// written back: protocol desync.
		return nil, evio.Close
	}

	complete, withinBounds := slot.feedFrame(in)
	if !withinBounds {
		return nil, evio.Close
	}
	if !complete {
		return nil, evio.None
	}

	slot.state = stateRequest
	return s.handleRequest(c, slot)
}

// handleRequest implements the REQUEST phase gate: first
// request must be LOGIN; afterwards every request is checked against the
// per-application-type whitelist.
func (s *Server) handleRequest(c evio.Conn, slot *Connection) ([]byte, evio.Action) {
	payload := slot.payload()
	if len(payload) == 0 {
		return nil, evio.Close
	}
	typ := queryobj.Type(payload[0])

	if !slot.authorized {
		if typ != queryobj.TypeLogin {
			return nil, evio.Close
		}
		return s.handleLogin(c, slot, payload[1:])
	}

	if !authgate.Allowed(slot.appType, typ) {
		slot.beginNextFrame()
		return s.writeImmediate(slot, failedFrame())
	}

	q := queryobj.New(slot.bufferSize)
	q.SetRequest(append([]byte(nil), payload...), typ)
	q.WorldID = int(slot.worldID)
	slot.query = q

	q.SetWorkerDoneCallback(func() { c.Wake() })

	if !s.queue.Enqueue(q) {
		slot.query = nil
		return nil, evio.Close
	}

	slot.state = stateResponse
	return nil, evio.None
}

// handleLogin implements the LOGIN handshake.
func (s *Server) handleLogin(c evio.Conn, slot *Connection, body []byte) ([]byte, evio.Action) {
	req, ok := authgate.ParseLogin(wire.NewReader(body))
	if !ok {
		return nil, evio.Close
	}

	if req.Password != s.cfg.QueryManagerPassword {
		slot.beginNextFrame()
		return s.writeFinal(slot, failedFrame())
	}

	switch req.AppType {
	case queryobj.AppLogin, queryobj.AppWeb:
		slot.authorized = true
		slot.appType = req.AppType
		slot.beginNextFrame()
		return s.writeImmediate(slot, okFrame())

	case queryobj.AppGame:
		q := queryobj.New(slot.bufferSize)
		w := q.BeginRequest(queryobj.TypeInternalResolveWorld)
		w.WriteString(req.WorldName)
		if !q.FinishRequest(w) {
			return nil, evio.Close
		}
		slot.query = q
		slot.appType = queryobj.AppGame
		slot.state = stateResponse

		q.SetWorkerDoneCallback(func() { c.Wake() })
		if !s.queue.Enqueue(q) {
			slot.query = nil
			return nil, evio.Close
		}
		return nil, evio.None

	default:
		slot.beginNextFrame()
		return s.writeFinal(slot, failedFrame())
	}
}

// tryFinishResponse is called on a Wake(): if the bound Query's worker has
// finished, build the outgoing frame and move to WRITING.
func (s *Server) tryFinishResponse(slot *Connection) ([]byte, evio.Action) {
	q := slot.query
	if q == nil || q.RefCount() != 1 {
		return nil, evio.None
	}

	// The GAME login handshake's internal resolve-world round trip is
	// completed here rather than being relayed to the client as-is.
	if q.Type == queryobj.TypeInternalResolveWorld {
		slot.query = nil
		if q.Status != queryobj.StatusOK {
			slot.beginNextFrame()
			return s.writeFinal(slot, failedFrame())
		}
		body := wire.NewReader(q.ResponseBody())
		body.ReadByte() // status byte, already checked above
		worldID, ok := body.ReadInt32()
		if !ok {
			slot.beginNextFrame()
			return s.writeFinal(slot, failedFrame())
		}
		slot.worldID = worldID
		slot.authorized = true
		slot.beginNextFrame()
		return s.writeImmediate(slot, okFrame())
	}

	out := q.FinishResponse()
	slot.query = nil
	slot.beginNextFrame()

	// LOAD_WORLD_CONFIG carries an unresolved host name in its body; the
	// host cache is touched only by the connection thread, so
	// the resolution to an IPv4 address happens here rather than in the
	// handler.
	if q.Type == queryobj.TypeLoadWorldConfig && q.Status == queryobj.StatusOK {
		out = s.resolveWorldConfigHost(out)
	}

	return s.writeImmediate(slot, out)
}

// resolveWorldConfigHost rewrites a finalized LOAD_WORLD_CONFIG response,
// replacing its trailing (hostName string, port uint16) pair with a
// resolved IPv4 address and the same port, via the host cache. On resolver
// failure it zeroes the address rather than failing the whole response.
func (s *Server) resolveWorldConfigHost(frame []byte) []byte {
	headerLen := wire.ShortHeaderSize
	if len(frame) >= 2 && wire.ReadUint16LE(frame[:2]) == wire.ExtendedMarker {
		headerLen = wire.ExtendedHeaderSize
	}
	body := frame[headerLen:]

	r := wire.NewReader(body)
	r.ReadByte() // status
	r.ReadString()
	r.ReadInt32()
	r.ReadInt32()
	r.ReadInt32()
	r.ReadInt32()
	r.ReadInt32()
	prefixEnd := r.Position()
	hostName, ok := r.ReadString()
	if !ok {
		return frame
	}
	port, ok := r.ReadUint16()
	if !ok {
		return frame
	}
	prefix := body[:prefixEnd]

	var addr [4]byte
	if ip, ok := s.hosts.Resolve(hostName); ok {
		copy(addr[:], ip.To4())
	}

	w := wire.NewWriter(make([]byte, headerLen+len(prefix)+6))
	w.WriteUint16(0)
	if headerLen == wire.ExtendedHeaderSize {
		w.WriteUint32(0)
	}
	w.WriteBytes(prefix)
	w.WriteBytes(addr[:])
	w.WriteUint16(port)

	out := w.Bytes()
	bodyLen := len(out) - headerLen
	if headerLen == wire.ShortHeaderSize {
		wire.PutUint16LE(out[0:2], uint16(bodyLen))
	} else {
		wire.PutUint16LE(out[0:2], uint16(wire.ExtendedMarker))
		wire.PutUint32LE(out[2:6], uint32(bodyLen))
	}
	return out
}

// writeImmediate sends a response and returns the connection to READING.
func (s *Server) writeImmediate(slot *Connection, frame []byte) ([]byte, evio.Action) {
	slot.state = stateReading
	return frame, evio.None
}

// writeFinal sends a response and closes the connection afterwards: used
// for the pre-authorization failure paths.
func (s *Server) writeFinal(slot *Connection, frame []byte) ([]byte, evio.Action) {
	return frame, evio.Close
}

// Stop signals the event loop to shut down on its next tick.
func (s *Server) Stop() { close(s.shutdown) }

func okFrame() []byte {
	return []byte{1, 0, byte(queryobj.StatusOK)}
}

func failedFrame() []byte {
	return []byte{1, 0, byte(queryobj.StatusFailed)}
}
