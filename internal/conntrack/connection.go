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

package conntrack

import (
	"time"

	"github.com/tidwall/evio"

	"github.com/Nottinghster/tibia-querymanager/internal/queryobj"
	"github.com/Nottinghster/tibia-querymanager/internal/wire"
)

// state is a connection's position in the FREE/READING/REQUEST/RESPONSE/
// WRITING cycle.
type state int

const (
	stateFree state = iota
	stateReading
	stateRequest
	stateResponse
	stateWriting
)

// Connection is one slot in the fixed MaxConnections array. FREE slots
// carry no socket and no Query.
type Connection struct {
	state state

	conn       evio.Conn
	closing    bool
	authorized bool
	appType    queryobj.ApplicationType
	worldID    int32
	remoteAddr string
	lastActive time.Time

	query *queryobj.Query

	frame       []byte // raw bytes accumulated for the frame currently being read
	headerDone  bool
	wantLen     int // -1 until the header is fully parsed
	writeBuf    []byte
	writeSent   int

	bufferSize int
}

func newConnection(bufferSize int) *Connection {
	return &Connection{bufferSize: bufferSize}
}

// reset returns the slot to FREE, releasing any bound Query.
func (c *Connection) reset() {
	if c.query != nil {
		c.query.Done()
		c.query = nil
	}
	c.state = stateFree
	c.conn = nil
	c.closing = false
	c.authorized = false
	c.appType = 0
	c.worldID = 0
	c.remoteAddr = ""
	c.frame = nil
	c.headerDone = false
	c.wantLen = -1
	c.writeBuf = nil
	c.writeSent = 0
}

func (c *Connection) activate(conn evio.Conn, remoteAddr string) {
	c.state = stateReading
	c.conn = conn
	c.remoteAddr = remoteAddr
	c.lastActive = time.Now()
	c.wantLen = -1
}

// feedFrame appends newly-read bytes and reports whether a complete frame
// is now available. It enforces the two-subphase header parse and the
// `0 < len ≤ BufferSize` bound; a violation of that bound is reported via
// ok=false (caller closes the connection).
func (c *Connection) feedFrame(data []byte) (complete bool, ok bool) {
	c.frame = append(c.frame, data...)
	c.lastActive = time.Now()

	for {
		if !c.headerDone {
			if len(c.frame) < wire.ShortHeaderSize {
				return false, true
			}
			shortLen := wire.ReadUint16LE(c.frame[:2])
			if shortLen != wire.ExtendedMarker {
				c.wantLen = int(shortLen)
				c.headerDone = true
				c.frame = c.frame[wire.ShortHeaderSize:]
				continue
			}
			if len(c.frame) < wire.ExtendedHeaderSize {
				return false, true
			}
			longLen := wire.ReadUint32LE(c.frame[2:6])
			c.wantLen = int(longLen)
			c.headerDone = true
			c.frame = c.frame[wire.ExtendedHeaderSize:]
			continue
		}

		if c.wantLen <= 0 || c.wantLen > c.bufferSize {
			return false, false
		}
		if len(c.frame) < c.wantLen {
			return false, true
		}
		return true, true
	}
}

// payload returns the fully-received frame payload (exactly wantLen
// bytes); call only after feedFrame reports complete.
func (c *Connection) payload() []byte { return c.frame[:c.wantLen] }

// beginNextFrame resets the framing state so the next call's bytes start a
// fresh frame, keeping any bytes already read past the current one.
// Pipelined requests are not expected (one in flight per connection), but
// this keeps the parser correct if they arrive anyway.
func (c *Connection) beginNextFrame() {
	leftover := c.frame[c.wantLen:]
	c.frame = append([]byte(nil), leftover...)
	c.headerDone = false
	c.wantLen = -1
}

func (c *Connection) idleFor(now time.Time) time.Duration {
	return now.Sub(c.lastActive)
}
