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

package dbadapter

import (
	"container/list"
	"database/sql"
	"hash/fnv"

	"github.com/google/uuid"
)

// stmtCache is a fixed-capacity LRU cache of prepared statements, keyed by
// an FNV1a hash of the query text with an exact-text check on collision
// Capacity is hard-capped at 9999
// entries regardless of what a config file asks for.
type stmtCache struct {
	capacity int
	entries  map[uint64]*list.Element
	order    *list.List // front = most recently used
}

type stmtEntry struct {
	hash uint64
	text string
	stmt *sql.Stmt
	name string // opaque identifier for logs; never sent to the database
}

func newStmtCache(capacity int) *stmtCache {
	if capacity > maxCachedStatements {
		capacity = maxCachedStatements
	}
	if capacity < 1 {
		capacity = 1
	}
	return &stmtCache{
		capacity: capacity,
		entries:  make(map[uint64]*list.Element),
		order:    list.New(),
	}
}

// maxCachedStatements is the hard ceiling, enforced here in addition to
// config.Validate so a cache built without going through config loading
// still can't misbehave.
const maxCachedStatements = 9999

func hashQueryText(text string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(text))
	return h.Sum64()
}

// get returns a live prepared statement for text if cached, promoting it to
// most-recently-used.
func (c *stmtCache) get(text string) (*sql.Stmt, bool) {
	h := hashQueryText(text)
	el, ok := c.entries[h]
	if !ok {
		return nil, false
	}
	e := el.Value.(*stmtEntry)
	if e.text != text {
		// Hash collision on different text: treat as a miss rather than
		// returning the wrong statement.
		return nil, false
	}
	c.order.MoveToFront(el)
	return e.stmt, true
}

// put inserts a freshly prepared statement, evicting the least-recently-used
// entry (closing its *sql.Stmt) if the cache is at capacity.
func (c *stmtCache) put(text string, stmt *sql.Stmt) {
	h := hashQueryText(text)
	if el, ok := c.entries[h]; ok {
		old := el.Value.(*stmtEntry)
		old.stmt.Close()
		old.text = text
		old.stmt = stmt
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		back := c.order.Back()
		if back != nil {
			evicted := back.Value.(*stmtEntry)
			evicted.stmt.Close()
			delete(c.entries, evicted.hash)
			c.order.Remove(back)
		}
	}

	el := c.order.PushFront(&stmtEntry{hash: h, text: text, stmt: stmt, name: "stmt_" + uuid.NewString()})
	c.entries[h] = el
}

// name returns the opaque debug identifier assigned to the cached
// statement for text, or "" if it isn't cached. Used in the adapter's
// cache-miss debug log line so a prepared statement can be tracked
// without ever logging the query text itself.
func (c *stmtCache) name(text string) string {
	h := hashQueryText(text)
	el, ok := c.entries[h]
	if !ok {
		return ""
	}
	return el.Value.(*stmtEntry).name
}

// closeAll releases every cached statement, used when a worker session is
// torn down or reconnected.
func (c *stmtCache) closeAll() {
	for el := c.order.Front(); el != nil; el = el.Next() {
		el.Value.(*stmtEntry).stmt.Close()
	}
	c.entries = make(map[uint64]*list.Element)
	c.order.Init()
}

func (c *stmtCache) len() int { return c.order.Len() }
