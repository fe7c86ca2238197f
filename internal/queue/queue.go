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

// Package queue implements the bounded producer/consumer query queue
// shared between the connection thread and the worker pool: a ring
// buffer guarded by a mutex and two condition variables, one for
// "room available" and one for "work available".
package queue

import (
	"sync"

	"github.com/Nottinghster/tibia-querymanager/internal/queryobj"
)

// Queue is a ring buffer of capacity slots. Enqueue blocks while full;
// Dequeue blocks while empty; both observe a stop flag under the same
// lock so shutdown can wake every blocked goroutine exactly once with a
// Broadcast.
type Queue struct {
	mu             sync.Mutex
	workAvailable  *sync.Cond
	roomAvailable  *sync.Cond
	ring           []*queryobj.Query
	readPos        uint64
	writePos       uint64
	capacity       uint64
	stopped        bool
}

// New creates a queue with room for capacity queries in flight. The owner
// is expected to size this as 2 × MaxConnections.
func New(capacity int) *Queue {
	q := &Queue{
		ring:     make([]*queryobj.Query, capacity),
		capacity: uint64(capacity),
	}
	q.workAvailable = sync.NewCond(&q.mu)
	q.roomAvailable = sync.NewCond(&q.mu)
	return q
}

// Enqueue performs the query's 1→2 refcount handoff and appends it to the
// ring, blocking while the queue is full. It returns false (and does not
// enqueue) if the query already had an unexpected refcount, or if the
// queue has been stopped.
func (q *Queue) Enqueue(query *queryobj.Query) bool {
	if !query.Enqueue() {
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.writePos-q.readPos >= q.capacity && !q.stopped {
		q.roomAvailable.Wait()
	}

	if q.stopped {
		// Undo the handoff: the connection still owns the only reference.
		query.Done()
		return false
	}

	wasEmpty := q.writePos == q.readPos
	q.ring[q.writePos%q.capacity] = query
	q.writePos++

	if wasEmpty {
		q.workAvailable.Signal()
	}

	return true
}

// Dequeue blocks until a query is available or the queue is stopped, in
// which case it returns (nil, false).
func (q *Queue) Dequeue() (*queryobj.Query, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.writePos == q.readPos && !q.stopped {
		q.workAvailable.Wait()
	}

	if q.writePos == q.readPos {
		// Stopped with nothing left.
		return nil, false
	}

	if q.writePos-q.readPos == q.capacity {
		q.roomAvailable.Signal()
	}

	query := q.ring[q.readPos%q.capacity]
	q.ring[q.readPos%q.capacity] = nil
	q.readPos++

	return query, true
}

// Stop marks the queue as shutting down and wakes every blocked producer
// and consumer. Any queries still sitting in the ring are drained and
// released with Done() so no reference is ever leaked.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.stopped = true
	var drained []*queryobj.Query
	for q.readPos < q.writePos {
		drained = append(drained, q.ring[q.readPos%q.capacity])
		q.ring[q.readPos%q.capacity] = nil
		q.readPos++
	}
	q.mu.Unlock()

	q.workAvailable.Broadcast()
	q.roomAvailable.Broadcast()

	for _, query := range drained {
		query.Done()
	}
}

// Len reports the number of queries currently queued, for tests and
// metrics logging.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int(q.writePos - q.readPos)
}
