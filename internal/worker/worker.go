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

// Package worker implements the fixed-size worker pool: each worker owns
// one database session and repeatedly dequeues a Query, dispatches it by
// type, and retries under a checkpoint until it either succeeds or
// exhausts its attempt budget.
package worker

import (
	"context"

	"github.com/Nottinghster/tibia-querymanager/internal/config"
	"github.com/Nottinghster/tibia-querymanager/internal/dbadapter"
	"github.com/Nottinghster/tibia-querymanager/internal/handlers"
	"github.com/Nottinghster/tibia-querymanager/internal/logging"
	"github.com/Nottinghster/tibia-querymanager/internal/queryobj"
	"github.com/Nottinghster/tibia-querymanager/internal/queue"
	"github.com/Nottinghster/tibia-querymanager/internal/store"
)

// Pool owns the set of worker goroutines draining a shared Queue.
type Pool struct {
	cfg     config.Config
	q       *queue.Queue
	workers []*worker
	done    chan struct{}
}

type worker struct {
	id      int
	adapter *dbadapter.Adapter
	store   *store.Store
}

// Start opens one database session per worker and launches its goroutine.
// If any worker fails to open its session, every already-opened session is
// closed and the pool aborts start-up.
func Start(cfg config.Config, q *queue.Queue) (*Pool, error) {
	p := &Pool{cfg: cfg, q: q, done: make(chan struct{})}

	threads := cfg.QueryWorkerThreads
	for i := 0; i < threads; i++ {
		adapter, err := dbadapter.Open(cfg)
		if err != nil {
			p.closeOpened()
			return nil, err
		}

		if mc := adapter.MaxConcurrency(); mc > 0 && i >= mc {
			adapter.Close()
			logging.WithField("backend", cfg.Backend).WithField("limit", mc).WithField("requested", threads).
				Warn("worker: clamping QueryWorkerThreads to backend MaxConcurrency")
			break
		}

		p.workers = append(p.workers, &worker{id: i, adapter: adapter, store: store.New(adapter)})
	}

	for _, w := range p.workers {
		go p.run(w)
	}

	return p, nil
}

func (p *Pool) closeOpened() {
	for _, w := range p.workers {
		w.adapter.Close()
	}
	p.workers = nil
}

// Stop drains the queue (queue.Stop releases every remaining Query) and
// waits for in-flight handlers to finish by closing every worker's
// database session only after the queue reports no more work.
func (p *Pool) Stop() {
	p.q.Stop()
	for _, w := range p.workers {
		w.adapter.Close()
	}
}

func (p *Pool) run(w *worker) {
	ctx := context.Background()
	for {
		q, ok := p.q.Dequeue()
		if !ok {
			return
		}
		p.handle(ctx, w, q)
		q.NotifyWorkerDone()
		q.Done()
	}
}

// handle runs the dispatch-and-retry loop: look up the handler, mark
// PENDING, retry up to QueryMaxAttempts times with a pre-attempt
// Checkpoint, and convert to FAILED if the status is still PENDING once
// attempts are exhausted.
func (p *Pool) handle(ctx context.Context, w *worker, q *queryobj.Query) {
	fn, known := handlers.Lookup(q.Type)

	q.Status = queryobj.StatusPending

	attempts := p.cfg.QueryMaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if err := w.adapter.Checkpoint(ctx); err != nil {
			logging.WithField("worker", w.id).Warn("worker: checkpoint failed, will retry")
			continue
		}

		if !known {
			// Unknown query types leave status PENDING through every
			// attempt; the check below converts it to FAILED once the
			// attempts are exhausted.
			continue
		}

		fn(ctx, w.store, q)

		if q.Status != queryobj.StatusPending {
			break
		}
	}

	if q.Status == queryobj.StatusPending {
		q.Failed()
	}
}
