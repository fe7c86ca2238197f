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

// Package dbadapter is the single seam between the worker pool and the
// three supported SQL backends. Each worker owns exactly one Adapter,
// opened once at startup and reused (with reconnection on failure) for
// the life of the process, giving a single goroutine a private database
// session.
package dbadapter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Nottinghster/tibia-querymanager/internal/config"
	"github.com/Nottinghster/tibia-querymanager/internal/logging"
)

// Adapter is a single worker's persistent connection to the backing store,
// bundling a prepared-statement cache and a transaction scope so handlers
// never touch *sql.DB directly.
type Adapter struct {
	backend config.Backend
	db      *sql.DB
	stmts   *stmtCache
	tx      *sql.Tx
	rebind  func(query string) string

	maxConcurrency int
	lastChanges    int64
}

// Open connects to the backend named by cfg.Backend and returns a ready
// Adapter. Each call produces an independent *sql.DB capped at one
// physical connection (SetMaxOpenConns(1)), which is what gives a
// database/sql handle single-session-per-worker semantics.
func Open(cfg config.Config) (*Adapter, error) {
	var (
		db      *sql.DB
		err     error
		rebind  func(string) string
		maxStmt int
	)

	switch cfg.Backend {
	case config.BackendSQLite:
		db, err = openSQLite(cfg.SQLite)
		rebind = rebindNoop
		maxStmt = cfg.SQLite.MaxCachedStatements
	case config.BackendPostgreSQL:
		db, err = openPostgres(cfg.Postgres)
		rebind = rebindPostgres
		maxStmt = cfg.Postgres.MaxCachedStatements
	case config.BackendMySQL:
		db, err = openMySQL(cfg.MySQL)
		rebind = rebindNoop
		maxStmt = cfg.MySQL.MaxCachedStatements
	default:
		return nil, fmt.Errorf("dbadapter: unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Adapter{
		backend:        cfg.Backend,
		db:             db,
		stmts:          newStmtCache(maxStmt),
		rebind:         rebind,
		maxConcurrency: maxConcurrency(cfg.Backend),
	}, nil
}

// maxConcurrency advises the worker pool how many of these Adapters may
// usefully run at once. SQLite's single-writer model caps it at 1; the
// networked backends tolerate one session per worker thread, so they
// report no effective ceiling.
func maxConcurrency(backend config.Backend) int {
	switch backend {
	case config.BackendSQLite:
		return 1
	default:
		return 0
	}
}

// MaxConcurrency reports the largest number of these Adapters that should
// be run concurrently against the same backend, or 0 for no ceiling.
func (a *Adapter) MaxConcurrency() int { return a.maxConcurrency }

// Changes reports the number of rows affected by the most recent Exec.
func (a *Adapter) Changes() int64 { return a.lastChanges }

// Close releases every cached statement and the underlying connection.
func (a *Adapter) Close() error {
	a.stmts.closeAll()
	return a.db.Close()
}

// Checkpoint verifies the session is still usable, reconnecting if not. It
// is called before every retry attempt.
func (a *Adapter) Checkpoint(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		logging.WithField("backend", a.backend).Warn("dbadapter: checkpoint ping failed, statement cache invalidated")
		a.stmts.closeAll()
		return err
	}
	return nil
}

// Backend reports which backend this adapter talks to.
func (a *Adapter) Backend() config.Backend { return a.backend }

// prepare returns a cached *sql.Stmt for query, rebinding placeholder syntax
// for the active backend and preparing (and caching) it on a miss. Inside a
// transaction scope the statement is re-derived via tx.StmtContext on every
// call instead of being cached, since a transaction-bound statement becomes
// invalid the moment the transaction ends.
func (a *Adapter) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	bound := a.rebind(query)

	stmt, ok := a.stmts.get(bound)
	if !ok {
		var err error
		stmt, err = a.db.PrepareContext(ctx, bound)
		if err != nil {
			return nil, err
		}
		a.stmts.put(bound, stmt)
		logging.WithField("stmt", a.stmts.name(bound)).Debug("dbadapter: cached new prepared statement")
	}

	if a.tx != nil {
		return a.tx.StmtContext(ctx, stmt), nil
	}
	return stmt, nil
}

// Exec runs a mutating query with the given positional arguments (written
// with ? placeholders; rebound per backend) and returns rows affected.
func (a *Adapter) Exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	stmt, err := a.prepare(ctx, query)
	if err != nil {
		return 0, err
	}
	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	a.lastChanges = n
	return n, nil
}

// Query runs a read query and hands the *sql.Rows to fn, closing it
// afterwards regardless of fn's outcome.
func (a *Adapter) Query(ctx context.Context, query string, fn func(*sql.Rows) error, args ...interface{}) error {
	stmt, err := a.prepare(ctx, query)
	if err != nil {
		return err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	if err := fn(rows); err != nil {
		return err
	}
	return rows.Err()
}

// QueryRow runs a single-row read query.
func (a *Adapter) QueryRow(ctx context.Context, query string, args ...interface{}) (*sql.Row, error) {
	stmt, err := a.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	return stmt.QueryRowContext(ctx, args...), nil
}

func rebindNoop(query string) string { return query }

// rebindPostgres rewrites ? placeholders into lib/pq's $1, $2, ... form so
// every handler can be written once against the sqlite/mysql convention.
func rebindPostgres(query string) string {
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, '$')
			out = append(out, []byte(fmt.Sprintf("%d", n))...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}
