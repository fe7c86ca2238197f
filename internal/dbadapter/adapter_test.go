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
	"context"
	"database/sql"
	"testing"

	"github.com/Nottinghster/tibia-querymanager/internal/config"
)

func TestRebindPostgresRewritesPlaceholdersInOrder(t *testing.T) {
	got := rebindPostgres(`SELECT * FROM t WHERE a = ? AND b = ? OR c = ?`)
	want := `SELECT * FROM t WHERE a = $1 AND b = $2 OR c = $3`
	if got != want {
		t.Errorf("rebindPostgres() = %q, want %q", got, want)
	}
}

func TestRebindPostgresLeavesQueryWithoutPlaceholdersUnchanged(t *testing.T) {
	got := rebindPostgres(`SELECT 1`)
	if got != `SELECT 1` {
		t.Errorf("rebindPostgres() = %q, want unchanged", got)
	}
}

func TestRebindNoopReturnsInputUnchanged(t *testing.T) {
	if got := rebindNoop(`SELECT ? `); got != `SELECT ? ` {
		t.Errorf("rebindNoop() = %q, want unchanged", got)
	}
}

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := Open(config.Config{
		Backend: config.BackendSQLite,
		SQLite:  config.SQLiteConfig{File: ":memory:", MaxCachedStatements: 16},
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	if _, err := a.Exec(context.Background(), `CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return a
}

func TestAdapterExecAndQueryRoundTrip(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if _, err := a.Exec(ctx, `INSERT INTO t (id, v) VALUES (?, ?)`, 1, "hello"); err != nil {
		t.Fatalf("Exec(insert) error = %v", err)
	}

	row, err := a.QueryRow(ctx, `SELECT v FROM t WHERE id = ?`, 1)
	if err != nil {
		t.Fatalf("QueryRow() error = %v", err)
	}
	var v string
	if err := row.Scan(&v); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if v != "hello" {
		t.Fatalf("v = %q, want hello", v)
	}
}

func TestAdapterQueryIteratesRowsAndClosesThem(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		if _, err := a.Exec(ctx, `INSERT INTO t (id, v) VALUES (?, ?)`, i, "x"); err != nil {
			t.Fatalf("Exec(insert %d) error = %v", i, err)
		}
	}

	count := 0
	err := a.Query(ctx, `SELECT id FROM t ORDER BY id`, func(rows *sql.Rows) error {
		for rows.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
}

func TestAdapterPrepareCachesStatementAcrossCalls(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if _, err := a.Exec(ctx, `INSERT INTO t (id, v) VALUES (?, ?)`, 1, "a"); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if a.stmts.len() != 1 {
		t.Fatalf("stmts.len() = %d, want 1 after first Exec", a.stmts.len())
	}

	if _, err := a.Exec(ctx, `INSERT INTO t (id, v) VALUES (?, ?)`, 2, "b"); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if a.stmts.len() != 1 {
		t.Fatalf("stmts.len() = %d, want still 1 (same query text should hit the cache)", a.stmts.len())
	}
}

func TestAdapterCheckpointSucceedsOnHealthyConnection(t *testing.T) {
	a := newTestAdapter(t)
	if err := a.Checkpoint(context.Background()); err != nil {
		t.Fatalf("Checkpoint() error = %v", err)
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	if _, err := Open(config.Config{Backend: config.Backend("nonsense")}); err == nil {
		t.Fatal("Open(unknown backend) error = nil, want non-nil")
	}
}

func TestAdapterBackendReportsConfiguredBackend(t *testing.T) {
	a := newTestAdapter(t)
	if got := a.Backend(); got != config.BackendSQLite {
		t.Fatalf("Backend() = %v, want %v", got, config.BackendSQLite)
	}
}

func TestAdapterMaxConcurrencyIsOneForSQLite(t *testing.T) {
	a := newTestAdapter(t)
	if got := a.MaxConcurrency(); got != 1 {
		t.Fatalf("MaxConcurrency() = %d, want 1 for sqlite", got)
	}
}

func TestAdapterMaxConcurrencyIsUnboundedForNetworkedBackends(t *testing.T) {
	if got := maxConcurrency(config.BackendPostgreSQL); got != 0 {
		t.Fatalf("maxConcurrency(postgres) = %d, want 0 (no ceiling)", got)
	}
	if got := maxConcurrency(config.BackendMySQL); got != 0 {
		t.Fatalf("maxConcurrency(mysql) = %d, want 0 (no ceiling)", got)
	}
}

func TestAdapterChangesReportsLastExecRowsAffected(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	if _, err := a.Exec(ctx, `INSERT INTO t (id, v) VALUES (?, ?)`, 1, "a"); err != nil {
		t.Fatalf("Exec(insert) error = %v", err)
	}
	if got := a.Changes(); got != 1 {
		t.Fatalf("Changes() = %d, want 1 after a single-row insert", got)
	}

	if _, err := a.Exec(ctx, `UPDATE t SET v = ? WHERE id IN (?, ?)`, "z", 1, 2); err != nil {
		t.Fatalf("Exec(update) error = %v", err)
	}
	if got := a.Changes(); got != 1 {
		t.Fatalf("Changes() = %d, want 1 (only id=1 exists)", got)
	}
}
