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

package handlers

import (
	"context"
	"testing"

	"github.com/Nottinghster/tibia-querymanager/internal/config"
	"github.com/Nottinghster/tibia-querymanager/internal/dbadapter"
	"github.com/Nottinghster/tibia-querymanager/internal/queryobj"
	"github.com/Nottinghster/tibia-querymanager/internal/store"
	"github.com/Nottinghster/tibia-querymanager/internal/wire"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	adapter, err := dbadapter.Open(config.Config{
		Backend: config.BackendSQLite,
		SQLite: config.SQLiteConfig{
			File:                ":memory:",
			MaxCachedStatements: 32,
		},
	})
	if err != nil {
		t.Fatalf("dbadapter.Open() error = %v", err)
	}
	t.Cleanup(func() { adapter.Close() })
	return store.New(adapter)
}

// buildQuery encodes a request payload for typ using build, then installs
// it as the request view of a fresh Query, exactly as the connection state
// machine would before handing the Query to a worker.
func buildQuery(t *testing.T, typ queryobj.Type, build func(w *wire.Writer)) *queryobj.Query {
	t.Helper()
	q := queryobj.New(64 * 1024)
	w := q.BeginRequest(typ)
	if build != nil {
		build(w)
	}
	if !q.FinishRequest(w) {
		t.Fatalf("FinishRequest() failed building a %v fixture", typ)
	}
	return q
}

func mustCreateWorld(t *testing.T, st *store.Store, name string) int32 {
	t.Helper()
	ctx := context.Background()
	if _, err := st.DB.Exec(ctx, `INSERT INTO Worlds (Name, HostName, Port) VALUES (?, ?, ?)`, name, "127.0.0.1", 7171); err != nil {
		t.Fatalf("insert world fixture: %v", err)
	}
	id, ok, err := st.ResolveWorldID(ctx, name)
	if err != nil || !ok {
		t.Fatalf("ResolveWorldID(%q) = (%d, %v, %v)", name, id, ok, err)
	}
	return id
}
