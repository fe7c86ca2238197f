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

	"github.com/Nottinghster/tibia-querymanager/internal/queryobj"
	"github.com/Nottinghster/tibia-querymanager/internal/store"
)

func handleAddBuddy(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok1 := r.ReadInt32()
	accountID, ok2 := r.ReadInt32()
	buddyID, ok3 := r.ReadInt32()
	if !ok1 || !ok2 || !ok3 {
		q.Failed()
		return
	}
	if err := st.InsertBuddy(ctx, worldID, accountID, buddyID); err != nil {
		return
	}
	q.Ok()
}

func handleRemoveBuddy(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok1 := r.ReadInt32()
	accountID, ok2 := r.ReadInt32()
	buddyID, ok3 := r.ReadInt32()
	if !ok1 || !ok2 || !ok3 {
		q.Failed()
		return
	}
	if err := st.DeleteBuddy(ctx, worldID, accountID, buddyID); err != nil {
		return
	}
	q.Ok()
}

func handleDecrementIsOnline(ctx context.Context, st *store.Store, q *queryobj.Query) {
	characterID, ok := q.Request().ReadInt32()
	if !ok {
		q.Failed()
		return
	}
	if err := st.SetOnline(ctx, characterID, false); err != nil {
		return
	}
	q.Ok()
}

// handleClearIsOnline answers the world-reboot recovery path: every
// character the database still marks online after a crash is forced
// offline.
func handleClearIsOnline(ctx context.Context, st *store.Store, q *queryobj.Query) {
	worldID, ok := q.Request().ReadInt32()
	if !ok {
		q.Failed()
		return
	}
	if _, err := st.DB.Exec(ctx, `UPDATE Characters SET IsOnline = 0 WHERE WorldID = ? AND IsOnline != 0`, worldID); err != nil {
		return
	}
	q.Ok()
}
