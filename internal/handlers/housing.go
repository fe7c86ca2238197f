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
	"time"

	"github.com/Nottinghster/tibia-querymanager/internal/queryobj"
	"github.com/Nottinghster/tibia-querymanager/internal/store"
)

func handleInsertHouseOwner(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok1 := r.ReadInt32()
	houseID, ok2 := r.ReadInt32()
	ownerID, ok3 := r.ReadInt32()
	paidUntil, ok4 := r.ReadInt32()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		q.Failed()
		return
	}
	if err := st.InsertHouseOwner(ctx, worldID, houseID, ownerID, paidUntil); err != nil {
		return
	}
	q.Ok()
}

func handleUpdateHouseOwner(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok1 := r.ReadInt32()
	houseID, ok2 := r.ReadInt32()
	paidUntil, ok3 := r.ReadInt32()
	if !ok1 || !ok2 || !ok3 {
		q.Failed()
		return
	}
	if err := st.UpdateHouseOwner(ctx, worldID, houseID, paidUntil); err != nil {
		return
	}
	q.Ok()
}

func handleDeleteHouseOwner(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok1 := r.ReadInt32()
	houseID, ok2 := r.ReadInt32()
	if !ok1 || !ok2 {
		q.Failed()
		return
	}
	if err := st.DeleteHouseOwner(ctx, worldID, houseID); err != nil {
		return
	}
	q.Ok()
}

func handleGetHouseOwners(ctx context.Context, st *store.Store, q *queryobj.Query) {
	worldID, ok := q.Request().ReadInt32()
	if !ok {
		q.Failed()
		return
	}
	owners, err := st.GetHouseOwners(ctx, worldID)
	if err != nil {
		return
	}

	q.Ok()
	w := q.ResponseWriter()
	w.WriteUint16(uint16(len(owners)))
	for _, o := range owners {
		w.WriteInt32(o.HouseID)
		w.WriteInt32(o.OwnerID)
		w.WriteInt32(o.PaidUntil)
	}
}

func handleGetAuctions(ctx context.Context, st *store.Store, q *queryobj.Query) {
	worldID, ok := q.Request().ReadInt32()
	if !ok {
		q.Failed()
		return
	}
	houses, err := st.GetAuctions(ctx, worldID)
	if err != nil {
		return
	}

	q.Ok()
	w := q.ResponseWriter()
	w.WriteUint16(uint16(len(houses)))
	for _, id := range houses {
		w.WriteInt32(id)
	}
}

func handleStartAuction(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok1 := r.ReadInt32()
	houseID, ok2 := r.ReadInt32()
	if !ok1 || !ok2 {
		q.Failed()
		return
	}
	if err := st.StartAuction(ctx, worldID, houseID); err != nil {
		return
	}
	q.Ok()
}

func handleInsertHouses(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok := r.ReadInt32()
	count, ok2 := r.ReadUint16()
	if !ok || !ok2 {
		q.Failed()
		return
	}

	ids := make([]int32, 0, count)
	names := make([]string, 0, count)
	towns := make([]string, 0, count)
	rents := make([]int32, 0, count)
	for i := uint16(0); i < count; i++ {
		id, a := r.ReadInt32()
		name, b := r.ReadString()
		town, c := r.ReadString()
		rent, d := r.ReadInt32()
		if !a || !b || !c || !d {
			q.Failed()
			return
		}
		ids = append(ids, id)
		names = append(names, name)
		towns = append(towns, town)
		rents = append(rents, rent)
	}

	if err := st.InsertHouses(ctx, worldID, ids, names, towns, rents); err != nil {
		return
	}
	q.Ok()
}

// handleFinishAuctions removes the world's auctions (creating no transfers
// from them) and applies any already-pending transfers into ownership
// changes.
func handleFinishAuctions(ctx context.Context, st *store.Store, q *queryobj.Query) {
	worldID, ok := q.Request().ReadInt32()
	if !ok {
		q.Failed()
		return
	}

	if _, err := st.FinishAuctions(ctx, worldID); err != nil {
		return
	}

	transfers, err := st.FinishHouseTransfers(ctx, worldID)
	if err != nil {
		return
	}
	for _, t := range transfers {
		if t.OwnerID == 0 {
			if err := st.DeleteHouseOwner(ctx, worldID, t.HouseID); err != nil {
				return
			}
			continue
		}
		if err := st.InsertHouseOwner(ctx, worldID, t.HouseID, t.OwnerID, t.PaidUntil); err != nil {
			return
		}
	}

	q.Ok()
	q.ResponseWriter().WriteUint16(uint16(len(transfers)))
}

// handleTransferHouses queues a pending ownership change for a house,
// applied the next time FINISH_AUCTIONS runs.
func handleTransferHouses(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok1 := r.ReadInt32()
	houseID, ok2 := r.ReadInt32()
	newOwnerID, ok3 := r.ReadInt32()
	price, ok4 := r.ReadInt32()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		q.Failed()
		return
	}

	_, err := st.DB.Exec(ctx, `INSERT OR REPLACE INTO HouseTransfers (WorldID, HouseID, NewOwnerID, Price) VALUES (?, ?, ?, ?)`,
		worldID, houseID, newOwnerID, price)
	if err != nil {
		return
	}
	q.Ok()
}

// handleExcludeFromAuctions implements EXCLUDE_FROM_AUCTIONS: the caller
// supplies a Banish flag rather than a banishment ID/duration directly — the
// actual escalation decision (whether this becomes a final warning, and for
// how long) is computed server-side via the shared compounding banishment
// policy, exactly as BANISH_ACCOUNT and SET_NOTATION do.
func handleExcludeFromAuctions(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok1 := r.ReadInt32()
	characterID, ok2 := r.ReadInt32()
	gmID, ok3 := r.ReadInt32()
	ipRaw, ok4 := r.ReadUint32()
	reason, ok5 := r.ReadString()
	comment, ok6 := r.ReadString()
	banish, ok7 := r.ReadBool()
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 {
		q.Failed()
		return
	}

	now := time.Now()
	var banishmentID, until int32
	var finalWarning bool
	if banish {
		character, found, err := st.GetCharacterByID(ctx, characterID)
		if err != nil {
			return
		}
		if !found {
			q.Error(queryobj.ErrAccountNotFound)
			return
		}
		result, err := st.InsertBanishment(ctx, characterID, character.AccountID, ipRaw, gmID, reason, comment, 0, true, now)
		if err != nil {
			return
		}
		banishmentID = result.ID
		until = result.Until
		finalWarning = result.FinalWarning
	}

	if err := st.ExcludeFromAuctions(ctx, worldID, characterID, banishmentID, until); err != nil {
		return
	}

	q.Ok()
	w := q.ResponseWriter()
	w.WriteBool(banish)
	w.WriteBool(finalWarning)
	w.WriteInt32(until)
}

// handleCancelHouseTransfer is a stub: it acknowledges without clearing a
// pending transfer, since no cancellation contract has been defined yet.
func handleCancelHouseTransfer(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok1 := r.ReadInt32()
	houseID, ok2 := r.ReadInt32()
	if !ok1 || !ok2 {
		q.Failed()
		return
	}
	if err := st.CancelHouseTransfer(ctx, worldID, houseID); err != nil {
		return
	}
	q.Ok()
}
