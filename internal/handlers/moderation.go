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

func handleSetNamelock(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	characterID, ok1 := r.ReadInt32()
	gmID, ok2 := r.ReadInt32()
	ipRaw, ok3 := r.ReadUint32()
	reason, ok4 := r.ReadString()
	comment, ok5 := r.ReadString()
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		q.Failed()
		return
	}

	if locked, err := st.IsCharacterNamelocked(ctx, characterID); err != nil {
		return
	} else if locked {
		q.Error(queryobj.ErrNamelocked)
		return
	}

	if err := st.InsertNamelock(ctx, characterID, ipRaw, gmID, reason, comment, time.Now()); err != nil {
		return
	}
	q.Ok()
}

// handleBanishAccount applies the compounding banishment policy via store.InsertBanishment and reports the resulting state.
func handleBanishAccount(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	characterID, ok1 := r.ReadInt32()
	accountID, ok2 := r.ReadInt32()
	gmID, ok3 := r.ReadInt32()
	ipRaw, ok4 := r.ReadUint32()
	reason, ok5 := r.ReadString()
	comment, ok6 := r.ReadString()
	days, ok7 := r.ReadInt32()
	requestFinal, ok8 := r.ReadBool()
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 || !ok7 || !ok8 {
		q.Failed()
		return
	}

	result, err := st.InsertBanishment(ctx, characterID, accountID, ipRaw, gmID, reason, comment, days, requestFinal, time.Now())
	if err != nil {
		return
	}

	q.Ok()
	w := q.ResponseWriter()
	w.WriteBool(result.FinalWarning)
	w.WriteInt32(result.Until)
}

// notationBanishThreshold is the notation count at which SET_NOTATION
// triggers the shared compounding banishment policy instead of just
// recording the notation, grounded on the original's ProcessSetNotation
// escalating once a character accumulates 5 notations.
const notationBanishThreshold = 5

// handleSetNotation implements SET_NOTATION: records the notation, and once
// the character's notation count reaches notationBanishThreshold, applies
// the same compounding banishment policy as BANISH_ACCOUNT/
// EXCLUDE_FROM_AUCTIONS via store.InsertBanishment, with the threshold
// crossing itself standing in for a caller-requested final warning.
func handleSetNotation(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	characterID, ok1 := r.ReadInt32()
	gmID, ok2 := r.ReadInt32()
	ipRaw, ok3 := r.ReadUint32()
	reason, ok4 := r.ReadString()
	comment, ok5 := r.ReadString()
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		q.Failed()
		return
	}
	now := time.Now()

	if err := st.InsertNotation(ctx, characterID, ipRaw, gmID, reason, comment, now); err != nil {
		return
	}

	count, err := st.CountNotations(ctx, characterID)
	if err != nil {
		return
	}

	var banished, finalWarning bool
	var until int32
	if count >= notationBanishThreshold {
		character, found, err := st.GetCharacterByID(ctx, characterID)
		if err != nil {
			return
		}
		if found {
			result, err := st.InsertBanishment(ctx, characterID, character.AccountID, ipRaw, gmID, reason, comment, 0, true, now)
			if err != nil {
				return
			}
			banished = true
			finalWarning = result.FinalWarning
			until = result.Until
		}
	}

	q.Ok()
	w := q.ResponseWriter()
	w.WriteInt32(count)
	w.WriteBool(banished)
	if banished {
		w.WriteBool(finalWarning)
		w.WriteInt32(until)
	}
}

// handleReportStatement implements REPORT_STATEMENT:
// context statements are inserted conflict-safe alongside the report
// record, and a statement already reported is refused.
func handleReportStatement(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok1 := r.ReadInt32()
	reporterID, ok2 := r.ReadInt32()
	reportedStatementID, ok3 := r.ReadInt32()
	reason, ok4 := r.ReadString()
	comment, ok5 := r.ReadString()
	contextCount, ok6 := r.ReadUint16()
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		q.Failed()
		return
	}

	contextStatements := make([]store.Statement, 0, contextCount)
	for i := uint16(0); i < contextCount; i++ {
		stID, a := r.ReadInt32()
		charID, b := r.ReadInt32()
		channel, c := r.ReadString()
		text, d := r.ReadString()
		ts, e := r.ReadInt32()
		if !a || !b || !c || !d || !e {
			q.Failed()
			return
		}
		contextStatements = append(contextStatements, store.Statement{
			StatementID: stID, CharacterID: charID, Channel: channel, Text: text, Time: ts,
		})
	}

	already, err := st.IsStatementReported(ctx, worldID, reportedStatementID)
	if err != nil {
		return
	}
	if already {
		q.Error(queryobj.ErrAlreadyReported)
		return
	}

	ok, err := st.ReportStatement(ctx, worldID, contextStatements, reportedStatementID, reporterID, reason, comment, time.Now())
	if err != nil {
		return
	}
	if !ok {
		q.Error(queryobj.ErrAlreadyReported)
		return
	}
	q.Ok()
}

func handleBanishIPAddress(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	ipRaw, ok1 := r.ReadUint32()
	characterID, ok2 := r.ReadInt32()
	gmID, ok3 := r.ReadInt32()
	reason, ok4 := r.ReadString()
	comment, ok5 := r.ReadString()
	days, ok6 := r.ReadInt32()
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		q.Failed()
		return
	}

	if err := st.InsertIPBanishment(ctx, ipRaw, characterID, gmID, reason, comment, days, time.Now()); err != nil {
		return
	}
	q.Ok()
}

func handleLogCharacterDeath(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok1 := r.ReadInt32()
	characterID, ok2 := r.ReadInt32()
	level, ok3 := r.ReadInt32()
	remains, ok4 := r.ReadString()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		q.Failed()
		return
	}

	if err := st.InsertCharacterDeath(ctx, worldID, characterID, level, remains, time.Now()); err != nil {
		return
	}
	q.Ok()
}
