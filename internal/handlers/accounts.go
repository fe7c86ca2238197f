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

	"golang.org/x/crypto/bcrypt"

	"github.com/Nottinghster/tibia-querymanager/internal/queryobj"
	"github.com/Nottinghster/tibia-querymanager/internal/store"
)

func handleCreateAccount(ctx context.Context, st *store.Store, q *queryobj.Query) {
	email, ok1 := q.Request().ReadString()
	password, ok2 := q.Request().ReadString()
	if !ok1 || !ok2 || email == "" || password == "" {
		q.Failed()
		return
	}

	if exists, err := st.AccountExists(ctx, email); err != nil {
		return
	} else if exists {
		q.Error(queryobj.ErrNameInUse)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		q.Failed()
		return
	}

	id, err := st.CreateAccount(ctx, email, hash, time.Now())
	if err != nil {
		return
	}

	q.Ok()
	q.ResponseWriter().WriteInt32(id)
}

func handleCreateCharacter(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok1 := r.ReadInt32()
	accountID, ok2 := r.ReadInt32()
	name, ok3 := r.ReadString()
	sex, ok4 := r.ReadByte()
	if !ok1 || !ok2 || !ok3 || !ok4 || name == "" {
		q.Failed()
		return
	}

	if exists, err := st.CharacterNameExists(ctx, worldID, name); err != nil {
		return
	} else if exists {
		q.Error(queryobj.ErrNameInUse)
		return
	}

	id, err := st.CreateCharacter(ctx, worldID, accountID, name, int32(sex), time.Now())
	if err != nil {
		return
	}

	q.Ok()
	q.ResponseWriter().WriteInt32(id)
}

func handleGetAccountSummary(ctx context.Context, st *store.Store, q *queryobj.Query) {
	email, ok := q.Request().ReadString()
	if !ok {
		q.Failed()
		return
	}

	acct, found, err := st.GetAccountByEmail(ctx, email)
	if err != nil {
		return
	}
	if !found {
		q.Error(queryobj.ErrAccountNotFound)
		return
	}

	q.Ok()
	w := q.ResponseWriter()
	w.WriteInt32(acct.ID)
	w.WriteInt32(acct.PremiumEnd)
	w.WriteInt32(acct.PendingPremiumDays)
}

func handleGetCharacterProfile(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok1 := r.ReadInt32()
	name, ok2 := r.ReadString()
	if !ok1 || !ok2 {
		q.Failed()
		return
	}

	c, found, err := st.GetCharacterByName(ctx, worldID, name)
	if err != nil {
		return
	}
	if !found {
		q.Error(queryobj.ErrNotFound)
		return
	}

	q.Ok()
	w := q.ResponseWriter()
	w.WriteInt32(c.ID)
	w.WriteString(c.Name)
	w.WriteByte(byte(c.Sex))
	w.WriteInt32(c.Level)
	w.WriteString(c.Residence)
	w.WriteBool(c.IsOnline)
}

// handleEvictFreeAccounts deletes non-premium accounts with no surviving
// characters older than the grace period.
func handleEvictFreeAccounts(ctx context.Context, st *store.Store, q *queryobj.Query) {
	cutoff := time.Now().Add(-90 * 24 * time.Hour).Unix()
	n, err := st.DB.Exec(ctx, `DELETE FROM Accounts WHERE PremiumEnd < ? AND CreatedTime < ? AND AccountID NOT IN (SELECT AccountID FROM Characters)`,
		time.Now().Unix(), cutoff)
	if err != nil {
		return
	}
	q.Ok()
	q.ResponseWriter().WriteInt32(int32(n))
}

// handleEvictDeletedCharacters hard-deletes characters that have sat in
// the soft-deleted state past the grace period.
func handleEvictDeletedCharacters(ctx context.Context, st *store.Store, q *queryobj.Query) {
	cutoff := time.Now().Add(-30 * 24 * time.Hour).Unix()
	n, err := st.DB.Exec(ctx, `DELETE FROM Characters WHERE Deleted = 1 AND DeletedTime < ?`, cutoff)
	if err != nil {
		return
	}
	q.Ok()
	q.ResponseWriter().WriteInt32(int32(n))
}

// handleEvictExGuildleaders strips the GUILDLEADER right from the
// characters named in the request, run after a guild leadership change.
func handleEvictExGuildleaders(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	count, ok := r.ReadUint16()
	if !ok {
		q.Failed()
		return
	}

	for i := uint16(0); i < count; i++ {
		characterID, ok := r.ReadInt32()
		if !ok {
			q.Failed()
			return
		}
		if _, err := st.DB.Exec(ctx, `DELETE FROM CharacterRights WHERE CharacterID = ? AND Right = 'GUILDLEADER'`, characterID); err != nil {
			return
		}
	}

	q.Ok()
}
