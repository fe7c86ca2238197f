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

	"github.com/Nottinghster/tibia-querymanager/internal/dbadapter"
	"github.com/Nottinghster/tibia-querymanager/internal/queryobj"
	"github.com/Nottinghster/tibia-querymanager/internal/store"
)

const (
	failedLoginWindow        = 30 * time.Minute
	maxFailedAccountAttempts = 5
	maxFailedIPAttempts      = 15
)

// handleInternalResolveWorld answers the authorization gate's own
// world-name lookup; it is dispatched through the normal
// worker path like any other query, never sent by a client.
func handleInternalResolveWorld(ctx context.Context, st *store.Store, q *queryobj.Query) {
	name, ok := q.Request().ReadString()
	if !ok {
		q.Failed()
		return
	}

	id, found, err := st.ResolveWorldID(ctx, name)
	if err != nil {
		return // leave PENDING, worker retries
	}
	if !found {
		q.Error(queryobj.ErrNotFound)
		return
	}

	q.Ok()
	q.ResponseWriter().WriteInt32(id)
}

func checkPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// checkAccountStanding implements the shared login-gate checks: account
// existence, then standingErrorCode's password/attempt-window/ban chain.
// Returns an error code to send back, or 0 if the account may proceed.
func checkAccountStanding(ctx context.Context, st *store.Store, email, password string, ip uint32, now time.Time) (store.Account, uint8) {
	acct, found, err := st.GetAccountByEmail(ctx, email)
	if err != nil || !found || acct.Deleted {
		return store.Account{}, queryobj.ErrAccountNotFound
	}
	return acct, standingErrorCode(ctx, st, acct, password, ip, now)
}

// standingErrorCode runs the password hash, account and IP failed-attempt
// window, account ban, and IP ban checks against an already-resolved
// account, shared by every login-family handler regardless of how the
// account was reached (by email or via a character lookup).
func standingErrorCode(ctx context.Context, st *store.Store, acct store.Account, password string, ip uint32, now time.Time) uint8 {
	if !checkPassword(acct.AuthHash, password) {
		return queryobj.ErrWrongPassword
	}

	since := now.Add(-failedLoginWindow)
	if n, err := st.CountFailedLoginAttempts(ctx, acct.ID, since); err == nil && n >= maxFailedAccountAttempts {
		return queryobj.ErrTooManyAttempts
	}
	if n, err := st.CountFailedLoginAttemptsByIP(ctx, ip, since); err == nil && n >= maxFailedIPAttempts {
		return queryobj.ErrTooManyAttempts
	}

	if status, err := st.GetBanishmentStatus(ctx, acct.ID, now); err == nil && status.Banished {
		return queryobj.ErrAccountBanished
	}

	if banned, _ := st.IsIPBanished(ctx, ip, now); banned {
		return queryobj.ErrIPBanished
	}

	return 0
}

func handleCheckAccountPassword(ctx context.Context, st *store.Store, q *queryobj.Query) {
	email, ok1 := q.Request().ReadString()
	password, ok2 := q.Request().ReadString()
	if !ok1 || !ok2 {
		q.Failed()
		return
	}

	now := time.Now()
	acct, found, err := st.GetAccountByEmail(ctx, email)
	if err != nil {
		return
	}
	if !found || !checkPassword(acct.AuthHash, password) {
		st.InsertLoginAttempt(ctx, acct.ID, 0, true, now)
		q.Error(queryobj.ErrWrongPassword)
		return
	}
	st.InsertLoginAttempt(ctx, acct.ID, 0, false, now)
	q.Ok()
}

// handleLoginAccount implements LOGIN_ACCOUNT: verify
// standing and return the account's character list on the target world.
func handleLoginAccount(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok1 := r.ReadInt32()
	email, ok2 := r.ReadString()
	password, ok3 := r.ReadString()
	ipRaw, ok4 := r.ReadUint32()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		q.Failed()
		return
	}

	now := time.Now()
	acct, errCode := checkAccountStanding(ctx, st, email, password, ipRaw, now)
	failed := errCode != 0
	st.InsertLoginAttempt(ctx, acct.ID, ipRaw, failed, now)
	if failed {
		q.Error(errCode)
		return
	}

	chars, err := st.GetAccountCharacters(ctx, worldID, acct.ID)
	if err != nil {
		return
	}

	q.Ok()
	w := q.ResponseWriter()
	w.WriteUint16(uint16(len(chars)))
	for _, c := range chars {
		w.WriteString(c.Name)
		w.WriteInt32(c.Level)
		w.WriteByte(byte(c.Sex))
	}
}

// handleLoginAdmin reuses LOGIN_GAME's standing check but never resolves a world.
func handleLoginAdmin(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	email, ok1 := r.ReadString()
	password, ok2 := r.ReadString()
	ipRaw, ok3 := r.ReadUint32()
	if !ok1 || !ok2 || !ok3 {
		q.Failed()
		return
	}

	now := time.Now()
	acct, errCode := checkAccountStanding(ctx, st, email, password, ipRaw, now)
	st.InsertLoginAttempt(ctx, acct.ID, ipRaw, errCode != 0, now)
	if errCode != 0 {
		q.Error(errCode)
		return
	}

	rights, err := st.GetCharacterRights(ctx, acct.ID)
	if err != nil {
		return
	}

	isAdmin := false
	for _, r := range rights {
		if r == "ADMIN" {
			isAdmin = true
		}
	}
	if !isAdmin {
		q.Error(queryobj.ErrNotGamemaster)
		return
	}

	q.Ok()
}

// hasRight reports whether right is present in a character's right list.
func hasRight(rights []string, right string) bool {
	for _, r := range rights {
		if r == right {
			return true
		}
	}
	return false
}

// handleLoginGame implements LOGIN_GAME: full standing
// check plus namelock, the ALLOW_MULTICLIENT/GAMEMASTER_OUTFIT right
// checks, activates pending premium days, and appends the synthetic
// PREMIUM_ACCOUNT right.
func handleLoginGame(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok0 := r.ReadInt32()
	characterName, ok1 := r.ReadString()
	password, ok2 := r.ReadString()
	ipRaw, ok3 := r.ReadUint32()
	gamemasterRequired, ok4 := r.ReadBool()
	if !ok0 || !ok1 || !ok2 || !ok3 || !ok4 {
		q.Failed()
		return
	}

	now := time.Now()

	character, found, err := st.GetCharacterByName(ctx, worldID, characterName)
	if err != nil {
		return
	}
	if !found {
		q.Error(queryobj.ErrAccountNotFound)
		return
	}

	if locked, _ := st.IsCharacterNamelocked(ctx, character.ID); locked {
		q.Error(queryobj.ErrNamelocked)
		return
	}

	acct, found2, err := acctByID(ctx, st, character.AccountID)
	if err != nil {
		return
	}
	if !found2 {
		q.Error(queryobj.ErrAccountNotFound)
		return
	}

	errCode := standingErrorCode(ctx, st, acct, password, ipRaw, now)

	st.InsertLoginAttempt(ctx, acct.ID, ipRaw, errCode != 0, now)
	if errCode != 0 {
		q.Error(errCode)
		return
	}

	rights, err := st.GetCharacterRights(ctx, character.ID)
	if err != nil {
		return
	}

	if character.IsOnline && !hasRight(rights, "ALLOW_MULTICLIENT") {
		q.Error(queryobj.ErrAlreadyOnline)
		return
	}

	if gamemasterRequired && !hasRight(rights, "GAMEMASTER_OUTFIT") {
		q.Error(queryobj.ErrGamemasterOutfit)
		return
	}

	premiumEnd, err := st.ActivatePendingPremiumDays(ctx, acct.ID, now)
	if err != nil {
		return
	}
	if premiumEnd > int32(now.Unix()) {
		rights = append(rights, "PREMIUM_ACCOUNT")
	}

	if err := st.SetOnline(ctx, character.ID, true); err != nil {
		return
	}

	q.Ok()
	w := q.ResponseWriter()
	w.WriteInt32(character.ID)
	w.WriteInt32(premiumEnd)
	w.WriteUint16(uint16(len(rights)))
	for _, right := range rights {
		w.WriteString(right)
	}
}

func handleLogoutGame(ctx context.Context, st *store.Store, q *queryobj.Query) {
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

// acctByID is a tiny helper: the store only exposes account lookup by
// email, so login-by-character resolves the account row directly here.
func acctByID(ctx context.Context, st *store.Store, accountID int32) (store.Account, bool, error) {
	row, err := st.DB.QueryRow(ctx, `SELECT AccountID, Email, Auth, PremiumEnd, PendingPremiumDays, Deleted FROM Accounts WHERE AccountID = ?`, accountID)
	if err != nil {
		return store.Account{}, false, err
	}
	var a store.Account
	var deleted int64
	if err := row.Scan(&a.ID, &a.Email, &a.AuthHash, &a.PremiumEnd, &a.PendingPremiumDays, &deleted); err != nil {
		if dbadapter.ErrNoRows(err) {
			return store.Account{}, false, nil
		}
		return store.Account{}, false, err
	}
	a.Deleted = deleted != 0
	return a, true, nil
}
