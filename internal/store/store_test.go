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

package store

import (
	"context"
	"testing"
	"time"

	"github.com/Nottinghster/tibia-querymanager/internal/config"
	"github.com/Nottinghster/tibia-querymanager/internal/dbadapter"
)

func newTestStore(t *testing.T) *Store {
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
	return New(adapter)
}

func mustInsertWorld(t *testing.T, s *Store, name string) int32 {
	t.Helper()
	_, err := s.DB.Exec(context.Background(),
		`INSERT INTO Worlds (Name, HostName, Port) VALUES (?, ?, ?)`, name, "127.0.0.1", 7171)
	if err != nil {
		t.Fatalf("insert world fixture: %v", err)
	}
	id, ok, err := s.ResolveWorldID(context.Background(), name)
	if err != nil || !ok {
		t.Fatalf("ResolveWorldID(%q) = (%d, %v, %v), want a valid id", name, id, ok, err)
	}
	return id
}

func TestResolveWorldIDRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.ResolveWorldID(ctx, "Nowhere"); err != nil || ok {
		t.Fatalf("ResolveWorldID(missing) = (_, %v, %v), want (_, false, nil)", ok, err)
	}

	id := mustInsertWorld(t, s, "Antica")
	if id == 0 {
		t.Fatal("mustInsertWorld returned id 0")
	}

	got, ok, err := s.ResolveWorldID(ctx, "Antica")
	if err != nil || !ok || got != id {
		t.Fatalf("ResolveWorldID(Antica) = (%d, %v, %v), want (%d, true, nil)", got, ok, err, id)
	}
}

func TestCreateAccountAndLookupByEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	if exists, err := s.AccountExists(ctx, "player@example.com"); err != nil || exists {
		t.Fatalf("AccountExists(unseen) = (%v, %v), want (false, nil)", exists, err)
	}

	id, err := s.CreateAccount(ctx, "player@example.com", []byte("hashedpw"), now)
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if id == 0 {
		t.Fatal("CreateAccount() returned id 0")
	}

	account, ok, err := s.GetAccountByEmail(ctx, "player@example.com")
	if err != nil || !ok {
		t.Fatalf("GetAccountByEmail() = (_, %v, %v), want (_, true, nil)", ok, err)
	}
	if account.ID != id {
		t.Errorf("account.ID = %d, want %d", account.ID, id)
	}
	if string(account.AuthHash) != "hashedpw" {
		t.Errorf("account.AuthHash = %q, want %q", account.AuthHash, "hashedpw")
	}
	if account.Deleted {
		t.Error("account.Deleted = true, want false")
	}
}

func TestActivatePendingPremiumDaysMovesPendingToActive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	id, err := s.CreateAccount(ctx, "premium@example.com", []byte("x"), now)
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	if _, err := s.DB.Exec(ctx, `UPDATE Accounts SET PendingPremiumDays = ? WHERE AccountID = ?`, 30, id); err != nil {
		t.Fatalf("seed pending premium days: %v", err)
	}

	end, err := s.ActivatePendingPremiumDays(ctx, id, now)
	if err != nil {
		t.Fatalf("ActivatePendingPremiumDays() error = %v", err)
	}
	want := int32(now.Unix() + 30*86400)
	if end != want {
		t.Errorf("premiumEnd = %d, want %d", end, want)
	}

	// A second call with nothing pending must be a no-op that returns the
	// same, now-active, premium end.
	end2, err := s.ActivatePendingPremiumDays(ctx, id, now)
	if err != nil {
		t.Fatalf("second ActivatePendingPremiumDays() error = %v", err)
	}
	if end2 != want {
		t.Errorf("premiumEnd on second call = %d, want %d (unchanged)", end2, want)
	}
}

func TestCreateCharacterAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	worldID := mustInsertWorld(t, s, "Antica")
	accountID, err := s.CreateAccount(ctx, "owner@example.com", []byte("x"), now)
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	if exists, err := s.CharacterNameExists(ctx, worldID, "Knightly"); err != nil || exists {
		t.Fatalf("CharacterNameExists(unseen) = (%v, %v), want (false, nil)", exists, err)
	}

	charID, err := s.CreateCharacter(ctx, worldID, accountID, "Knightly", 1, now)
	if err != nil {
		t.Fatalf("CreateCharacter() error = %v", err)
	}

	byID, ok, err := s.GetCharacterByID(ctx, charID)
	if err != nil || !ok {
		t.Fatalf("GetCharacterByID() = (_, %v, %v), want (_, true, nil)", ok, err)
	}
	if byID.Name != "Knightly" || byID.WorldID != worldID || byID.AccountID != accountID {
		t.Errorf("GetCharacterByID() = %+v, want Name=Knightly WorldID=%d AccountID=%d", byID, worldID, accountID)
	}

	byName, ok, err := s.GetCharacterByName(ctx, worldID, "Knightly")
	if err != nil || !ok || byName.ID != charID {
		t.Fatalf("GetCharacterByName() = (%+v, %v, %v), want id %d", byName, ok, err, charID)
	}

	chars, err := s.GetAccountCharacters(ctx, worldID, accountID)
	if err != nil {
		t.Fatalf("GetAccountCharacters() error = %v", err)
	}
	if len(chars) != 1 || chars[0].ID != charID {
		t.Fatalf("GetAccountCharacters() = %+v, want a single entry with id %d", chars, charID)
	}
}

func TestInsertBanishmentEscalatesToFinalAfterFiveBans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	worldID := mustInsertWorld(t, s, "Antica")
	accountID, err := s.CreateAccount(ctx, "repeat-offender@example.com", []byte("x"), now)
	if err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	charID, err := s.CreateCharacter(ctx, worldID, accountID, "Offender", 1, now)
	if err != nil {
		t.Fatalf("CreateCharacter() error = %v", err)
	}

	var last BanishmentStatus
	for i := 0; i < 6; i++ {
		last, err = s.InsertBanishment(ctx, charID, accountID, 0x7f000001, 1, "cheating", "", 7, false, now)
		if err != nil {
			t.Fatalf("InsertBanishment(%d) error = %v", i, err)
		}
		if last.FinalWarning {
			t.Fatalf("InsertBanishment(%d) escalated to final too early: %+v", i, last)
		}
	}
	if last.TimesBanished != 6 {
		t.Fatalf("TimesBanished after 6 bans = %d, want 6", last.TimesBanished)
	}

	// Once more than five bans exist, the next one (TimesBanished > 5
	// evaluated against the prior count of 6) must escalate to a final,
	// compounded-length ban.
	final, err := s.InsertBanishment(ctx, charID, accountID, 0x7f000001, 1, "cheating", "", 7, false, now)
	if err != nil {
		t.Fatalf("InsertBanishment(final) error = %v", err)
	}
	if !final.FinalWarning {
		t.Fatalf("InsertBanishment(7th) = %+v, want FinalWarning=true", final)
	}
	minUntil := now.Unix() + 30*86400
	if int64(final.Until) < minUntil {
		t.Errorf("final.Until = %d, want at least %d", final.Until, minUntil)
	}
}

func TestBuddiesInsertDeleteAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	worldID := mustInsertWorld(t, s, "Antica")
	if err := s.InsertBuddy(ctx, worldID, 1, 2); err != nil {
		t.Fatalf("InsertBuddy() error = %v", err)
	}
	if err := s.InsertBuddy(ctx, worldID, 1, 3); err != nil {
		t.Fatalf("InsertBuddy() error = %v", err)
	}

	buddies, err := s.GetBuddies(ctx, worldID, 1)
	if err != nil {
		t.Fatalf("GetBuddies() error = %v", err)
	}
	if len(buddies) != 2 {
		t.Fatalf("GetBuddies() = %v, want 2 entries", buddies)
	}

	if err := s.DeleteBuddy(ctx, worldID, 1, 2); err != nil {
		t.Fatalf("DeleteBuddy() error = %v", err)
	}
	buddies, err = s.GetBuddies(ctx, worldID, 1)
	if err != nil {
		t.Fatalf("GetBuddies() after delete error = %v", err)
	}
	if len(buddies) != 1 || buddies[0] != 3 {
		t.Fatalf("GetBuddies() after delete = %v, want [3]", buddies)
	}
}

func TestIsIPBanishedRespectsExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	if banned, err := s.IsIPBanished(ctx, 0x7f000001, now); err != nil || banned {
		t.Fatalf("IsIPBanished(unbanned) = (%v, %v), want (false, nil)", banned, err)
	}

	if err := s.InsertIPBanishment(ctx, 0x7f000001, 5, 1, "abuse", "", 1, now); err != nil {
		t.Fatalf("InsertIPBanishment() error = %v", err)
	}

	if banned, err := s.IsIPBanished(ctx, 0x7f000001, now); err != nil || !banned {
		t.Fatalf("IsIPBanished(active) = (%v, %v), want (true, nil)", banned, err)
	}

	after := now.Add(48 * time.Hour)
	if banned, err := s.IsIPBanished(ctx, 0x7f000001, after); err != nil || banned {
		t.Fatalf("IsIPBanished(expired) = (%v, %v), want (false, nil)", banned, err)
	}
}
