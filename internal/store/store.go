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

// Package store wraps internal/dbadapter with the typed accessor methods
// each request handler actually calls (GetAccountData, CreateCharacter,
// InsertBanishment, ...), one per distinct query shape the handlers need.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/Nottinghster/tibia-querymanager/internal/dbadapter"
)

// Store is a single worker's handle to its persistent database session.
type Store struct {
	DB *dbadapter.Adapter
}

func New(db *dbadapter.Adapter) *Store { return &Store{DB: db} }

// --- Worlds -----------------------------------------------------------

type World struct {
	ID                  int32
	Name                string
	Type                int32
	RebootTime          int32
	MaxPlayers          int32
	PremiumPlayerBuffer int32
	MaxNewbiePlayers    int32
	OnlineRecord        int32
	OnlineRecordTime    int32
	HostName            string
	Port                int32
}

func (s *Store) ResolveWorldID(ctx context.Context, name string) (int32, bool, error) {
	row, err := s.DB.QueryRow(ctx, `SELECT WorldID FROM Worlds WHERE Name = ?`, name)
	if err != nil {
		return 0, false, err
	}
	var id int64
	if err := row.Scan(&id); err != nil {
		if dbadapter.ErrNoRows(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return int32(id), true, nil
}

func (s *Store) GetWorlds(ctx context.Context) ([]World, error) {
	var out []World
	err := s.DB.Query(ctx, `SELECT WorldID, Name, Type, RebootTime, MaxPlayers, PremiumPlayerBuffer, MaxNewbiePlayers, OnlineRecord, OnlineRecordTimestamp FROM Worlds ORDER BY WorldID`,
		func(rows *sql.Rows) error {
			for rows.Next() {
				var w World
				if err := rows.Scan(&w.ID, &w.Name, &w.Type, &w.RebootTime, &w.MaxPlayers, &w.PremiumPlayerBuffer, &w.MaxNewbiePlayers, &w.OnlineRecord, &w.OnlineRecordTime); err != nil {
					return err
				}
				out = append(out, w)
			}
			return nil
		})
	return out, err
}

func (s *Store) GetWorldConfig(ctx context.Context, worldID int32) (World, bool, error) {
	row, err := s.DB.QueryRow(ctx, `SELECT WorldID, Name, Type, RebootTime, MaxPlayers, PremiumPlayerBuffer, MaxNewbiePlayers, OnlineRecord, OnlineRecordTimestamp, HostName, Port FROM Worlds WHERE WorldID = ?`, worldID)
	if err != nil {
		return World{}, false, err
	}
	var w World
	if err := row.Scan(&w.ID, &w.Name, &w.Type, &w.RebootTime, &w.MaxPlayers, &w.PremiumPlayerBuffer, &w.MaxNewbiePlayers, &w.OnlineRecord, &w.OnlineRecordTime, &w.HostName, &w.Port); err != nil {
		if dbadapter.ErrNoRows(err) {
			return World{}, false, nil
		}
		return World{}, false, err
	}
	return w, true, nil
}

// CheckOnlineRecord bumps the world's online-record high-water mark if
// count beats it, returning whether a new record was set.
func (s *Store) CheckOnlineRecord(ctx context.Context, worldID int32, count int32, now time.Time) (bool, error) {
	w, ok, err := s.GetWorldConfig(ctx, worldID)
	if err != nil || !ok {
		return false, err
	}
	if count <= w.OnlineRecord {
		return false, nil
	}
	_, err = s.DB.Exec(ctx, `UPDATE Worlds SET OnlineRecord = ?, OnlineRecordTimestamp = ? WHERE WorldID = ?`,
		count, now.Unix(), worldID)
	return err == nil, err
}

// --- Accounts -----------------------------------------------------------

type Account struct {
	ID                 int32
	Email              string
	AuthHash           []byte
	PremiumEnd         int32
	PendingPremiumDays int32
	Deleted            bool
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (Account, bool, error) {
	row, err := s.DB.QueryRow(ctx, `SELECT AccountID, Email, Auth, PremiumEnd, PendingPremiumDays, Deleted FROM Accounts WHERE Email = ?`, email)
	if err != nil {
		return Account{}, false, err
	}
	var a Account
	var deleted int64
	if err := row.Scan(&a.ID, &a.Email, &a.AuthHash, &a.PremiumEnd, &a.PendingPremiumDays, &deleted); err != nil {
		if dbadapter.ErrNoRows(err) {
			return Account{}, false, nil
		}
		return Account{}, false, err
	}
	a.Deleted = deleted != 0
	return a, true, nil
}

func (s *Store) AccountExists(ctx context.Context, email string) (bool, error) {
	_, ok, err := s.GetAccountByEmail(ctx, email)
	return ok, err
}

func (s *Store) CreateAccount(ctx context.Context, email string, authHash []byte, now time.Time) (int32, error) {
	var id int32
	err := s.DB.WithTransaction(ctx, func() error {
		_, err := s.DB.Exec(ctx, `INSERT INTO Accounts (Email, Auth, CreatedTime) VALUES (?, ?, ?)`, email, authHash, now.Unix())
		if err != nil {
			return err
		}
		row, err := s.DB.QueryRow(ctx, `SELECT AccountID FROM Accounts WHERE Email = ?`, email)
		if err != nil {
			return err
		}
		var got int64
		if err := row.Scan(&got); err != nil {
			return err
		}
		id = int32(got)
		return nil
	})
	return id, err
}

// ActivatePendingPremiumDays moves any pending premium days into active
// time and clears the pending counter, returning the account's premium
// state after the move.
func (s *Store) ActivatePendingPremiumDays(ctx context.Context, accountID int32, now time.Time) (premiumEnd int32, err error) {
	err = s.DB.WithTransaction(ctx, func() error {
		row, err := s.DB.QueryRow(ctx, `SELECT PremiumEnd, PendingPremiumDays FROM Accounts WHERE AccountID = ?`, accountID)
		if err != nil {
			return err
		}
		var end, pending int64
		if err := row.Scan(&end, &pending); err != nil {
			return err
		}
		if pending == 0 {
			premiumEnd = int32(end)
			return nil
		}
		base := end
		if base < now.Unix() {
			base = now.Unix()
		}
		newEnd := base + pending*86400
		_, err = s.DB.Exec(ctx, `UPDATE Accounts SET PremiumEnd = ?, PendingPremiumDays = 0 WHERE AccountID = ?`, newEnd, accountID)
		if err != nil {
			return err
		}
		premiumEnd = int32(newEnd)
		return nil
	})
	return premiumEnd, err
}

// --- Characters -----------------------------------------------------------

type Character struct {
	ID        int32
	WorldID   int32
	AccountID int32
	Name      string
	Sex       int32
	Level     int32
	Residence string
	IsOnline  bool
}

func (s *Store) CharacterNameExists(ctx context.Context, worldID int32, name string) (bool, error) {
	row, err := s.DB.QueryRow(ctx, `SELECT 1 FROM Characters WHERE WorldID = ? AND Name = ? AND Deleted = 0`, worldID, name)
	if err != nil {
		return false, err
	}
	var one int64
	if err := row.Scan(&one); err != nil {
		if dbadapter.ErrNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) CreateCharacter(ctx context.Context, worldID, accountID int32, name string, sex int32, now time.Time) (int32, error) {
	var id int32
	err := s.DB.WithTransaction(ctx, func() error {
		_, err := s.DB.Exec(ctx, `INSERT INTO Characters (WorldID, AccountID, Name, Sex, CreatedTime) VALUES (?, ?, ?, ?, ?)`,
			worldID, accountID, name, sex, now.Unix())
		if err != nil {
			return err
		}
		row, err := s.DB.QueryRow(ctx, `SELECT CharacterID FROM Characters WHERE WorldID = ? AND Name = ?`, worldID, name)
		if err != nil {
			return err
		}
		var got int64
		if err := row.Scan(&got); err != nil {
			return err
		}
		id = int32(got)
		return nil
	})
	return id, err
}

func (s *Store) GetCharacterByID(ctx context.Context, characterID int32) (Character, bool, error) {
	row, err := s.DB.QueryRow(ctx, `SELECT CharacterID, WorldID, AccountID, Name, Sex, Level, Residence, IsOnline FROM Characters WHERE CharacterID = ? AND Deleted = 0`, characterID)
	if err != nil {
		return Character{}, false, err
	}
	var c Character
	var online int64
	if err := row.Scan(&c.ID, &c.WorldID, &c.AccountID, &c.Name, &c.Sex, &c.Level, &c.Residence, &online); err != nil {
		if dbadapter.ErrNoRows(err) {
			return Character{}, false, nil
		}
		return Character{}, false, err
	}
	c.IsOnline = online != 0
	return c, true, nil
}

func (s *Store) GetCharacterByName(ctx context.Context, worldID int32, name string) (Character, bool, error) {
	row, err := s.DB.QueryRow(ctx, `SELECT CharacterID, WorldID, AccountID, Name, Sex, Level, Residence, IsOnline FROM Characters WHERE WorldID = ? AND Name = ? AND Deleted = 0`, worldID, name)
	if err != nil {
		return Character{}, false, err
	}
	var c Character
	var online int64
	if err := row.Scan(&c.ID, &c.WorldID, &c.AccountID, &c.Name, &c.Sex, &c.Level, &c.Residence, &online); err != nil {
		if dbadapter.ErrNoRows(err) {
			return Character{}, false, nil
		}
		return Character{}, false, err
	}
	c.IsOnline = online != 0
	return c, true, nil
}

func (s *Store) GetAccountCharacters(ctx context.Context, worldID, accountID int32) ([]Character, error) {
	var out []Character
	err := s.DB.Query(ctx, `SELECT CharacterID, WorldID, AccountID, Name, Sex, Level, Residence, IsOnline FROM Characters WHERE WorldID = ? AND AccountID = ? AND Deleted = 0 ORDER BY Name`,
		func(rows *sql.Rows) error {
			for rows.Next() {
				var c Character
				var online int64
				if err := rows.Scan(&c.ID, &c.WorldID, &c.AccountID, &c.Name, &c.Sex, &c.Level, &c.Residence, &online); err != nil {
					return err
				}
				c.IsOnline = online != 0
				out = append(out, c)
			}
			return nil
		}, worldID, accountID)
	return out, err
}

func (s *Store) SetOnline(ctx context.Context, characterID int32, online bool) error {
	v := 0
	if online {
		v = 1
	}
	_, err := s.DB.Exec(ctx, `UPDATE Characters SET IsOnline = ?, LastLoginTime = ? WHERE CharacterID = ?`, v, time.Now().Unix(), characterID)
	return err
}

func (s *Store) GetCharacterRights(ctx context.Context, characterID int32) ([]string, error) {
	var out []string
	err := s.DB.Query(ctx, `SELECT Right FROM CharacterRights WHERE CharacterID = ?`,
		func(rows *sql.Rows) error {
			for rows.Next() {
				var r string
				if err := rows.Scan(&r); err != nil {
					return err
				}
				out = append(out, r)
			}
			return nil
		}, characterID)
	return out, err
}

// --- Login attempts, bans, namelocks --------------------------------------

func (s *Store) InsertLoginAttempt(ctx context.Context, accountID int32, ip uint32, failed bool, now time.Time) error {
	v := 0
	if failed {
		v = 1
	}
	_, err := s.DB.Exec(ctx, `INSERT INTO LoginAttempts (AccountID, IPAddress, Failed, Time) VALUES (?, ?, ?, ?)`, accountID, ip, v, now.Unix())
	return err
}

func (s *Store) CountFailedLoginAttempts(ctx context.Context, accountID int32, since time.Time) (int32, error) {
	row, err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM LoginAttempts WHERE AccountID = ? AND Failed = 1 AND Time >= ?`, accountID, since.Unix())
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return int32(n), nil
}

func (s *Store) CountFailedLoginAttemptsByIP(ctx context.Context, ip uint32, since time.Time) (int32, error) {
	row, err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM LoginAttempts WHERE IPAddress = ? AND Failed = 1 AND Time >= ?`, ip, since.Unix())
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return int32(n), nil
}

type BanishmentStatus struct {
	ID            int32
	Banished      bool
	Until         int32
	FinalWarning  bool
	TimesBanished int32
}

func (s *Store) GetBanishmentStatus(ctx context.Context, accountID int32, now time.Time) (BanishmentStatus, error) {
	row, err := s.DB.QueryRow(ctx, `SELECT BanishedUntil, FinalWarning FROM Banishments WHERE AccountID = ? ORDER BY BanishmentID DESC LIMIT 1`, accountID)
	var st BanishmentStatus
	if err != nil {
		return st, err
	}
	var until, final int64
	if err := row.Scan(&until, &final); err != nil {
		if dbadapter.ErrNoRows(err) {
			return st, nil
		}
		return st, err
	}
	st.Until = int32(until)
	st.FinalWarning = final != 0
	st.Banished = final != 0 || until > now.Unix()

	row2, err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM Banishments WHERE AccountID = ?`, accountID)
	if err != nil {
		return st, err
	}
	var count int64
	if err := row2.Scan(&count); err != nil {
		return st, err
	}
	st.TimesBanished = int32(count)
	return st, nil
}

// InsertBanishment applies the compounding banishment policy and returns
// the banishment actually recorded.
func (s *Store) InsertBanishment(ctx context.Context, characterID, accountID int32, ip uint32, gmID int32, reason, comment string, requestedDays int32, requestFinal bool, now time.Time) (BanishmentStatus, error) {
	var result BanishmentStatus
	err := s.DB.WithTransaction(ctx, func() error {
		status, err := s.GetBanishmentStatus(ctx, accountID, now)
		if err != nil {
			return err
		}

		final := false
		var until int64
		switch {
		case status.FinalWarning:
			final = true
			until = 0 // permanent: caller treats FinalWarning as permanent regardless of Until
		case status.TimesBanished > 5 || requestFinal:
			final = true
			days := requestedDays
			if days < 30 {
				days = 30
			}
			if 2*requestedDays > days {
				days = 2 * requestedDays
			}
			until = now.Unix() + int64(days)*86400
		default:
			until = now.Unix() + int64(requestedDays)*86400
		}

		finalInt := 0
		if final {
			finalInt = 1
		}
		_, err = s.DB.Exec(ctx, `INSERT INTO Banishments (CharacterID, AccountID, IPAddress, GamemasterID, Reason, Comment, FinalWarning, BanishedUntil, BanTime) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			characterID, accountID, ip, gmID, reason, comment, finalInt, until, now.Unix())
		if err != nil {
			return err
		}

		row, err := s.DB.QueryRow(ctx, `SELECT BanishmentID FROM Banishments WHERE AccountID = ? ORDER BY BanishmentID DESC LIMIT 1`, accountID)
		if err != nil {
			return err
		}
		var id int64
		if err := row.Scan(&id); err != nil {
			return err
		}

		result = BanishmentStatus{ID: int32(id), Banished: true, Until: int32(until), FinalWarning: final, TimesBanished: status.TimesBanished + 1}
		return nil
	})
	return result, err
}

func (s *Store) IsIPBanished(ctx context.Context, ip uint32, now time.Time) (bool, error) {
	row, err := s.DB.QueryRow(ctx, `SELECT BanishedUntil FROM IPBanishments WHERE IPAddress = ?`, ip)
	if err != nil {
		return false, err
	}
	var until int64
	if err := row.Scan(&until); err != nil {
		if dbadapter.ErrNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return until > now.Unix(), nil
}

func (s *Store) InsertIPBanishment(ctx context.Context, ip uint32, characterID, gmID int32, reason, comment string, days int32, now time.Time) error {
	until := now.Unix() + int64(days)*86400
	_, err := s.DB.Exec(ctx, `INSERT INTO IPBanishments (IPAddress, GamemasterID, CharacterID, Reason, Comment, BanishedUntil, BanTime) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ip, gmID, characterID, reason, comment, until, now.Unix())
	return err
}

func (s *Store) IsCharacterNamelocked(ctx context.Context, characterID int32) (bool, error) {
	row, err := s.DB.QueryRow(ctx, `SELECT 1 FROM Namelocks WHERE CharacterID = ?`, characterID)
	if err != nil {
		return false, err
	}
	var one int64
	if err := row.Scan(&one); err != nil {
		if dbadapter.ErrNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Store) InsertNamelock(ctx context.Context, characterID int32, ip uint32, gmID int32, reason, comment string, now time.Time) error {
	_, err := s.DB.Exec(ctx, `INSERT INTO Namelocks (CharacterID, IPAddress, GamemasterID, Reason, Comment, BanTime) VALUES (?, ?, ?, ?, ?, ?)`,
		characterID, ip, gmID, reason, comment, now.Unix())
	return err
}

func (s *Store) InsertNotation(ctx context.Context, characterID int32, ip uint32, gmID int32, reason, comment string, now time.Time) error {
	_, err := s.DB.Exec(ctx, `INSERT INTO Notations (CharacterID, IPAddress, GamemasterID, Reason, Comment, BanTime) VALUES (?, ?, ?, ?, ?, ?)`,
		characterID, ip, gmID, reason, comment, now.Unix())
	return err
}

func (s *Store) CountNotations(ctx context.Context, characterID int32) (int32, error) {
	row, err := s.DB.QueryRow(ctx, `SELECT COUNT(*) FROM Notations WHERE CharacterID = ?`, characterID)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return int32(n), nil
}

// --- Buddies -----------------------------------------------------------

func (s *Store) InsertBuddy(ctx context.Context, worldID, accountID, buddyID int32) error {
	_, err := s.DB.Exec(ctx, `INSERT OR IGNORE INTO Buddies (WorldID, AccountID, BuddyID) VALUES (?, ?, ?)`, worldID, accountID, buddyID)
	return err
}

func (s *Store) DeleteBuddy(ctx context.Context, worldID, accountID, buddyID int32) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM Buddies WHERE WorldID = ? AND AccountID = ? AND BuddyID = ?`, worldID, accountID, buddyID)
	return err
}

func (s *Store) GetBuddies(ctx context.Context, worldID, accountID int32) ([]int32, error) {
	var out []int32
	err := s.DB.Query(ctx, `SELECT BuddyID FROM Buddies WHERE WorldID = ? AND AccountID = ?`,
		func(rows *sql.Rows) error {
			for rows.Next() {
				var id int64
				if err := rows.Scan(&id); err != nil {
					return err
				}
				out = append(out, int32(id))
			}
			return nil
		}, worldID, accountID)
	return out, err
}

// --- Online list / kill statistics / statements --------------------------

type OnlineCharacter struct {
	CharacterID int32
	Name        string
	Level       int32
	Profession  string
}

// ReplacePlayerlist atomically swaps a world's online set.
func (s *Store) ReplacePlayerlist(ctx context.Context, worldID int32, chars []OnlineCharacter) error {
	return s.DB.WithTransaction(ctx, func() error {
		if _, err := s.DB.Exec(ctx, `DELETE FROM OnlineCharacters WHERE WorldID = ?`, worldID); err != nil {
			return err
		}
		for _, c := range chars {
			if _, err := s.DB.Exec(ctx, `INSERT INTO OnlineCharacters (WorldID, CharacterID, Name, Level, Profession) VALUES (?, ?, ?, ?, ?)`,
				worldID, c.CharacterID, c.Name, c.Level, c.Profession); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetOnlineCharacters(ctx context.Context, worldID int32) ([]OnlineCharacter, error) {
	var out []OnlineCharacter
	err := s.DB.Query(ctx, `SELECT CharacterID, Name, Level, Profession FROM OnlineCharacters WHERE WorldID = ? ORDER BY Name`,
		func(rows *sql.Rows) error {
			for rows.Next() {
				var c OnlineCharacter
				if err := rows.Scan(&c.CharacterID, &c.Name, &c.Level, &c.Profession); err != nil {
					return err
				}
				out = append(out, c)
			}
			return nil
		}, worldID)
	return out, err
}

type KillStatistic struct {
	RaceName       string
	NumKills       int32
	NumPlayerKills int32
}

func (s *Store) MergeKillStatistics(ctx context.Context, worldID int32, stats []KillStatistic) error {
	return s.DB.WithTransaction(ctx, func() error {
		for _, st := range stats {
			_, err := s.DB.Exec(ctx, `INSERT INTO KillStatistics (WorldID, RaceName, NumKills, NumPlayerKills) VALUES (?, ?, ?, ?)
				ON CONFLICT(WorldID, RaceName) DO UPDATE SET NumKills = NumKills + excluded.NumKills, NumPlayerKills = NumPlayerKills + excluded.NumPlayerKills`,
				worldID, st.RaceName, st.NumKills, st.NumPlayerKills)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetKillStatistics(ctx context.Context, worldID int32) ([]KillStatistic, error) {
	var out []KillStatistic
	err := s.DB.Query(ctx, `SELECT RaceName, NumKills, NumPlayerKills FROM KillStatistics WHERE WorldID = ? ORDER BY RaceName`,
		func(rows *sql.Rows) error {
			for rows.Next() {
				var k KillStatistic
				if err := rows.Scan(&k.RaceName, &k.NumKills, &k.NumPlayerKills); err != nil {
					return err
				}
				out = append(out, k)
			}
			return nil
		}, worldID)
	return out, err
}

func (s *Store) InsertCharacterDeath(ctx context.Context, worldID, characterID, level int32, remains string, now time.Time) error {
	_, err := s.DB.Exec(ctx, `INSERT INTO CharacterDeaths (WorldID, CharacterID, Level, Remains, Time) VALUES (?, ?, ?, ?, ?)`,
		worldID, characterID, level, remains, now.Unix())
	return err
}

func (s *Store) IsStatementReported(ctx context.Context, worldID, statementID int32) (bool, error) {
	row, err := s.DB.QueryRow(ctx, `SELECT 1 FROM ReportedStatements WHERE WorldID = ? AND StatementID = ?`, worldID, statementID)
	if err != nil {
		return false, err
	}
	var one int64
	if err := row.Scan(&one); err != nil {
		if dbadapter.ErrNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type Statement struct {
	StatementID int32
	CharacterID int32
	Channel     string
	Text        string
	Time        int32
}

// ReportStatement inserts the surrounding context statements (conflict-safe)
// and the report record itself, refusing if already reported.
func (s *Store) ReportStatement(ctx context.Context, worldID int32, contextStatements []Statement, reportedID, reporterID int32, reason, comment string, now time.Time) (bool, error) {
	already, err := s.IsStatementReported(ctx, worldID, reportedID)
	if err != nil || already {
		return false, err
	}

	err = s.DB.WithTransaction(ctx, func() error {
		for _, st := range contextStatements {
			if _, err := s.DB.Exec(ctx, `INSERT OR IGNORE INTO Statements (WorldID, StatementID, CharacterID, Channel, Text, Time) VALUES (?, ?, ?, ?, ?, ?)`,
				worldID, st.StatementID, st.CharacterID, st.Channel, st.Text, st.Time); err != nil {
				return err
			}
		}
		_, err := s.DB.Exec(ctx, `INSERT INTO ReportedStatements (WorldID, StatementID, ReporterID, Reason, Comment, Time) VALUES (?, ?, ?, ?, ?, ?)`,
			worldID, reportedID, reporterID, reason, comment, now.Unix())
		return err
	})
	return err == nil, err
}

// --- Houses / auctions ----------------------------------------------------

type HouseOwner struct {
	WorldID   int32
	HouseID   int32
	OwnerID   int32
	PaidUntil int32
}

func (s *Store) InsertHouseOwner(ctx context.Context, worldID, houseID, ownerID, paidUntil int32) error {
	_, err := s.DB.Exec(ctx, `INSERT INTO HouseOwners (WorldID, HouseID, OwnerID, PaidUntil) VALUES (?, ?, ?, ?)`,
		worldID, houseID, ownerID, paidUntil)
	return err
}

func (s *Store) UpdateHouseOwner(ctx context.Context, worldID, houseID, paidUntil int32) error {
	_, err := s.DB.Exec(ctx, `UPDATE HouseOwners SET PaidUntil = ? WHERE WorldID = ? AND HouseID = ?`, paidUntil, worldID, houseID)
	return err
}

func (s *Store) DeleteHouseOwner(ctx context.Context, worldID, houseID int32) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM HouseOwners WHERE WorldID = ? AND HouseID = ?`, worldID, houseID)
	return err
}

func (s *Store) GetHouseOwners(ctx context.Context, worldID int32) ([]HouseOwner, error) {
	var out []HouseOwner
	err := s.DB.Query(ctx, `SELECT WorldID, HouseID, OwnerID, PaidUntil FROM HouseOwners WHERE WorldID = ?`,
		func(rows *sql.Rows) error {
			for rows.Next() {
				var h HouseOwner
				if err := rows.Scan(&h.WorldID, &h.HouseID, &h.OwnerID, &h.PaidUntil); err != nil {
					return err
				}
				out = append(out, h)
			}
			return nil
		}, worldID)
	return out, err
}

func (s *Store) InsertHouses(ctx context.Context, worldID int32, houseIDs []int32, names, towns []string, rents []int32) error {
	return s.DB.WithTransaction(ctx, func() error {
		for i, id := range houseIDs {
			if _, err := s.DB.Exec(ctx, `INSERT OR REPLACE INTO Houses (WorldID, HouseID, Name, Town, Rent) VALUES (?, ?, ?, ?, ?)`,
				worldID, id, names[i], towns[i], rents[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) StartAuction(ctx context.Context, worldID, houseID int32) error {
	_, err := s.DB.Exec(ctx, `INSERT OR IGNORE INTO HouseAuctions (WorldID, HouseID) VALUES (?, ?)`, worldID, houseID)
	return err
}

func (s *Store) GetAuctions(ctx context.Context, worldID int32) ([]int32, error) {
	var out []int32
	err := s.DB.Query(ctx, `SELECT HouseID FROM HouseAuctions WHERE WorldID = ?`,
		func(rows *sql.Rows) error {
			for rows.Next() {
				var id int64
				if err := rows.Scan(&id); err != nil {
					return err
				}
				out = append(out, int32(id))
			}
			return nil
		}, worldID)
	return out, err
}

// FinishAuctions removes every auction row of the world in one statement
// and returns how many it removed. It creates no HouseTransfers rows.
func (s *Store) FinishAuctions(ctx context.Context, worldID int32) (int, error) {
	n, err := s.DB.Exec(ctx, `DELETE FROM HouseAuctions WHERE WorldID = ?`, worldID)
	return int(n), err
}

func (s *Store) FinishHouseTransfers(ctx context.Context, worldID int32) ([]HouseOwner, error) {
	var out []HouseOwner
	err := s.DB.WithTransaction(ctx, func() error {
		err := s.DB.Query(ctx, `SELECT WorldID, HouseID, NewOwnerID, 0 FROM HouseTransfers WHERE WorldID = ?`,
			func(rows *sql.Rows) error {
				for rows.Next() {
					var h HouseOwner
					if err := rows.Scan(&h.WorldID, &h.HouseID, &h.OwnerID, &h.PaidUntil); err != nil {
						return err
					}
					out = append(out, h)
				}
				return nil
			}, worldID)
		if err != nil {
			return err
		}
		_, err = s.DB.Exec(ctx, `DELETE FROM HouseTransfers WHERE WorldID = ?`, worldID)
		return err
	})
	return out, err
}

func (s *Store) ExcludeFromAuctions(ctx context.Context, worldID, characterID, banishmentID int32, until int32) error {
	_, err := s.DB.Exec(ctx, `INSERT OR REPLACE INTO HouseAuctionExclusions (WorldID, CharacterID, BanishmentID, Until) VALUES (?, ?, ?, ?)`,
		worldID, characterID, banishmentID, until)
	return err
}

// CancelHouseTransfer is a stub: no cancellation contract exists yet for a
// pending HouseTransfers row, so this just acknowledges.
func (s *Store) CancelHouseTransfer(ctx context.Context, worldID, houseID int32) error {
	return nil
}
