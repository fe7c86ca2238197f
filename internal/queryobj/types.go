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

package queryobj

// Query type codes, the first payload byte of every request.
// INTERNAL_RESOLVE_WORLD is never sent by a client; it is synthesized by
// the authorization gate itself.
const (
	TypeLogin                  Type = 0
	TypeInternalResolveWorld   Type = 1
	TypeCheckAccountPassword   Type = 10
	TypeLoginAccount           Type = 11
	TypeLoginAdmin             Type = 12
	TypeLoginGame              Type = 20
	TypeLogoutGame             Type = 21
	TypeSetNamelock            Type = 23
	TypeBanishAccount          Type = 25
	TypeSetNotation            Type = 26
	TypeReportStatement        Type = 27
	TypeBanishIPAddress        Type = 28
	TypeLogCharacterDeath      Type = 29
	TypeAddBuddy               Type = 30
	TypeRemoveBuddy            Type = 31
	TypeDecrementIsOnline      Type = 32
	TypeFinishAuctions         Type = 33
	TypeTransferHouses         Type = 35
	TypeEvictFreeAccounts      Type = 36
	TypeEvictDeletedCharacters Type = 37
	TypeEvictExGuildleaders    Type = 38
	TypeInsertHouseOwner       Type = 39
	TypeUpdateHouseOwner       Type = 40
	TypeDeleteHouseOwner       Type = 41
	TypeGetHouseOwners         Type = 42
	TypeGetAuctions            Type = 43
	TypeStartAuction           Type = 44
	TypeInsertHouses           Type = 45
	TypeClearIsOnline          Type = 46
	TypeCreatePlayerlist       Type = 47
	TypeLogKilledCreatures     Type = 48
	TypeLoadPlayers            Type = 50
	TypeExcludeFromAuctions    Type = 51
	TypeCancelHouseTransfer    Type = 52
	TypeLoadWorldConfig        Type = 53
	TypeCreateAccount          Type = 100
	TypeCreateCharacter        Type = 101
	TypeGetAccountSummary      Type = 102
	TypeGetCharacterProfile    Type = 103
	TypeGetWorlds              Type = 150
	TypeGetOnlineCharacters    Type = 151
	TypeGetKillStatistics      Type = 152
)

// ApplicationType is the client role declared at LOGIN time, fixed for the
// life of the connection.
type ApplicationType uint8

const (
	AppGame  ApplicationType = 0
	AppLogin ApplicationType = 1
	AppWeb   ApplicationType = 2
)

func (a ApplicationType) String() string {
	switch a {
	case AppGame:
		return "GAME"
	case AppLogin:
		return "LOGIN"
	case AppWeb:
		return "WEB"
	default:
		return "UNKNOWN"
	}
}

// ErrorCode values are handler-local; a handful of shared
// codes are collected here because several handlers share the same
// meaning ("account not found", "wrong password", ...).
const (
	ErrWrongPassword    uint8 = 1
	ErrAccountNotFound  uint8 = 2
	ErrAccountBanished  uint8 = 3
	ErrIPBanished       uint8 = 4
	ErrNamelocked       uint8 = 5
	ErrAlreadyOnline    uint8 = 6
	ErrNotGamemaster    uint8 = 7
	ErrNameInUse        uint8 = 8
	ErrInvalidParameter uint8 = 9
	ErrNotFound         uint8 = 10
	ErrAlreadyReported  uint8 = 11
	ErrTooManyAttempts  uint8 = 12
	ErrGamemasterOutfit uint8 = 14
)
