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

// Package authgate implements the login handshake and the
// per-application-type whitelist of accepted query types.
package authgate

import "github.com/Nottinghster/tibia-querymanager/internal/queryobj"

// whitelists holds the set of query types a connection may send once
// authorized, keyed by its declared application type. GAME accepts the
// full business set; LOGIN and WEB are deliberately narrow.
var whitelists = map[queryobj.ApplicationType]map[queryobj.Type]bool{
	queryobj.AppGame: gameWhitelist(),
	queryobj.AppLogin: {
		queryobj.TypeLoginAccount: true,
	},
	queryobj.AppWeb: {
		queryobj.TypeCheckAccountPassword:   true,
		queryobj.TypeCreateAccount:          true,
		queryobj.TypeCreateCharacter:        true,
		queryobj.TypeGetAccountSummary:      true,
		queryobj.TypeGetCharacterProfile:    true,
		queryobj.TypeGetWorlds:              true,
		queryobj.TypeGetOnlineCharacters:    true,
		queryobj.TypeGetKillStatistics:      true,
	},
}

func gameWhitelist() map[queryobj.Type]bool {
	return map[queryobj.Type]bool{
		queryobj.TypeLoginGame:            true,
		queryobj.TypeLoginAdmin:           true,
		queryobj.TypeLogoutGame:           true,
		queryobj.TypeSetNamelock:          true,
		queryobj.TypeBanishAccount:        true,
		queryobj.TypeSetNotation:          true,
		queryobj.TypeReportStatement:      true,
		queryobj.TypeBanishIPAddress:      true,
		queryobj.TypeLogCharacterDeath:    true,
		queryobj.TypeAddBuddy:             true,
		queryobj.TypeRemoveBuddy:          true,
		queryobj.TypeDecrementIsOnline:    true,
		queryobj.TypeFinishAuctions:       true,
		queryobj.TypeTransferHouses:       true,
		queryobj.TypeEvictFreeAccounts:    true,
		queryobj.TypeEvictDeletedCharacters: true,
		queryobj.TypeEvictExGuildleaders:  true,
		queryobj.TypeInsertHouseOwner:     true,
		queryobj.TypeUpdateHouseOwner:     true,
		queryobj.TypeDeleteHouseOwner:     true,
		queryobj.TypeGetHouseOwners:       true,
		queryobj.TypeGetAuctions:          true,
		queryobj.TypeStartAuction:         true,
		queryobj.TypeInsertHouses:         true,
		queryobj.TypeClearIsOnline:        true,
		queryobj.TypeCreatePlayerlist:     true,
		queryobj.TypeLogKilledCreatures:   true,
		queryobj.TypeLoadPlayers:          true,
		queryobj.TypeExcludeFromAuctions:  true,
		queryobj.TypeCancelHouseTransfer:  true,
		queryobj.TypeLoadWorldConfig:      true,
		queryobj.TypeCreateAccount:        true,
		queryobj.TypeCreateCharacter:      true,
		queryobj.TypeGetAccountSummary:    true,
		queryobj.TypeGetCharacterProfile:  true,
		queryobj.TypeGetWorlds:            true,
		queryobj.TypeGetOnlineCharacters:  true,
		queryobj.TypeGetKillStatistics:    true,
	}
}

// Allowed reports whether appType may send query type t once authorized.
func Allowed(appType queryobj.ApplicationType, t queryobj.Type) bool {
	set, ok := whitelists[appType]
	if !ok {
		return false
	}
	return set[t]
}

// LoginRequest is the parsed payload of the first request on a connection:
// u8 applicationType, string password, and (GAME only) an additional world
// name string.
type LoginRequest struct {
	AppType   queryobj.ApplicationType
	Password  string
	WorldName string
}

// ParseLogin decodes a LOGIN request's payload.
func ParseLogin(r interface {
	ReadByte() (byte, bool)
	ReadString() (string, bool)
}) (LoginRequest, bool) {
	appByte, ok := r.ReadByte()
	if !ok {
		return LoginRequest{}, false
	}
	password, ok := r.ReadString()
	if !ok {
		return LoginRequest{}, false
	}

	req := LoginRequest{AppType: queryobj.ApplicationType(appByte), Password: password}

	if req.AppType == queryobj.AppGame {
		worldName, ok := r.ReadString()
		if !ok {
			return LoginRequest{}, false
		}
		req.WorldName = worldName
	}

	return req, true
}
