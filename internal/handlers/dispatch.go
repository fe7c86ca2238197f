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

// Package handlers implements the named query handlers: pure functions over
// a database session and a Query's request view that set the Query's
// status and, on success, its response body. SQL shapes are reached
// through internal/store.
package handlers

import (
	"context"

	"github.com/Nottinghster/tibia-querymanager/internal/queryobj"
	"github.com/Nottinghster/tibia-querymanager/internal/store"
)

// HandlerFunc reads q.Request(), does its database work against st, and
// finishes by calling q.Ok(), q.Error(code), or q.Failed() (or by leaving
// q.Status untouched at PENDING to request a retry on a transient
// failure).
type HandlerFunc func(ctx context.Context, st *store.Store, q *queryobj.Query)

var dispatch = map[queryobj.Type]HandlerFunc{
	queryobj.TypeInternalResolveWorld: handleInternalResolveWorld,

	queryobj.TypeCheckAccountPassword: handleCheckAccountPassword,
	queryobj.TypeLoginAccount:         handleLoginAccount,
	queryobj.TypeLoginAdmin:           handleLoginAdmin,
	queryobj.TypeLoginGame:            handleLoginGame,
	queryobj.TypeLogoutGame:           handleLogoutGame,

	queryobj.TypeSetNamelock:       handleSetNamelock,
	queryobj.TypeBanishAccount:     handleBanishAccount,
	queryobj.TypeSetNotation:       handleSetNotation,
	queryobj.TypeReportStatement:   handleReportStatement,
	queryobj.TypeBanishIPAddress:   handleBanishIPAddress,
	queryobj.TypeLogCharacterDeath: handleLogCharacterDeath,

	queryobj.TypeAddBuddy:          handleAddBuddy,
	queryobj.TypeRemoveBuddy:       handleRemoveBuddy,
	queryobj.TypeDecrementIsOnline: handleDecrementIsOnline,
	queryobj.TypeClearIsOnline:     handleClearIsOnline,

	queryobj.TypeCreatePlayerlist:    handleCreatePlayerlist,
	queryobj.TypeLoadPlayers:         handleLoadPlayers,
	queryobj.TypeLoadWorldConfig:     handleLoadWorldConfig,
	queryobj.TypeLogKilledCreatures:  handleLogKilledCreatures,
	queryobj.TypeGetKillStatistics:   handleGetKillStatistics,
	queryobj.TypeGetOnlineCharacters: handleGetOnlineCharacters,
	queryobj.TypeGetWorlds:           handleGetWorlds,

	queryobj.TypeFinishAuctions:      handleFinishAuctions,
	queryobj.TypeTransferHouses:      handleTransferHouses,
	queryobj.TypeInsertHouseOwner:    handleInsertHouseOwner,
	queryobj.TypeUpdateHouseOwner:    handleUpdateHouseOwner,
	queryobj.TypeDeleteHouseOwner:    handleDeleteHouseOwner,
	queryobj.TypeGetHouseOwners:      handleGetHouseOwners,
	queryobj.TypeGetAuctions:         handleGetAuctions,
	queryobj.TypeStartAuction:        handleStartAuction,
	queryobj.TypeInsertHouses:        handleInsertHouses,
	queryobj.TypeExcludeFromAuctions: handleExcludeFromAuctions,
	queryobj.TypeCancelHouseTransfer: handleCancelHouseTransfer,

	queryobj.TypeCreateAccount:          handleCreateAccount,
	queryobj.TypeCreateCharacter:        handleCreateCharacter,
	queryobj.TypeGetAccountSummary:      handleGetAccountSummary,
	queryobj.TypeGetCharacterProfile:    handleGetCharacterProfile,
	queryobj.TypeEvictFreeAccounts:      handleEvictFreeAccounts,
	queryobj.TypeEvictDeletedCharacters: handleEvictDeletedCharacters,
	queryobj.TypeEvictExGuildleaders:    handleEvictExGuildleaders,
}

// Lookup returns the handler registered for t, if any. Unknown types are
// reported by the worker pool as PENDING→FAILED.
func Lookup(t queryobj.Type) (HandlerFunc, bool) {
	fn, ok := dispatch[t]
	return fn, ok
}
