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

// handleCreatePlayerlist implements the world heartbeat:
// atomically replace the world's online set and update the online-record
// high-water mark.
func handleCreatePlayerlist(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok := r.ReadInt32()
	count, ok2 := r.ReadUint16()
	if !ok || !ok2 {
		q.Failed()
		return
	}

	chars := make([]store.OnlineCharacter, 0, count)
	for i := uint16(0); i < count; i++ {
		id, a := r.ReadInt32()
		name, b := r.ReadString()
		level, c := r.ReadInt32()
		profession, d := r.ReadString()
		if !a || !b || !c || !d {
			q.Failed()
			return
		}
		chars = append(chars, store.OnlineCharacter{CharacterID: id, Name: name, Level: level, Profession: profession})
	}

	if err := st.ReplacePlayerlist(ctx, worldID, chars); err != nil {
		return
	}

	newRecord, err := st.CheckOnlineRecord(ctx, worldID, int32(len(chars)), time.Now())
	if err != nil {
		return
	}

	q.Ok()
	q.ResponseWriter().WriteBool(newRecord)
}

// handleLoadPlayers returns the world's currently-recorded online set, used
// by a game world reconnecting after a restart to recover its player list.
func handleLoadPlayers(ctx context.Context, st *store.Store, q *queryobj.Query) {
	worldID, ok := q.Request().ReadInt32()
	if !ok {
		q.Failed()
		return
	}

	chars, err := st.GetOnlineCharacters(ctx, worldID)
	if err != nil {
		return
	}

	q.Ok()
	w := q.ResponseWriter()
	w.WriteUint16(uint16(len(chars)))
	for _, c := range chars {
		w.WriteInt32(c.CharacterID)
		w.WriteString(c.Name)
		w.WriteInt32(c.Level)
		w.WriteString(c.Profession)
	}
}

func handleLoadWorldConfig(ctx context.Context, st *store.Store, q *queryobj.Query) {
	worldID, ok := q.Request().ReadInt32()
	if !ok {
		q.Failed()
		return
	}

	world, found, err := st.GetWorldConfig(ctx, worldID)
	if err != nil {
		return
	}
	if !found {
		q.Error(queryobj.ErrNotFound)
		return
	}

	q.Ok()
	w := q.ResponseWriter()
	w.WriteString(world.Name)
	w.WriteInt32(world.Type)
	w.WriteInt32(world.RebootTime)
	w.WriteInt32(world.MaxPlayers)
	w.WriteInt32(world.PremiumPlayerBuffer)
	w.WriteInt32(world.MaxNewbiePlayers)
	// HostName/Port are written unresolved; the connection thread resolves
	// HostName to an IPv4 address before the frame reaches the socket,
	// since the host cache is only ever touched by that thread.
	w.WriteString(world.HostName)
	w.WriteUint16(uint16(world.Port))
}

func handleLogKilledCreatures(ctx context.Context, st *store.Store, q *queryobj.Query) {
	r := q.Request()
	worldID, ok := r.ReadInt32()
	count, ok2 := r.ReadUint16()
	if !ok || !ok2 {
		q.Failed()
		return
	}

	stats := make([]store.KillStatistic, 0, count)
	for i := uint16(0); i < count; i++ {
		race, a := r.ReadString()
		kills, b := r.ReadInt32()
		playerKills, c := r.ReadInt32()
		if !a || !b || !c {
			q.Failed()
			return
		}
		stats = append(stats, store.KillStatistic{RaceName: race, NumKills: kills, NumPlayerKills: playerKills})
	}

	if err := st.MergeKillStatistics(ctx, worldID, stats); err != nil {
		return
	}
	q.Ok()
}

func handleGetKillStatistics(ctx context.Context, st *store.Store, q *queryobj.Query) {
	worldID, ok := q.Request().ReadInt32()
	if !ok {
		q.Failed()
		return
	}

	stats, err := st.GetKillStatistics(ctx, worldID)
	if err != nil {
		return
	}

	q.Ok()
	w := q.ResponseWriter()
	w.WriteUint16(uint16(len(stats)))
	for _, s := range stats {
		w.WriteString(s.RaceName)
		w.WriteInt32(s.NumKills)
		w.WriteInt32(s.NumPlayerKills)
	}
}

func handleGetOnlineCharacters(ctx context.Context, st *store.Store, q *queryobj.Query) {
	worldID, ok := q.Request().ReadInt32()
	if !ok {
		q.Failed()
		return
	}

	chars, err := st.GetOnlineCharacters(ctx, worldID)
	if err != nil {
		return
	}

	q.Ok()
	w := q.ResponseWriter()
	w.WriteUint16(uint16(len(chars)))
	for _, c := range chars {
		w.WriteString(c.Name)
		w.WriteInt32(c.Level)
		w.WriteString(c.Profession)
	}
}

func handleGetWorlds(ctx context.Context, st *store.Store, q *queryobj.Query) {
	worlds, err := st.GetWorlds(ctx)
	if err != nil {
		return
	}

	q.Ok()
	w := q.ResponseWriter()
	w.WriteUint16(uint16(len(worlds)))
	for _, world := range worlds {
		w.WriteInt32(world.ID)
		w.WriteString(world.Name)
		w.WriteInt32(world.Type)
		w.WriteInt32(world.MaxPlayers)
	}
}
