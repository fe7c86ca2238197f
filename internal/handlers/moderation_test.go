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
	"testing"
	"time"

	"github.com/Nottinghster/tibia-querymanager/internal/queryobj"
	"github.com/Nottinghster/tibia-querymanager/internal/wire"
)

func TestHandleSetNamelockThenRejectsSecondAttempt(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first := buildQuery(t, queryobj.TypeSetNamelock, func(w *wire.Writer) {
		w.WriteInt32(1) // characterID
		w.WriteInt32(7) // gmID
		w.WriteUint32(0x0A000001)
		w.WriteString("cheating")
		w.WriteString("evidence attached")
	})
	handleSetNamelock(ctx, st, first)
	if first.Status != queryobj.StatusOK {
		t.Fatalf("first handleSetNamelock: q.Status = %v, want StatusOK", first.Status)
	}

	second := buildQuery(t, queryobj.TypeSetNamelock, func(w *wire.Writer) {
		w.WriteInt32(1)
		w.WriteInt32(7)
		w.WriteUint32(0x0A000001)
		w.WriteString("cheating")
		w.WriteString("evidence attached")
	})
	handleSetNamelock(ctx, st, second)
	body := second.ResponseBody()
	if len(body) < 2 || body[1] != queryobj.ErrNamelocked {
		t.Fatalf("body = %v, want ErrNamelocked at index 1", body)
	}
}

func TestHandleBanishAccountReturnsDurationBeforeFinal(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	q := buildQuery(t, queryobj.TypeBanishAccount, func(w *wire.Writer) {
		w.WriteInt32(1) // characterID
		w.WriteInt32(1) // accountID
		w.WriteInt32(7) // gmID
		w.WriteUint32(0x0A000001)
		w.WriteString("cheating")
		w.WriteString("evidence attached")
		w.WriteInt32(3)
		w.WriteBool(false)
	})
	handleBanishAccount(ctx, st, q)
	if q.Status != queryobj.StatusOK {
		t.Fatalf("q.Status = %v, want StatusOK", q.Status)
	}

	r := wire.NewReader(q.ResponseBody())
	r.ReadByte() // status byte
	final, _ := r.ReadBool()
	if final {
		t.Fatal("FinalWarning = true, want false on a first short ban")
	}
}

func TestHandleSetNotationReturnsRunningCount(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first := buildQuery(t, queryobj.TypeSetNotation, func(w *wire.Writer) {
		w.WriteInt32(1)
		w.WriteInt32(7)
		w.WriteUint32(0x0A000001)
		w.WriteString("spam")
		w.WriteString("first warning")
	})
	handleSetNotation(ctx, st, first)
	if first.Status != queryobj.StatusOK {
		t.Fatalf("first handleSetNotation: q.Status = %v, want StatusOK", first.Status)
	}
	r := wire.NewReader(first.ResponseBody())
	r.ReadByte()
	count, _ := r.ReadInt32()
	if count != 1 {
		t.Fatalf("count after first notation = %d, want 1", count)
	}

	second := buildQuery(t, queryobj.TypeSetNotation, func(w *wire.Writer) {
		w.WriteInt32(1)
		w.WriteInt32(7)
		w.WriteUint32(0x0A000001)
		w.WriteString("spam")
		w.WriteString("second warning")
	})
	handleSetNotation(ctx, st, second)
	r = wire.NewReader(second.ResponseBody())
	r.ReadByte()
	count, _ = r.ReadInt32()
	if count != 2 {
		t.Fatalf("count after second notation = %d, want 2", count)
	}
}

func buildReportStatementQuery(w *wire.Writer, worldID, reporterID, reportedID int32, reason, comment string) {
	w.WriteInt32(worldID)
	w.WriteInt32(reporterID)
	w.WriteInt32(reportedID)
	w.WriteString(reason)
	w.WriteString(comment)
	w.WriteUint16(1)
	w.WriteInt32(reportedID) // context statement id
	w.WriteInt32(reporterID) // context statement's character id
	w.WriteString("default")
	w.WriteString("this is spam")
	w.WriteInt32(1700000000)
}

func TestHandleReportStatementThenRejectsDuplicateReport(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	worldID := mustCreateWorld(t, st, "Antica")

	first := buildQuery(t, queryobj.TypeReportStatement, func(w *wire.Writer) {
		buildReportStatementQuery(w, worldID, 2, 99, "spam", "evidence")
	})
	handleReportStatement(ctx, st, first)
	if first.Status != queryobj.StatusOK {
		t.Fatalf("first handleReportStatement: q.Status = %v, want StatusOK", first.Status)
	}

	second := buildQuery(t, queryobj.TypeReportStatement, func(w *wire.Writer) {
		buildReportStatementQuery(w, worldID, 2, 99, "spam", "evidence")
	})
	handleReportStatement(ctx, st, second)
	body := second.ResponseBody()
	if len(body) < 2 || body[1] != queryobj.ErrAlreadyReported {
		t.Fatalf("body = %v, want ErrAlreadyReported at index 1", body)
	}
}

func TestHandleBanishIPAddressSucceeds(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	q := buildQuery(t, queryobj.TypeBanishIPAddress, func(w *wire.Writer) {
		w.WriteUint32(0x0A000001)
		w.WriteInt32(1)
		w.WriteInt32(7)
		w.WriteString("abuse")
		w.WriteString("evidence")
		w.WriteInt32(5)
	})
	handleBanishIPAddress(ctx, st, q)
	if q.Status != queryobj.StatusOK {
		t.Fatalf("q.Status = %v, want StatusOK", q.Status)
	}

	banished, err := st.IsIPBanished(ctx, 0x0A000001, time.Now())
	if err != nil {
		t.Fatalf("IsIPBanished() error = %v", err)
	}
	if !banished {
		t.Fatal("IsIPBanished() = false, want true after handleBanishIPAddress")
	}
}

func TestHandleLogCharacterDeathSucceeds(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	worldID := mustCreateWorld(t, st, "Antica")

	q := buildQuery(t, queryobj.TypeLogCharacterDeath, func(w *wire.Writer) {
		w.WriteInt32(worldID)
		w.WriteInt32(1) // characterID
		w.WriteInt32(50)
		w.WriteString("a rotting corpse")
	})
	handleLogCharacterDeath(ctx, st, q)
	if q.Status != queryobj.StatusOK {
		t.Fatalf("q.Status = %v, want StatusOK", q.Status)
	}
}
