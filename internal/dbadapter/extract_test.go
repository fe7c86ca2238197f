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

package dbadapter

import (
	"database/sql"
	"net"
	"testing"
	"time"
)

func TestBool(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want bool
	}{
		{"bool true", true, true},
		{"bool false", false, false},
		{"int64 nonzero", int64(7), true},
		{"int64 zero", int64(0), false},
		{"bytes one", []byte{1}, true},
		{"bytes zero", []byte{0}, false},
		{"unrecognized", "nonsense", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bool(tt.in); got != tt.want {
				t.Errorf("Bool(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInt32ClampsOnOverflowAndUnderflow(t *testing.T) {
	if got := Int32(int64(5)); got != 5 {
		t.Errorf("Int32(5) = %d, want 5", got)
	}
	if got := Int32(int64(1) << 40); got != int32(^uint32(0)>>1) {
		t.Errorf("Int32(overflow) = %d, want max int32", got)
	}
	if got := Int32(int64(-1) << 40); got != int32(-1<<31) {
		t.Errorf("Int32(underflow) = %d, want min int32", got)
	}
	if got := Int32("nonsense"); got != 0 {
		t.Errorf("Int32(non-integer) = %d, want 0", got)
	}
}

func TestInt64PassesThroughSupportedKinds(t *testing.T) {
	if got := Int64(int64(9)); got != 9 {
		t.Errorf("Int64(int64) = %d, want 9", got)
	}
	if got := Int64(int32(9)); got != 9 {
		t.Errorf("Int64(int32) = %d, want 9", got)
	}
	if got := Int64(9); got != 9 {
		t.Errorf("Int64(int) = %d, want 9", got)
	}
	if got := Int64(float64(9)); got != 9 {
		t.Errorf("Int64(float64) = %d, want 9", got)
	}
	if got := Int64("nonsense"); got != 0 {
		t.Errorf("Int64(non-integer) = %d, want 0", got)
	}
}

func TestText(t *testing.T) {
	if got := Text("hello"); got != "hello" {
		t.Errorf("Text(string) = %q, want hello", got)
	}
	if got := Text([]byte("hello")); got != "hello" {
		t.Errorf("Text([]byte) = %q, want hello", got)
	}
	if got := Text(nil); got != "" {
		t.Errorf("Text(nil) = %q, want empty", got)
	}
	if got := Text(42); got != "" {
		t.Errorf("Text(int) = %q, want empty", got)
	}
}

func TestBytea(t *testing.T) {
	if got := Bytea([]byte{1, 2, 3}); len(got) != 3 {
		t.Errorf("Bytea([]byte) len = %d, want 3", len(got))
	}
	if got := Bytea(nil); got != nil {
		t.Errorf("Bytea(nil) = %v, want nil", got)
	}
	if got := Bytea(42); got != nil {
		t.Errorf("Bytea(int) = %v, want nil", got)
	}
}

func TestIPv4FromIntegerColumn(t *testing.T) {
	got := IPv4(int64(0x01020304))
	want := net.IPv4(1, 2, 3, 4).To4()
	if !got.Equal(want) {
		t.Errorf("IPv4(int64) = %v, want %v", got, want)
	}
}

func TestIPv4FromByteColumn(t *testing.T) {
	got := IPv4([]byte{10, 0, 0, 1})
	want := net.IPv4(10, 0, 0, 1).To4()
	if !got.Equal(want) {
		t.Errorf("IPv4([]byte) = %v, want %v", got, want)
	}
}

func TestIPv4DefaultsToZeroOnBadInput(t *testing.T) {
	if got := IPv4("nonsense"); !got.Equal(net.IPv4zero) {
		t.Errorf("IPv4(bad) = %v, want IPv4zero", got)
	}
}

func TestTimestamp(t *testing.T) {
	got := Timestamp(int64(1700000000))
	want := time.Unix(1700000000, 0).UTC()
	if !got.Equal(want) {
		t.Errorf("Timestamp() = %v, want %v", got, want)
	}
	if got := Timestamp("nonsense"); !got.IsZero() {
		t.Errorf("Timestamp(bad) = %v, want zero time", got)
	}
}

func TestInterval(t *testing.T) {
	if got := Interval(int64(90)); got != 90*time.Second {
		t.Errorf("Interval(90) = %v, want 90s", got)
	}
	if got := Interval("nonsense"); got != 0 {
		t.Errorf("Interval(bad) = %v, want 0", got)
	}
}

func TestNullInt32(t *testing.T) {
	if v, ok := NullInt32(nil); ok || v != 0 {
		t.Errorf("NullInt32(nil) = (%d, %v), want (0, false)", v, ok)
	}
	if v, ok := NullInt32(int64(5)); !ok || v != 5 {
		t.Errorf("NullInt32(5) = (%d, %v), want (5, true)", v, ok)
	}
}

func TestErrNoRows(t *testing.T) {
	if !ErrNoRows(sql.ErrNoRows) {
		t.Error("ErrNoRows(sql.ErrNoRows) = false, want true")
	}
	if ErrNoRows(nil) {
		t.Error("ErrNoRows(nil) = true, want false")
	}
}
