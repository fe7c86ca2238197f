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
	"encoding/binary"
	"net"
	"time"

	"github.com/Nottinghster/tibia-querymanager/internal/logging"
)

// The helpers in this file convert driver-returned column values into the
// fixed Go types handlers actually want: a type mismatch is logged and
// answered with the type's zero value rather than aborting the query,
// since a column shape mismatch is a schema bug, not a request-shaped
// failure that should become FAILED.

// Bool converts a scanned value to bool, accepting bool, any integer kind,
// or a "0"/"1" byte slice (SQLite stores booleans as integers).
func Bool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case []byte:
		return len(t) == 1 && t[0] != 0 && t[0] != '0'
	default:
		if i, ok := asInt64(v); ok {
			return i != 0
		}
		logging.WithField("value", v).Warn("dbadapter: non-bool column value, defaulting to false")
		return false
	}
}

// Int32 converts a scanned value to int32, clamping (and warning) on
// overflow rather than wrapping.
func Int32(v interface{}) int32 {
	i, ok := asInt64(v)
	if !ok {
		logging.WithField("value", v).Warn("dbadapter: non-integer column value, defaulting to 0")
		return 0
	}
	if i > int64(^uint32(0)>>1) {
		logging.WithField("value", i).Warn("dbadapter: int32 column overflow, clamping")
		return int32(^uint32(0) >> 1)
	}
	if i < int64(-1<<31) {
		logging.WithField("value", i).Warn("dbadapter: int32 column underflow, clamping")
		return int32(-1 << 31)
	}
	return int32(i)
}

// Int64 converts a scanned value to int64.
func Int64(v interface{}) int64 {
	i, ok := asInt64(v)
	if !ok {
		logging.WithField("value", v).Warn("dbadapter: non-integer column value, defaulting to 0")
		return 0
	}
	return i
}

func asInt64(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}

// Text converts a scanned value to string, accepting both TEXT (string)
// and the []byte the SQLite and MySQL drivers often hand back instead.
func Text(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		logging.WithField("value", v).Warn("dbadapter: non-text column value, defaulting to empty string")
		return ""
	}
}

// Bytea returns the raw bytes of a BLOB/BYTEA column.
func Bytea(v interface{}) []byte {
	switch t := v.(type) {
	case []byte:
		return t
	case nil:
		return nil
	default:
		logging.WithField("value", v).Warn("dbadapter: non-bytea column value, defaulting to nil")
		return nil
	}
}

// IPv4 decodes a 4-byte big-endian column value into a net.IP, matching how
// the wire protocol and the handlers store addresses as raw uint32s.
func IPv4(v interface{}) net.IP {
	b := Bytea(v)
	if i, ok := asInt64(v); ok {
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(i))
		return net.IP(buf)
	}
	if len(b) == 4 {
		return net.IP(b)
	}
	return net.IPv4zero
}

// Timestamp converts a stored Unix-seconds integer column into a
// time.Time in UTC.
func Timestamp(v interface{}) time.Time {
	i, ok := asInt64(v)
	if !ok {
		logging.WithField("value", v).Warn("dbadapter: non-timestamp column value, defaulting to zero time")
		return time.Time{}
	}
	return time.Unix(i, 0).UTC()
}

// Interval converts a stored seconds-count column into a time.Duration.
func Interval(v interface{}) time.Duration {
	i, ok := asInt64(v)
	if !ok {
		logging.WithField("value", v).Warn("dbadapter: non-interval column value, defaulting to 0")
		return 0
	}
	return time.Duration(i) * time.Second
}

// NullInt32 is a convenience for OUTER JOIN columns that may be NULL.
func NullInt32(v interface{}) (int32, bool) {
	if v == nil {
		return 0, false
	}
	return Int32(v), true
}

// ErrNoRows reports whether err is the sentinel for "query matched no
// rows", so handlers can distinguish "not found" from a real DB failure.
func ErrNoRows(err error) bool { return err == sql.ErrNoRows }
