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

package authgate

import (
	"testing"

	"github.com/Nottinghster/tibia-querymanager/internal/queryobj"
	"github.com/Nottinghster/tibia-querymanager/internal/wire"
)

func TestAllowedGameWhitelistAcceptsBusinessQueries(t *testing.T) {
	cases := []queryobj.Type{
		queryobj.TypeLoginGame,
		queryobj.TypeBanishAccount,
		queryobj.TypeFinishAuctions,
		queryobj.TypeGetWorlds,
	}
	for _, typ := range cases {
		if !Allowed(queryobj.AppGame, typ) {
			t.Errorf("Allowed(AppGame, %v) = false, want true", typ)
		}
	}
}

func TestAllowedLoginWhitelistIsNarrow(t *testing.T) {
	if !Allowed(queryobj.AppLogin, queryobj.TypeLoginAccount) {
		t.Error("Allowed(AppLogin, TypeLoginAccount) = false, want true")
	}
	if Allowed(queryobj.AppLogin, queryobj.TypeBanishAccount) {
		t.Error("Allowed(AppLogin, TypeBanishAccount) = true, want false")
	}
	if Allowed(queryobj.AppLogin, queryobj.TypeGetWorlds) {
		t.Error("Allowed(AppLogin, TypeGetWorlds) = true, want false")
	}
}

func TestAllowedWebWhitelistExcludesGameOnlyQueries(t *testing.T) {
	if !Allowed(queryobj.AppWeb, queryobj.TypeGetWorlds) {
		t.Error("Allowed(AppWeb, TypeGetWorlds) = false, want true")
	}
	if Allowed(queryobj.AppWeb, queryobj.TypeBanishAccount) {
		t.Error("Allowed(AppWeb, TypeBanishAccount) = true, want false")
	}
	if Allowed(queryobj.AppWeb, queryobj.TypeLoginGame) {
		t.Error("Allowed(AppWeb, TypeLoginGame) = true, want false")
	}
}

func TestAllowedUnknownApplicationTypeIsRefused(t *testing.T) {
	if Allowed(queryobj.ApplicationType(99), queryobj.TypeGetWorlds) {
		t.Error("Allowed(unknown app type, ...) = true, want false")
	}
}

func TestParseLoginGameIncludesWorldName(t *testing.T) {
	w := wire.NewWriter(make([]byte, 128))
	w.WriteByte(byte(queryobj.AppGame))
	w.WriteString("hunter2")
	w.WriteString("Antica")
	if w.Overflowed() {
		t.Fatal("writer overflowed while building fixture")
	}

	r := wire.NewReader(w.Bytes())
	req, ok := ParseLogin(r)
	if !ok {
		t.Fatal("ParseLogin() ok = false")
	}
	if req.AppType != queryobj.AppGame {
		t.Errorf("AppType = %v, want AppGame", req.AppType)
	}
	if req.Password != "hunter2" {
		t.Errorf("Password = %q, want %q", req.Password, "hunter2")
	}
	if req.WorldName != "Antica" {
		t.Errorf("WorldName = %q, want %q", req.WorldName, "Antica")
	}
}

func TestParseLoginNonGameHasNoWorldName(t *testing.T) {
	w := wire.NewWriter(make([]byte, 64))
	w.WriteByte(byte(queryobj.AppWeb))
	w.WriteString("hunter2")

	r := wire.NewReader(w.Bytes())
	req, ok := ParseLogin(r)
	if !ok {
		t.Fatal("ParseLogin() ok = false")
	}
	if req.AppType != queryobj.AppWeb {
		t.Errorf("AppType = %v, want AppWeb", req.AppType)
	}
	if req.WorldName != "" {
		t.Errorf("WorldName = %q, want empty", req.WorldName)
	}
}

func TestParseLoginTruncatedPayloadFails(t *testing.T) {
	w := wire.NewWriter(make([]byte, 64))
	w.WriteByte(byte(queryobj.AppGame))
	// No password string written: the reader should run out of data.

	r := wire.NewReader(w.Bytes())
	if _, ok := ParseLogin(r); ok {
		t.Fatal("ParseLogin() ok = true for a truncated payload")
	}
}
