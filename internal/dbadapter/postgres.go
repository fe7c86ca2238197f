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
	"fmt"

	_ "github.com/lib/pq"

	"github.com/Nottinghster/tibia-querymanager/internal/config"
)

func openPostgres(cfg config.NetworkDBConfig) (*sql.DB, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.DBName, cfg.User, cfg.Password, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("dbadapter: open postgres: %w", err)
	}

	// Postgres deployments are expected to already carry the schema;
	// only check the version marker exists.
	var value string
	if err := db.QueryRow(`SELECT "Value" FROM "SchemaInfo" WHERE "Key" = 'VERSION'`).Scan(&value); err != nil {
		db.Close()
		return nil, fmt.Errorf("dbadapter: postgres schema not initialized (missing SchemaInfo.VERSION): %w", err)
	}

	return db, nil
}
