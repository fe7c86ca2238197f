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
	"embed"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Nottinghster/tibia-querymanager/internal/config"
	"github.com/Nottinghster/tibia-querymanager/internal/logging"
)

//go:embed schemafiles/*.sql
var embeddedSchema embed.FS

// sqliteApplicationID is written into the database header's application_id
// pragma so a stray file opened by mistake is rejected up front rather than
// failing confusingly partway through an upgrade: the ASCII bytes "TiDB"
// (0x54694442).
const sqliteApplicationID = 0x54694442

func openSQLite(cfg config.SQLiteConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite", cfg.File)
	if err != nil {
		return nil, fmt.Errorf("dbadapter: open sqlite %q: %w", cfg.File, err)
	}

	if err := initSQLiteSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// initSQLiteSchema applies schema.sql on a fresh database (detected via
// user_version == 0 and application_id == 0) and then walks upgrade-<n>.sql files in order to bring
// an older database up to the current version, each step inside its own
// transaction and bumping user_version on success. The application_id
// pragma guards against running this against an unrelated SQLite file.
func initSQLiteSchema(db *sql.DB) error {
	var appID int
	if err := db.QueryRow(`PRAGMA application_id`).Scan(&appID); err != nil {
		return fmt.Errorf("dbadapter: read application_id: %w", err)
	}

	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("dbadapter: read user_version: %w", err)
	}

	if version == 0 && appID == 0 {
		schema, err := embeddedSchema.ReadFile("schemafiles/schema.sql")
		if err != nil {
			return fmt.Errorf("dbadapter: read embedded schema.sql: %w", err)
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(schema)); err != nil {
			tx.Rollback()
			return fmt.Errorf("dbadapter: apply schema.sql: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		if _, err := db.Exec(fmt.Sprintf(`PRAGMA application_id = %d`, sqliteApplicationID)); err != nil {
			return err
		}
		if _, err := db.Exec(`PRAGMA user_version = 1`); err != nil {
			return err
		}
		version = 1
	} else if appID != sqliteApplicationID {
		return fmt.Errorf("dbadapter: %s is not a query manager database (application_id mismatch)", "sqlite file")
	}

	for {
		name := fmt.Sprintf("schemafiles/upgrade-%d.sql", version+1)
		upgrade, err := embeddedSchema.ReadFile(name)
		if err != nil {
			break
		}
		logging.WithField("version", version+1).Info("dbadapter: applying sqlite schema upgrade")
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(upgrade)); err != nil {
			tx.Rollback()
			return fmt.Errorf("dbadapter: apply %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		version++
		if _, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, version)); err != nil {
			return err
		}
	}

	return nil
}
