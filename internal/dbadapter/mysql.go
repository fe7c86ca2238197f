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

	_ "github.com/go-sql-driver/mysql"

	"github.com/Nottinghster/tibia-querymanager/internal/config"
)

func openMySQL(cfg config.NetworkDBConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=false&collation=utf8mb4_general_ci",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("dbadapter: open mysql: %w", err)
	}

	var value string
	if err := db.QueryRow("SELECT `Value` FROM `SchemaInfo` WHERE `Key` = 'VERSION'").Scan(&value); err != nil {
		db.Close()
		return nil, fmt.Errorf("dbadapter: mysql schema not initialized (missing SchemaInfo.VERSION): %w", err)
	}

	return db, nil
}
