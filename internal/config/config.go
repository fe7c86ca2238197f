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

// Package config loads the query manager's configuration file with viper
// into a Config value that Load returns once at startup and that is passed
// by value everywhere else.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Backend identifies which relational database the adapter talks to.
type Backend string

const (
	BackendSQLite     Backend = "sqlite"
	BackendPostgreSQL Backend = "postgres"
	BackendMySQL      Backend = "mysql"
)

type SQLiteConfig struct {
	File                string
	MaxCachedStatements int
}

type NetworkDBConfig struct {
	Host                string
	Port                int
	DBName              string
	User                string
	Password            string
	MaxCachedStatements int
	SSLMode             string // postgres: disable/require/verify-full; mysql: true/false/skip-verify
}

type Config struct {
	Backend    Backend
	SQLite     SQLiteConfig
	Postgres   NetworkDBConfig
	MySQL      NetworkDBConfig

	MaxCachedHostNames int
	HostNameExpireTime int // milliseconds

	QueryManagerPort     int
	QueryManagerPassword string

	QueryWorkerThreads int
	QueryBufferSize    int
	QueryMaxAttempts   int

	MaxConnections        int
	MaxConnectionIdleTime int // milliseconds
}

// Default returns the configuration's baseline values, applied before a
// config file is read so every key has a sane value even in tests.
func Default() Config {
	return Config{
		Backend: BackendSQLite,
		SQLite: SQLiteConfig{
			File:                "queryserver.db",
			MaxCachedStatements: 64,
		},
		MaxCachedHostNames:    64,
		HostNameExpireTime:    10 * 60 * 1000,
		QueryManagerPort:      7174,
		QueryManagerPassword:  "",
		QueryWorkerThreads:    4,
		QueryBufferSize:       16 * 1024,
		QueryMaxAttempts:      3,
		MaxConnections:        256,
		MaxConnectionIdleTime: 60 * 1000,
	}
}

// Load reads a YAML/JSON/TOML config file (viper auto-detects by
// extension) at path, overlaying it onto Default(). An empty path only
// applies defaults plus QM_-prefixed environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("QM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("reading config %q: %w", path, err)
		}
	}

	cfg.Backend = Backend(v.GetString("backend"))
	if cfg.Backend == "" {
		cfg.Backend = BackendSQLite
	}

	cfg.SQLite.File = v.GetString("sqlite.file")
	cfg.SQLite.MaxCachedStatements = v.GetInt("sqlite.maxcachedstatements")

	cfg.Postgres = readNetworkDB(v, "postgres")
	cfg.MySQL = readNetworkDB(v, "mysql")

	cfg.MaxCachedHostNames = v.GetInt("maxcachedhostnames")
	cfg.HostNameExpireTime = v.GetInt("hostnameexpiretime")

	cfg.QueryManagerPort = v.GetInt("querymanagerport")
	cfg.QueryManagerPassword = v.GetString("querymanagerpassword")

	cfg.QueryWorkerThreads = v.GetInt("queryworkerthreads")
	cfg.QueryBufferSize = v.GetInt("querybuffersize")
	cfg.QueryMaxAttempts = v.GetInt("querymaxattempts")

	cfg.MaxConnections = v.GetInt("maxconnections")
	cfg.MaxConnectionIdleTime = v.GetInt("maxconnectionidletime")

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func readNetworkDB(v *viper.Viper, prefix string) NetworkDBConfig {
	return NetworkDBConfig{
		Host:                v.GetString(prefix + ".host"),
		Port:                v.GetInt(prefix + ".port"),
		DBName:              v.GetString(prefix + ".dbname"),
		User:                v.GetString(prefix + ".user"),
		Password:            v.GetString(prefix + ".password"),
		MaxCachedStatements: v.GetInt(prefix + ".maxcachedstatements"),
		SSLMode:             v.GetString(prefix + ".sslmode"),
	}
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("backend", string(d.Backend))
	v.SetDefault("sqlite.file", d.SQLite.File)
	v.SetDefault("sqlite.maxcachedstatements", d.SQLite.MaxCachedStatements)
	v.SetDefault("postgres.maxcachedstatements", 64)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("mysql.maxcachedstatements", 64)
	v.SetDefault("mysql.sslmode", "false")
	v.SetDefault("maxcachedhostnames", d.MaxCachedHostNames)
	v.SetDefault("hostnameexpiretime", d.HostNameExpireTime)
	v.SetDefault("querymanagerport", d.QueryManagerPort)
	v.SetDefault("querymanagerpassword", d.QueryManagerPassword)
	v.SetDefault("queryworkerthreads", d.QueryWorkerThreads)
	v.SetDefault("querybuffersize", d.QueryBufferSize)
	v.SetDefault("querymaxattempts", d.QueryMaxAttempts)
	v.SetDefault("maxconnections", d.MaxConnections)
	v.SetDefault("maxconnectionidletime", d.MaxConnectionIdleTime)
}

// Validate rejects configurations that would violate a core invariant,
// such as a statement cache above the hard ceiling.
func (c Config) Validate() error {
	const maxCachedStatementsCeiling = 9999

	switch c.Backend {
	case BackendSQLite, BackendPostgreSQL, BackendMySQL:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	if c.SQLite.MaxCachedStatements > maxCachedStatementsCeiling ||
		c.Postgres.MaxCachedStatements > maxCachedStatementsCeiling ||
		c.MySQL.MaxCachedStatements > maxCachedStatementsCeiling {
		return fmt.Errorf("MaxCachedStatements exceeds hard ceiling of %d", maxCachedStatementsCeiling)
	}

	if c.QueryBufferSize <= 0 {
		return fmt.Errorf("QueryBufferSize must be positive")
	}

	if c.MaxConnections <= 0 {
		return fmt.Errorf("MaxConnections must be positive")
	}

	if c.QueryWorkerThreads <= 0 {
		return fmt.Errorf("QueryWorkerThreads must be positive")
	}

	return nil
}
