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

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Nottinghster/tibia-querymanager/internal/config"
	"github.com/Nottinghster/tibia-querymanager/internal/conntrack"
	"github.com/Nottinghster/tibia-querymanager/internal/logging"
	"github.com/Nottinghster/tibia-querymanager/internal/queue"
	"github.com/Nottinghster/tibia-querymanager/internal/worker"
)

var (
	configPath string
	logLevel   string
)

var startCmd = &cobra.Command{
	Use:     "start",
	Short:   "start the query manager",
	Example: "queryserver start --config queryserver.yaml",
	RunE:    runStart,
}

func init() {
	flags := startCmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to a YAML/JSON/TOML config file")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// runStart brings the manager up with workers first (so the queue always
// has consumers), then the connection listener. Shutdown also stops the
// workers first, then the listener.
func runStart(cmd *cobra.Command, args []string) error {
	logging.SetLevel(logLevel)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	q := queue.New(2 * cfg.MaxConnections)

	pool, err := worker.Start(cfg, q)
	if err != nil {
		return err
	}

	srv := conntrack.New(cfg, q)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	signal.Ignore(syscall.SIGPIPE)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve() }()

	select {
	case <-ctx.Done():
		logging.Info("queryserver: shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logging.WithField("error", err).Error("queryserver: listener exited")
		}
	}

	pool.Stop()
	srv.Stop()

	return nil
}
