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

// Package cli wires the query manager's cobra commands.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "queryserver",
	Short: "loopback query manager for game/login/web clients",
}

func init() {
	rootCmd.AddCommand(startCmd)
}

// Execute runs the root command, returning any error cobra surfaces.
func Execute() error {
	return rootCmd.Execute()
}
