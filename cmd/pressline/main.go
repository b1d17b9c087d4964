// Copyright 2026 Pressline Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	"github.com/pressline/pressline/internal/engine/bootstrap"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "pressline",
	Short: "pressline runs the content pipeline engine",
	Long:  "pressline runs the content pipeline engine: task routing, daily scheduling and the delivery/ops HTTP surface.",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := bootstrap.Init(configFile)
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		// Run blocks until a shutdown signal and cleans up on its way out.
		app.Run()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "conf.d/config.toml", "config file path, e.g. --conf ./conf.d/config.toml")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
