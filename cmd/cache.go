// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the on-disk HTTP response cache",
}

var cacheStatCmd = &cobra.Command{
	Use:   "stat",
	Short: "Print the number of entries and total size of the cache",
	Run: func(cmd *cobra.Command, args []string) {
		cache, err := newCache()
		if err != nil {
			log.Fatal().Err(err).Msg("could not open cache")
		}

		entries, totalBytes := cache.Stat()
		fmt.Printf("entries: %d\n", entries)
		fmt.Printf("total_bytes: %d\n", totalBytes)
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove every entry from the cache",
	Run: func(cmd *cobra.Command, args []string) {
		cache, err := newCache()
		if err != nil {
			log.Fatal().Err(err).Msg("could not open cache")
		}

		if err := cache.Purge(); err != nil {
			log.Fatal().Err(err).Msg("could not purge cache")
		}
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
}
