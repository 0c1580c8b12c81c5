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
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/edgarpit/edgarpit/httpclient"
	"github.com/edgarpit/edgarpit/ratelimit"
)

func cacheRoot() (string, error) {
	root := viper.GetString("cache.root")
	if root != "" {
		return root, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cmd: resolve default cache root: %w", err)
	}
	return filepath.Join(home, ".cache", "edgarpit"), nil
}

func newCache() (*httpclient.Cache, error) {
	root, err := cacheRoot()
	if err != nil {
		return nil, err
	}

	maxBytes := viper.GetInt64("cache.max_bytes")
	return httpclient.NewCache(root, maxBytes)
}

func newClient() (*httpclient.Client, error) {
	cache, err := newCache()
	if err != nil {
		return nil, err
	}

	limiter, err := ratelimit.New(viper.GetFloat64("http.rate_limit_rps"))
	if err != nil {
		return nil, fmt.Errorf("cmd: construct rate limiter: %w", err)
	}

	return httpclient.New(viper.GetString("http.user_agent"), limiter, cache)
}
