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

// Package healthping reports snapshot-run liveness to an operator-configured
// healthchecks.io URL. It is an ambient ops concern, not a correctness
// concern: a failed or skipped ping never fails a snapshot run.
package healthping

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// ErrStatus is returned when the ping endpoint answers with an unexpected
// status code.
var ErrStatus = errors.New("healthping: status code is invalid")

// Ping issues a one-shot success ping to the URL configured under
// healthcheck.ping_url. It no-ops (returning nil) when that key is unset,
// since the ping is optional ambient reporting, not a required collaborator.
func Ping(ctx context.Context) error {
	url := viper.GetString("healthcheck.ping_url")
	if url == "" {
		return nil
	}

	client := resty.New()
	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return fmt.Errorf("healthping: ping request: %w", err)
	}

	if resp.StatusCode() > 201 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}

// PingFailure reports a failed snapshot run by appending /fail to the
// configured ping URL, per healthchecks.io convention. It no-ops when no
// ping URL is configured, and logs rather than returns on transport errors,
// since callers invoke this on an already-failing path and should not
// have a reporting hiccup mask the real failure.
func PingFailure(ctx context.Context) {
	url := viper.GetString("healthcheck.ping_url")
	if url == "" {
		return
	}

	client := resty.New()
	resp, err := client.R().SetContext(ctx).Get(url + "/fail")
	if err != nil {
		log.Warn().Err(err).Msg("healthping: failure ping request failed")
		return
	}

	if resp.StatusCode() > 201 {
		log.Warn().Int("status", resp.StatusCode()).Msg("healthping: failure ping returned an error status")
	}
}
