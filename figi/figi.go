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

// Package figi does best-effort ticker-to-composite-FIGI enrichment for
// company_master rows. A miss here is never fatal to a snapshot -- FIGI is
// a convenience identifier, not something PIT correctness depends on.
package figi

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/edgarpit/edgarpit/httpclient"
)

const mappingURL = "https://api.openfigi.com/v3/mapping"

type query struct {
	IDType  string `json:"idType"`
	IDValue string `json:"idValue"`
}

type mappingEntry struct {
	CompositeFIGI string `json:"compositeFIGI"`
}

type mappingResponse struct {
	Data []mappingEntry `json:"data"`
}

// Resolver resolves tickers to OpenFIGI composite FIGIs, caching every
// response (hit or miss) through the shared on-disk httpclient.Cache so a
// re-run never re-queries OpenFIGI for a ticker it has already seen.
type Resolver struct {
	apiKey  string
	cache   *httpclient.Cache
	limiter *rate.Limiter
	session *resty.Client
}

// NewResolver constructs a Resolver. apiKey may be empty (OpenFIGI allows
// unauthenticated requests at a lower rate).
func NewResolver(apiKey string, cache *httpclient.Cache) *Resolver {
	return &Resolver{
		apiKey:  apiKey,
		cache:   cache,
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 10), // ~4 req/s, OpenFIGI's unauthenticated ceiling
		session: resty.New(),
	}
}

// Resolve returns the composite FIGI for ticker, or ok=false on any
// failure -- network error, rate limit, or no match. Callers should treat
// this as a best-effort enrichment, never a hard dependency.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (string, bool) {
	key := httpclient.Key("POST", mappingURL, map[string]string{"ticker": ticker})

	if body, status, _, ok := r.cache.Get(key); ok {
		if status >= 400 {
			return "", false
		}
		figi, ok := parseFirstFIGI(body)
		return figi, ok
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return "", false
	}

	req := r.session.R().SetContext(ctx).
		SetBody([]query{{IDType: "TICKER", IDValue: ticker}})
	if r.apiKey != "" {
		req.SetHeader("X-OPENFIGI-APIKEY", r.apiKey)
	}

	resp, err := req.Post(mappingURL)
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("figi: OpenFIGI request failed")
		return "", false
	}

	if putErr := r.cache.Put(key, resp.Body(), resp.StatusCode(), "application/json"); putErr != nil {
		log.Warn().Err(putErr).Str("ticker", ticker).Msg("figi: could not cache OpenFIGI response")
	}

	if resp.StatusCode() >= 400 {
		log.Warn().Int("status", resp.StatusCode()).Str("ticker", ticker).Msg("figi: OpenFIGI returned an error status")
		return "", false
	}

	return parseFirstFIGI(resp.Body())
}

func parseFirstFIGI(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}

	var responses []mappingResponse
	if err := json.Unmarshal(body, &responses); err != nil {
		return "", false
	}

	for _, r := range responses {
		for _, entry := range r.Data {
			if entry.CompositeFIGI != "" {
				return entry.CompositeFIGI, true
			}
		}
	}

	return "", false
}
