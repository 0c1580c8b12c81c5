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

// Package cik resolves stock tickers to SEC CIK numbers. It downloads the
// SEC's ticker registry once, lazily, and keeps it in memory for the life
// of the process: the registry changes slowly enough that per-call fetches
// would be wasted rate-limit budget.
package cik

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/alphadose/haxmap"
	"github.com/rs/zerolog/log"

	"github.com/edgarpit/edgarpit/httpclient"
)

// TickerRegistryURL is the SEC's bulk ticker-to-CIK mapping.
const TickerRegistryURL = "https://www.sec.gov/files/company_tickers.json"

// ErrCIKLookup is raised for a single unresolved ticker.
var ErrCIKLookup = fmt.Errorf("cik: lookup failed")

// Entry is one resolved ticker.
type Entry struct {
	Ticker string
	CIK    string // 10-digit, zero-padded
	Name   string
}

// registryEntry mirrors one object-valued entry in company_tickers.json,
// e.g. {"0": {"cik_str": 320193, "ticker": "AAPL", "title": "Apple Inc."}}.
type registryEntry struct {
	CIKStr int    `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// Resolver is a case-insensitive, lazily-loaded, concurrency-safe
// ticker→CIK map.
type Resolver struct {
	client      *httpclient.Client
	registryURL string

	loadOnce sync.Once
	loadErr  error
	byTicker *haxmap.Map[string, Entry]
}

// NewResolver constructs a Resolver against the real SEC ticker registry.
// The registry is not fetched until the first call to Resolve or
// ResolveMany.
func NewResolver(client *httpclient.Client) *Resolver {
	return NewResolverWithRegistryURL(client, TickerRegistryURL)
}

// NewResolverWithRegistryURL constructs a Resolver against an arbitrary
// registry URL, primarily so tests can point it at a mock server.
func NewResolverWithRegistryURL(client *httpclient.Client, registryURL string) *Resolver {
	return &Resolver{
		client:      client,
		registryURL: registryURL,
		byTicker:    haxmap.New[string, Entry](),
	}
}

func (r *Resolver) ensureLoaded(ctx context.Context) error {
	r.loadOnce.Do(func() {
		var raw map[string]registryEntry
		if err := r.client.GetJSON(ctx, r.registryURL, nil, &raw); err != nil {
			r.loadErr = fmt.Errorf("cik: download ticker registry: %w", err)
			return
		}

		for _, re := range raw {
			ticker := strings.ToUpper(strings.TrimSpace(re.Ticker))
			if ticker == "" {
				continue
			}
			r.byTicker.Set(ticker, Entry{
				Ticker: ticker,
				CIK:    fmt.Sprintf("%010d", re.CIKStr),
				Name:   re.Title,
			})
		}

		log.Debug().Int("tickers", len(raw)).Msg("loaded SEC ticker registry")
	})

	return r.loadErr
}

// Resolve looks up a single ticker, returning ErrCIKLookup if unknown.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (Entry, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return Entry{}, err
	}

	entry, ok := r.byTicker.Get(strings.ToUpper(strings.TrimSpace(ticker)))
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrCIKLookup, ticker)
	}

	return entry, nil
}

// ResolveMany resolves every ticker it can, silently skipping (and logging)
// any that are not found in the registry. The returned slice preserves the
// input order for found tickers.
func (r *Resolver) ResolveMany(ctx context.Context, tickers []string) ([]Entry, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	resolved := make([]Entry, 0, len(tickers))
	for _, t := range tickers {
		entry, err := r.Resolve(ctx, t)
		if err != nil {
			log.Warn().Str("ticker", t).Msg("ticker not found in SEC registry, skipping")
			continue
		}
		resolved = append(resolved, entry)
	}

	return resolved, nil
}
