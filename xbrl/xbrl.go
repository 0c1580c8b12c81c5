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

// Package xbrl fetches a company's XBRL companyfacts blob and flattens it
// into per-tag lists of normalized facts. The companyfacts response has no
// fixed schema across tags -- each concept is a dynamically-named object
// key -- so this package walks it with gjson rather than unmarshaling into
// a fixed struct.
package xbrl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/edgarpit/edgarpit/httpclient"
)

const companyFactsURLFmt = "https://data.sec.gov/api/xbrl/companyfacts/CIK%s.json"

// ErrXBRLParse is returned when a companyfacts response is not valid JSON.
var ErrXBRLParse = fmt.Errorf("xbrl: malformed companyfacts response")

// NamespaceAllowlist is the set of XBRL taxonomies the fetcher walks;
// everything else in the companyfacts blob (dei-adjacent custom extension
// taxonomies in particular) is ignored.
var NamespaceAllowlist = map[string]bool{
	"us-gaap":   true,
	"ifrs-full": true,
	"dei":       true,
}

// Fact is a single reported XBRL value.
type Fact struct {
	Tag       string
	Namespace string
	Value     float64
	Unit      string
	Start     *time.Time // nil => instant context
	End       time.Time
	Accession string
	Form      string
	Frame     string // empty => no frame label
	Filed     time.Time
}

// Fetcher downloads and normalizes companyfacts.
type Fetcher struct {
	client *httpclient.Client
}

// NewFetcher constructs a Fetcher.
func NewFetcher(client *httpclient.Client) *Fetcher {
	return &Fetcher{client: client}
}

// FetchFacts downloads the companyfacts blob for cik and returns every
// normalized fact, keyed by "<namespace>:<tag>".
func (f *Fetcher) FetchFacts(ctx context.Context, cik string) (map[string][]Fact, error) {
	url := fmt.Sprintf(companyFactsURLFmt, cik)

	body, err := f.client.GetRaw(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("xbrl: fetch companyfacts for CIK %s: %w", cik, err)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: companyfacts for CIK %s is not valid JSON", ErrXBRLParse, cik)
	}

	root := gjson.ParseBytes(body)
	facts := make(map[string][]Fact)

	root.Get("facts").ForEach(func(nsKey, nsVal gjson.Result) bool {
		ns := nsKey.String()
		if !NamespaceAllowlist[ns] {
			return true
		}

		nsVal.ForEach(func(tagKey, tagVal gjson.Result) bool {
			tag := tagKey.String()
			walkUnits(ns, tag, tagVal, facts)
			return true
		})

		return true
	})

	return facts, nil
}

func walkUnits(ns, tag string, tagVal gjson.Result, facts map[string][]Fact) {
	tagVal.Get("units").ForEach(func(unitKey, unitVal gjson.Result) bool {
		unit := unitKey.String()

		for _, entry := range unitVal.Array() {
			fact, ok := normalizeEntry(ns, tag, unit, entry)
			if !ok {
				continue
			}
			key := ns + ":" + tag
			facts[key] = append(facts[key], fact)
		}

		return true
	})
}

func normalizeEntry(ns, tag, unit string, entry gjson.Result) (Fact, bool) {
	valResult := entry.Get("val")
	if !valResult.Exists() || valResult.Type != gjson.Number {
		log.Debug().Str("tag", tag).Msg("xbrl: entry missing or non-numeric val, skipping")
		return Fact{}, false
	}

	end, ok := parseDate(entry.Get("end").String())
	if !ok {
		log.Debug().Str("tag", tag).Msg("xbrl: entry has unparsable end date, skipping")
		return Fact{}, false
	}

	filed, ok := parseDate(entry.Get("filed").String())
	if !ok {
		log.Debug().Str("tag", tag).Msg("xbrl: entry has unparsable filed date, skipping")
		return Fact{}, false
	}

	var start *time.Time
	if s, ok := parseDate(entry.Get("start").String()); ok {
		start = &s
	}

	return Fact{
		Tag:       tag,
		Namespace: ns,
		Value:     valResult.Float(),
		Unit:      unit,
		Start:     start,
		End:       end,
		Accession: entry.Get("accn").String(),
		Form:      entry.Get("form").String(),
		Frame:     entry.Get("frame").String(),
		Filed:     filed,
	}, true
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
