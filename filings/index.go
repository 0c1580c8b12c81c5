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
package filings

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edgarpit/edgarpit/httpclient"
)

const submissionsURLFmt = "https://data.sec.gov/submissions/CIK%s.json"

// filingArrays mirrors the SEC submissions response's parallel-array shape.
// Fields the index doesn't consult are omitted.
type filingArrays struct {
	AccessionNumber    []string `json:"accessionNumber"`
	FilingDate         []string `json:"filingDate"`
	ReportDate         []string `json:"reportDate"`
	AcceptanceDateTime []string `json:"acceptanceDateTime"`
	Form               []string `json:"form"`
}

type filingFile struct {
	Name       string `json:"name"`
	FilingFrom string `json:"filingFrom"`
	FilingTo   string `json:"filingTo"`
}

type filingsData struct {
	Recent filingArrays `json:"recent"`
	Files  []filingFile `json:"files"`
}

type submissionsResponse struct {
	CIK     string      `json:"cik"`
	Filings filingsData `json:"filings"`
}

// Index fetches and applies the PIT gate to one CIK's filing history.
type Index struct {
	client *httpclient.Client
}

// NewIndex constructs an Index.
func NewIndex(client *httpclient.Client) *Index {
	return &Index{client: client}
}

// Fetch returns every FilingRecord for cik/ticker that survives the PIT
// gate and the period-type/amendment allowlist, sorted descending by
// PeriodOfReport. Returns ErrFilingNotFound if nothing survives.
func (idx *Index) Fetch(ctx context.Context, cik, ticker string, cutoff time.Time, periodType PeriodType, includeAmendments bool) ([]FilingRecord, error) {
	var primary submissionsResponse
	url := fmt.Sprintf(submissionsURLFmt, cik)
	if err := idx.client.GetJSON(ctx, url, nil, &primary); err != nil {
		return nil, fmt.Errorf("filings: fetch submissions for CIK %s: %w", cik, err)
	}

	records := fromArrays(cik, ticker, primary.Filings.Recent)

	boundary := cutoffBoundary(cutoff)

	for _, file := range primary.Filings.Files {
		if archiveNewerThan(file, boundary) {
			continue
		}

		archiveURL := "https://data.sec.gov/submissions/" + file.Name
		var archive filingArrays
		if err := idx.client.GetJSON(ctx, archiveURL, nil, &archive); err != nil {
			log.Warn().Err(err).Str("archive", file.Name).Str("cik", cik).Msg("could not fetch filings archive, skipping")
			continue
		}

		records = append(records, fromArrays(cik, ticker, archive)...)
	}

	records = applyPITGate(records, boundary)
	records = applyFormAllowlist(records, periodType, includeAmendments)

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: ticker=%s cutoff=%s", ErrFilingNotFound, ticker, cutoff.Format("2006-01-02"))
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].PeriodOfReport.After(records[j].PeriodOfReport)
	})

	return records, nil
}

// archiveNewerThan reports whether an archive's advertised date range is
// entirely after boundary, making it safe to skip. Unparsable or missing
// range fields never cause a skip: only a well-formed range that is
// provably entirely after the cutoff lets us avoid the fetch.
func archiveNewerThan(file filingFile, boundary time.Time) bool {
	from, ok := parseCalendarDate(file.FilingFrom)
	if !ok {
		return false
	}
	return from.After(boundary)
}

func fromArrays(cik, ticker string, fa filingArrays) []FilingRecord {
	count := len(fa.AccessionNumber)
	records := make([]FilingRecord, 0, count)

	for i := 0; i < count; i++ {
		if i >= len(fa.Form) {
			continue
		}

		var filingDate time.Time
		if i < len(fa.FilingDate) {
			if d, ok := parseCalendarDate(fa.FilingDate[i]); ok {
				filingDate = d
			}
		}

		var acceptance string
		if i < len(fa.AcceptanceDateTime) {
			acceptance = fa.AcceptanceDateTime[i]
		}

		var periodOfReport time.Time
		if i < len(fa.ReportDate) {
			if d, ok := parseCalendarDate(fa.ReportDate[i]); ok {
				periodOfReport = d
			}
		}

		records = append(records, FilingRecord{
			CIK:                cik,
			Ticker:             ticker,
			Accession:          canonicalAccession(fa.AccessionNumber[i]),
			FormType:           fa.Form[i],
			FilingDate:         filingDate,
			AcceptanceDatetime: parseAcceptance(acceptance, filingDate),
			PeriodOfReport:     periodOfReport,
		})
	}

	return records
}

// applyPITGate keeps only records whose acceptance falls at or before
// boundary. This is the central invariant: no later component may relax it.
func applyPITGate(records []FilingRecord, boundary time.Time) []FilingRecord {
	kept := make([]FilingRecord, 0, len(records))
	for _, r := range records {
		if r.AcceptanceDatetime.After(boundary) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func applyFormAllowlist(records []FilingRecord, periodType PeriodType, includeAmendments bool) []FilingRecord {
	kept := make([]FilingRecord, 0, len(records))
	for _, r := range records {
		if !includeAmendments && isAmendment(r.FormType) {
			continue
		}

		switch periodType {
		case Annual:
			if !annualForms[r.FormType] {
				continue
			}
		case Quarterly:
			if !quarterlyForms[r.FormType] {
				continue
			}
		case AllPeriods:
			if !annualForms[r.FormType] && !quarterlyForms[r.FormType] {
				continue
			}
		}

		kept = append(kept, r)
	}
	return kept
}
