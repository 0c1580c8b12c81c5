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
package snapshot

import (
	"sort"

	"github.com/edgarpit/edgarpit/assemble"
	"github.com/edgarpit/edgarpit/schema"
)

// buildCoverageReport turns the per-ticker outcomes collected during Run
// into a CoverageReport: requested vs. found tickers, with each ticker's
// individual outcome available for callers that want finer detail than
// found/missing.
func buildCoverageReport(requested []string, outcomes map[string]TickerOutcome) CoverageReport {
	found := make([]string, 0, len(requested))
	missing := make([]string, 0)

	for _, t := range requested {
		outcome, ok := outcomes[t]
		if ok && outcome.Found {
			found = append(found, t)
		} else {
			missing = append(missing, t)
		}
	}

	sort.Strings(found)
	sort.Strings(missing)

	return CoverageReport{
		Requested: requested,
		Found:     found,
		Missing:   missing,
		PerTicker: outcomes,
	}
}

// fillStatementTable computes, per numeric (non-key, non-meta) column, the
// fraction of rows where that column resolved to a non-null value, and
// folds any column that resolved in zero rows into missingFields.
func fillStatementTable(t schema.Table, frame assemble.Frame, ratios map[string]float64, missingFields map[string]bool) {
	if len(frame.Rows) == 0 {
		return
	}

	skip := map[string]bool{
		"cik": true, "accession": true, "period_end": true,
		"ticker": true, "asof_date": true, "source": true,
	}

	for _, col := range t.Columns {
		if skip[col.Name] {
			continue
		}

		filled := 0
		for _, row := range frame.Rows {
			if row[col.Name] != nil {
				filled++
			}
		}

		ratio := float64(filled) / float64(len(frame.Rows))
		ratios[t.Name+"."+col.Name] = ratio
		if filled == 0 {
			missingFields[col.Name] = true
		}
	}
}

// summarizeFillRatios computes CoverageReport.FillRatios and MissingFields
// across every statement table in tables.
func summarizeFillRatios(tables assemble.Result) (map[string]float64, []string) {
	ratios := make(map[string]float64)
	missingFields := make(map[string]bool)

	fillStatementTable(schema.StatementsIncome, tables.StatementsIncome, ratios, missingFields)
	fillStatementTable(schema.StatementsBalance, tables.StatementsBalance, ratios, missingFields)
	fillStatementTable(schema.StatementsCashflow, tables.StatementsCashflow, ratios, missingFields)

	missing := make([]string, 0, len(missingFields))
	for f := range missingFields {
		missing = append(missing, f)
	}
	sort.Strings(missing)

	return ratios, missing
}
