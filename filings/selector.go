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
	"fmt"
	"sort"
	"time"
)

// Select groups a PIT-filtered record list by PeriodOfReport and picks one
// record per period: amendments preferred when present and allowed, then
// the latest AcceptanceDatetime within the chosen candidate set. Re-asserts
// the PIT gate as a defense-in-depth check.
func Select(records []FilingRecord, cutoff time.Time) ([]FilingRecord, error) {
	groups := make(map[time.Time][]FilingRecord)
	for _, r := range records {
		groups[r.PeriodOfReport] = append(groups[r.PeriodOfReport], r)
	}

	selected := make([]FilingRecord, 0, len(groups))
	for _, group := range groups {
		selected = append(selected, pickOne(group))
	}

	boundary := cutoffBoundary(cutoff)
	for _, r := range selected {
		if r.AcceptanceDatetime.After(boundary) {
			return nil, fmt.Errorf("%w: accession=%s acceptance=%s cutoff=%s",
				ErrCutoffViolation, r.Accession, r.AcceptanceDatetime, cutoff.Format("2006-01-02"))
		}
	}

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].PeriodOfReport.After(selected[j].PeriodOfReport)
	})

	return selected, nil
}

func pickOne(group []FilingRecord) FilingRecord {
	candidates := group

	hasAmendment := false
	for _, r := range group {
		if isAmendment(r.FormType) {
			hasAmendment = true
			break
		}
	}

	if hasAmendment {
		amendments := make([]FilingRecord, 0, len(group))
		for _, r := range group {
			if isAmendment(r.FormType) {
				amendments = append(amendments, r)
			}
		}
		candidates = amendments
	}

	best := candidates[0]
	for _, r := range candidates[1:] {
		if r.AcceptanceDatetime.After(best.AcceptanceDatetime) {
			best = r
		}
	}

	return best
}
