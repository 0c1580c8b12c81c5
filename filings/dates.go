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
	"strings"
	"time"
)

// acceptanceLayouts are tried in order; SEC has used all four across its
// history of submissions responses.
var acceptanceLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"20060102150405",
	"2006-01-02",
}

// dateLayouts covers the plain calendar-date fields (filingDate, reportDate,
// filingFrom/filingTo).
var dateLayouts = []string{
	"2006-01-02",
	"20060102",
}

// parseAcceptance parses an acceptanceDateTime value, stripping a trailing
// "Z" designator to keep the result naive (no offset). Numeric offsets such
// as "+00:00" are not stripped; a value carrying one does not match any
// layout. An empty or fully unparsable value falls back to end-of-day on
// filingDate.
func parseAcceptance(raw string, filingDate time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, "Z")

	for _, layout := range acceptanceLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t
		}
	}

	return endOfDay(filingDate)
}

// parseCalendarDate parses a plain calendar date field, returning the zero
// time and false if unparsable.
func parseCalendarDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// endOfDay returns 23:59:59 on the same calendar day as t.
func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}

// cutoffBoundary is the instant at and before which a filing may be
// considered: 23:59:59 on the cutoff date.
func cutoffBoundary(cutoff time.Time) time.Time {
	return endOfDay(cutoff)
}

// canonicalAccession normalizes an 18-digit raw accession number (no
// separators) to the dashed NNNNNNNNNN-NN-NNNNNN form. Already-canonical
// input is returned unchanged.
func canonicalAccession(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "-") {
		return raw
	}
	if len(raw) != 18 {
		return raw
	}
	return fmt.Sprintf("%s-%s-%s", raw[0:10], raw[10:12], raw[12:18])
}
