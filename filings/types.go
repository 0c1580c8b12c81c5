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

// Package filings fetches a company's SEC filing history, applies the
// point-in-time cutoff gate, and selects exactly one filing per fiscal
// period.
package filings

import "time"

// PeriodType selects which forms the index and selector consider.
type PeriodType string

const (
	Annual     PeriodType = "annual"
	Quarterly  PeriodType = "quarterly"
	AllPeriods PeriodType = "all"
)

// FilingRecord identifies one SEC submission.
type FilingRecord struct {
	CIK                string // 10-digit, zero-padded
	Accession          string // canonical NNNNNNNNNN-NN-NNNNNN
	FormType           string
	FilingDate         time.Time
	AcceptanceDatetime time.Time
	PeriodOfReport     time.Time
	Ticker             string
}

var annualForms = map[string]bool{
	"10-K":    true,
	"10-K/A":  true,
	"10-KT":   true,
	"10-KT/A": true,
}

var quarterlyForms = map[string]bool{
	"10-Q":   true,
	"10-Q/A": true,
}

func isAmendment(form string) bool {
	return len(form) > 2 && form[len(form)-2:] == "/A"
}
