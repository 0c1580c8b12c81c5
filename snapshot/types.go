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

// Package snapshot composes the CIK resolver, filings index, XBRL fetcher,
// statement builders, and assembler into the top-level point-in-time
// snapshot pipeline, fanning tickers out across a bounded worker pool.
package snapshot

import (
	"time"

	"github.com/edgarpit/edgarpit/filings"
)

// Request describes one snapshot build.
type Request struct {
	Tickers           []string
	CutoffDate        time.Time
	PeriodType        filings.PeriodType
	IncludeAmendments bool
	AllowLTM          bool
	AllowEstimates    bool // must be false; checked at the top of the pipeline
	Validate          bool // schema.Validate strictness
	Workers           int  // worker pool size; defaults to 4 if <= 0
}

// TickerOutcome records one ticker's pipeline result for the coverage report.
type TickerOutcome struct {
	Ticker    string
	Found     bool
	Err       error
	StartTime time.Time
	EndTime   time.Time
	RowCount  int
}

// CoverageReport summarizes which tickers produced data and which did not.
type CoverageReport struct {
	Requested     []string
	Found         []string
	Missing       []string
	PerTicker     map[string]TickerOutcome
	MissingFields []string // fields with zero resolved values across every row
	FillRatios    map[string]float64
}
