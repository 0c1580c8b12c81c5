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
package schema

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
)

// Row is a loosely-typed table row: column name to value, where a missing
// key and an explicit nil both mean "null". Statement rows carry float64
// values; key columns (cik, accession, ticker, ...) carry strings.
type Row map[string]any

// ValidationViolation names one row/column constraint failure.
type ValidationViolation struct {
	Table  string
	Column string
	Detail string
}

func (v ValidationViolation) String() string {
	return fmt.Sprintf("%s.%s: %s", v.Table, v.Column, v.Detail)
}

// ValidationError collects every violation found in one table.
type ValidationError struct {
	Violations []ValidationViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%v: %s", ErrSchemaValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Validate checks rows against table's required-column, key-uniqueness, and
// non-null constraints. When strict is true, any violation is returned as a
// *ValidationError. When false, violations are logged as warnings and nil is
// returned.
func Validate(table Table, rows []Row, strict bool) error {
	var violations []ValidationViolation

	required := make(map[string]bool)
	for _, c := range table.Columns {
		if c.Required {
			required[c.Name] = true
		}
	}

	keyCols := table.KeyColumns()
	seenKeys := make(map[string]bool)

	for i, row := range rows {
		for col := range required {
			if isNull(row[col]) {
				violations = append(violations, ValidationViolation{
					Table:  table.Name,
					Column: col,
					Detail: fmt.Sprintf("row %d: required column is null", i),
				})
			}
		}

		if len(keyCols) > 0 {
			key := rowKey(row, keyCols)
			if seenKeys[key] {
				violations = append(violations, ValidationViolation{
					Table:  table.Name,
					Column: strings.Join(keyCols, ","),
					Detail: fmt.Sprintf("row %d: duplicate key %q", i, key),
				})
			}
			seenKeys[key] = true
		}
	}

	if len(violations) == 0 {
		return nil
	}

	if !strict {
		for _, v := range violations {
			log.Warn().Str("table", table.Name).Str("column", v.Column).Msg(v.Detail)
		}
		return nil
	}

	return &ValidationError{Violations: violations}
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(float64); ok {
		return math.IsNaN(f)
	}
	return false
}

func rowKey(row Row, cols []string) string {
	var b strings.Builder
	for _, c := range cols {
		fmt.Fprintf(&b, "%v\x1f", row[c])
	}
	return b.String()
}

const identityTolerance = 0.01

// IdentityOK implements the balance-sheet identity check: with all three
// totals present, |assets - (liab + equity)| / |assets| <= 0.01. Returns
// (ok, known=true); known is false when any total is missing, in which case
// the identity_ok column must be null rather than true or false.
func IdentityOK(assets, liabilities, equity float64, haveAll bool) (ok bool, known bool) {
	if !haveAll {
		return false, false
	}
	if assets == 0 {
		return false, true
	}
	return math.Abs(assets-(liabilities+equity))/math.Abs(assets) <= identityTolerance, true
}

// CashflowReconciles implements the cashflow reconciliation check:
// |cfo+cfi+cff - net_change_in_cash| <= max(0.01*max(|sum|, |reported|), 1_000_000).
// known is false when any of the four inputs is missing.
func CashflowReconciles(cfo, cfi, cff, netChangeInCash float64, haveAll bool) (ok bool, known bool) {
	if !haveAll {
		return false, false
	}
	sum := cfo + cfi + cff
	tolerance := math.Max(0.01*math.Max(math.Abs(sum), math.Abs(netChangeInCash)), 1_000_000)
	return math.Abs(sum-netChangeInCash) <= tolerance, true
}
