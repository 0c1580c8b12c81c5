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

// Package statement builds per-filing income, balance, and cashflow rows
// from a company's normalized XBRL facts and the tag-mapping priority
// table, applying the EBITDA and accounting-identity fallbacks.
package statement

import (
	"time"

	"github.com/edgarpit/edgarpit/tagmap"
	"github.com/edgarpit/edgarpit/xbrl"
)

// Meta is the common row identity every statement row carries.
type Meta struct {
	Ticker    string
	CIK       string
	Accession string
	AsofDate  time.Time // filing's acceptance date
	PeriodEnd time.Time
	Source    string // always "edgar"
}

// Row is a single statement row: the common metadata plus every standard
// field this row resolved, keyed by standard_field name.
type Row struct {
	Meta   Meta
	Fields map[string]float64
}

func resolveAll(facts map[string][]xbrl.Fact, fields []string, periodEnd, cutoff time.Time) map[string]float64 {
	resolved := make(map[string]float64)
	byField := tagmap.ByField
	for _, field := range fields {
		mapping, ok := byField[field]
		if !ok {
			continue
		}
		if value, ok := tagmap.Resolve(facts, mapping, periodEnd, cutoff); ok {
			resolved[field] = value
		}
	}
	return resolved
}

var incomeFields = []string{
	"revenue", "cost_of_revenue", "gross_profit", "operating_expenses",
	"ebit", "ebitda", "interest_expense", "pretax_income",
	"income_tax_expense", "net_income", "eps_basic", "eps_diluted",
	"shares_basic", "shares_diluted",
}

// BuildIncomeRow resolves every income-statement field. If ebitda did not
// resolve directly but ebit and depreciation_amortization both did, it is
// derived as ebit + d&a. The d&a figure comes from the cashflow statement,
// so companies reporting D&A only there can see EBITDA values that differ
// from the income-statement presentation. Returns ok=false if nothing at
// all resolved.
func BuildIncomeRow(meta Meta, facts map[string][]xbrl.Fact, cutoff time.Time) (Row, bool) {
	fields := resolveAll(facts, incomeFields, meta.PeriodEnd, cutoff)

	if _, ok := fields["ebitda"]; !ok {
		ebit, hasEbit := fields["ebit"]
		if !hasEbit {
			if v, ok := tagmap.Resolve(facts, tagmap.ByField["ebit"], meta.PeriodEnd, cutoff); ok {
				ebit = v
				hasEbit = true
			}
		}

		da, hasDA := tagmap.Resolve(facts, tagmap.ByField["depreciation_amortization"], meta.PeriodEnd, cutoff)
		if hasEbit && hasDA {
			fields["ebitda"] = ebit + da
		}
	}

	if len(fields) == 0 {
		return Row{}, false
	}

	meta.Source = "edgar"
	return Row{Meta: meta, Fields: fields}, true
}

var balanceFields = []string{
	"cash_and_equivalents", "short_term_investments", "accounts_receivable",
	"inventory", "current_assets", "ppe_net", "goodwill", "intangibles",
	"total_assets", "accounts_payable", "short_term_debt",
	"current_liabilities", "long_term_debt", "total_liabilities",
	"common_equity", "retained_earnings", "total_equity",
}

// BuildBalanceRow resolves every balance-sheet field. If exactly one of
// {total_assets, total_liabilities, total_equity} is missing, it is
// computed from the other two via the accounting identity
// assets = liabilities + equity. Drops the row if all three are absent and
// nothing else resolved either.
func BuildBalanceRow(meta Meta, facts map[string][]xbrl.Fact, cutoff time.Time) (Row, bool) {
	fields := resolveAll(facts, balanceFields, meta.PeriodEnd, cutoff)

	assets, hasAssets := fields["total_assets"]
	liab, hasLiab := fields["total_liabilities"]
	equity, hasEquity := fields["total_equity"]

	missing := 0
	if !hasAssets {
		missing++
	}
	if !hasLiab {
		missing++
	}
	if !hasEquity {
		missing++
	}

	if missing == 1 {
		switch {
		case !hasAssets:
			fields["total_assets"] = liab + equity
		case !hasLiab:
			fields["total_liabilities"] = assets - equity
		case !hasEquity:
			fields["total_equity"] = assets - liab
		}
	}

	if !hasAssets && !hasLiab && !hasEquity && len(fields) == 0 {
		return Row{}, false
	}

	meta.Source = "edgar"
	return Row{Meta: meta, Fields: fields}, true
}

var cashflowFields = []string{
	"cfo", "capex", "cfi", "cff", "dividends_paid", "share_repurchases",
	"net_change_in_cash", "depreciation_amortization",
	"stock_based_compensation",
}

// BuildCashflowRow resolves every cashflow field, normalizing sign-flipped
// fields to positive magnitudes (capex, dividends_paid, share_repurchases
// are stored positive), and derives free_cash_flow = cfo - capex when both
// are present.
func BuildCashflowRow(meta Meta, facts map[string][]xbrl.Fact, cutoff time.Time) (Row, bool) {
	fields := resolveAll(facts, cashflowFields, meta.PeriodEnd, cutoff)

	for _, signFlipped := range []string{"capex", "dividends_paid", "share_repurchases"} {
		if v, ok := fields[signFlipped]; ok {
			fields[signFlipped] = abs(v)
		}
	}

	if cfo, hasCFO := fields["cfo"]; hasCFO {
		if capex, hasCapex := fields["capex"]; hasCapex {
			fields["free_cash_flow"] = cfo - capex
		}
	}

	if len(fields) == 0 {
		return Row{}, false
	}

	meta.Source = "edgar"
	return Row{Meta: meta, Fields: fields}, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
