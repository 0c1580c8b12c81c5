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
package assemble

// div returns a/b, or (0, false) when b is zero or either input is absent.
// Every derived-metric division in this package goes through this helper so
// the null-on-zero-or-missing-denominator rule is enforced in one place.
func div(a float64, aok bool, b float64, bok bool) (float64, bool) {
	if !aok || !bok || b == 0 {
		return 0, false
	}
	return a / b, true
}

// derivedMetrics computes one derived_metrics row from a ticker-period's
// joined income/balance/cashflow fields.
func derivedMetrics(income, balance, cashflow map[string]float64) map[string]float64 {
	out := make(map[string]float64)

	get := func(m map[string]float64, key string) (float64, bool) {
		v, ok := m[key]
		return v, ok
	}

	revenue, hasRevenue := get(income, "revenue")
	ebit, hasEbit := get(income, "ebit")
	netIncome, hasNetIncome := get(income, "net_income")
	totalAssets, hasAssets := get(balance, "total_assets")
	totalEquity, hasEquity := get(balance, "total_equity")
	longTermDebt, hasLTD := get(balance, "long_term_debt")
	shortTermDebt, hasSTD := get(balance, "short_term_debt")
	cash, hasCash := get(balance, "cash_and_equivalents")
	currentAssets, hasCurrentAssets := get(balance, "current_assets")
	currentLiabilities, hasCurrentLiabilities := get(balance, "current_liabilities")
	inventory, hasInventory := get(balance, "inventory")
	interestExpense, hasInterestExpense := get(income, "interest_expense")
	freeCashFlow, hasFCF := get(cashflow, "free_cash_flow")

	if v, ok := div(ebit, hasEbit, revenue, hasRevenue); ok {
		out["ebit_margin"] = v
	}
	if v, ok := div(netIncome, hasNetIncome, revenue, hasRevenue); ok {
		out["net_margin"] = v
	}
	if v, ok := div(netIncome, hasNetIncome, totalAssets, hasAssets); ok {
		out["roa"] = v
	}
	if v, ok := div(netIncome, hasNetIncome, totalEquity, hasEquity); ok {
		out["roe"] = v
	}

	if hasLTD || hasSTD {
		debt := 0.0
		if hasLTD {
			debt += longTermDebt
		}
		if hasSTD {
			debt += shortTermDebt
		}
		cashComponent := 0.0
		if hasCash {
			cashComponent = cash
		}
		out["net_debt"] = debt - cashComponent
	}

	if v, ok := div(longTermDebt, hasLTD, totalEquity, hasEquity); ok {
		out["debt_to_equity"] = v
	}
	if v, ok := div(currentAssets, hasCurrentAssets, currentLiabilities, hasCurrentLiabilities); ok {
		out["current_ratio"] = v
	}
	if hasCurrentAssets && hasCurrentLiabilities {
		quickAssets := currentAssets
		if hasInventory {
			quickAssets -= inventory
		}
		if v, ok := div(quickAssets, true, currentLiabilities, true); ok {
			out["quick_ratio"] = v
		}
	}
	if v, ok := div(ebit, hasEbit, interestExpense, hasInterestExpense); ok {
		out["interest_coverage"] = v
	}
	if v, ok := div(freeCashFlow, hasFCF, revenue, hasRevenue); ok {
		out["fcf_margin"] = v
	}

	return out
}
