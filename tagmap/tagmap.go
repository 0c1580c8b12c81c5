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

// Package tagmap holds the static standard-field-to-XBRL-tag priority
// table and resolves a single best value for each standard field from a
// company's normalized fact lists.
package tagmap

import (
	"time"

	"github.com/edgarpit/edgarpit/xbrl"
	"github.com/edgarpit/edgarpit/xbrlcontext"
)

// TagMapping is one immutable row of the priority table: a standard field
// name, its candidate XBRL tags in priority order (first match wins), and
// how to interpret what comes back.
type TagMapping struct {
	StandardField string
	Tags          []string // fully-qualified "<namespace>:<tag>"
	SignFlip      bool
	ContextType   xbrlcontext.ContextType
}

// Table is the immutable priority table, built once at package init and
// never mutated. Order within a field's Tags list matters: the first tag
// with a resolvable fact wins.
var Table = []TagMapping{
	// Income / duration
	{StandardField: "revenue", Tags: []string{"us-gaap:Revenues", "us-gaap:RevenueFromContractWithCustomerExcludingAssessedTax", "us-gaap:SalesRevenueNet"}, ContextType: xbrlcontext.Duration},
	{StandardField: "cost_of_revenue", Tags: []string{"us-gaap:CostOfRevenue", "us-gaap:CostOfGoodsAndServicesSold"}, ContextType: xbrlcontext.Duration},
	{StandardField: "gross_profit", Tags: []string{"us-gaap:GrossProfit"}, ContextType: xbrlcontext.Duration},
	{StandardField: "operating_expenses", Tags: []string{"us-gaap:OperatingExpenses", "us-gaap:CostsAndExpenses"}, ContextType: xbrlcontext.Duration},
	{StandardField: "ebit", Tags: []string{"us-gaap:OperatingIncomeLoss"}, ContextType: xbrlcontext.Duration},
	{StandardField: "ebitda", Tags: []string{"us-gaap:EarningsBeforeInterestTaxesDepreciationAndAmortization"}, ContextType: xbrlcontext.Duration},
	{StandardField: "interest_expense", Tags: []string{"us-gaap:InterestExpense", "us-gaap:InterestExpenseDebt"}, ContextType: xbrlcontext.Duration},
	{StandardField: "pretax_income", Tags: []string{"us-gaap:IncomeLossFromContinuingOperationsBeforeIncomeTaxesExtraordinaryItemsNoncontrollingInterest"}, ContextType: xbrlcontext.Duration},
	{StandardField: "income_tax_expense", Tags: []string{"us-gaap:IncomeTaxExpenseBenefit"}, ContextType: xbrlcontext.Duration},
	{StandardField: "net_income", Tags: []string{"us-gaap:NetIncomeLoss", "us-gaap:ProfitLoss"}, ContextType: xbrlcontext.Duration},
	{StandardField: "eps_basic", Tags: []string{"us-gaap:EarningsPerShareBasic"}, ContextType: xbrlcontext.Duration},
	{StandardField: "eps_diluted", Tags: []string{"us-gaap:EarningsPerShareDiluted"}, ContextType: xbrlcontext.Duration},
	{StandardField: "shares_basic", Tags: []string{"us-gaap:WeightedAverageNumberOfSharesOutstandingBasic"}, ContextType: xbrlcontext.Duration},
	{StandardField: "shares_diluted", Tags: []string{"us-gaap:WeightedAverageNumberOfDilutedSharesOutstanding"}, ContextType: xbrlcontext.Duration},

	// Balance / instant
	{StandardField: "cash_and_equivalents", Tags: []string{"us-gaap:CashAndCashEquivalentsAtCarryingValue"}, ContextType: xbrlcontext.Instant},
	{StandardField: "short_term_investments", Tags: []string{"us-gaap:ShortTermInvestments"}, ContextType: xbrlcontext.Instant},
	{StandardField: "accounts_receivable", Tags: []string{"us-gaap:AccountsReceivableNetCurrent"}, ContextType: xbrlcontext.Instant},
	{StandardField: "inventory", Tags: []string{"us-gaap:InventoryNet"}, ContextType: xbrlcontext.Instant},
	{StandardField: "current_assets", Tags: []string{"us-gaap:AssetsCurrent"}, ContextType: xbrlcontext.Instant},
	{StandardField: "ppe_net", Tags: []string{"us-gaap:PropertyPlantAndEquipmentNet"}, ContextType: xbrlcontext.Instant},
	{StandardField: "goodwill", Tags: []string{"us-gaap:Goodwill"}, ContextType: xbrlcontext.Instant},
	{StandardField: "intangibles", Tags: []string{"us-gaap:IntangibleAssetsNetExcludingGoodwill", "us-gaap:FiniteLivedIntangibleAssetsNet"}, ContextType: xbrlcontext.Instant},
	{StandardField: "total_assets", Tags: []string{"us-gaap:Assets"}, ContextType: xbrlcontext.Instant},
	{StandardField: "accounts_payable", Tags: []string{"us-gaap:AccountsPayableCurrent"}, ContextType: xbrlcontext.Instant},
	{StandardField: "short_term_debt", Tags: []string{"us-gaap:ShortTermBorrowings", "us-gaap:DebtCurrent"}, ContextType: xbrlcontext.Instant},
	{StandardField: "current_liabilities", Tags: []string{"us-gaap:LiabilitiesCurrent"}, ContextType: xbrlcontext.Instant},
	{StandardField: "long_term_debt", Tags: []string{"us-gaap:LongTermDebtNoncurrent", "us-gaap:LongTermDebt"}, ContextType: xbrlcontext.Instant},
	{StandardField: "total_liabilities", Tags: []string{"us-gaap:Liabilities"}, ContextType: xbrlcontext.Instant},
	{StandardField: "common_equity", Tags: []string{"us-gaap:CommonStockValue"}, ContextType: xbrlcontext.Instant},
	{StandardField: "retained_earnings", Tags: []string{"us-gaap:RetainedEarningsAccumulatedDeficit"}, ContextType: xbrlcontext.Instant},
	{StandardField: "total_equity", Tags: []string{"us-gaap:StockholdersEquity", "us-gaap:StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest"}, ContextType: xbrlcontext.Instant},

	// Cashflow / duration
	{StandardField: "cfo", Tags: []string{"us-gaap:NetCashProvidedByUsedInOperatingActivities"}, ContextType: xbrlcontext.Duration},
	{StandardField: "capex", Tags: []string{"us-gaap:PaymentsToAcquirePropertyPlantAndEquipment"}, SignFlip: true, ContextType: xbrlcontext.Duration},
	{StandardField: "cfi", Tags: []string{"us-gaap:NetCashProvidedByUsedInInvestingActivities"}, ContextType: xbrlcontext.Duration},
	{StandardField: "cff", Tags: []string{"us-gaap:NetCashProvidedByUsedInFinancingActivities"}, ContextType: xbrlcontext.Duration},
	{StandardField: "dividends_paid", Tags: []string{"us-gaap:PaymentsOfDividends", "us-gaap:PaymentsOfDividendsCommonStock"}, SignFlip: true, ContextType: xbrlcontext.Duration},
	{StandardField: "share_repurchases", Tags: []string{"us-gaap:PaymentsForRepurchaseOfCommonStock"}, SignFlip: true, ContextType: xbrlcontext.Duration},
	{StandardField: "net_change_in_cash", Tags: []string{"us-gaap:CashAndCashEquivalentsPeriodIncreaseDecrease", "us-gaap:CashPeriodIncreaseDecrease"}, ContextType: xbrlcontext.Duration},
	{StandardField: "depreciation_amortization", Tags: []string{"us-gaap:DepreciationDepletionAndAmortization", "us-gaap:DepreciationAmortizationAndAccretionNet"}, ContextType: xbrlcontext.Duration},
	{StandardField: "stock_based_compensation", Tags: []string{"us-gaap:ShareBasedCompensation"}, ContextType: xbrlcontext.Duration},
}

// ByField indexes Table by standard field name for O(1) lookup.
var ByField = func() map[string]TagMapping {
	m := make(map[string]TagMapping, len(Table))
	for _, row := range Table {
		m[row.StandardField] = row
	}
	return m
}()

// Resolve finds the best value for one standard field: it walks the
// field's tag list in priority order, applying the period-type filter and
// best-fact selection for each, returning the first match. SignFlip rows
// have their resolved value negated.
func Resolve(facts map[string][]xbrl.Fact, mapping TagMapping, periodEnd time.Time, cutoff time.Time) (float64, bool) {
	for _, tag := range mapping.Tags {
		candidates, ok := facts[tag]
		if !ok || len(candidates) == 0 {
			continue
		}

		filtered := xbrlcontext.FilterByPeriodType(candidates, mapping.ContextType)
		fact, ok := xbrlcontext.BestFact(filtered, periodEnd, cutoff)
		if !ok {
			continue
		}

		value := fact.Value
		if mapping.SignFlip {
			value = -value
		}
		return value, true
	}

	return 0, false
}
