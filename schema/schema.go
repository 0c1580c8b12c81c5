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

// Package schema is the single source of truth for output table shape: a
// named, versioned column-spec value per table, consulted by both the
// assembler (column order, null-fill) and the validators below. There is no
// database in this system, so a schema here is a Go value rather than a SQL
// DDL string.
package schema

import "errors"

// ErrSchemaValidation is raised when a table fails required-column,
// key-uniqueness, or non-null constraints under validate=true.
var ErrSchemaValidation = errors.New("schema: validation failed")

// Column describes one column of an output table.
type Column struct {
	Name     string
	Key      bool // part of the table's uniqueness key
	Required bool // must be present and non-null in every row
}

// Table is a named, ordered column list.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the table's columns in declared order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// KeyColumns returns the subset of columns forming the table's uniqueness key.
func (t Table) KeyColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if c.Key {
			names = append(names, c.Name)
		}
	}
	return names
}

func statementKey() []Column {
	return []Column{
		{Name: "cik", Key: true, Required: true},
		{Name: "accession", Key: true, Required: true},
		{Name: "period_end", Key: true, Required: true},
	}
}

func statementMeta() []Column {
	return append(statementKey(),
		Column{Name: "ticker", Required: true},
		Column{Name: "asof_date", Required: true},
		Column{Name: "source", Required: true},
	)
}

func optionalColumns(names ...string) []Column {
	cols := make([]Column, len(names))
	for i, n := range names {
		cols[i] = Column{Name: n}
	}
	return cols
}

// CompanyMaster is the company_master table's schema.
var CompanyMaster = Table{
	Name: "company_master",
	Columns: append([]Column{
		{Name: "ticker", Key: true, Required: true},
		{Name: "cik", Required: true},
		{Name: "name", Required: true},
	}, optionalColumns("composite_figi", "sic", "sic_description", "fiscal_year_end")...),
}

// Filings is the filings table's schema.
var Filings = Table{
	Name: "filings",
	Columns: []Column{
		{Name: "ticker", Required: true},
		{Name: "cik", Required: true},
		{Name: "accession", Key: true, Required: true},
		{Name: "form_type", Required: true},
		{Name: "filing_date", Required: true},
		{Name: "acceptance_datetime", Required: true},
		{Name: "period_of_report", Key: true, Required: true},
	},
}

// StatementsIncome is the statements_income table's schema.
var StatementsIncome = Table{
	Name: "statements_income",
	Columns: append(statementMeta(), optionalColumns(
		"revenue", "cost_of_revenue", "gross_profit", "operating_expenses",
		"ebit", "ebitda", "interest_expense", "pretax_income",
		"income_tax_expense", "net_income", "eps_basic", "eps_diluted",
		"shares_basic", "shares_diluted",
	)...),
}

// StatementsBalance is the statements_balance table's schema.
var StatementsBalance = Table{
	Name: "statements_balance",
	Columns: append(statementMeta(), optionalColumns(
		"cash_and_equivalents", "short_term_investments", "accounts_receivable",
		"inventory", "current_assets", "ppe_net", "goodwill", "intangibles",
		"total_assets", "accounts_payable", "short_term_debt",
		"current_liabilities", "long_term_debt", "total_liabilities",
		"common_equity", "retained_earnings", "total_equity", "identity_ok",
	)...),
}

// StatementsCashflow is the statements_cashflow table's schema.
var StatementsCashflow = Table{
	Name: "statements_cashflow",
	Columns: append(statementMeta(), optionalColumns(
		"cfo", "capex", "cfi", "cff", "dividends_paid", "share_repurchases",
		"net_change_in_cash", "depreciation_amortization",
		"stock_based_compensation", "free_cash_flow", "reconciliation_ok",
	)...),
}

// DerivedMetrics is the derived_metrics table's schema.
var DerivedMetrics = Table{
	Name: "derived_metrics",
	Columns: append(append(statementKey(), Column{Name: "ticker", Required: true}),
		optionalColumns(
			"ebit_margin", "net_margin", "roa", "roe", "net_debt", "debt_to_equity",
			"current_ratio", "quick_ratio", "interest_coverage", "fcf_margin",
		)...),
}
