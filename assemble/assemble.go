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

// Package assemble merges per-ticker statement row batches into the final
// per-table frames, fills missing columns with null, and computes the
// derived-metrics table from the joined income/balance/cashflow rows. A
// single consumer drains row batches fed by concurrent per-ticker
// producers; the sink is an in-memory table rather than a database write.
package assemble

import (
	"sort"
	"time"

	"github.com/edgarpit/edgarpit/schema"
	"github.com/edgarpit/edgarpit/statement"
)

// Frame is a schema-ordered, null-filled table: one map per row, every
// schema column present (nil when unresolved).
type Frame struct {
	Table schema.Table
	Rows  []schema.Row
}

// CompanyMasterRow is one row of the company_master table.
type CompanyMasterRow struct {
	Ticker         string
	CIK            string
	Name           string
	CompositeFIGI  string // empty when FIGI resolution missed
	SIC            string
	SICDescription string
	FiscalYearEnd  string
}

// Builder accumulates statement rows across tickers and assembles the final
// snapshot tables. Not safe for concurrent use -- callers funnel worker
// output through a single consumer goroutine.
type Builder struct {
	companyMaster []CompanyMasterRow
	filings       []schema.Row
	income        []statement.Row
	balance       []statement.Row
	cashflow      []statement.Row
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddCompanyMaster appends one resolved ticker's company_master row.
func (b *Builder) AddCompanyMaster(row CompanyMasterRow) {
	b.companyMaster = append(b.companyMaster, row)
}

// AddFiling appends one filings-table row.
func (b *Builder) AddFiling(row schema.Row) {
	b.filings = append(b.filings, row)
}

// AddIncome appends one statements_income row.
func (b *Builder) AddIncome(row statement.Row) {
	b.income = append(b.income, row)
}

// AddBalance appends one statements_balance row.
func (b *Builder) AddBalance(row statement.Row) {
	b.balance = append(b.balance, row)
}

// AddCashflow appends one statements_cashflow row.
func (b *Builder) AddCashflow(row statement.Row) {
	b.cashflow = append(b.cashflow, row)
}

func metaRow(meta statement.Meta, fields map[string]float64) schema.Row {
	row := schema.Row{
		"ticker":     meta.Ticker,
		"cik":        meta.CIK,
		"accession":  meta.Accession,
		"asof_date":  meta.AsofDate,
		"period_end": meta.PeriodEnd,
		"source":     meta.Source,
	}
	for k, v := range fields {
		row[k] = v
	}
	return row
}

// toFrame fills every declared column of table (defaulting to nil) across
// rows, preserving column order as the single source of truth for
// serialization, then sorts rows by ticker so each ticker's rows are
// contiguous, descending by period_end within a ticker.
func toFrame(table schema.Table, rows []schema.Row) Frame {
	filled := make([]schema.Row, len(rows))
	for i, row := range rows {
		out := make(schema.Row, len(table.Columns))
		for _, col := range table.Columns {
			if v, ok := row[col.Name]; ok {
				out[col.Name] = v
			} else {
				out[col.Name] = nil
			}
		}
		filled[i] = out
	}

	sort.SliceStable(filled, func(i, j int) bool {
		ti, _ := filled[i]["ticker"].(string)
		tj, _ := filled[j]["ticker"].(string)
		if ti != tj {
			return ti < tj
		}
		pi, _ := filled[i]["period_end"].(time.Time)
		pj, _ := filled[j]["period_end"].(time.Time)
		return pi.After(pj)
	})

	return Frame{Table: table, Rows: filled}
}
