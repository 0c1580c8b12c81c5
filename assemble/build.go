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

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/edgarpit/edgarpit/figi"
	"github.com/edgarpit/edgarpit/schema"
	"github.com/edgarpit/edgarpit/statement"
)

// Result is the full set of assembled, schema-ordered, null-filled tables.
type Result struct {
	CompanyMaster      Frame
	Filings            Frame
	StatementsIncome   Frame
	StatementsBalance  Frame
	StatementsCashflow Frame
	DerivedMetrics     Frame
}

type periodKey struct {
	cik       string
	periodEnd any
}

// Build assembles every accumulated row into the final tables. figiResolver
// may be nil (FIGI enrichment is skipped, not failed, when no resolver or no
// API key is configured).
func (b *Builder) Build(ctx context.Context, figiResolver *figi.Resolver) Result {
	companyMasterRows := make([]schema.Row, 0, len(b.companyMaster))
	for _, c := range b.companyMaster {
		compositeFIGI := c.CompositeFIGI
		if compositeFIGI == "" && figiResolver != nil {
			if v, ok := figiResolver.Resolve(ctx, c.Ticker); ok {
				compositeFIGI = v
			} else {
				log.Debug().Str("ticker", c.Ticker).Msg("assemble: FIGI enrichment missed, leaving composite_figi null")
			}
		}

		companyMasterRows = append(companyMasterRows, schema.Row{
			"ticker":          c.Ticker,
			"cik":             c.CIK,
			"name":            c.Name,
			"composite_figi":  nonEmpty(compositeFIGI),
			"sic":             nonEmpty(c.SIC),
			"sic_description": nonEmpty(c.SICDescription),
			"fiscal_year_end": nonEmpty(c.FiscalYearEnd),
		})
	}

	balanceRows := make([]schema.Row, 0, len(b.balance))
	for _, r := range b.balance {
		row := metaRow(r.Meta, r.Fields)
		assets, hasAssets := r.Fields["total_assets"]
		liab, hasLiab := r.Fields["total_liabilities"]
		equity, hasEquity := r.Fields["total_equity"]
		ok, known := schema.IdentityOK(assets, liab, equity, hasAssets && hasLiab && hasEquity)
		if known {
			row["identity_ok"] = ok
		}
		balanceRows = append(balanceRows, row)
	}

	cashflowRows := make([]schema.Row, 0, len(b.cashflow))
	for _, r := range b.cashflow {
		row := metaRow(r.Meta, r.Fields)
		cfo, hasCFO := r.Fields["cfo"]
		cfi, hasCFI := r.Fields["cfi"]
		cff, hasCFF := r.Fields["cff"]
		netChange, hasNetChange := r.Fields["net_change_in_cash"]
		ok, known := schema.CashflowReconciles(cfo, cfi, cff, netChange, hasCFO && hasCFI && hasCFF && hasNetChange)
		if known {
			row["reconciliation_ok"] = ok
		}
		cashflowRows = append(cashflowRows, row)
	}

	incomeRows := make([]schema.Row, 0, len(b.income))
	for _, r := range b.income {
		incomeRows = append(incomeRows, metaRow(r.Meta, r.Fields))
	}

	derived := joinDerivedMetrics(b.income, b.balance, b.cashflow)

	return Result{
		CompanyMaster:      toFrame(schema.CompanyMaster, companyMasterRows),
		Filings:            toFrame(schema.Filings, b.filings),
		StatementsIncome:   toFrame(schema.StatementsIncome, incomeRows),
		StatementsBalance:  toFrame(schema.StatementsBalance, balanceRows),
		StatementsCashflow: toFrame(schema.StatementsCashflow, cashflowRows),
		DerivedMetrics:     toFrame(schema.DerivedMetrics, derived),
	}
}

func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// joinDerivedMetrics keys each statement row by (cik, period_end) and
// computes one derived-metrics row per key present in any of the three
// statements.
func joinDerivedMetrics(income, balance, cashflow []statement.Row) []schema.Row {
	type joined struct {
		meta     statement.Meta
		income   map[string]float64
		balance  map[string]float64
		cashflow map[string]float64
	}

	byKey := make(map[periodKey]*joined)
	order := make([]periodKey, 0)

	ensure := func(meta statement.Meta) *joined {
		key := periodKey{cik: meta.CIK, periodEnd: meta.PeriodEnd}
		j, ok := byKey[key]
		if !ok {
			j = &joined{meta: meta}
			byKey[key] = j
			order = append(order, key)
		}
		return j
	}

	for _, r := range income {
		ensure(r.Meta).income = r.Fields
	}
	for _, r := range balance {
		ensure(r.Meta).balance = r.Fields
	}
	for _, r := range cashflow {
		ensure(r.Meta).cashflow = r.Fields
	}

	rows := make([]schema.Row, 0, len(order))
	for _, key := range order {
		j := byKey[key]
		metrics := derivedMetrics(j.income, j.balance, j.cashflow)
		row := schema.Row{
			"cik":        j.meta.CIK,
			"accession":  j.meta.Accession,
			"period_end": j.meta.PeriodEnd,
			"ticker":     j.meta.Ticker,
		}
		for k, v := range metrics {
			row[k] = v
		}
		rows = append(rows, row)
	}

	return rows
}
