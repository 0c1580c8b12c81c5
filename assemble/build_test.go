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
package assemble_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/edgarpit/edgarpit/assemble"
	"github.com/edgarpit/edgarpit/statement"
)

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	Expect(err).NotTo(HaveOccurred())
	return t
}

var _ = Describe("Builder.Build", func() {
	It("fills missing columns with null and sorts rows by ticker then period_end descending", func() {
		b := assemble.NewBuilder()
		meta1 := statement.Meta{Ticker: "AAPL", CIK: "0000320193", Accession: "a1", PeriodEnd: d("2015-12-31"), Source: "edgar"}
		meta2 := statement.Meta{Ticker: "AAPL", CIK: "0000320193", Accession: "a2", PeriodEnd: d("2016-12-31"), Source: "edgar"}
		b.AddIncome(statement.Row{Meta: meta1, Fields: map[string]float64{"revenue": 100}})
		b.AddIncome(statement.Row{Meta: meta2, Fields: map[string]float64{"revenue": 200}})

		result := b.Build(context.Background(), nil)
		Expect(result.StatementsIncome.Rows).To(HaveLen(2))
		Expect(result.StatementsIncome.Rows[0]["period_end"]).To(Equal(d("2016-12-31")))
		Expect(result.StatementsIncome.Rows[0]["cost_of_revenue"]).To(BeNil())
	})

	It("computes identity_ok on balance rows with all three totals present", func() {
		b := assemble.NewBuilder()
		meta := statement.Meta{Ticker: "AAPL", CIK: "0000320193", Accession: "a1", PeriodEnd: d("2016-12-31"), Source: "edgar"}
		b.AddBalance(statement.Row{Meta: meta, Fields: map[string]float64{
			"total_assets": 100_000_000, "total_liabilities": 80_000_000, "total_equity": 20_000_000,
		}})

		result := b.Build(context.Background(), nil)
		Expect(result.StatementsBalance.Rows[0]["identity_ok"]).To(Equal(true))
	})

	It("leaves identity_ok null when a total is missing", func() {
		b := assemble.NewBuilder()
		meta := statement.Meta{Ticker: "AAPL", CIK: "0000320193", Accession: "a1", PeriodEnd: d("2016-12-31"), Source: "edgar"}
		b.AddBalance(statement.Row{Meta: meta, Fields: map[string]float64{"total_assets": 100}})

		result := b.Build(context.Background(), nil)
		Expect(result.StatementsBalance.Rows[0]["identity_ok"]).To(BeNil())
	})

	It("joins income and balance rows for the same (cik, period_end) into one derived_metrics row", func() {
		b := assemble.NewBuilder()
		meta := statement.Meta{Ticker: "AAPL", CIK: "0000320193", Accession: "a1", PeriodEnd: d("2016-12-31"), Source: "edgar"}
		b.AddIncome(statement.Row{Meta: meta, Fields: map[string]float64{"net_income": 50, "revenue": 500}})
		b.AddBalance(statement.Row{Meta: meta, Fields: map[string]float64{"total_assets": 1000}})

		result := b.Build(context.Background(), nil)
		Expect(result.DerivedMetrics.Rows).To(HaveLen(1))
		Expect(result.DerivedMetrics.Rows[0]["net_margin"]).To(Equal(0.1))
		Expect(result.DerivedMetrics.Rows[0]["roa"]).To(Equal(0.05))
	})

	It("never divides by a zero or missing denominator", func() {
		b := assemble.NewBuilder()
		meta := statement.Meta{Ticker: "AAPL", CIK: "0000320193", Accession: "a1", PeriodEnd: d("2016-12-31"), Source: "edgar"}
		b.AddIncome(statement.Row{Meta: meta, Fields: map[string]float64{"net_income": 50, "revenue": 0}})

		result := b.Build(context.Background(), nil)
		Expect(result.DerivedMetrics.Rows[0]["net_margin"]).To(BeNil())
	})

	It("leaves composite_figi null when no resolver is supplied", func() {
		b := assemble.NewBuilder()
		b.AddCompanyMaster(assemble.CompanyMasterRow{Ticker: "AAPL", CIK: "0000320193", Name: "Apple Inc."})

		result := b.Build(context.Background(), nil)
		Expect(result.CompanyMaster.Rows[0]["composite_figi"]).To(BeNil())
	})
})
