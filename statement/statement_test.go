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
package statement_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/edgarpit/edgarpit/statement"
	"github.com/edgarpit/edgarpit/xbrl"
)

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	Expect(err).NotTo(HaveOccurred())
	return t
}

func dp(s string) *time.Time {
	t := d(s)
	return &t
}

var _ = Describe("BuildIncomeRow", func() {
	It("derives ebitda as ebit + d&a when ebitda is not directly reported", func() {
		periodEnd := d("2016-12-31")
		cutoff := d("2017-03-01")
		meta := statement.Meta{PeriodEnd: periodEnd}

		facts := map[string][]xbrl.Fact{
			"us-gaap:OperatingIncomeLoss": {
				{Start: dp("2016-01-01"), End: periodEnd, Filed: d("2017-01-15"), Value: 100},
			},
			"us-gaap:DepreciationDepletionAndAmortization": {
				{Start: dp("2016-01-01"), End: periodEnd, Filed: d("2017-01-15"), Value: 20},
			},
		}

		row, ok := statement.BuildIncomeRow(meta, facts, cutoff)
		Expect(ok).To(BeTrue())
		Expect(row.Fields["ebitda"]).To(Equal(120.0))
	})

	It("drops the row when nothing resolves", func() {
		meta := statement.Meta{PeriodEnd: d("2016-12-31")}
		_, ok := statement.BuildIncomeRow(meta, map[string][]xbrl.Fact{}, d("2017-03-01"))
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("BuildBalanceRow", func() {
	It("derives total_equity via the accounting identity when only it is missing", func() {
		periodEnd := d("2016-12-31")
		cutoff := d("2017-03-01")
		meta := statement.Meta{PeriodEnd: periodEnd}

		facts := map[string][]xbrl.Fact{
			"us-gaap:Assets": {
				{End: periodEnd, Filed: d("2017-01-15"), Value: 100_000_000},
			},
			"us-gaap:Liabilities": {
				{End: periodEnd, Filed: d("2017-01-15"), Value: 80_000_000},
			},
		}

		row, ok := statement.BuildBalanceRow(meta, facts, cutoff)
		Expect(ok).To(BeTrue())
		Expect(row.Fields["total_equity"]).To(Equal(20_000_000.0))
	})

	It("does not guess when all three totals and everything else is absent", func() {
		meta := statement.Meta{PeriodEnd: d("2016-12-31")}
		_, ok := statement.BuildBalanceRow(meta, map[string][]xbrl.Fact{}, d("2017-03-01"))
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("BuildCashflowRow", func() {
	It("normalizes capex to a positive magnitude and derives free_cash_flow", func() {
		periodEnd := d("2016-12-31")
		cutoff := d("2017-03-01")
		meta := statement.Meta{PeriodEnd: periodEnd}

		facts := map[string][]xbrl.Fact{
			"us-gaap:NetCashProvidedByUsedInOperatingActivities": {
				{Start: dp("2016-01-01"), End: periodEnd, Filed: d("2017-01-15"), Value: 1000},
			},
			"us-gaap:PaymentsToAcquirePropertyPlantAndEquipment": {
				{Start: dp("2016-01-01"), End: periodEnd, Filed: d("2017-01-15"), Value: 300},
			},
		}

		row, ok := statement.BuildCashflowRow(meta, facts, cutoff)
		Expect(ok).To(BeTrue())
		Expect(row.Fields["capex"]).To(Equal(300.0))
		Expect(row.Fields["free_cash_flow"]).To(Equal(700.0))
	})
})
