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
package tagmap_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/edgarpit/edgarpit/tagmap"
	"github.com/edgarpit/edgarpit/xbrl"
	"github.com/edgarpit/edgarpit/xbrlcontext"
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

var _ = Describe("Table", func() {
	It("indexes every row by standard field exactly once", func() {
		Expect(tagmap.ByField).To(HaveLen(len(tagmap.Table)))
	})

	It("never leaves Tags empty for a row", func() {
		for _, row := range tagmap.Table {
			Expect(row.Tags).NotTo(BeEmpty(), row.StandardField)
		}
	})
})

var _ = Describe("Resolve", func() {
	It("falls through to the second tag when the first has no candidates", func() {
		mapping := tagmap.TagMapping{
			StandardField: "revenue",
			Tags:          []string{"us-gaap:Revenues", "us-gaap:SalesRevenueNet"},
			ContextType:   xbrlcontext.Duration,
		}

		facts := map[string][]xbrl.Fact{
			"us-gaap:SalesRevenueNet": {
				{Start: dp("2016-01-01"), End: d("2016-12-31"), Filed: d("2017-01-15"), Value: 1000},
			},
		}

		value, ok := tagmap.Resolve(facts, mapping, d("2016-12-31"), d("2017-03-01"))
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal(1000.0))
	})

	It("negates the value for a sign_flip field", func() {
		mapping := tagmap.TagMapping{
			StandardField: "capex",
			Tags:          []string{"us-gaap:PaymentsToAcquirePropertyPlantAndEquipment"},
			SignFlip:      true,
			ContextType:   xbrlcontext.Duration,
		}

		facts := map[string][]xbrl.Fact{
			"us-gaap:PaymentsToAcquirePropertyPlantAndEquipment": {
				{Start: dp("2016-01-01"), End: d("2016-12-31"), Filed: d("2017-01-15"), Value: 5000},
			},
		}

		value, ok := tagmap.Resolve(facts, mapping, d("2016-12-31"), d("2017-03-01"))
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal(-5000.0))
	})

	It("returns ok=false when no tag in the list resolves", func() {
		mapping := tagmap.TagMapping{
			StandardField: "revenue",
			Tags:          []string{"us-gaap:Revenues"},
		}

		value, ok := tagmap.Resolve(map[string][]xbrl.Fact{}, mapping, d("2016-12-31"), d("2017-03-01"))
		Expect(ok).To(BeFalse())
		Expect(value).To(Equal(0.0))
	})
})
