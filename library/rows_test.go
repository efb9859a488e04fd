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
package library

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvsnapshot/data"
)

func fundamentalsCell(row []any, name string) any {
	for idx, col := range data.FundamentalColumns {
		if col.Name == name {
			return row[idx]
		}
	}

	Fail("unknown fundamentals column " + name)
	return nil
}

var _ = Describe("COPY rows", func() {
	It("writes every constituent with its canonical symbol", func() {
		rows := constituentRows([]*data.Constituent{
			{Symbol: "AAA", Security: "Alpha", DateAdded: data.ParseCalendarDate("2001-01-02")},
			{Symbol: "BBB", Security: "Beta"},
		})

		Expect(rows).To(HaveLen(2))
		Expect(rows[0][0]).To(Equal("AAA"))
		Expect(rows[1][0]).To(Equal("BBB"))

		Expect(*rows[0][5].(*time.Time)).To(BeTemporally("==", time.Date(2001, 1, 2, 0, 0, 0, 0, time.UTC)))
		Expect(rows[1][5]).To(BeAssignableToTypeOf(&time.Time{}))
		Expect(rows[1][5].(*time.Time)).To(BeNil())
	})

	It("stores fields missing from a record as NULL and takes the symbol from the owning row", func() {
		columns := data.Columns{"symbol", "peRatio", "beta", "dividendDate"}
		aligned := data.Align(columns, &data.Fundamentals{
			Symbol: "AAA",
			Fields: []data.Field{
				{Name: "symbol", Value: "SOMETHING-ELSE"},
				{Name: "peRatio", Value: 12.5},
				{Name: "dividendDate", Value: "2024-02-15 00:00:00.0"},
			},
		})

		rows, err := fundamentalsRows([]data.FundamentalsRow{aligned})
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(1))

		row := rows[0]
		Expect(row).To(HaveLen(len(data.FundamentalColumns)))
		Expect(fundamentalsCell(row, "symbol")).To(Equal("AAA"))

		beta := fundamentalsCell(row, "beta")
		Expect(beta).To(BeAssignableToTypeOf((*float64)(nil)))
		Expect(beta.(*float64)).To(BeNil())

		peRatio := fundamentalsCell(row, "peRatio")
		Expect(peRatio).To(BeAssignableToTypeOf((*float64)(nil)))
		Expect(*peRatio.(*float64)).To(Equal(12.5))

		dividendDate := fundamentalsCell(row, "dividendDate")
		Expect(dividendDate).To(BeAssignableToTypeOf(&time.Time{}))
		Expect(*dividendDate.(*time.Time)).To(BeTemporally("==", time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)))

		// outside the elected columns
		Expect(fundamentalsCell(row, "fundLeverageFactor").(*float64)).To(BeNil())
	})

	It("stores every metric as NULL for a row aligned to no columns", func() {
		aligned := data.Align(nil, &data.Fundamentals{Symbol: "CCC"})

		rows, err := fundamentalsRows([]data.FundamentalsRow{aligned})
		Expect(err).NotTo(HaveOccurred())
		Expect(fundamentalsCell(rows[0], "symbol")).To(Equal("CCC"))
		Expect(fundamentalsCell(rows[0], "beta").(*float64)).To(BeNil())
	})
})
