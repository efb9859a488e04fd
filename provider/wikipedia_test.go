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
package provider_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/penny-vault/pvsnapshot/data"
	"github.com/penny-vault/pvsnapshot/provider"
)

const constituentsPage = `<html><body>
<table class="wikitable sortable" id="constituents">
<tbody>
<tr>
<th>Symbol</th><th>Security</th><th>GICS Sector</th><th>GICS Sub-Industry</th>
<th>Headquarters Location</th><th>Date added</th><th>CIK</th><th>Founded</th>
</tr>
<tr>
<td><a href="#">MMM</a></td><td><a href="#">3M</a></td><td>Industrials</td><td>Industrial Conglomerates</td>
<td>Saint Paul, Minnesota</td><td>1957-03-04</td><td>0000066740</td><td>1902</td>
</tr>
<tr>
<td><a href="#">BRK.B</a></td><td>Berkshire Hathaway</td><td>Financials</td><td>Multi-Sector Holdings</td>
<td>Omaha, Nebraska</td><td>2010-02-16</td><td>0001067983</td><td>1839<sup>[3]</sup></td>
</tr>
</tbody>
</table>
<table class="wikitable" id="changes"><tr><th>Date</th></tr><tr><td>2024-01-01</td></tr></table>
</body></html>`

var _ = Describe("Wikipedia", func() {
	It("parses the constituents table", func() {
		constituents, err := provider.ParseConstituentsTable([]byte(constituentsPage))
		Expect(err).NotTo(HaveOccurred())
		Expect(constituents).To(HaveLen(2))

		Expect(constituents[0].Symbol).To(Equal(data.Symbol("MMM")))
		Expect(constituents[0].Security).To(Equal("3M"))
		Expect(constituents[0].Sector).To(Equal("Industrials"))
		Expect(constituents[0].SubIndustry).To(Equal("Industrial Conglomerates"))
		Expect(constituents[0].HeadquartersLocation).To(Equal("Saint Paul, Minnesota"))
		Expect(constituents[0].DateAdded.Valid).To(BeTrue())
		Expect(constituents[0].CIK).To(Equal("0000066740"))

		Expect(constituents[1].Symbol).To(Equal(data.Symbol("BRK.B")))
		Expect(constituents[1].Founded).To(Equal("1839"))
	})

	It("fails when no table is present", func() {
		_, err := provider.ParseConstituentsTable([]byte(`<html><body><p>nothing</p></body></html>`))
		Expect(err).To(MatchError(provider.ErrMissingTable))
	})

	It("fails when the table has no symbol column", func() {
		_, err := provider.ParseConstituentsTable([]byte(`<table class="wikitable"><tr><th>Ticker</th></tr><tr><td>A</td></tr></table>`))
		Expect(err).To(MatchError(provider.ErrMissingColumn))
	})

	It("downloads the page", func() {
		var userAgent string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userAgent = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte(constituentsPage))
		}))
		defer server.Close()

		constituents, err := provider.NewWikipedia(server.URL).Constituents(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(constituents).To(HaveLen(2))
		Expect(userAgent).To(HavePrefix("pvsnapshot/"))
	})

	It("fails with a fetch error when the page is unavailable", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := provider.NewWikipedia(server.URL).Constituents(context.Background())
		Expect(err).To(MatchError(provider.ErrFetch))
	})
})

var _ = Describe("ConstituentFile", func() {
	It("reads constituents from a CSV file", func() {
		fn := filepath.Join(GinkgoT().TempDir(), "sp500list.csv")
		contents := "Symbol,Security,GICS Sector,GICS Sub-Industry,Headquarters Location,Date added,CIK,Founded\n" +
			"MMM,3M,Industrials,Industrial Conglomerates,\"Saint Paul, Minnesota\",1957-03-04,0000066740,1902\n" +
			"BF.B,Brown-Forman,Consumer Staples,Distillers & Vintners,\"Louisville, Kentucky\",,0000014693,1870\n"
		Expect(os.WriteFile(fn, []byte(contents), 0644)).To(Succeed())

		file := &provider.ConstituentFile{Path: fn}
		constituents, err := file.Constituents(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(constituents).To(HaveLen(2))
		Expect(constituents[0].HeadquartersLocation).To(Equal("Saint Paul, Minnesota"))
		Expect(constituents[0].DateAdded.Valid).To(BeTrue())
		Expect(constituents[1].Symbol).To(Equal(data.Symbol("BF.B")))
		Expect(constituents[1].DateAdded.Valid).To(BeFalse())
	})

	It("fails with a fetch error when the file does not exist", func() {
		file := &provider.ConstituentFile{Path: filepath.Join(GinkgoT().TempDir(), "missing.csv")}
		_, err := file.Constituents(context.Background())
		Expect(err).To(MatchError(provider.ErrFetch))
	})
})
