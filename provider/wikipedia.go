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
package provider

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/penny-vault/pvsnapshot/data"
	"github.com/penny-vault/pvsnapshot/pkginfo"
	"github.com/rs/zerolog"
)

const DefaultConstituentsURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

var footnoteRegexp = regexp.MustCompile(`\[[^\]]*\]`)

// constituentSetters maps a table header to the field it populates
var constituentSetters = map[string]func(*data.Constituent, string){
	"Symbol":                func(c *data.Constituent, v string) { c.Symbol = data.Symbol(v) },
	"Security":              func(c *data.Constituent, v string) { c.Security = v },
	"GICS Sector":           func(c *data.Constituent, v string) { c.Sector = v },
	"GICS Sub-Industry":     func(c *data.Constituent, v string) { c.SubIndustry = v },
	"Headquarters Location": func(c *data.Constituent, v string) { c.HeadquartersLocation = v },
	"Date added":            func(c *data.Constituent, v string) { c.DateAdded = data.ParseCalendarDate(v) },
	"CIK":                   func(c *data.Constituent, v string) { c.CIK = v },
	"Founded":               func(c *data.Constituent, v string) { c.Founded = v },
}

// Wikipedia reads index constituents from the HTML table on a wikipedia page
type Wikipedia struct {
	URL string

	client *resty.Client
}

func NewWikipedia(url string) *Wikipedia {
	return &Wikipedia{
		URL: url,
		client: resty.New().
			SetHeader("User-Agent", pkginfo.UserAgent()),
	}
}

// Constituents downloads the page and parses the constituents table. Raw
// symbols are returned as listed on the page.
func (wiki *Wikipedia) Constituents(ctx context.Context) ([]*data.Constituent, error) {
	resp, err := wiki.client.R().SetContext(ctx).Get(wiki.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	if resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: %w: %d", ErrFetch, ErrInvalidStatusCode, resp.StatusCode())
	}

	constituents, err := ParseConstituentsTable(resp.Body())
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("URL", wiki.URL).Int("NumConstituents", len(constituents)).Msg("downloaded constituents")

	return constituents, nil
}

// ParseConstituentsTable extracts the constituents from an HTML document. The
// table with id "constituents" is preferred, otherwise the first wikitable
// is used.
func ParseConstituentsTable(page []byte) ([]*data.Constituent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrFetch, ErrMalformedPayload, err)
	}

	table := doc.Find("table#constituents").First()
	if table.Length() == 0 {
		table = doc.Find("table.wikitable").First()
	}

	if table.Length() == 0 {
		return nil, ErrMissingTable
	}

	var headers []string
	table.Find("tr").First().Find("th").Each(func(_ int, cell *goquery.Selection) {
		headers = append(headers, cellText(cell))
	})

	hasSymbol := false
	for _, header := range headers {
		if header == "Symbol" {
			hasSymbol = true
		}
	}

	if !hasSymbol {
		return nil, fmt.Errorf("%w: Symbol", ErrMissingColumn)
	}

	constituents := make([]*data.Constituent, 0, 503)
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}

		constituent := &data.Constituent{}
		cells.Each(func(idx int, cell *goquery.Selection) {
			if idx >= len(headers) {
				return
			}

			if setter, ok := constituentSetters[headers[idx]]; ok {
				setter(constituent, cellText(cell))
			}
		})

		if constituent.Symbol == "" {
			return
		}

		constituents = append(constituents, constituent)
	})

	return constituents, nil
}

func cellText(cell *goquery.Selection) string {
	text := footnoteRegexp.ReplaceAllString(cell.Text(), "")
	return strings.Join(strings.Fields(text), " ")
}
