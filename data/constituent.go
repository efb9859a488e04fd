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
package data

import (
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// Constituent is one row of the index membership table
type Constituent struct {
	Symbol               Symbol       `csv:"Symbol"`
	Security             string       `csv:"Security"`
	Sector               string       `csv:"GICS Sector"`
	SubIndustry          string       `csv:"GICS Sub-Industry"`
	HeadquartersLocation string       `csv:"Headquarters Location"`
	DateAdded            CalendarDate `csv:"Date added"`
	CIK                  string       `csv:"CIK"`
	Founded              string       `csv:"Founded"`
}

// CalendarDate is a nullable date written as YYYY-MM-DD
type CalendarDate struct {
	null.Time
}

var calendarDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	time.RFC3339,
}

// ParseCalendarDate returns an invalid date if the value is blank or not a
// recognized date format
func ParseCalendarDate(value string) CalendarDate {
	value = strings.TrimSpace(value)
	if value == "" {
		return CalendarDate{}
	}

	for _, layout := range calendarDateLayouts {
		if dt, err := time.Parse(layout, value); err == nil {
			return CalendarDate{null.TimeFrom(dt)}
		}
	}

	return CalendarDate{}
}

// MarshalCSV implements gocsv.TypeMarshaller
func (date CalendarDate) MarshalCSV() (string, error) {
	if !date.Valid {
		return "", nil
	}

	return date.Time.Time.Format("2006-01-02"), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller
func (date *CalendarDate) UnmarshalCSV(value string) error {
	*date = ParseCalendarDate(value)
	return nil
}

// CanonicalizeConstituents rewrites the constituent symbols in place and returns the
// list of symbols in universe order
func CanonicalizeConstituents(constituents []*Constituent) []Symbol {
	symbols := make([]Symbol, 0, len(constituents))
	for _, constituent := range constituents {
		constituent.Symbol = Canonicalize(string(constituent.Symbol))
		symbols = append(symbols, constituent.Symbol)
	}

	return symbols
}
