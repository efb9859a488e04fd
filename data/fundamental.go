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
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

var (
	ErrTypeMismatch = errors.New("value does not match column type")
)

// ColumnKind is the storage type of a fundamentals table column
type ColumnKind int

const (
	FloatColumn ColumnKind = iota
	TimeColumn
	TextColumn
)

// ColumnDef describes one column of the fundamentals table
type ColumnDef struct {
	Name string
	Kind ColumnKind
}

// FundamentalsSymbolColumn is always populated from the owning symbol
const FundamentalsSymbolColumn = "symbol"

// FundamentalColumns is the fixed layout of fundamentals_data_table
var FundamentalColumns = []ColumnDef{
	{"symbol", TextColumn},
	{"high52", FloatColumn},
	{"low52", FloatColumn},
	{"dividendAmount", FloatColumn},
	{"dividendYield", FloatColumn},
	{"dividendDate", TimeColumn},
	{"peRatio", FloatColumn},
	{"pegRatio", FloatColumn},
	{"pbRatio", FloatColumn},
	{"prRatio", FloatColumn},
	{"pcfRatio", FloatColumn},
	{"grossMarginTTM", FloatColumn},
	{"grossMarginMRQ", FloatColumn},
	{"netProfitMarginTTM", FloatColumn},
	{"netProfitMarginMRQ", FloatColumn},
	{"operatingMarginTTM", FloatColumn},
	{"operatingMarginMRQ", FloatColumn},
	{"returnOnEquity", FloatColumn},
	{"returnOnAssets", FloatColumn},
	{"returnOnInvestment", FloatColumn},
	{"quickRatio", FloatColumn},
	{"currentRatio", FloatColumn},
	{"interestCoverage", FloatColumn},
	{"totalDebtToCapital", FloatColumn},
	{"ltDebtToEquity", FloatColumn},
	{"totalDebtToEquity", FloatColumn},
	{"epsTTM", FloatColumn},
	{"epsChangePercentTTM", FloatColumn},
	{"epsChangeYear", FloatColumn},
	{"epsChange", FloatColumn},
	{"revChangeYear", FloatColumn},
	{"revChangeTTM", FloatColumn},
	{"revChangeIn", FloatColumn},
	{"sharesOutstanding", FloatColumn},
	{"marketCapFloat", FloatColumn},
	{"marketCap", FloatColumn},
	{"bookValuePerShare", FloatColumn},
	{"shortIntToFloat", FloatColumn},
	{"shortIntDayToCover", FloatColumn},
	{"divGrowthRate3Year", FloatColumn},
	{"dividendPayAmount", FloatColumn},
	{"dividendPayDate", TimeColumn},
	{"beta", FloatColumn},
	{"vol1DayAvg", FloatColumn},
	{"vol10DayAvg", FloatColumn},
	{"vol3MonthAvg", FloatColumn},
	{"avg10DaysVolume", FloatColumn},
	{"avg1DayVolume", FloatColumn},
	{"avg3MonthVolume", FloatColumn},
	{"declarationDate", TimeColumn},
	{"dividendFreq", FloatColumn},
	{"eps", FloatColumn},
	{"dtnVolume", FloatColumn},
	{"nextDividendPayDate", TimeColumn},
	{"nextDividendDate", TimeColumn},
	{"fundLeverageFactor", FloatColumn},
}

// Field is a single named metric as reported by the provider. Value is one
// of float64, string, bool or nil.
type Field struct {
	Name  string
	Value any
}

// Fundamentals is an unaligned fundamentals record with fields in the order
// the provider reported them
type Fundamentals struct {
	Symbol Symbol
	Fields []Field
}

// Names returns the field names in reported order
func (fundamentals *Fundamentals) Names() []string {
	names := make([]string, len(fundamentals.Fields))
	for idx, field := range fundamentals.Fields {
		names[idx] = field.Name
	}

	return names
}

// Columns is the ordered reference column set shared by every fundamentals
// row of a run
type Columns []string

// Index returns the position of name or -1
func (columns Columns) Index(name string) int {
	for idx, col := range columns {
		if col == name {
			return idx
		}
	}

	return -1
}

// FundamentalsRow is a fundamentals record aligned to a Columns set. A nil
// value is empty.
type FundamentalsRow struct {
	Symbol  Symbol
	Columns Columns
	Values  []any
}

// Get returns the value of the named column; ok is false if the column is
// not part of the row's column set
func (row FundamentalsRow) Get(name string) (value any, ok bool) {
	idx := row.Columns.Index(name)
	if idx < 0 {
		return nil, false
	}

	return row.Values[idx], true
}

// Align produces a row with exactly the reference columns. Missing, null and
// blank values become empty and fields outside the reference set are dropped.
func Align(columns Columns, rec *Fundamentals) FundamentalsRow {
	byName := make(map[string]any, len(rec.Fields))
	for _, field := range rec.Fields {
		byName[field.Name] = field.Value
	}

	row := FundamentalsRow{
		Symbol:  rec.Symbol,
		Columns: columns,
		Values:  make([]any, len(columns)),
	}

	for idx, col := range columns {
		value, ok := byName[col]
		if !ok || isEmpty(value) {
			continue
		}

		row.Values[idx] = value
	}

	return row
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

var fundamentalTimeLayouts = []string{
	"2006-01-02 15:04:05.0",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02",
}

// FloatValue converts an aligned value for a FLOAT column
func FloatValue(value any) (null.Float, error) {
	switch v := value.(type) {
	case nil:
		return null.Float{}, nil
	case float64:
		return null.FloatFrom(v), nil
	case int64:
		return null.FloatFrom(float64(v)), nil
	case int:
		return null.FloatFrom(float64(v)), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return null.Float{}, nil
		}

		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return null.Float{}, fmt.Errorf("%w: %q is not a number", ErrTypeMismatch, v)
		}

		return null.FloatFrom(f), nil
	default:
		return null.Float{}, fmt.Errorf("%w: %T is not a number", ErrTypeMismatch, value)
	}
}

// TimeValue converts an aligned value for a DATETIME column. Numbers are
// treated as epoch milliseconds.
func TimeValue(value any) (null.Time, error) {
	switch v := value.(type) {
	case nil:
		return null.Time{}, nil
	case float64:
		return null.TimeFrom(FromEpochMillis(int64(v))), nil
	case int64:
		return null.TimeFrom(FromEpochMillis(v)), nil
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return null.Time{}, nil
		}

		for _, layout := range fundamentalTimeLayouts {
			if dt, err := time.Parse(layout, v); err == nil {
				return null.TimeFrom(dt), nil
			}
		}

		return null.Time{}, fmt.Errorf("%w: %q is not a date", ErrTypeMismatch, v)
	default:
		return null.Time{}, fmt.Errorf("%w: %T is not a date", ErrTypeMismatch, value)
	}
}
