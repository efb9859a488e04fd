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

// Dataset accumulates the price bars and aligned fundamentals rows of a run
// in insertion order
type Dataset struct {
	PriceBars    []*PriceBar
	Fundamentals []FundamentalsRow

	columns Columns
}

// AddPriceBars tags each bar with symbol and appends it
func (dataset *Dataset) AddPriceBars(symbol Symbol, bars []*PriceBar) {
	for _, bar := range bars {
		bar.Symbol = symbol
		dataset.PriceBars = append(dataset.PriceBars, bar)
	}
}

// AddFundamentals appends an aligned row
func (dataset *Dataset) AddFundamentals(row FundamentalsRow) {
	dataset.Fundamentals = append(dataset.Fundamentals, row)
}

// ElectColumns fixes the reference column set on the first call with a
// non-empty field list. Later calls leave it unchanged. The elected set is
// returned along with whether this call made the election; an empty list
// returns nil until an election happens.
func (dataset *Dataset) ElectColumns(columns []string) (Columns, bool) {
	if dataset.columns != nil {
		return dataset.columns, false
	}

	if len(columns) == 0 {
		return nil, false
	}

	elected := make(Columns, len(columns))
	copy(elected, columns)
	dataset.columns = elected

	return dataset.columns, true
}

// Columns returns the reference column set, or nil if none has been elected
func (dataset *Dataset) Columns() Columns {
	return dataset.columns
}

// NumBars returns the number of price bars tagged with symbol
func (dataset *Dataset) NumBars(symbol Symbol) int {
	count := 0
	for _, bar := range dataset.PriceBars {
		if bar.Symbol == symbol {
			count++
		}
	}

	return count
}
