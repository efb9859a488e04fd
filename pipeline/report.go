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
package pipeline

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/penny-vault/pvsnapshot/data"
)

// State is the progress of a single symbol through the fetch loop
type State int

const (
	Pending State = iota
	Fetched
	Normalized
	Accumulated
	Failed
)

func (state State) String() string {
	switch state {
	case Pending:
		return "pending"
	case Fetched:
		return "fetched"
	case Normalized:
		return "normalized"
	case Accumulated:
		return "accumulated"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(state))
	}
}

// Stage names the fetch that produced a failure
type Stage string

const (
	PriceHistoryStage Stage = "price-history"
	FundamentalsStage Stage = "fundamentals"
)

// SymbolResult is the outcome of the fetch loop for one symbol. A failed
// fundamentals fetch leaves NumBars set since those bars are kept.
type SymbolResult struct {
	Symbol          data.Symbol
	State           State
	Stage           Stage
	Err             error
	NumBars         int
	HasFundamentals bool
}

// Ok reports whether both fetches succeeded
func (result *SymbolResult) Ok() bool {
	return result.State == Accumulated
}

// Report collects the results of a run
type Report struct {
	RunID     uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Columns   data.Columns
	Results   []*SymbolResult

	Constituents []*data.Constituent
	Dataset      *data.Dataset
	Loaded       bool
}

// Failures returns the failed symbols in universe order
func (report *Report) Failures() []*SymbolResult {
	failures := make([]*SymbolResult, 0)
	for _, result := range report.Results {
		if result.State == Failed {
			failures = append(failures, result)
		}
	}

	return failures
}

// Result returns the result for symbol or nil
func (report *Report) Result(symbol data.Symbol) *SymbolResult {
	for _, result := range report.Results {
		if result.Symbol == symbol {
			return result
		}
	}

	return nil
}

// Summary converts the report into the run log record
func (report *Report) Summary(status string) *data.RunSummary {
	summary := &data.RunSummary{
		RunID:      report.RunID,
		StartTime:  report.StartTime,
		EndTime:    report.EndTime,
		Status:     status,
		NumSymbols: len(report.Results),
		Failures:   make(map[string]string),
	}

	if report.Dataset != nil {
		summary.NumPriceBars = len(report.Dataset.PriceBars)
		summary.NumFundamentals = len(report.Dataset.Fundamentals)
	}

	for _, failure := range report.Failures() {
		summary.Failures[failure.Symbol.String()] = fmt.Sprintf("%s: %s", failure.Stage, failure.Err)
	}

	return summary
}

// FailedSymbols returns the sorted list of failed symbols
func (report *Report) FailedSymbols() []string {
	symbols := make([]string, 0)
	for _, failure := range report.Failures() {
		symbols = append(symbols, failure.Symbol.String())
	}

	sort.Strings(symbols)

	return symbols
}
