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
	"context"
	"errors"

	"github.com/penny-vault/pvsnapshot/data"
)

var (
	ErrFetch             = errors.New("fetch failed")
	ErrInvalidStatusCode = errors.New("invalid HTTP status code")
	ErrMalformedPayload  = errors.New("malformed payload")
	ErrSchemaEnvelope    = errors.New("unexpected response envelope")
	ErrMissingTable      = errors.New("constituents table not found")
	ErrMissingColumn     = errors.New("required column not found")
)

// UniverseProvider returns the index constituents in universe order
type UniverseProvider interface {
	Constituents(ctx context.Context) ([]*data.Constituent, error)
}

// PriceHistoryFetcher returns the candles for a symbol over a lookback window
type PriceHistoryFetcher interface {
	PriceHistory(ctx context.Context, symbol data.Symbol, window Window) ([]*data.PriceBar, error)
}

// FundamentalsFetcher returns the unaligned fundamentals record for a symbol
type FundamentalsFetcher interface {
	Fundamentals(ctx context.Context, symbol data.Symbol) (*data.Fundamentals, error)
}

// Window is the lookback period and candle frequency of a price history request
type Window struct {
	PeriodType    string
	Period        int
	FrequencyType string
	Frequency     int
}

// DefaultWindow is five years of daily candles
func DefaultWindow() Window {
	return Window{
		PeriodType:    "year",
		Period:        5,
		FrequencyType: "daily",
		Frequency:     1,
	}
}
