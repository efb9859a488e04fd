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
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/penny-vault/pvsnapshot/data"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const DefaultSchwabURL = "https://api.schwabapi.com/marketdata/v1"

// TokenSource supplies the bearer token for market data requests
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token
type StaticToken string

func (token StaticToken) AccessToken(ctx context.Context) (string, error) {
	return string(token), nil
}

type schwabCandle struct {
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
	Datetime int64   `json:"datetime"`
}

type schwabPriceHistory struct {
	Symbol  string         `json:"symbol"`
	Empty   bool           `json:"empty"`
	Candles []schwabCandle `json:"candles"`
}

// Schwab fetches price history and fundamentals from the Schwab market data API
type Schwab struct {
	client  *resty.Client
	limiter *rate.Limiter
	tokens  TokenSource
}

// NewSchwab creates a client against baseURL. rateLimit is the maximum number
// of requests per minute; 0 disables pacing.
func NewSchwab(baseURL string, tokens TokenSource, rateLimit int) *Schwab {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(rateLimit)/float64(61)), 1)
	}

	return &Schwab{
		client: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json"),
		limiter: limiter,
		tokens:  tokens,
	}
}

// PriceHistory returns the candles for symbol, each tagged with symbol
func (schwab *Schwab) PriceHistory(ctx context.Context, symbol data.Symbol, window Window) ([]*data.PriceBar, error) {
	body, err := schwab.get(ctx, "/pricehistory", map[string]string{
		"symbol":        symbol.String(),
		"periodType":    window.PeriodType,
		"period":        strconv.Itoa(window.Period),
		"frequencyType": window.FrequencyType,
		"frequency":     strconv.Itoa(window.Frequency),
	})
	if err != nil {
		return nil, err
	}

	var history schwabPriceHistory
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", ErrFetch, ErrMalformedPayload, err)
	}

	bars := make([]*data.PriceBar, 0, len(history.Candles))
	for _, candle := range history.Candles {
		bars = append(bars, &data.PriceBar{
			Date:   data.FromEpochMillis(candle.Datetime),
			Symbol: symbol,
			Open:   candle.Open,
			High:   candle.High,
			Low:    candle.Low,
			Close:  candle.Close,
			Volume: candle.Volume,
		})
	}

	zerolog.Ctx(ctx).Debug().Str("Symbol", symbol.String()).Int("NumBars", len(bars)).Msg("downloaded price history")

	return bars, nil
}

// Fundamentals returns the fundamental projection of the first instrument in
// the response, with fields in document order
func (schwab *Schwab) Fundamentals(ctx context.Context, symbol data.Symbol) (*data.Fundamentals, error) {
	body, err := schwab.get(ctx, "/instruments", map[string]string{
		"symbol":     symbol.String(),
		"projection": "fundamental",
	})
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %w: instruments response for %s is not valid JSON", ErrFetch, ErrMalformedPayload, symbol)
	}

	fundamental := gjson.GetBytes(body, "instruments.0.fundamental")
	if !fundamental.IsObject() {
		return nil, fmt.Errorf("%w: %w: no instrument entry for %s", ErrFetch, ErrSchemaEnvelope, symbol)
	}

	rec := &data.Fundamentals{
		Symbol: symbol,
	}

	fundamental.ForEach(func(key, value gjson.Result) bool {
		rec.Fields = append(rec.Fields, data.Field{
			Name:  key.String(),
			Value: fieldValue(value),
		})
		return true
	})

	return rec, nil
}

func fieldValue(value gjson.Result) any {
	switch value.Type {
	case gjson.Null:
		return nil
	case gjson.Number:
		return value.Float()
	case gjson.String:
		return value.String()
	case gjson.True, gjson.False:
		return value.Bool()
	default:
		return value.Raw
	}
}

func (schwab *Schwab) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	if err := schwab.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	token, err := schwab.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: access token: %w", ErrFetch, err)
	}

	resp, err := schwab.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	if resp.StatusCode() >= 300 {
		zerolog.Ctx(ctx).Debug().Int("StatusCode", resp.StatusCode()).Str("URL", resp.Request.URL).Msg("schwab returned an invalid HTTP response")
		return nil, fmt.Errorf("%w: %w: %d", ErrFetch, ErrInvalidStatusCode, resp.StatusCode())
	}

	return resp.Body(), nil
}
