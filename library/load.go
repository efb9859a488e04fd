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
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/penny-vault/pvsnapshot/data"
	"github.com/rs/zerolog"
)

// LoadAll copies the constituents, price bars and fundamentals into their
// tables inside a single transaction. Any failure rolls back every table.
func (myLibrary *Library) LoadAll(ctx context.Context, constituents []*data.Constituent, dataset *data.Dataset) error {
	logger := zerolog.Ctx(ctx)

	tx, err := myLibrary.begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			if !errors.Is(err, pgx.ErrTxClosed) {
				logger.Error().Err(err).Msg("error rollingback load tx")
			}
		}
	}()

	for _, key := range data.DataTypeOrder {
		dataType := data.DataTypes[key]

		var rows [][]any
		switch key {
		case data.MarketDataKey:
			rows = priceBarRows(dataset.PriceBars)
		case data.TickersKey:
			rows = constituentRows(constituents)
		case data.FundamentalsKey:
			rows, err = fundamentalsRows(dataset.Fundamentals)
			if err != nil {
				return fmt.Errorf("%w: %s: %w", ErrLoad, dataType.Table, err)
			}
		}

		count, err := tx.CopyFrom(ctx, pgx.Identifier{dataType.Table}, dataType.Columns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrLoad, dataType.Table, err)
		}

		logger.Info().Str("Table", dataType.Table).Int64("NumRows", count).Msg("staged rows")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrLoad, err)
	}

	return nil
}

func priceBarRows(bars []*data.PriceBar) [][]any {
	rows := make([][]any, 0, len(bars))
	for _, bar := range bars {
		rows = append(rows, []any{
			bar.Date,
			bar.Symbol.String(),
			bar.Open,
			bar.High,
			bar.Low,
			bar.Close,
			bar.Volume,
		})
	}

	return rows
}

func constituentRows(constituents []*data.Constituent) [][]any {
	rows := make([][]any, 0, len(constituents))
	for _, constituent := range constituents {
		rows = append(rows, []any{
			constituent.Symbol.String(),
			constituent.Security,
			constituent.Sector,
			constituent.SubIndustry,
			constituent.HeadquartersLocation,
			constituent.DateAdded.Ptr(),
			constituent.CIK,
			constituent.Founded,
		})
	}

	return rows
}

// fundamentalsRows maps aligned rows onto the fixed table layout. Table
// columns outside a row's column set are stored empty.
func fundamentalsRows(fundamentals []data.FundamentalsRow) ([][]any, error) {
	rows := make([][]any, 0, len(fundamentals))
	for _, fundamental := range fundamentals {
		row := make([]any, len(data.FundamentalColumns))
		for idx, col := range data.FundamentalColumns {
			if col.Name == data.FundamentalsSymbolColumn {
				row[idx] = fundamental.Symbol.String()
				continue
			}

			value, _ := fundamental.Get(col.Name)

			switch col.Kind {
			case data.FloatColumn:
				val, err := data.FloatValue(value)
				if err != nil {
					return nil, fmt.Errorf("%s %s: %w", fundamental.Symbol, col.Name, err)
				}
				row[idx] = val.Ptr()
			case data.TimeColumn:
				val, err := data.TimeValue(value)
				if err != nil {
					return nil, fmt.Errorf("%s %s: %w", fundamental.Symbol, col.Name, err)
				}
				row[idx] = val.Ptr()
			default:
				row[idx] = value
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}
