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
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/goccy/go-json"
	"github.com/penny-vault/pvsnapshot/data"
)

// SaveRun records the outcome of a run in the ingest_runs table
func (myLibrary *Library) SaveRun(ctx context.Context, summary *data.RunSummary) error {
	if myLibrary.DB == nil {
		return ErrNotConnected
	}

	failures := summary.Failures
	if failures == nil {
		failures = map[string]string{}
	}

	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return err
	}

	_, err = myLibrary.DB.Exec(ctx, `INSERT INTO ingest_runs (
	"id",
	"start_time",
	"end_time",
	"status",
	"num_symbols",
	"num_price_bars",
	"num_fundamentals",
	"failures"
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		summary.RunID, summary.StartTime, summary.EndTime, summary.Status, summary.NumSymbols,
		summary.NumPriceBars, summary.NumFundamentals, string(failuresJSON))

	return err
}

// Runs returns the most recent runs, newest first
func (myLibrary *Library) Runs(ctx context.Context, limit int) ([]*data.RunSummary, error) {
	if myLibrary.DB == nil {
		return nil, ErrNotConnected
	}

	var runs []*data.RunSummary
	err := pgxscan.Select(ctx, myLibrary.DB, &runs, `SELECT id, start_time, end_time, status, num_symbols,
num_price_bars, num_fundamentals, failures FROM ingest_runs ORDER BY start_time DESC LIMIT $1`, limit)

	return runs, err
}

// NumRows returns the number of rows in each output table keyed by table name
func (myLibrary *Library) NumRows(ctx context.Context) (map[string]int, error) {
	if myLibrary.DB == nil {
		return nil, ErrNotConnected
	}

	counts := make(map[string]int, len(data.DataTypeOrder))
	for _, key := range data.DataTypeOrder {
		table := data.DataTypes[key].Table

		count := 0
		if err := myLibrary.DB.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", table)).Scan(&count); err != nil {
			return nil, err
		}

		counts[table] = count
	}

	return counts, nil
}
