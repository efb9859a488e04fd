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
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunSummary is the outcome of a single ingestion run
type RunSummary struct {
	RunID           uuid.UUID         `db:"id"`
	StartTime       time.Time         `db:"start_time"`
	EndTime         time.Time         `db:"end_time"`
	Status          string            `db:"status"`
	NumSymbols      int               `db:"num_symbols"`
	NumPriceBars    int               `db:"num_price_bars"`
	NumFundamentals int               `db:"num_fundamentals"`
	Failures        map[string]string `db:"failures"`
}

const (
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

type DataType struct {
	Name    string
	Table   string
	Schema  string
	Columns []string
}

const (
	MarketDataKey   = "market-data"
	TickersKey      = "tickers"
	FundamentalsKey = "fundamentals"
)

// DataTypeOrder is the order tables are reset and loaded in
var DataTypeOrder = []string{MarketDataKey, TickersKey, FundamentalsKey}

var DataTypes = map[string]*DataType{
	MarketDataKey: {
		Name:  MarketDataKey,
		Table: "market_data",
		Schema: `CREATE TABLE %[1]s (
"Date"   TIMESTAMP,
"Symbol" VARCHAR(10),
"Open"   DOUBLE PRECISION,
"High"   DOUBLE PRECISION,
"Low"    DOUBLE PRECISION,
"Close"  DOUBLE PRECISION,
"Volume" DOUBLE PRECISION
);`,
		Columns: []string{"Date", "Symbol", "Open", "High", "Low", "Close", "Volume"},
	},
	TickersKey: {
		Name:  TickersKey,
		Table: "tickers_data",
		Schema: `CREATE TABLE %[1]s (
"Symbol"                VARCHAR(10),
"Security"              VARCHAR(255),
"GICS Sector"           VARCHAR(255),
"GICS Sub-Industry"     VARCHAR(255),
"Headquarters Location" VARCHAR(255),
"Date added"            TIMESTAMP,
"CIK"                   VARCHAR(10),
"Founded"               VARCHAR(255)
);`,
		Columns: []string{"Symbol", "Security", "GICS Sector", "GICS Sub-Industry", "Headquarters Location", "Date added", "CIK", "Founded"},
	},
	FundamentalsKey: {
		Name:    FundamentalsKey,
		Table:   "fundamentals_data_table",
		Schema:  fundamentalsSchema(),
		Columns: fundamentalColumnNames(),
	},
}

// ExpandedSchema returns the create statement for the data type
func (dataType *DataType) ExpandedSchema() string {
	return fmt.Sprintf(dataType.Schema, dataType.Table)
}

// DropStatement returns the statement that removes the data type's table
func (dataType *DataType) DropStatement() string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", dataType.Table)
}

func fundamentalColumnNames() []string {
	names := make([]string, len(FundamentalColumns))
	for idx, col := range FundamentalColumns {
		names[idx] = col.Name
	}

	return names
}

func fundamentalsSchema() string {
	cols := make([]string, len(FundamentalColumns))
	for idx, col := range FundamentalColumns {
		sqlType := "DOUBLE PRECISION"
		switch col.Kind {
		case TimeColumn:
			sqlType = "TIMESTAMP"
		case TextColumn:
			sqlType = "VARCHAR(10)"
		}

		cols[idx] = fmt.Sprintf("%q %s", col.Name, sqlType)
	}

	return "CREATE TABLE %[1]s (\n" + strings.Join(cols, ",\n") + "\n);"
}
