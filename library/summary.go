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
	"strings"

	"github.com/hako/durafmt"
	"github.com/penny-vault/pvsnapshot/data"
	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a description of the snapshot database in markdown
func (myLibrary *Library) Summary(ctx context.Context, numRuns int) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString("# pvsnapshot\n"); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Details\n\n"); err != nil {
		return "", err
	}

	// Database connection string
	if _, err := builder.WriteString(fmt.Sprintf("Database: %s\n\n", RedactedURL(myLibrary.DBUrl))); err != nil {
		return "", err
	}

	// Table sizes
	counts, err := myLibrary.NumRows(ctx)
	if err != nil {
		return "", err
	}

	for _, key := range data.DataTypeOrder {
		table := data.DataTypes[key].Table
		if _, err := builder.WriteString(p.Sprintf("  * %s: %d rows\n", table, counts[table])); err != nil {
			return "", err
		}
	}

	// Run history
	runs, err := myLibrary.Runs(ctx, numRuns)
	if err != nil {
		return "", err
	}

	if len(runs) == 0 {
		if _, err := builder.WriteString("\nLast Updated: Never\n\n"); err != nil {
			return "", err
		}

		return builder.String(), nil
	}

	last := runs[0]
	if _, err := builder.WriteString(fmt.Sprintf("\nLast Updated: %s (%s)\n\n", timeago.English.Format(last.EndTime),
		last.EndTime.Local().Format("01/02/2006"))); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Recent runs\n\n"); err != nil {
		return "", err
	}

	for _, run := range runs {
		if _, err := builder.WriteString(p.Sprintf("  * %s %s in %s [%s]\n", run.StartTime.Local().Format("01/02/2006 15:04"),
			run.Status, durafmt.Parse(run.EndTime.Sub(run.StartTime)).LimitFirstN(2).String(), run.RunID.String()[:6])); err != nil {
			return "", err
		}

		if _, err := builder.WriteString(p.Sprintf("    * %d symbols, %d price bars, %d fundamentals, %d failures\n",
			run.NumSymbols, run.NumPriceBars, run.NumFundamentals, len(run.Failures))); err != nil {
			return "", err
		}
	}

	return builder.String(), nil
}
