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
package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hako/durafmt"
	"github.com/penny-vault/pvsnapshot/data"
	"github.com/penny-vault/pvsnapshot/pipeline"
)

const maxListedFailures = 20

var (
	reportStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// renderReport formats the outcome of a run for the terminal
func renderReport(report *pipeline.Report, runErr error) string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Snapshot %s", report.RunID.String()[:8])),
		"",
	}

	failures := report.Failures()
	lines = append(lines, fmt.Sprintf("Symbols:      %d (%d failed)", len(report.Results), len(failures)))

	if report.Dataset != nil {
		lines = append(lines,
			fmt.Sprintf("Price bars:   %d", len(report.Dataset.PriceBars)),
			fmt.Sprintf("Fundamentals: %d rows, %d columns", len(report.Dataset.Fundamentals), len(report.Columns)),
		)
	}

	lines = append(lines, fmt.Sprintf("Run time:     %s", durafmt.Parse(report.EndTime.Sub(report.StartTime)).LimitFirstN(2).String()))

	if runErr != nil {
		lines = append(lines, "", errStyle.Render(fmt.Sprintf("FAILED: %s", runErr)))
	} else {
		lines = append(lines, "", okStyle.Render("Loaded"))
	}

	if len(failures) > 0 {
		lines = append(lines, "", "Failed symbols:")
		for idx, symbol := range report.FailedSymbols() {
			if idx == maxListedFailures {
				lines = append(lines, fmt.Sprintf("  ... and %d more", len(failures)-maxListedFailures))
				break
			}

			lines = append(lines, failureLine(report, data.Symbol(symbol)))
		}
	}

	return reportStyle.Render(strings.Join(lines, "\n"))
}

// failureLine describes a failed symbol, including the price bars kept when
// only the fundamentals fetch failed
func failureLine(report *pipeline.Report, symbol data.Symbol) string {
	result := report.Result(symbol)
	line := fmt.Sprintf("  %-6s %s: %s", symbol, result.Stage, result.Err)

	if report.Dataset != nil {
		if numBars := report.Dataset.NumBars(symbol); numBars > 0 {
			line += fmt.Sprintf(" (kept %d bars)", numBars)
		}
	}

	return line
}
