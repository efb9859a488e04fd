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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/penny-vault/pvsnapshot/data"
	"github.com/penny-vault/pvsnapshot/provider"
	"github.com/rs/zerolog"
)

var (
	ErrUniverseFetch = errors.New("universe fetch failed")
	ErrEmptyUniverse = errors.New("universe is empty")
)

// Loader replaces the stored snapshot
type Loader interface {
	ResetSchema(ctx context.Context) error
	LoadAll(ctx context.Context, constituents []*data.Constituent, dataset *data.Dataset) error
}

// Exporter writes the accumulated datasets to flat files
type Exporter interface {
	Export(ctx context.Context, constituents []*data.Constituent, dataset *data.Dataset) error
}

// Orchestrator runs universe fetch, the per-symbol fetch loop, schema reset
// and the bulk load in that order
type Orchestrator struct {
	Universe     provider.UniverseProvider
	Prices       provider.PriceHistoryFetcher
	Fundamentals provider.FundamentalsFetcher
	Loader       Loader

	// Exporter is optional; export failures are logged and ignored
	Exporter Exporter

	Window provider.Window

	// ReferenceSymbol, when set, is fetched before the loop to elect the
	// fundamentals columns. Otherwise the first successful fetch elects them.
	ReferenceSymbol data.Symbol
}

// Run executes a full snapshot replacement. The report is returned even when
// the run fails so the caller can record what happened.
func (orchestrator *Orchestrator) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.New(),
		StartTime: time.Now(),
		Dataset:   &data.Dataset{},
	}

	logger := zerolog.Ctx(ctx).With().Str("RunID", report.RunID.String()).Logger()
	ctx = logger.WithContext(ctx)

	defer func() {
		report.EndTime = time.Now()
	}()

	constituents, err := orchestrator.Universe.Constituents(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrUniverseFetch, err)
	}

	if len(constituents) == 0 {
		return report, fmt.Errorf("%w: %w", ErrUniverseFetch, ErrEmptyUniverse)
	}

	symbols := data.CanonicalizeConstituents(constituents)
	report.Constituents = constituents

	logger.Info().Int("NumSymbols", len(symbols)).Msg("fetching symbol data")

	if orchestrator.ReferenceSymbol != "" {
		orchestrator.electReferenceColumns(ctx, report.Dataset)
	}

	for _, symbol := range symbols {
		report.Results = append(report.Results, orchestrator.fetchSymbol(ctx, symbol, report.Dataset))
	}

	report.Columns = report.Dataset.Columns()

	logger.Info().
		Int("NumPriceBars", len(report.Dataset.PriceBars)).
		Int("NumFundamentals", len(report.Dataset.Fundamentals)).
		Int("NumFailed", len(report.Failures())).
		Msg("finished fetching symbol data")

	if orchestrator.Exporter != nil {
		if err := orchestrator.Exporter.Export(ctx, constituents, report.Dataset); err != nil {
			logger.Warn().Err(err).Msg("export failed")
		}
	}

	if err := orchestrator.Loader.ResetSchema(ctx); err != nil {
		return report, err
	}

	if err := orchestrator.Loader.LoadAll(ctx, constituents, report.Dataset); err != nil {
		return report, err
	}

	report.Loaded = true
	logger.Info().Msg("snapshot loaded")

	return report, nil
}

func (orchestrator *Orchestrator) electReferenceColumns(ctx context.Context, dataset *data.Dataset) {
	logger := zerolog.Ctx(ctx)

	rec, err := orchestrator.Fundamentals.Fundamentals(ctx, orchestrator.ReferenceSymbol)
	if err != nil {
		logger.Warn().Err(err).Str("Symbol", orchestrator.ReferenceSymbol.String()).
			Msg("could not fetch reference fundamentals; first successful symbol will define the columns")
		return
	}

	columns, elected := dataset.ElectColumns(rec.Names())
	if !elected {
		logger.Warn().Str("Symbol", orchestrator.ReferenceSymbol.String()).
			Msg("reference fundamentals have no fields; first successful symbol will define the columns")
		return
	}

	logger.Info().Str("Symbol", orchestrator.ReferenceSymbol.String()).Int("NumColumns", len(columns)).Msg("elected fundamentals columns")
}

// fetchSymbol runs both fetches for a symbol. Price bars are accumulated as
// soon as they arrive and are kept if the fundamentals fetch fails.
func (orchestrator *Orchestrator) fetchSymbol(ctx context.Context, symbol data.Symbol, dataset *data.Dataset) *SymbolResult {
	logger := zerolog.Ctx(ctx).With().Str("Symbol", symbol.String()).Logger()

	result := &SymbolResult{
		Symbol: symbol,
		State:  Pending,
	}

	bars, err := orchestrator.Prices.PriceHistory(ctx, symbol, orchestrator.Window)
	if err != nil {
		result.fail(PriceHistoryStage, err)
		logger.Warn().Err(err).Str("Stage", string(PriceHistoryStage)).Msg("failed to download data")
		return result
	}

	dataset.AddPriceBars(symbol, bars)
	result.NumBars = len(bars)

	rec, err := orchestrator.Fundamentals.Fundamentals(ctx, symbol)
	if err != nil {
		result.fail(FundamentalsStage, err)
		logger.Warn().Err(err).Str("Stage", string(FundamentalsStage)).Int("NumBars", result.NumBars).Msg("failed to download data")
		return result
	}

	result.State = Fetched

	columns, elected := dataset.ElectColumns(rec.Names())
	switch {
	case elected:
		logger.Info().Int("NumColumns", len(columns)).Msg("elected fundamentals columns")
	case len(columns) == 0:
		logger.Warn().Msg("fundamentals response has no fields; columns not elected yet")
	}

	row := data.Align(columns, rec)
	result.State = Normalized

	dataset.AddFundamentals(row)
	result.HasFundamentals = true
	result.State = Accumulated

	logger.Debug().Int("NumBars", result.NumBars).Msg("accumulated symbol data")

	return result
}

func (result *SymbolResult) fail(stage Stage, err error) {
	result.State = Failed
	result.Stage = stage
	result.Err = err
}
