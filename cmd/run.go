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
	"context"
	"errors"
	"fmt"

	"github.com/hako/durafmt"
	"github.com/penny-vault/pvsnapshot/backblaze"
	"github.com/penny-vault/pvsnapshot/data"
	"github.com/penny-vault/pvsnapshot/export"
	"github.com/penny-vault/pvsnapshot/healthcheck"
	"github.com/penny-vault/pvsnapshot/library"
	"github.com/penny-vault/pvsnapshot/pipeline"
	"github.com/penny-vault/pvsnapshot/provider"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	ErrMissingToken = errors.New("schwab.access_token is not set")
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download a new snapshot and replace the stored tables",
	Long: `The run sub-command downloads the index constituents, price history and
fundamentals for every constituent and then replaces the market_data,
tickers_data and fundamentals_data_table tables. Symbols that fail to
download are logged and skipped. If the load fails no rows from the run are
committed; note that the tables have already been recreated at that point.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := log.Logger.WithContext(context.Background())

		if err := runSnapshot(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not complete snapshot run")
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("export-dir", "", "write csv/parquet exports of the run to this directory")
	if err := viper.BindPFlag("export.dir", runCmd.Flags().Lookup("export-dir")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for export-dir failed")
	}

	runCmd.Flags().String("reference-symbol", "", "symbol whose fundamentals define the fundamentals columns")
	if err := viper.BindPFlag("fundamentals.reference_symbol", runCmd.Flags().Lookup("reference-symbol")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for reference-symbol failed")
	}
}

func runSnapshot(ctx context.Context) error {
	token := viper.GetString("schwab.access_token")
	if token == "" {
		return ErrMissingToken
	}

	check := healthcheck.New(viper.GetString("healthchecks.check_id"))
	if err := check.Start(ctx); err != nil {
		log.Warn().Err(err).Msg("healthcheck start ping failed")
	}

	myLibrary := &library.Library{
		DBUrl: dbURL(),
	}

	if err := myLibrary.Connect(ctx); err != nil {
		pingResult(ctx, check, err, "could not connect to database")
		return fmt.Errorf("could not connect to database: %w", err)
	}
	defer myLibrary.Close()

	schwab := provider.NewSchwab(viper.GetString("schwab.base_url"), provider.StaticToken(token), viper.GetInt("schwab.rate_limit"))

	orchestrator := &pipeline.Orchestrator{
		Universe:        universeProvider(),
		Prices:          schwab,
		Fundamentals:    schwab,
		Loader:          myLibrary,
		Window:          historyWindow(),
		ReferenceSymbol: data.Canonicalize(viper.GetString("fundamentals.reference_symbol")),
	}

	if exporter := newExporter(); exporter != nil {
		orchestrator.Exporter = exporter
	}

	report, runErr := orchestrator.Run(ctx)

	status := data.RunStatusSuccess
	if runErr != nil {
		status = data.RunStatusFailed
	}

	summary := report.Summary(status)
	if err := myLibrary.SaveRun(ctx, summary); err != nil {
		log.Warn().Err(err).Msg("could not save run log; run `pvsnapshot init` to create the ingest_runs table")
	}

	fmt.Println(renderReport(report, runErr))

	log.Info().
		Str("RunID", report.RunID.String()).
		Str("RunTime", durafmt.Parse(report.EndTime.Sub(report.StartTime)).String()).
		Int("NumPriceBars", summary.NumPriceBars).
		Int("NumFundamentals", summary.NumFundamentals).
		Int("NumFailed", len(summary.Failures)).
		Msg("snapshot run finished")

	pingResult(ctx, check, runErr, fmt.Sprintf("%d symbols, %d price bars, %d fundamentals, %d failures",
		summary.NumSymbols, summary.NumPriceBars, summary.NumFundamentals, len(summary.Failures)))

	return runErr
}

func universeProvider() provider.UniverseProvider {
	if fn := viper.GetString("universe.file"); fn != "" {
		return &provider.ConstituentFile{Path: fn}
	}

	return provider.NewWikipedia(viper.GetString("universe.url"))
}

func newExporter() *export.Exporter {
	dir := viper.GetString("export.dir")
	if dir == "" {
		return nil
	}

	exporter := &export.Exporter{
		Dir:    dir,
		Format: viper.GetString("export.format"),
	}

	if bucket := viper.GetString("backblaze.bucket"); bucket != "" {
		exporter.Uploader = &backblaze.Uploader{
			KeyID:          viper.GetString("backblaze.application_id"),
			ApplicationKey: viper.GetString("backblaze.application_key"),
			BucketName:     bucket,
		}
	}

	return exporter
}

func pingResult(ctx context.Context, check *healthcheck.Check, runErr error, msg string) {
	var err error
	if runErr != nil {
		err = check.Fail(ctx, fmt.Sprintf("%s: %s", msg, runErr))
	} else {
		err = check.Success(ctx, msg)
	}

	if err != nil {
		log.Warn().Err(err).Msg("healthcheck ping failed")
	}
}
