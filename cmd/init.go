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
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/jackc/pgx/v5"
	"github.com/pelletier/go-toml/v2"
	"github.com/penny-vault/pvsnapshot/db"
	"github.com/penny-vault/pvsnapshot/export"
	"github.com/penny-vault/pvsnapshot/healthcheck"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type dbSettings struct {
	URL string `toml:"url"`
}

type schwabSettings struct {
	AccessToken string `toml:"access_token"`
}

type exportSettings struct {
	Dir    string `toml:"dir,omitempty"`
	Format string `toml:"format,omitempty"`
}

type healthcheckSettings struct {
	CheckID string `toml:"check_id,omitempty"`
}

type settings struct {
	DB           dbSettings          `toml:"db"`
	Schwab       schwabSettings      `toml:"schwab"`
	Export       exportSettings      `toml:"export"`
	Healthchecks healthcheckSettings `toml:"healthchecks"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather configuration and create the run log table",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := log.Logger.WithContext(context.Background())

		conf := settings{}
		conf.Export.Format = export.FormatCSV
		var healthchecksKey string

		form := huh.NewForm(
			// Get details about the database
			huh.NewGroup(
				huh.NewInput().
					Title("Provide the DSN for connecting to your PostgreSQL database (postgres://[user[:password]@][netloc][:port][/dbname][?param1=value1&...])").
					Value(&conf.DB.URL).
					Validate(func(dsn string) error {
						_, err := pgx.ParseConfig(dsn)
						return err
					}),
			),

			// Schwab market data credentials
			huh.NewGroup(
				huh.NewInput().
					Title("Schwab market data access token:").
					Password(true).
					Value(&conf.Schwab.AccessToken),
			),

			// Optional file exports
			huh.NewGroup(
				huh.NewInput().
					Title("Directory to export snapshots to (leave blank to disable):").
					Value(&conf.Export.Dir),

				huh.NewSelect[string]().
					Title("Export format:").
					Options(huh.NewOptions(export.FormatCSV, export.FormatParquet, export.FormatBoth)...).
					Value(&conf.Export.Format),
			),

			huh.NewGroup(
				huh.NewInput().
					Title("healthchecks.io API key (leave blank to skip monitoring):").
					Password(true).
					Value(&healthchecksKey),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering settings")
		}

		log.Info().Msg("creating run log table")

		if err := db.Migrate(conf.DB.URL); err != nil {
			log.Fatal().Err(err).Msg("error running database migration")
		}

		log.Info().Msg("run log table created")

		if healthchecksKey != "" {
			checkID, err := healthcheck.Create(ctx, healthcheck.DefaultAPIURL, healthchecksKey,
				"pvsnapshot", "pvsnapshot", []string{"pvsnapshot"}, "0 6 * * 1-5")
			if err != nil {
				log.Fatal().Err(err).Msg("could not create healthcheck")
			}

			conf.Healthchecks.CheckID = checkID
		}

		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".pvsnapshot.toml")
		log.Info().Str("ConfigFile", configFN).Msg("saving settings to config file")
		configData, err := toml.Marshal(conf)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0600)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("pvsnapshot has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
