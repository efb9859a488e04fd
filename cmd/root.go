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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pvsnapshot",
	Short: "pvsnapshot loads a daily snapshot of S&P 500 prices and fundamentals into PostgreSQL",
	Long: `pvsnapshot is a command line utility that replaces a small relational
snapshot of the S&P 500 every time it runs. Each run:

	* reads the current index constituents from wikipedia
	* downloads five years of daily candles for every constituent
	* downloads the fundamentals projection for every constituent
	* recreates the market_data, tickers_data and fundamentals_data_table tables
	* loads everything in a single transaction

A symbol that cannot be downloaded is reported and skipped; it never stops
the rest of the run. The load itself is all-or-nothing.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLog)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pvsnapshot.toml)")

	rootCmd.PersistentFlags().String("db-url", "", "database connection string")
	if err := viper.BindPFlag("db.url", rootCmd.PersistentFlags().Lookup("db-url")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for db-url failed")
	}

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	if err := viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for log-level failed")
	}

	rootCmd.PersistentFlags().String("log-file", "", "also write logs to this file, rotated by size")
	if err := viper.BindPFlag("log.file", rootCmd.PersistentFlags().Lookup("log-file")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for log-file failed")
	}
}

// initConfig reads in config file, .env and ENV variables if set.
func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pvsnapshot" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".pvsnapshot")
	}

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}

// initLog configures the global logger from the log.* settings
func initLog() {
	level, err := zerolog.ParseLevel(viper.GetString("log.level"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	var writer io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}

	if fn := viper.GetString("log.file"); fn != "" {
		if err := os.MkdirAll(filepath.Dir(fn), 0755); err != nil {
			log.Warn().Err(err).Str("FileName", fn).Msg("could not create log directory")
		} else {
			writer = zerolog.MultiLevelWriter(writer, &lumberjack.Logger{
				Filename:   fn,
				MaxSize:    viper.GetInt("log.max_size"),
				MaxBackups: viper.GetInt("log.max_backups"),
				MaxAge:     viper.GetInt("log.max_age"),
				Compress:   true,
			})
		}
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}
