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
	"github.com/penny-vault/pvsnapshot/library"
	"github.com/penny-vault/pvsnapshot/provider"
	"github.com/spf13/viper"
)

func setDefaults() {
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", 5432)
	viper.SetDefault("db.sslmode", "prefer")

	viper.SetDefault("schwab.base_url", provider.DefaultSchwabURL)
	viper.SetDefault("schwab.rate_limit", 120)

	viper.SetDefault("universe.url", provider.DefaultConstituentsURL)

	window := provider.DefaultWindow()
	viper.SetDefault("history.period_type", window.PeriodType)
	viper.SetDefault("history.period", window.Period)
	viper.SetDefault("history.frequency_type", window.FrequencyType)
	viper.SetDefault("history.frequency", window.Frequency)

	viper.SetDefault("export.format", "csv")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.max_size", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age", 30)
}

// dbURL returns db.url when set, otherwise a DSN built from the discrete db.*
// settings
func dbURL() string {
	if url := viper.GetString("db.url"); url != "" {
		return url
	}

	return library.BuildConnString(library.DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetInt("db.port"),
		Name:     viper.GetString("db.name"),
		User:     viper.GetString("db.user"),
		Password: viper.GetString("db.password"),
		SSLMode:  viper.GetString("db.sslmode"),
	})
}

func historyWindow() provider.Window {
	return provider.Window{
		PeriodType:    viper.GetString("history.period_type"),
		Period:        viper.GetInt("history.period"),
		FrequencyType: viper.GetString("history.frequency_type"),
		Frequency:     viper.GetInt("history.frequency"),
	}
}
