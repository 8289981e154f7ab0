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
	"strings"

	"github.com/joho/godotenv"
	"github.com/lician/finsync/eodhd"
	"github.com/lician/finsync/financials"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "finsync",
	Short: "finsync syncs company financial statements from EODHD into a database",
	Long: `finsync is a command line utility for copying yearly and quarterly financial
statements of listed companies from the EODHD fundamentals API into a relational
database. Three statements are kept for every listing:

	* Income statements
	* Balance sheets
	* Cash flow statements

Re-running a sync overwrites the stored periods rather than duplicating them and
every run is recorded in an append-only sync log. Statements are stored in
PostgreSQL (postgres://...) or, for local use, a SQLite file (sqlite://path).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := zerolog.ParseLevel(logLevel)
		if err != nil {
			log.Warn().Str("LogLevel", logLevel).Msg("unknown log level, using info")
			level = zerolog.InfoLevel
		}
		zerolog.SetGlobalLevel(level)
	},
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
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	viper.SetDefault("eodhd.base_url", eodhd.DefaultBaseURL)
	viper.SetDefault("eodhd.timeout", eodhd.DefaultTimeout)
	viper.SetDefault("eodhd.rate_limit", 0)
	viper.SetDefault("sync.delay", financials.DefaultDelay)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.finsync.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("db-url", "", "database connection string (postgres://... or sqlite://path)")
	if err := viper.BindPFlag("db.url", rootCmd.PersistentFlags().Lookup("db-url")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for db-url failed")
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// a .env file in the working directory is optional
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded environment from .env")
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".finsync" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".finsync")
	}

	viper.SetEnvPrefix("finsync")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("Using config file")
	}
}

// commandContext returns a context that carries the global logger
func commandContext() context.Context {
	return log.Logger.WithContext(context.Background())
}

// eodhdClient builds a provider client from the configuration
func eodhdClient() *eodhd.Client {
	apiKey := viper.GetString("eodhd.api_key")
	if apiKey == "" {
		log.Fatal().Msg("eodhd.api_key is not configured, run `finsync init` or set FINSYNC_EODHD_API_KEY")
	}

	return eodhd.New(apiKey,
		eodhd.WithBaseURL(viper.GetString("eodhd.base_url")),
		eodhd.WithTimeout(viper.GetDuration("eodhd.timeout")),
		eodhd.WithRateLimit(viper.GetInt("eodhd.rate_limit")),
	)
}
