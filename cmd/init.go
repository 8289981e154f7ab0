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
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/jackc/pgx/v5"
	"github.com/lician/finsync/healthcheck"
	"github.com/lician/finsync/localdb"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type configFile struct {
	DB struct {
		URL string `toml:"url"`
	} `toml:"db"`
	EODHD struct {
		APIKey string `toml:"api_key"`
	} `toml:"eodhd"`
	Healthchecks struct {
		APIKey  string `toml:"apikey,omitempty"`
		CheckID string `toml:"check_id,omitempty"`
	} `toml:"healthchecks"`
}

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Gather database and API configuration and setup schema",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext()

		conf := configFile{}
		monitor := false

		form := huh.NewForm(
			// Get details about the database
			huh.NewGroup(
				huh.NewInput().
					Title("Provide the connection string for your database (postgres://[user[:password]@][netloc][:port][/dbname] or sqlite://path/to/file.db)").
					Value(&conf.DB.URL).
					Validate(func(dsn string) error {
						if localdb.IsURL(dsn) {
							if localdb.PathFromURL(dsn) == "" {
								return localdb.ErrPathRequired
							}
							return nil
						}
						_, err := pgx.ParseConfig(dsn)
						return err
					}),
			),

			// Provider credentials
			huh.NewGroup(
				huh.NewInput().
					Title("EODHD API key:").
					Password(true).
					Value(&conf.EODHD.APIKey),
			),

			// Optional monitoring
			huh.NewGroup(
				huh.NewInput().
					Title("healthchecks.io API key (leave empty to skip monitoring):").
					Value(&conf.Healthchecks.APIKey),

				huh.NewConfirm().
					Title("Create a healthchecks.io check for scheduled syncs?").
					Value(&monitor),
			),
		)

		err := form.Run()
		if err != nil {
			log.Fatal().Err(err).Msg("error gathering settings")
		}

		log.Info().Msg("creating database tables")
		if err := migrateStore(ctx, conf.DB.URL); err != nil {
			log.Fatal().Err(err).Msg("error running database migration")
		}
		log.Info().Msg("database tables created")

		if monitor && conf.Healthchecks.APIKey != "" {
			checkID, err := healthcheck.New(conf.Healthchecks.APIKey).Create(ctx, healthcheck.Check{
				Name:        "finsync financials",
				Description: "daily EODHD financial statement sync",
				Tags:        []string{"finsync", "eodhd"},
				Schedule:    "0 6 * * *",
			})
			if err != nil {
				log.Error().Err(err).Msg("could not create healthchecks.io check, continuing without monitoring")
			} else {
				conf.Healthchecks.CheckID = checkID
				log.Info().Str("CheckID", checkID).Msg("created healthchecks.io check")
			}
		}

		// save settings to config file
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal().Err(err).Msg("could not determine user home directory")
		}

		configFN := filepath.Join(home, ".finsync.toml")
		log.Info().Str("ConfigFile", configFN).Msg("Saving configuration to config file")
		configData, err := toml.Marshal(conf)
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal configuration data")
		}

		err = os.WriteFile(configFN, configData, 0600)
		if err != nil {
			log.Fatal().Err(err).Str("FileName", configFN).Msg("could not save configuration to file")
		}

		log.Info().Msg("finsync has been initialized")
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
