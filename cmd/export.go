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
	"time"

	"github.com/lician/finsync/backblaze"
	"github.com/lician/finsync/data"
	"github.com/lician/finsync/export"
	"github.com/lician/finsync/financials"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	exportFormat string
	exportDir    string
	exportBucket string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export SYMBOL",
	Short: "Export stored statements of a listing as parquet or csv",
	Long: `The export sub-command writes every stored statement of a listing as long format
facts (one line item per record) to a parquet or csv file. When --bucket is set the
file is also uploaded to Backblaze B2.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext()

		pair, err := financials.ParsePair(args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("could not parse symbol")
		}

		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid export format")
		}

		store, closeStore := mustOpenStore(ctx)
		defer closeStore()

		entityKey := data.EntityKey(pair.Ticker, pair.Exchange)
		facts, err := export.Facts(ctx, store, entityKey)
		if err != nil {
			log.Fatal().Err(err).Str("EntityKey", entityKey).Msg("could not read statements")
		}

		if len(facts) == 0 {
			log.Warn().Str("EntityKey", entityKey).Msg("no statements stored for listing, run sync first")
			return
		}

		fn, err := export.Write(facts, exportDir, pair.String(), format)
		if err != nil {
			log.Fatal().Err(err).Msg("export failed")
		}

		if exportBucket != "" {
			creds := backblaze.Credentials{
				ApplicationID:  viper.GetString("backblaze.application_id"),
				ApplicationKey: viper.GetString("backblaze.application_key"),
			}
			if creds.ApplicationID == "" {
				log.Fatal().Msg("backblaze credentials are missing")
			}
			if err := backblaze.Upload(creds, fn, exportBucket, fmt.Sprintf("financials/%d", time.Now().Year())); err != nil {
				log.Fatal().Err(err).Msg("failed uploading export to Backblaze")
			}
		}

		log.Info().Str("FileName", fn).Int("NumFacts", len(facts)).Msg("export complete")
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", string(export.Parquet), "output format (parquet or csv)")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", ".", "output directory")
	exportCmd.Flags().StringVar(&exportBucket, "bucket", "", "upload the export to this Backblaze B2 bucket")
}
