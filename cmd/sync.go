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
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hako/durafmt"
	"github.com/lician/finsync/financials"
	"github.com/lician/finsync/healthcheck"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var pairsFile string

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync [SYMBOL...]",
	Short: "Sync financial statements for one or more listings",
	Long: `The sync sub-command downloads yearly and quarterly financial statements for each
listing and upserts them into the database. Listings are given as TICKER.EXCHANGE
symbols (e.g. SAP.XETRA) or in a CSV file with a ticker,exchange header. Listings
are synced one at a time with a fixed delay between them.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext()

		pairs, err := financials.ParsePairs(args)
		if err != nil {
			log.Fatal().Err(err).Msg("could not parse symbols")
		}

		if pairsFile != "" {
			fh, err := os.Open(pairsFile)
			if err != nil {
				log.Fatal().Err(err).Str("FileName", pairsFile).Msg("could not open pairs file")
			}

			filePairs, err := financials.LoadPairsCSV(fh)
			fh.Close()
			if err != nil {
				log.Fatal().Err(err).Str("FileName", pairsFile).Msg("could not read pairs file")
			}

			pairs = append(pairs, filePairs...)
		}

		if len(pairs) == 0 {
			log.Fatal().Msg("no listings to sync, provide symbols or --file")
		}

		store, closeStore := mustOpenStore(ctx)
		defer closeStore()

		checkID := viper.GetString("healthchecks.check_id")
		monitor := healthcheck.New(viper.GetString("healthchecks.apikey"))
		if checkID != "" {
			if err := monitor.Start(ctx, checkID); err != nil {
				log.Warn().Err(err).Str("CheckID", checkID).Msg("could not signal start to healthchecks.io")
			}
		}

		syncer := financials.NewSyncer(eodhdClient(), store)

		startTime := time.Now()
		batch := syncer.SyncBatch(ctx, pairs,
			financials.WithDelay(viper.GetDuration("sync.delay")),
			financials.WithProgress(func(idx, total int, result *financials.SyncResult) {
				event := log.Info()
				if !result.Success {
					event = log.Warn().Strs("Errors", result.Errors)
				}
				event.Int("Pair", idx+1).Int("Total", total).Object("Result", result).Msg("synced listing")
			}),
		)
		runTime := time.Since(startTime)

		fmt.Println(batchSummary(batch, runTime))

		if checkID != "" {
			var err error
			if batch.Failed > 0 {
				err = monitor.Fail(ctx, checkID, fmt.Sprintf("%d of %d listings failed", batch.Failed, batch.Total))
			} else {
				err = monitor.Ping(ctx, checkID)
			}
			if err != nil {
				log.Warn().Err(err).Str("CheckID", checkID).Msg("could not ping healthchecks.io")
			}
		}

		if batch.Failed > 0 {
			closeStore()
			os.Exit(1)
		}
	},
}

func batchSummary(batch *financials.BatchResult, runTime time.Duration) string {
	var sb strings.Builder
	keyword := func(s string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Render(s)
	}
	failed := func(s string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(s)
	}

	fmt.Fprintf(&sb, "%s\n\nListings: %s\nSuccessful: %s\nFailed: %s\nStatements: %s\nRun Time: %s\n",
		lipgloss.NewStyle().Bold(true).Render("SYNC COMPLETE"),
		keyword(fmt.Sprintf("%d", batch.Total)),
		keyword(fmt.Sprintf("%d", batch.Successful)),
		failed(fmt.Sprintf("%d", batch.Failed)),
		keyword(fmt.Sprintf("%d", batch.StatementsCreated())),
		keyword(durafmt.Parse(runTime).LimitFirstN(2).String()),
	)

	for _, result := range batch.Results {
		if result.Success {
			continue
		}
		fmt.Fprintf(&sb, "\n%s.%s: %s", result.Ticker, result.Exchange, failed(strings.Join(result.Errors, "; ")))
	}

	return lipgloss.NewStyle().
		Width(72).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(1, 2).
		Render(sb.String())
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVarP(&pairsFile, "file", "f", "", "CSV file of listings with a ticker,exchange header")
	syncCmd.Flags().Duration("delay", financials.DefaultDelay, "pause between listings")
	if err := viper.BindPFlag("sync.delay", syncCmd.Flags().Lookup("delay")); err != nil {
		log.Panic().Err(err).Msg("BindPFlag for delay failed")
	}
}
