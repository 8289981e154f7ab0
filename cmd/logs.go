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

	"github.com/charmbracelet/lipgloss"
	"github.com/lician/finsync/data"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/xeonx/timeago"
)

var logLimit int

// logsCmd represents the logs command
var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent sync runs",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext()

		store, closeStore := mustOpenStore(ctx)
		defer closeStore()

		entries, err := store.SyncLogs(ctx, logLimit)
		if err != nil {
			log.Fatal().Err(err).Msg("could not read sync log")
		}

		completed := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
		partial := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

		for _, entry := range entries {
			status := completed.Render(entry.Status)
			if entry.Status == data.StatusPartial {
				status = partial.Render(entry.Status)
			}

			fmt.Printf("%-16s %-10s %-20s %4d statements %3d errors  %s\n",
				entry.TickerSymbol+"."+entry.Exchange, entry.ID.String()[:8], status,
				entry.StatementsCreated, entry.ErrorCount, timeago.English.Format(entry.CompletedAt))

			if entry.ErrorMessage != nil {
				fmt.Printf("    %s\n", *entry.ErrorMessage)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "number of entries to show")
}
