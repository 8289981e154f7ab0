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

	"github.com/charmbracelet/glamour"
	"github.com/lician/finsync/library"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display information about the statement database",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext()

		store, closeStore := mustOpenStore(ctx)
		defer closeStore()

		summary, err := library.Summary(ctx, store.Name(), store)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create library summary document")
		}

		r, _ := glamour.NewTermRenderer(
			// detect background color and pick either the default dark or light theme
			glamour.WithAutoStyle(),
			// wrap output at specific width (default is 80)
			glamour.WithWordWrap(80),
		)

		out, err := r.Render(summary)
		if err != nil {
			log.Fatal().Err(err).Msg("could not render summary document")
		}

		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
