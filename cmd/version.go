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
	"net/url"
	"strings"

	"github.com/lician/finsync/localdb"
	"github.com/lician/finsync/pkginfo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	deps  bool
	short bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		if short {
			fmt.Println(pkginfo.Version)
			return
		}

		fmt.Println(pkginfo.BuildVersionString())
		fmt.Printf("Provider: %s\n", viper.GetString("eodhd.base_url"))
		fmt.Printf("Store: %s\n", storeKind(viper.GetString("db.url")))

		if deps {
			list := pkginfo.GetDependencies()
			fmt.Printf("\nSync stack:\n%s\n", strings.Join(list.Stack, "\n"))
			fmt.Printf("\nOther dependencies:\n%s\n", strings.Join(list.Other, "\n"))
		}
	},
}

func storeKind(dbURL string) string {
	switch {
	case dbURL == "":
		return "not configured"
	case localdb.IsURL(dbURL):
		return "sqlite " + localdb.PathFromURL(dbURL)
	}

	if u, err := url.Parse(dbURL); err == nil {
		return "postgres " + u.Redacted()
	}
	return "postgres"
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&deps, "deps", "d", false, "print dependencies")
	versionCmd.Flags().BoolVarP(&short, "short", "s", false, "only print version number")
}
