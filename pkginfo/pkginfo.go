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
package pkginfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	BuildDate  string
	CommitHash string
	Version    string
)

// StackModules are the modules the sync pipeline is built on. They are
// listed ahead of every other dependency.
var StackModules = []string{
	"github.com/go-resty/resty/v2",
	"github.com/goccy/go-json",
	"github.com/jackc/pgx/v5",
	"github.com/golang-migrate/migrate/v4",
	"modernc.org/sqlite",
	"github.com/xitongsys/parquet-go",
	"github.com/kothar/go-backblaze",
	"github.com/spf13/cobra",
	"github.com/rs/zerolog",
}

// Dependencies splits linked modules into the sync stack and the rest
type Dependencies struct {
	Stack []string
	Other []string
}

// BuildVersionString returns a version info string suitable for printing on the command line
func BuildVersionString() string {
	osArch := runtime.GOOS + "/" + runtime.GOARCH
	goVersion := runtime.Version()

	version := Version
	if version == "" {
		version = "dev"
	}

	return fmt.Sprintf(`finsync %s %s

Build Date: %s
Commit: %s
Built with: %s`, version, osArch, BuildDate, CommitHash, goVersion)
}

// GetDependencies returns every dependency linked in with this program, each
// of the form `package="version"`
func GetDependencies() Dependencies {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		log.Error().Msg("could not get package build info")
		return Dependencies{}
	}

	return splitDependencies(buildInfo.Deps)
}

func splitDependencies(modules []*debug.Module) Dependencies {
	deps := Dependencies{}

	for _, dep := range modules {
		path, version := dep.Path, dep.Version
		if dep.Replace != nil {
			path, version = dep.Replace.Path, dep.Replace.Version
		}

		formatted := fmt.Sprintf("%s=%q", path, version)
		if isStackModule(dep.Path) {
			deps.Stack = append(deps.Stack, formatted)
		} else {
			deps.Other = append(deps.Other, formatted)
		}
	}

	sort.Strings(deps.Stack)
	sort.Strings(deps.Other)

	return deps
}

func isStackModule(path string) bool {
	for _, module := range StackModules {
		if path == module || strings.HasPrefix(path, module+"/") {
			return true
		}
	}
	return false
}
