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
package db

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*
var migrationFS embed.FS

// MigrationURL rewrites a postgres connection string for the pgx5 migrate driver
func MigrationURL(databaseURL string) string {
	for _, scheme := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, scheme)
		}
	}
	return databaseURL
}

// Migrate brings the statement tables and sync log up to date
func Migrate(databaseURL string) error {
	migrationDir, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}

	migration, err := migrate.NewWithSourceInstance("iofs", migrationDir, MigrationURL(databaseURL))
	if err != nil {
		return err
	}
	defer migration.Close()

	err = migration.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("database schema is up to date")
		return nil
	}

	if err == nil {
		version, _, _ := migration.Version()
		log.Info().Uint("Version", version).Msg("migrated database schema")
	}

	return err
}
