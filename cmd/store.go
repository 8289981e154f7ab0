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
	"errors"

	"github.com/lician/finsync/db"
	"github.com/lician/finsync/export"
	"github.com/lician/finsync/financials"
	"github.com/lician/finsync/library"
	"github.com/lician/finsync/localdb"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var (
	ErrNoDatabase = errors.New("db.url is not configured")
)

// statementStore is implemented by both the PostgreSQL library and the
// SQLite store
type statementStore interface {
	financials.Store
	library.Inventory
	export.Source

	Name() string
}

func openStore(ctx context.Context) (statementStore, func(), error) {
	dbURL := viper.GetString("db.url")
	if dbURL == "" {
		return nil, nil, ErrNoDatabase
	}

	if localdb.IsURL(dbURL) {
		store, err := localdb.New(ctx, localdb.PathFromURL(dbURL))
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("could not close sqlite database")
			}
		}, nil
	}

	myLibrary, err := library.New(ctx, dbURL)
	if err != nil {
		return nil, nil, err
	}
	return myLibrary, myLibrary.Close, nil
}

// migrateStore creates or upgrades the schema of the configured database
func migrateStore(ctx context.Context, dbURL string) error {
	if localdb.IsURL(dbURL) {
		store, err := localdb.New(ctx, localdb.PathFromURL(dbURL))
		if err != nil {
			return err
		}
		return store.Close()
	}

	return db.Migrate(dbURL)
}

func mustOpenStore(ctx context.Context) (statementStore, func()) {
	store, closer, err := openStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("could not open database")
	}
	return store, closer
}
