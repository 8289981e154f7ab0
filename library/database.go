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
package library

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lician/finsync/data"
	"github.com/rs/zerolog/log"
)

// Library is a PostgreSQL database of financial statements
type Library struct {
	DBUrl string

	Pool *pgxpool.Pool
}

// New connects to the library at dbURL. The caller must Close it.
func New(ctx context.Context, dbURL string) (*Library, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &Library{
		DBUrl: dbURL,
		Pool:  pool,
	}, nil
}

// Close the database pool
func (myLibrary *Library) Close() {
	if myLibrary.Pool != nil {
		myLibrary.Pool.Close()
	}
}

// Name returns the connection string with the password removed
func (myLibrary *Library) Name() string {
	u, err := url.Parse(myLibrary.DBUrl)
	if err != nil {
		return "postgres"
	}
	return u.Redacted()
}

// Upsert writes row in its own transaction
func (myLibrary *Library) Upsert(ctx context.Context, row data.Row) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Rollback(ctx); err != nil {
			if !errors.Is(err, pgx.ErrTxClosed) {
				log.Error().Err(err).Msg("error rollingback tx")
			}
		}
	}()

	if _, err := tx.Exec(ctx, upsertSQL(row), data.Values(row)...); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// upsertSQL builds an insert of every column of row that overwrites all
// non-key columns when the row already exists
func upsertSQL(row data.Row) string {
	cols := data.Columns(row)
	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols))

	for idx, col := range cols {
		quoted[idx] = fmt.Sprintf(`"%s"`, col)
		placeholders[idx] = fmt.Sprintf("$%d", idx+1)
		if !data.IsConflictColumn(col) {
			updates = append(updates, fmt.Sprintf(`"%[1]s" = EXCLUDED."%[1]s"`, col))
		}
	}

	return fmt.Sprintf(`INSERT INTO %[1]s (%[2]s) VALUES (%[3]s)
	ON CONFLICT ON CONSTRAINT %[1]s_pkey
	DO UPDATE SET %[4]s`, row.Table(), strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "), strings.Join(updates, ", "))
}

// SaveSyncLog appends entry to the sync log
func (myLibrary *Library) SaveSyncLog(ctx context.Context, entry *data.SyncLogEntry) error {
	_, err := myLibrary.Pool.Exec(ctx, `INSERT INTO sync_log (
		"id",
		"sync_type",
		"ticker_symbol",
		"exchange",
		"status",
		"started_at",
		"completed_at",
		"statements_created",
		"error_count",
		"error_message",
		"parameters"
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID, entry.SyncType, entry.TickerSymbol, entry.Exchange, entry.Status,
		entry.StartedAt, entry.CompletedAt, entry.StatementsCreated, entry.ErrorCount,
		entry.ErrorMessage, entry.Parameters)
	return err
}

// SyncLogs returns the most recent sync log entries, newest first
func (myLibrary *Library) SyncLogs(ctx context.Context, limit int) ([]*data.SyncLogEntry, error) {
	var entries []*data.SyncLogEntry
	err := pgxscan.Select(ctx, myLibrary.Pool, &entries,
		`SELECT id, sync_type, ticker_symbol, exchange, status, started_at, completed_at,
statements_created, error_count, error_message, parameters
FROM sync_log ORDER BY completed_at DESC LIMIT $1`, limit)
	return entries, err
}

// StatementCounts returns the number of rows in each statement table
func (myLibrary *Library) StatementCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(data.StatementTables))
	for _, tbl := range data.StatementTables {
		count := 0
		if err := myLibrary.Pool.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", tbl)).Scan(&count); err != nil {
			return nil, err
		}
		counts[tbl] = count
	}
	return counts, nil
}

// NumEntities returns the number of distinct listings with statements
func (myLibrary *Library) NumEntities(ctx context.Context) (int, error) {
	count := 0
	err := myLibrary.Pool.QueryRow(ctx, numEntitiesSQL).Scan(&count)
	return count, err
}

// IncomeStatements returns every income statement of entityKey ordered by
// period type and report period
func (myLibrary *Library) IncomeStatements(ctx context.Context, entityKey string) ([]*data.IncomeStatement, error) {
	var rows []*data.IncomeStatement
	err := pgxscan.Select(ctx, myLibrary.Pool, &rows, selectSQL(data.IncomeStatementsTable, &data.IncomeStatement{}), entityKey)
	return rows, err
}

// BalanceSheets returns every balance sheet of entityKey
func (myLibrary *Library) BalanceSheets(ctx context.Context, entityKey string) ([]*data.BalanceSheet, error) {
	var rows []*data.BalanceSheet
	err := pgxscan.Select(ctx, myLibrary.Pool, &rows, selectSQL(data.BalanceSheetsTable, &data.BalanceSheet{}), entityKey)
	return rows, err
}

// CashFlows returns every cash flow statement of entityKey
func (myLibrary *Library) CashFlows(ctx context.Context, entityKey string) ([]*data.CashFlow, error) {
	var rows []*data.CashFlow
	err := pgxscan.Select(ctx, myLibrary.Pool, &rows, selectSQL(data.CashFlowsTable, &data.CashFlow{}), entityKey)
	return rows, err
}

func selectSQL(tbl string, row data.Row) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE entity_key = $1 ORDER BY period_type, report_period",
		strings.Join(data.Columns(row), ", "), tbl)
}

const numEntitiesSQL = `SELECT count(*) FROM (
	SELECT entity_key FROM income_statements
	UNION SELECT entity_key FROM balance_sheets
	UNION SELECT entity_key FROM cash_flow_statements
) AS entities`
