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
// Package localdb stores financial statements in a single-file SQLite
// database for local runs
package localdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/goccy/go-json"
	"github.com/lician/finsync/data"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const (
	Scheme = "sqlite://"

	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05.999999999-07:00"
)

var (
	ErrPathRequired = errors.New("sqlite: path is required")
)

// IsURL reports if dbURL refers to a SQLite database
func IsURL(dbURL string) bool {
	return strings.HasPrefix(dbURL, Scheme)
}

// PathFromURL strips the sqlite:// scheme from dbURL
func PathFromURL(dbURL string) string {
	return strings.TrimPrefix(dbURL, Scheme)
}

type Store struct {
	path string
	db   *sql.DB
}

// New opens the database at path and creates any missing tables
func New(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store := &Store{path: path, db: db}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Name returns the database URL of the store
func (s *Store) Name() string {
	return Scheme + s.path
}

// Upsert writes row in its own transaction
func (s *Store) Upsert(ctx context.Context, row data.Row) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	fields := row.Fields()
	args := make([]any, len(fields))
	for idx, field := range fields {
		args[idx] = bindValue(field)
	}

	if _, err = tx.ExecContext(ctx, upsertSQL(row), args...); err != nil {
		return err
	}

	return tx.Commit()
}

func upsertSQL(row data.Row) string {
	cols := data.Columns(row)
	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols))

	for idx, col := range cols {
		placeholders[idx] = "?"
		if !data.IsConflictColumn(col) {
			updates = append(updates, fmt.Sprintf("%[1]s = excluded.%[1]s", col))
		}
	}

	return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
		ON CONFLICT(%s)
		DO UPDATE SET %s`, row.Table(), strings.Join(cols, ", "), strings.Join(placeholders, ", "),
		strings.Join(data.ConflictColumns, ", "), strings.Join(updates, ", "))
}

// bindValue converts dates to their text form so the conflict key is stable
func bindValue(field data.Field) any {
	switch v := field.Value.(type) {
	case time.Time:
		if field.Column == "updated_at" {
			return v.UTC().Format(timestampLayout)
		}
		return v.Format(dateLayout)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.Format(dateLayout)
	case *float64:
		if v == nil {
			return nil
		}
		return *v
	default:
		return v
	}
}

// SaveSyncLog appends entry to the sync log
func (s *Store) SaveSyncLog(ctx context.Context, entry *data.SyncLogEntry) error {
	params, err := json.Marshal(entry.Parameters)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO sync_log (
			id, sync_type, ticker_symbol, exchange, status, started_at, completed_at,
			statements_created, error_count, error_message, parameters
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID.String(), entry.SyncType, entry.TickerSymbol, entry.Exchange, entry.Status,
		entry.StartedAt.UTC().Format(timestampLayout), entry.CompletedAt.UTC().Format(timestampLayout),
		entry.StatementsCreated, entry.ErrorCount, entry.ErrorMessage, string(params))
	return err
}

// SyncLogs returns the most recent sync log entries, newest first
func (s *Store) SyncLogs(ctx context.Context, limit int) ([]*data.SyncLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, sync_type, ticker_symbol, exchange, status,
		started_at, completed_at, statements_created, error_count, error_message, parameters
		FROM sync_log ORDER BY completed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*data.SyncLogEntry, 0, limit)
	for rows.Next() {
		var (
			entry                  data.SyncLogEntry
			startedAt, completedAt string
			params                 string
		)

		if err := rows.Scan(&entry.ID, &entry.SyncType, &entry.TickerSymbol, &entry.Exchange, &entry.Status,
			&startedAt, &completedAt, &entry.StatementsCreated, &entry.ErrorCount, &entry.ErrorMessage, &params); err != nil {
			return nil, err
		}

		if entry.StartedAt, err = time.Parse(timestampLayout, startedAt); err != nil {
			return nil, err
		}
		if entry.CompletedAt, err = time.Parse(timestampLayout, completedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(params), &entry.Parameters); err != nil {
			log.Warn().Err(err).Str("ID", entry.ID.String()).Msg("could not decode sync log parameters")
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// StatementCounts returns the number of rows in each statement table
func (s *Store) StatementCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(data.StatementTables))
	for _, tbl := range data.StatementTables {
		count := 0
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT count(*) FROM %s", tbl)).Scan(&count); err != nil {
			return nil, err
		}
		counts[tbl] = count
	}
	return counts, nil
}

// NumEntities returns the number of distinct listings with statements
func (s *Store) NumEntities(ctx context.Context) (int, error) {
	count := 0
	err := s.db.QueryRowContext(ctx, numEntitiesSQL).Scan(&count)
	return count, err
}

// IncomeStatements returns every income statement of entityKey
func (s *Store) IncomeStatements(ctx context.Context, entityKey string) ([]*data.IncomeStatement, error) {
	var rows []*data.IncomeStatement
	err := sqlscan.Select(ctx, s.db, &rows, selectSQL(data.IncomeStatementsTable, &data.IncomeStatement{}), entityKey)
	return rows, err
}

// BalanceSheets returns every balance sheet of entityKey
func (s *Store) BalanceSheets(ctx context.Context, entityKey string) ([]*data.BalanceSheet, error) {
	var rows []*data.BalanceSheet
	err := sqlscan.Select(ctx, s.db, &rows, selectSQL(data.BalanceSheetsTable, &data.BalanceSheet{}), entityKey)
	return rows, err
}

// CashFlows returns every cash flow statement of entityKey
func (s *Store) CashFlows(ctx context.Context, entityKey string) ([]*data.CashFlow, error) {
	var rows []*data.CashFlow
	err := sqlscan.Select(ctx, s.db, &rows, selectSQL(data.CashFlowsTable, &data.CashFlow{}), entityKey)
	return rows, err
}

func selectSQL(tbl string, row data.Row) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE entity_key = ? ORDER BY period_type, report_period",
		strings.Join(data.Columns(row), ", "), tbl)
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		createTableSQL(&data.IncomeStatement{}),
		createTableSQL(&data.BalanceSheet{}),
		createTableSQL(&data.CashFlow{}),
		`CREATE TABLE IF NOT EXISTS sync_log (
			id TEXT PRIMARY KEY,
			sync_type TEXT NOT NULL,
			ticker_symbol TEXT NOT NULL,
			exchange TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at TEXT NOT NULL,
			completed_at TEXT NOT NULL,
			statements_created INTEGER NOT NULL DEFAULT 0,
			error_count INTEGER NOT NULL DEFAULT 0,
			error_message TEXT,
			parameters TEXT NOT NULL DEFAULT '{}'
		);`,
		`CREATE INDEX IF NOT EXISTS sync_log_completed_at_idx ON sync_log (completed_at);`,
	}

	for _, statement := range statements {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return err
		}
	}

	return nil
}

// createTableSQL derives a table definition from the columns of row. Dates
// are declared DATE so the driver returns them as time.Time.
func createTableSQL(row data.Row) string {
	defs := make([]string, 0, 32)
	for _, field := range row.Fields() {
		var colType string
		switch field.Column {
		case "report_period", "filing_date", "updated_at":
			colType = "DATE"
		default:
			switch field.Value.(type) {
			case *float64, float64:
				colType = "REAL"
			default:
				colType = "TEXT"
			}
		}

		def := fmt.Sprintf("%s %s", field.Column, colType)
		if data.IsConflictColumn(field.Column) {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}

	defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(data.ConflictColumns, ", ")))

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n);", row.Table(), strings.Join(defs, ",\n\t"))
}

const numEntitiesSQL = `SELECT count(*) FROM (
	SELECT entity_key FROM income_statements
	UNION SELECT entity_key FROM balance_sheets
	UNION SELECT entity_key FROM cash_flow_statements
) AS entities`
