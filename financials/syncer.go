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
package financials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lician/finsync/data"
	"github.com/lician/finsync/eodhd"
	"github.com/rs/zerolog"
)

// maxLoggedErrors is the number of errors kept in the sync log message
const maxLoggedErrors = 5

// Fetcher retrieves the fundamentals document of a provider symbol
type Fetcher interface {
	Fundamentals(ctx context.Context, symbol string) (*eodhd.Fundamentals, error)
}

// Store persists statement rows and sync logs
type Store interface {
	// Upsert inserts row or overwrites every non-key column of the row
	// sharing its entity key, report period and period type. A row is
	// either written completely or not at all.
	Upsert(ctx context.Context, row data.Row) error

	// SaveSyncLog appends a sync log entry
	SaveSyncLog(ctx context.Context, entry *data.SyncLogEntry) error
}

// Syncer copies financial statements from a Fetcher into a Store
type Syncer struct {
	fetcher Fetcher
	store   Store
}

func NewSyncer(fetcher Fetcher, store Store) *Syncer {
	return &Syncer{
		fetcher: fetcher,
		store:   store,
	}
}

// SyncFinancials fetches every yearly and quarterly statement of the listing
// and upserts them. Row failures are collected in the result and do not stop
// the sync. A sync log entry is written whenever statements were received.
func (syncer *Syncer) SyncFinancials(ctx context.Context, ticker, exchange string) (result *SyncResult) {
	start := time.Now()
	symbol := data.Symbol(ticker, exchange)
	logger := zerolog.Ctx(ctx).With().Str("Symbol", symbol).Logger()

	result = &SyncResult{
		Ticker:   ticker,
		Exchange: exchange,
		Errors:   []string{},
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("Panic", r).Msg("recovered from panic during financials sync")
			result.Errors = append(result.Errors, fmt.Sprintf("%v", r))
			result.Success = false
		}
		result.DurationMs = time.Since(start).Milliseconds()
	}()

	fundamentals, err := syncer.fetcher.Fundamentals(ctx, symbol)
	if err != nil || fundamentals == nil || fundamentals.Financials == nil {
		msg := fmt.Sprintf("No financial data found for %s", symbol)
		if err != nil && !errors.Is(err, eodhd.ErrNotFound) {
			msg = fmt.Sprintf("%s: %s", msg, err)
		}
		logger.Warn().Err(err).Msg("no financial data")
		result.Errors = append(result.Errors, msg)
		return result
	}

	startedAt := time.Now().UTC()
	statements := fundamentals.Financials

	syncStatement(ctx, syncer.store, ticker, exchange, &statements.IncomeStatement, eodhd.MapIncomeStatement, &result.IncomeCount, result)
	syncStatement(ctx, syncer.store, ticker, exchange, &statements.BalanceSheet, eodhd.MapBalanceSheet, &result.BalanceCount, result)
	syncStatement(ctx, syncer.store, ticker, exchange, &statements.CashFlow, eodhd.MapCashFlow, &result.CashflowCount, result)

	entry := syncLogEntry(ticker, exchange, result)
	entry.StartedAt = startedAt
	entry.CompletedAt = time.Now().UTC()

	if err := syncer.store.SaveSyncLog(ctx, entry); err != nil {
		logger.Error().Err(err).Msg("could not save sync log")
		result.Errors = append(result.Errors, fmt.Sprintf("sync log: %s", err))
	}

	result.Success = len(result.Errors) == 0

	logger.Info().Object("Result", result).Msg("financials synced")

	return result
}

// syncStatement maps and upserts every record of statement in yearly then
// quarterly order, incrementing count for every row written. Records
// without a report date are skipped; an unparseable date is an error.
func syncStatement[T any, R data.Row](ctx context.Context, store Store, ticker, exchange string,
	statement *eodhd.Statement[T], mapper func(string, string, *T, data.PeriodType) R, count *int, result *SyncResult) {
	logger := zerolog.Ctx(ctx)

	buckets := []struct {
		periodType data.PeriodType
		periods    eodhd.Periods[T]
	}{
		{data.Annual, statement.Yearly},
		{data.Quarterly, statement.Quarterly},
	}

	for _, bucket := range buckets {
		for _, key := range bucket.periods.Keys() {
			record := bucket.periods[key]
			if record == nil {
				continue
			}

			row := mapper(ticker, exchange, record, bucket.periodType)
			if row.Header().ReportPeriod.IsZero() {
				if dated, ok := any(record).(interface{ HasDate() bool }); ok && dated.HasDate() {
					msg := fmt.Sprintf("%s %s %s: invalid report date", row.Statement(), bucket.periodType, key)
					logger.Error().Str("PeriodKey", key).Str("Table", row.Table()).Msg("invalid report date")
					result.Errors = append(result.Errors, msg)
					continue
				}
				logger.Debug().Str("PeriodKey", key).Str("Table", row.Table()).Msg("skipping record without a report date")
				continue
			}

			if err := store.Upsert(ctx, row); err != nil {
				logger.Error().Err(err).Str("Row", row.Describe()).Msg("upsert failed")
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", row.Describe(), err))
				continue
			}

			*count++
		}
	}
}

func syncLogEntry(ticker, exchange string, result *SyncResult) *data.SyncLogEntry {
	entry := data.NewSyncLogEntry(data.SyncTypeEODHDFinancials, ticker, exchange)
	entry.StatementsCreated = result.StatementsCreated()
	entry.ErrorCount = len(result.Errors)

	if len(result.Errors) == 0 {
		entry.Status = data.StatusCompleted
	} else {
		entry.Status = data.StatusPartial
		logged := result.Errors
		if len(logged) > maxLoggedErrors {
			logged = logged[:maxLoggedErrors]
		}
		msg := strings.Join(logged, "; ")
		entry.ErrorMessage = &msg
	}

	entry.Parameters["ticker"] = ticker
	entry.Parameters["exchange"] = exchange
	entry.Parameters["symbol"] = data.Symbol(ticker, exchange)
	entry.Parameters["entity_key"] = data.EntityKey(ticker, exchange)

	return entry
}
