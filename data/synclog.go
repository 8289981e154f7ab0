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
package data

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	SyncTypeEODHDFinancials = "eodhd_financials"

	StatusCompleted = "COMPLETED"
	StatusPartial   = "PARTIAL"
)

// SyncLogEntry records the outcome of a single sync run. Entries are only
// ever appended.
type SyncLogEntry struct {
	ID                uuid.UUID         `db:"id"`
	SyncType          string            `db:"sync_type"`
	TickerSymbol      string            `db:"ticker_symbol"`
	Exchange          string            `db:"exchange"`
	Status            string            `db:"status"`
	StartedAt         time.Time         `db:"started_at"`
	CompletedAt       time.Time         `db:"completed_at"`
	StatementsCreated int               `db:"statements_created"`
	ErrorCount        int               `db:"error_count"`
	ErrorMessage      *string           `db:"error_message"`
	Parameters        map[string]string `db:"parameters"`
}

// NewSyncLogEntry returns an entry with a fresh identifier for the given
// listing
func NewSyncLogEntry(syncType, ticker, exchange string) *SyncLogEntry {
	return &SyncLogEntry{
		ID:           uuid.New(),
		SyncType:     syncType,
		TickerSymbol: ticker,
		Exchange:     exchange,
		Parameters:   make(map[string]string),
	}
}

// Duration is the wall time between the start and completion of the run
func (entry *SyncLogEntry) Duration() time.Duration {
	return entry.CompletedAt.Sub(entry.StartedAt)
}

func (entry *SyncLogEntry) MarshalZerologObject(e *zerolog.Event) {
	e.Str("ID", entry.ID.String())
	e.Str("SyncType", entry.SyncType)
	e.Str("Ticker", entry.TickerSymbol)
	e.Str("Exchange", entry.Exchange)
	e.Str("Status", entry.Status)
	e.Int("StatementsCreated", entry.StatementsCreated)
	e.Int("ErrorCount", entry.ErrorCount)
	if entry.ErrorMessage != nil {
		e.Str("ErrorMessage", *entry.ErrorMessage)
	}
}
