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
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SourceEODHD is stamped on every row written from the EODHD fundamentals feed.
const SourceEODHD = "EODHD"

type PeriodType string

const (
	Annual    PeriodType = "annual"
	Quarterly PeriodType = "quarterly"
)

type StatementType string

const (
	IncomeStatementType StatementType = "income"
	BalanceSheetType    StatementType = "balance"
	CashFlowType        StatementType = "cashflow"
)

const (
	IncomeStatementsTable = "income_statements"
	BalanceSheetsTable    = "balance_sheets"
	CashFlowsTable        = "cash_flow_statements"
	SyncLogTable          = "sync_log"
)

// StatementTables lists every statement table in sync order
var StatementTables = []string{IncomeStatementsTable, BalanceSheetsTable, CashFlowsTable}

// ConflictColumns is the upsert identity shared by all statement tables
var ConflictColumns = []string{"entity_key", "report_period", "period_type"}

// Field is a single column/value pair of a row
type Field struct {
	Column string
	Value  any
}

// Row is implemented by every statement row that can be upserted
type Row interface {
	Table() string
	Statement() StatementType
	Header() *RowHeader

	// Fields returns every column of the row in a stable order. The
	// conflict columns are always included.
	Fields() []Field

	// Describe returns a short human readable identifier of the row
	// such as "income annual 2023-12-31"
	Describe() string
}

// RowHeader carries the identity and bookkeeping columns common to all
// statement rows
type RowHeader struct {
	EntityKey    string     `db:"entity_key"`
	Ticker       string     `db:"ticker"`
	Exchange     string     `db:"exchange"`
	ReportPeriod time.Time  `db:"report_period"`
	PeriodType   PeriodType `db:"period_type"`
	Currency     string     `db:"currency"`
	FilingDate   *time.Time `db:"filing_date"`
	Source       string     `db:"source"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

func (header *RowHeader) fields() []Field {
	return []Field{
		{"entity_key", header.EntityKey},
		{"ticker", header.Ticker},
		{"exchange", header.Exchange},
		{"report_period", header.ReportPeriod},
		{"period_type", string(header.PeriodType)},
		{"currency", header.Currency},
		{"filing_date", header.FilingDate},
		{"source", header.Source},
		{"updated_at", header.UpdatedAt},
	}
}

func (header *RowHeader) describe(statement StatementType) string {
	return fmt.Sprintf("%s %s %s", statement, header.PeriodType, header.ReportPeriod.Format("2006-01-02"))
}

func (header *RowHeader) MarshalZerologObject(e *zerolog.Event) {
	e.Str("EntityKey", header.EntityKey)
	e.Str("Ticker", header.Ticker)
	e.Str("Exchange", header.Exchange)
	e.Str("ReportPeriod", header.ReportPeriod.Format("2006-01-02"))
	e.Str("PeriodType", string(header.PeriodType))
	e.Str("Currency", header.Currency)
}

// EntityKey returns the stable identifier used to join statement rows for a
// listing. The key includes the exchange so that identical tickers listed on
// different exchanges never collide.
func EntityKey(ticker, exchange string) string {
	return fmt.Sprintf("%s:%s", SourceEODHD, Symbol(ticker, exchange))
}

// Symbol returns the provider symbol for a listing, e.g. SAP.XETRA
func Symbol(ticker, exchange string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	exchange = strings.ToUpper(strings.TrimSpace(exchange))
	if exchange == "" {
		return ticker
	}
	return fmt.Sprintf("%s.%s", ticker, exchange)
}

// Columns returns the column names of row in order
func Columns(row Row) []string {
	fields := row.Fields()
	cols := make([]string, len(fields))
	for idx, field := range fields {
		cols[idx] = field.Column
	}
	return cols
}

// Values returns the column values of row in the same order as Columns
func Values(row Row) []any {
	fields := row.Fields()
	vals := make([]any, len(fields))
	for idx, field := range fields {
		vals[idx] = field.Value
	}
	return vals
}

// IsConflictColumn reports if col is part of the upsert identity
func IsConflictColumn(col string) bool {
	for _, conflictCol := range ConflictColumns {
		if col == conflictCol {
			return true
		}
	}
	return false
}
