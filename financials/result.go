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
	"github.com/rs/zerolog"
)

// SyncResult summarizes the sync of a single listing
type SyncResult struct {
	Success       bool     `json:"success"`
	Ticker        string   `json:"ticker"`
	Exchange      string   `json:"exchange"`
	IncomeCount   int      `json:"income_count"`
	BalanceCount  int      `json:"balance_count"`
	CashflowCount int      `json:"cashflow_count"`
	Errors        []string `json:"errors"`
	DurationMs    int64    `json:"duration_ms"`
}

// StatementsCreated is the number of rows written across all statements
func (result *SyncResult) StatementsCreated() int {
	return result.IncomeCount + result.BalanceCount + result.CashflowCount
}

func (result *SyncResult) MarshalZerologObject(e *zerolog.Event) {
	e.Bool("Success", result.Success)
	e.Str("Ticker", result.Ticker)
	e.Str("Exchange", result.Exchange)
	e.Int("IncomeCount", result.IncomeCount)
	e.Int("BalanceCount", result.BalanceCount)
	e.Int("CashflowCount", result.CashflowCount)
	e.Int("NumErrors", len(result.Errors))
	e.Int64("DurationMs", result.DurationMs)
}

// BatchResult summarizes a batch of syncs. Results are in input order.
type BatchResult struct {
	Total      int           `json:"total"`
	Successful int           `json:"successful"`
	Failed     int           `json:"failed"`
	Results    []*SyncResult `json:"results"`
}

// StatementsCreated is the number of rows written across the batch
func (batch *BatchResult) StatementsCreated() int {
	total := 0
	for _, result := range batch.Results {
		total += result.StatementsCreated()
	}
	return total
}

func (batch *BatchResult) MarshalZerologObject(e *zerolog.Event) {
	e.Int("Total", batch.Total)
	e.Int("Successful", batch.Successful)
	e.Int("Failed", batch.Failed)
	e.Int("StatementsCreated", batch.StatementsCreated())
}
