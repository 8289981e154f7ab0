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
	"fmt"
	"strings"
	"time"

	"github.com/lician/finsync/data"
	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Inventory is the read side of a statement store
type Inventory interface {
	StatementCounts(ctx context.Context) (map[string]int, error)
	NumEntities(ctx context.Context) (int, error)
	SyncLogs(ctx context.Context, limit int) ([]*data.SyncLogEntry, error)
}

// recentLogs is the number of sync log entries included in a summary
const recentLogs = 10

var tableTitles = map[string]string{
	data.IncomeStatementsTable: "Income Statements",
	data.BalanceSheetsTable:    "Balance Sheets",
	data.CashFlowsTable:        "Cash Flow Statements",
}

// Summary describes the contents of inventory in markdown
func Summary(ctx context.Context, name string, inventory Inventory) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	builder.WriteString("# finsync library\n")
	builder.WriteString("## Details\n\n")
	builder.WriteString(fmt.Sprintf("Database: %s\n\n", name))

	numEntities, err := inventory.NumEntities(ctx)
	if err != nil {
		return "", err
	}
	builder.WriteString(p.Sprintf("  * Companies: %d\n", numEntities))

	counts, err := inventory.StatementCounts(ctx)
	if err != nil {
		return "", err
	}

	total := 0
	for _, tbl := range data.StatementTables {
		builder.WriteString(p.Sprintf("  * %s: %d\n", tableTitles[tbl], counts[tbl]))
		total += counts[tbl]
	}
	builder.WriteString(p.Sprintf("  * Total Statements: %d\n\n", total))

	logs, err := inventory.SyncLogs(ctx, recentLogs)
	if err != nil {
		return "", err
	}

	if len(logs) == 0 {
		builder.WriteString("Last Synced: Never\n\n")
		return builder.String(), nil
	}

	lastSync := logs[0].CompletedAt
	builder.WriteString(fmt.Sprintf("Last Synced: %s (%s)\n\n", timeago.English.Format(lastSync),
		lastSync.Local().Format("01/02/2006")))

	builder.WriteString("## Recent syncs\n\n")
	for _, entry := range logs {
		builder.WriteString(p.Sprintf("  * %s %s %s: %d statements in %s\n", entry.TickerSymbol, entry.Exchange,
			entry.Status, entry.StatementsCreated, entry.Duration().Round(time.Millisecond)))
	}

	partial := make([]*data.SyncLogEntry, 0, len(logs))
	for _, entry := range logs {
		if entry.Status == data.StatusPartial {
			partial = append(partial, entry)
		}
	}

	if len(partial) > 0 {
		builder.WriteString("\n## Partial syncs\n\n")
		for _, entry := range partial {
			msg := ""
			if entry.ErrorMessage != nil {
				msg = *entry.ErrorMessage
			}
			builder.WriteString(p.Sprintf("  * %s.%s (%d errors): %s\n", entry.TickerSymbol, entry.Exchange,
				entry.ErrorCount, msg))
		}
	}

	return builder.String(), nil
}
