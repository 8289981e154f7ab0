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
package financials_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lician/finsync/data"
	"github.com/lician/finsync/eodhd"
	"github.com/lician/finsync/financials"
)

var _ = Describe("SyncFinancials", func() {
	var (
		ctx     context.Context
		fetcher *fakeFetcher
		store   *memoryStore
		syncer  *financials.Syncer
	)

	BeforeEach(func() {
		ctx = context.Background()
		fetcher = newFakeFetcher()
		store = newMemoryStore()
		syncer = financials.NewSyncer(fetcher, store)
		fetcher.documents["SAP.XETRA"] = sampleFundamentals()
	})

	It("writes every dated record and logs a completed sync", func() {
		result := syncer.SyncFinancials(ctx, "SAP", "XETRA")

		Expect(result.Success).To(BeTrue())
		Expect(result.Errors).To(BeEmpty())
		Expect(result.IncomeCount).To(Equal(4))
		Expect(result.BalanceCount).To(Equal(4))
		Expect(result.CashflowCount).To(Equal(4))
		Expect(fetcher.calls).To(Equal([]string{"SAP.XETRA"}))

		Expect(store.count(data.IncomeStatementsTable)).To(Equal(4))
		Expect(store.count(data.BalanceSheetsTable)).To(Equal(4))
		Expect(store.count(data.CashFlowsTable)).To(Equal(4))

		Expect(store.logs).To(HaveLen(1))
		entry := store.logs[0]
		Expect(entry.SyncType).To(Equal("eodhd_financials"))
		Expect(entry.Status).To(Equal(data.StatusCompleted))
		Expect(entry.StatementsCreated).To(Equal(12))
		Expect(entry.ErrorCount).To(Equal(0))
		Expect(entry.ErrorMessage).To(BeNil())
		Expect(entry.Parameters).To(HaveKeyWithValue("entity_key", "EODHD:SAP.XETRA"))
		Expect(entry.Parameters).To(HaveKeyWithValue("symbol", "SAP.XETRA"))
		Expect(entry.CompletedAt).NotTo(BeTemporally("<", entry.StartedAt))
	})

	It("is idempotent", func() {
		first := syncer.SyncFinancials(ctx, "SAP", "XETRA")
		rowsAfterFirst := len(store.rows)

		var debt float64
		for key, row := range store.rows {
			if key.table == data.BalanceSheetsTable && key.reportPeriod == "2022-12-31" {
				debt = row.(*data.BalanceSheet).TotalDebt
			}
		}

		second := syncer.SyncFinancials(ctx, "SAP", "XETRA")
		Expect(len(store.rows)).To(Equal(rowsAfterFirst))
		Expect(second.IncomeCount).To(Equal(first.IncomeCount))
		Expect(second.BalanceCount).To(Equal(first.BalanceCount))
		Expect(second.CashflowCount).To(Equal(first.CashflowCount))
		Expect(debt).To(Equal(350.0))
		Expect(store.logs).To(HaveLen(2))
	})

	It("isolates a single row failure", func() {
		store.rejects = func(row data.Row) error {
			if row.Describe() == "balance quarterly 2023-09-30" {
				return errRejected
			}
			return nil
		}

		result := syncer.SyncFinancials(ctx, "SAP", "XETRA")
		Expect(result.Success).To(BeFalse())
		Expect(result.Errors).To(Equal([]string{"balance quarterly 2023-09-30: constraint violation"}))
		Expect(result.BalanceCount).To(Equal(3))
		Expect(len(store.rows)).To(Equal(11))

		entry := store.logs[0]
		Expect(entry.Status).To(Equal(data.StatusPartial))
		Expect(entry.ErrorCount).To(Equal(1))
		Expect(*entry.ErrorMessage).To(Equal("balance quarterly 2023-09-30: constraint violation"))
	})

	It("keeps only the first five errors in the log message", func() {
		store.rejects = func(row data.Row) error {
			return errRejected
		}

		result := syncer.SyncFinancials(ctx, "SAP", "XETRA")
		Expect(result.Errors).To(HaveLen(12))
		Expect(result.StatementsCreated()).To(Equal(0))

		entry := store.logs[0]
		Expect(entry.ErrorCount).To(Equal(12))
		Expect(strings.Split(*entry.ErrorMessage, "; ")).To(HaveLen(5))
		Expect(*entry.ErrorMessage).To(HavePrefix("income annual 2022-12-31: constraint violation"))
	})

	It("processes statements in income, balance, cash flow order", func() {
		var order []string
		store.rejects = func(row data.Row) error {
			order = append(order, row.Describe())
			return nil
		}

		syncer.SyncFinancials(ctx, "SAP", "XETRA")
		Expect(order).To(Equal([]string{
			"income annual 2022-12-31",
			"income annual 2023-12-31",
			"income quarterly 2023-09-30",
			"income quarterly 2023-12-31",
			"balance annual 2022-12-31",
			"balance annual 2023-12-31",
			"balance quarterly 2023-09-30",
			"balance quarterly 2023-12-31",
			"cashflow annual 2022-12-31",
			"cashflow annual 2023-12-31",
			"cashflow quarterly 2023-09-30",
			"cashflow quarterly 2023-12-31",
		}))
	})

	It("skips records without a report date", func() {
		doc := sampleFundamentals()
		doc.Financials.IncomeStatement.Yearly["2021-12-31"] = &eodhd.IncomeRecord{}
		doc.Financials.BalanceSheet.Quarterly["2023-06-30"] = nil
		fetcher.documents["SAP.XETRA"] = doc

		result := syncer.SyncFinancials(ctx, "SAP", "XETRA")
		Expect(result.Success).To(BeTrue())
		Expect(result.IncomeCount).To(Equal(4))
		Expect(result.BalanceCount).To(Equal(4))
		Expect(result.CashflowCount).To(Equal(4))
		Expect(result.Errors).To(BeEmpty())
	})

	It("reports records with an unparseable report date", func() {
		doc := sampleFundamentals()
		doc.Financials.IncomeStatement.Yearly["2021-12-31"] = &eodhd.IncomeRecord{RecordHeader: eodhd.RecordHeader{Date: "2021-13-45"}}
		doc.Financials.CashFlow.Quarterly["bogus"] = &eodhd.CashFlowRecord{RecordHeader: eodhd.RecordHeader{Date: "not a date"}}
		fetcher.documents["SAP.XETRA"] = doc

		result := syncer.SyncFinancials(ctx, "SAP", "XETRA")
		Expect(result.Success).To(BeFalse())
		Expect(result.IncomeCount).To(Equal(4))
		Expect(result.CashflowCount).To(Equal(4))
		Expect(result.Errors).To(Equal([]string{
			"income annual 2021-12-31: invalid report date",
			"cashflow quarterly bogus: invalid report date",
		}))

		Expect(store.logs).To(HaveLen(1))
		Expect(store.logs[0].Status).To(Equal(data.StatusPartial))
		Expect(store.logs[0].ErrorCount).To(Equal(2))
	})

	Context("without financial data", func() {
		It("reports a missing symbol", func() {
			result := syncer.SyncFinancials(ctx, "NOPE", "US")
			Expect(result.Success).To(BeFalse())
			Expect(result.Errors).To(Equal([]string{"No financial data found for NOPE.US"}))
			Expect(result.StatementsCreated()).To(Equal(0))
			Expect(store.logs).To(BeEmpty())
		})

		It("reports nil financials", func() {
			fetcher.documents["SAP.XETRA"] = &eodhd.Fundamentals{General: map[string]any{"Code": "SAP"}}
			result := syncer.SyncFinancials(ctx, "SAP", "XETRA")
			Expect(result.Errors).To(Equal([]string{"No financial data found for SAP.XETRA"}))
			Expect(store.logs).To(BeEmpty())
		})

		It("includes the cause of transport failures", func() {
			fetcher.errs["SAP.XETRA"] = fmt.Errorf("%w (%d): %s", eodhd.ErrTransport, 502, "bad gateway")
			result := syncer.SyncFinancials(ctx, "SAP", "XETRA")
			Expect(result.Success).To(BeFalse())
			Expect(result.Errors).To(HaveLen(1))
			Expect(result.Errors[0]).To(HavePrefix("No financial data found for SAP.XETRA: "))
			Expect(result.Errors[0]).To(ContainSubstring("502"))
		})
	})

	It("reports a failure to write the sync log", func() {
		store.logErr = errors.New("connection reset")

		result := syncer.SyncFinancials(ctx, "SAP", "XETRA")
		Expect(result.Success).To(BeFalse())
		Expect(result.StatementsCreated()).To(Equal(12))
		Expect(result.Errors).To(Equal([]string{"sync log: connection reset"}))
	})

	Context("panics", func() {
		It("recovers from a panicking fetcher", func() {
			fetcher.panics["SAP.XETRA"] = true

			var result *financials.SyncResult
			Expect(func() { result = syncer.SyncFinancials(ctx, "SAP", "XETRA") }).NotTo(Panic())
			Expect(result.Success).To(BeFalse())
			Expect(result.Errors).To(Equal([]string{"unexpected document for SAP.XETRA"}))
		})

		It("preserves counts accumulated before the panic", func() {
			store.panicOnce = "balance annual 2022-12-31"

			result := syncer.SyncFinancials(ctx, "SAP", "XETRA")
			Expect(result.Success).To(BeFalse())
			Expect(result.IncomeCount).To(Equal(4))
			Expect(result.Errors).To(Equal([]string{"store exploded"}))
			Expect(store.count(data.IncomeStatementsTable)).To(Equal(4))
			Expect(store.logs).To(BeEmpty())
		})
	})
})
