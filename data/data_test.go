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
package data_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lician/finsync/data"
)

func amount(v float64) *float64 {
	return &v
}

var _ = Describe("Rows", func() {
	var header data.RowHeader

	BeforeEach(func() {
		header = data.RowHeader{
			EntityKey:    data.EntityKey("sap", "xetra"),
			Ticker:       "SAP",
			Exchange:     "XETRA",
			ReportPeriod: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
			PeriodType:   data.Annual,
			Currency:     "EUR",
			Source:       data.SourceEODHD,
			UpdatedAt:    time.Now().UTC(),
		}
	})

	Context("entity keys", func() {
		It("includes the exchange and is upper-cased", func() {
			Expect(data.EntityKey("sap", " xetra ")).To(Equal("EODHD:SAP.XETRA"))
		})

		It("does not collide across exchanges", func() {
			Expect(data.EntityKey("SAP", "XETRA")).NotTo(Equal(data.EntityKey("SAP", "US")))
		})

		It("builds provider symbols", func() {
			Expect(data.Symbol("aapl", "us")).To(Equal("AAPL.US"))
			Expect(data.Symbol("aapl", "")).To(Equal("AAPL"))
		})
	})

	Context("fields", func() {
		It("always includes the conflict columns", func() {
			rows := []data.Row{
				&data.IncomeStatement{RowHeader: header},
				&data.BalanceSheet{RowHeader: header},
				&data.CashFlow{RowHeader: header},
			}
			for _, row := range rows {
				cols := data.Columns(row)
				for _, conflictCol := range data.ConflictColumns {
					Expect(cols).To(ContainElement(conflictCol), row.Table())
				}
				Expect(data.Values(row)).To(HaveLen(len(cols)))
			}
		})

		It("routes rows to their tables", func() {
			Expect((&data.IncomeStatement{}).Table()).To(Equal("income_statements"))
			Expect((&data.BalanceSheet{}).Table()).To(Equal("balance_sheets"))
			Expect((&data.CashFlow{}).Table()).To(Equal("cash_flow_statements"))
		})

		It("describes a row by statement, period type and date", func() {
			row := &data.BalanceSheet{RowHeader: header}
			Expect(row.Describe()).To(Equal("balance annual 2023-12-31"))
		})

		It("stores the period type as text", func() {
			row := &data.CashFlow{RowHeader: header}
			for _, field := range row.Fields() {
				if field.Column == "period_type" {
					Expect(field.Value).To(Equal("annual"))
				}
			}
		})

		It("recognizes conflict columns", func() {
			Expect(data.IsConflictColumn("entity_key")).To(BeTrue())
			Expect(data.IsConflictColumn("revenue")).To(BeFalse())
		})
	})

	Context("facts", func() {
		It("emits one fact per reported amount", func() {
			income := &data.IncomeStatement{
				RowHeader:    header,
				FiscalPeriod: "FY2023",
				Revenue:      amount(1000),
				NetIncome:    amount(150),
			}
			balance := &data.BalanceSheet{
				RowHeader: header,
				TotalDebt: 350,
			}

			facts := data.FactsFrom(income, balance)
			Expect(facts).To(HaveLen(3))
			Expect(facts[0].LineItem).To(Equal("revenue"))
			Expect(facts[0].Value).To(Equal(1000.0))
			Expect(facts[0].Statement).To(Equal("income"))
			Expect(facts[0].ReportPeriod).To(Equal("2023-12-31"))
			Expect(facts[1].LineItem).To(Equal("net_income"))
			Expect(facts[2].LineItem).To(Equal("total_debt"))
			Expect(facts[2].Statement).To(Equal("balance"))
		})
	})

	Context("sync log", func() {
		It("assigns a fresh identifier", func() {
			a := data.NewSyncLogEntry(data.SyncTypeEODHDFinancials, "SAP", "XETRA")
			b := data.NewSyncLogEntry(data.SyncTypeEODHDFinancials, "SAP", "XETRA")
			Expect(a.ID).NotTo(Equal(b.ID))
			Expect(a.Parameters).NotTo(BeNil())
		})
	})
})
