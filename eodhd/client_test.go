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
package eodhd_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lician/finsync/eodhd"
)

const fundamentalsDocument = `{
	"General": {"Code": "SAP", "Name": "SAP SE", "CurrencyCode": "EUR"},
	"Financials": {
		"Balance_Sheet": {
			"currency_symbol": "EUR",
			"yearly": {
				"2023-12-31": {"date": "2023-12-31", "filing_date": "2024-02-28", "shortTermDebt": "100.00", "longTermDebtTotal": 250, "cash": "42"}
			},
			"quarterly": []
		},
		"Cash_Flow": {
			"currency_symbol": "EUR",
			"yearly": {},
			"quarterly": {
				"2023-09-30": {"date": "2023-09-30", "currency_symbol": "USD", "netBorrowings": "-300", "freeCashFlow": null}
			}
		},
		"Income_Statement": {
			"currency_symbol": "EUR",
			"yearly": {
				"2022-12-31": {"date": "2022-12-31", "totalRevenue": "30871000000.00", "grossProfit": "", "ebitda": null},
				"2023-12-31": {"date": "2023-12-31", "totalRevenue": 31207000000, "netIncome": "N/A"}
			},
			"quarterly": {}
		}
	}
}`

var _ = Describe("Client", func() {
	var (
		ctx       context.Context
		server    *httptest.Server
		handler   http.HandlerFunc
		requested *http.Request
	)

	BeforeEach(func() {
		ctx = context.Background()
		requested = nil
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requested = r
			handler(w, r)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	respond := func(status int, body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}
	}

	client := func() *eodhd.Client {
		return eodhd.New("test-key", eodhd.WithBaseURL(server.URL), eodhd.WithTimeout(5*time.Second))
	}

	It("requests the fundamentals endpoint with credentials", func() {
		handler = respond(http.StatusOK, fundamentalsDocument)

		_, err := client().Fundamentals(ctx, "SAP.XETRA")
		Expect(err).NotTo(HaveOccurred())
		Expect(requested.URL.Path).To(Equal("/fundamentals/SAP.XETRA"))
		Expect(requested.URL.Query().Get("api_token")).To(Equal("test-key"))
		Expect(requested.URL.Query().Get("fmt")).To(Equal("json"))
	})

	It("decodes statements and tolerates provider quirks", func() {
		handler = respond(http.StatusOK, fundamentalsDocument)

		fundamentals, err := client().Fundamentals(ctx, "SAP.XETRA")
		Expect(err).NotTo(HaveOccurred())
		Expect(fundamentals.General).To(HaveKeyWithValue("Code", "SAP"))
		Expect(fundamentals.Financials).NotTo(BeNil())

		income := fundamentals.Financials.IncomeStatement
		Expect(income.Yearly.Keys()).To(Equal([]string{"2022-12-31", "2023-12-31"}))
		Expect(income.Yearly["2022-12-31"].TotalRevenue.Or(0)).To(Equal(30871000000.0))
		Expect(income.Yearly["2022-12-31"].GrossProfit.Valid()).To(BeFalse())
		Expect(income.Yearly["2022-12-31"].EBITDA.Valid()).To(BeFalse())
		Expect(income.Yearly["2023-12-31"].TotalRevenue.Or(0)).To(Equal(31207000000.0))
		Expect(income.Yearly["2023-12-31"].NetIncome.Valid()).To(BeFalse())

		balance := fundamentals.Financials.BalanceSheet
		Expect(balance.Quarterly).To(BeEmpty())
		Expect(balance.Yearly["2023-12-31"].ShortTermDebt.Or(0)).To(Equal(100.0))
		Expect(balance.Yearly["2023-12-31"].Filed()).NotTo(BeNil())
	})

	It("copies the statement currency onto records without one", func() {
		handler = respond(http.StatusOK, fundamentalsDocument)

		fundamentals, err := client().Fundamentals(ctx, "SAP.XETRA")
		Expect(err).NotTo(HaveOccurred())
		Expect(fundamentals.Financials.BalanceSheet.Yearly["2023-12-31"].CurrencySymbol).To(Equal("EUR"))
		Expect(fundamentals.Financials.CashFlow.Quarterly["2023-09-30"].CurrencySymbol).To(Equal("USD"))
	})

	It("returns nil financials when there are no statements", func() {
		handler = respond(http.StatusOK, `{"General": {"Code": "XYZ"}, "Financials": {"Income_Statement": {"yearly": [], "quarterly": []}}}`)

		fundamentals, err := client().Fundamentals(ctx, "XYZ.US")
		Expect(err).NotTo(HaveOccurred())
		Expect(fundamentals.Financials).To(BeNil())
	})

	It("keeps populated statements when other sections are sent as arrays", func() {
		handler = respond(http.StatusOK, `{"Financials": {
			"Income_Statement": [],
			"Balance_Sheet": {"currency_symbol": "EUR", "yearly": {"2023-12-31": {"date": "2023-12-31", "totalAssets": "5"}}, "quarterly": []},
			"Cash_Flow": null
		}}`)

		fundamentals, err := client().Fundamentals(ctx, "SAP.XETRA")
		Expect(err).NotTo(HaveOccurred())
		Expect(fundamentals.Financials).NotTo(BeNil())
		Expect(fundamentals.Financials.IncomeStatement.Len()).To(Equal(0))
		Expect(fundamentals.Financials.CashFlow.Len()).To(Equal(0))
		Expect(fundamentals.Financials.BalanceSheet.Yearly["2023-12-31"].TotalAssets.Or(0)).To(Equal(5.0))
		Expect(fundamentals.Financials.BalanceSheet.Yearly["2023-12-31"].CurrencySymbol).To(Equal("EUR"))
	})

	It("returns nil financials when the section is sent as an array", func() {
		handler = respond(http.StatusOK, `{"General": {"Code": "XYZ"}, "Financials": []}`)

		fundamentals, err := client().Fundamentals(ctx, "XYZ.US")
		Expect(err).NotTo(HaveOccurred())
		Expect(fundamentals.Financials).To(BeNil())
	})

	DescribeTable("classifies failures",
		func(status int, body string, expected error) {
			handler = respond(status, body)

			fundamentals, err := client().Fundamentals(ctx, "SAP.XETRA")
			Expect(fundamentals).To(BeNil())
			Expect(err).To(MatchError(expected))
		},
		Entry("404", http.StatusNotFound, `Ticker Not Found.`, eodhd.ErrNotFound),
		Entry("empty array", http.StatusOK, `[]`, eodhd.ErrNotFound),
		Entry("empty object", http.StatusOK, `{}`, eodhd.ErrNotFound),
		Entry("unauthorized", http.StatusUnauthorized, `{"message": "Unauthenticated"}`, eodhd.ErrTransport),
		Entry("server error", http.StatusBadGateway, `bad gateway`, eodhd.ErrTransport),
		Entry("not json", http.StatusOK, `<html>maintenance</html>`, eodhd.ErrMalformed),
	)

	It("returns a transport error when the server is unreachable", func() {
		handler = respond(http.StatusOK, fundamentalsDocument)
		c := client()
		server.Close()

		_, err := c.Fundamentals(ctx, "SAP.XETRA")
		Expect(err).To(MatchError(eodhd.ErrTransport))
	})
})

var _ = Describe("Number", func() {
	DescribeTable("decoding",
		func(raw string, valid bool, expected float64) {
			var n eodhd.Number
			Expect(json.Unmarshal([]byte(raw), &n)).To(Succeed())
			Expect(n.Valid()).To(Equal(valid))
			Expect(n.Or(0)).To(Equal(expected))
		},
		Entry("number", `12.5`, true, 12.5),
		Entry("negative number", `-3`, true, -3.0),
		Entry("numeric string", `"1000.00"`, true, 1000.0),
		Entry("empty string", `""`, false, 0.0),
		Entry("null", `null`, false, 0.0),
		Entry("not a number", `"N/A"`, false, 0.0),
	)

	It("returns independent pointers", func() {
		n := eodhd.NumberOf(7)
		a, b := n.Ptr(), n.Ptr()
		*a = 9
		Expect(*b).To(Equal(7.0))
		Expect(eodhd.Number{}.Ptr()).To(BeNil())
	})
})
