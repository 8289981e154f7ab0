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
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lician/finsync/financials"
)

var _ = Describe("Pairs", func() {
	DescribeTable("parsing symbols",
		func(symbol string, expected financials.Pair) {
			pair, err := financials.ParsePair(symbol)
			Expect(err).NotTo(HaveOccurred())
			Expect(pair).To(Equal(expected))
		},
		Entry("simple", "SAP.XETRA", financials.Pair{Ticker: "SAP", Exchange: "XETRA"}),
		Entry("lower case", "nesn.sw", financials.Pair{Ticker: "NESN", Exchange: "SW"}),
		Entry("dotted ticker", "BRK.B.US", financials.Pair{Ticker: "BRK.B", Exchange: "US"}),
	)

	DescribeTable("rejecting symbols",
		func(symbol string) {
			_, err := financials.ParsePair(symbol)
			Expect(err).To(MatchError(financials.ErrInvalidPair))
		},
		Entry("no exchange", "SAP"),
		Entry("trailing dot", "SAP."),
		Entry("leading dot", ".XETRA"),
		Entry("empty", ""),
	)

	It("keeps duplicates", func() {
		pairs, err := financials.ParsePairs([]string{"SAP.XETRA", "SAP.XETRA"})
		Expect(err).NotTo(HaveOccurred())
		Expect(pairs).To(HaveLen(2))
		Expect(pairs[0].String()).To(Equal("SAP.XETRA"))
	})

	It("loads pairs from csv", func() {
		doc := "ticker,exchange\nsap,xetra\nASML,AS\n"
		pairs, err := financials.LoadPairsCSV(strings.NewReader(doc))
		Expect(err).NotTo(HaveOccurred())
		Expect(pairs).To(Equal([]financials.Pair{
			{Ticker: "SAP", Exchange: "XETRA"},
			{Ticker: "ASML", Exchange: "AS"},
		}))
	})

	It("rejects csv rows without an exchange", func() {
		doc := "ticker,exchange\nsap,\n"
		_, err := financials.LoadPairsCSV(strings.NewReader(doc))
		Expect(err).To(MatchError(financials.ErrInvalidPair))
	})
})
