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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lician/finsync/financials"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (sleeper *recordingSleeper) Sleep(_ context.Context, d time.Duration) {
	sleeper.delays = append(sleeper.delays, d)
}

var _ = Describe("SyncBatch", func() {
	var (
		ctx     context.Context
		fetcher *fakeFetcher
		store   *memoryStore
		syncer  *financials.Syncer
		sleeper *recordingSleeper
		pairs   []financials.Pair
	)

	BeforeEach(func() {
		ctx = context.Background()
		fetcher = newFakeFetcher()
		store = newMemoryStore()
		syncer = financials.NewSyncer(fetcher, store)
		sleeper = &recordingSleeper{}

		pairs = []financials.Pair{
			{Ticker: "SAP", Exchange: "XETRA"},
			{Ticker: "MISSING1", Exchange: "US"},
			{Ticker: "NESN", Exchange: "SW"},
			{Ticker: "MISSING2", Exchange: "US"},
			{Ticker: "ASML", Exchange: "AS"},
		}
		for _, symbol := range []string{"SAP.XETRA", "NESN.SW", "ASML.AS"} {
			fetcher.documents[symbol] = sampleFundamentals()
		}
	})

	It("accounts for every pair in input order", func() {
		batch := syncer.SyncBatch(ctx, pairs, financials.WithSleeper(sleeper.Sleep))

		Expect(batch.Total).To(Equal(5))
		Expect(batch.Successful).To(Equal(3))
		Expect(batch.Failed).To(Equal(2))
		Expect(batch.Results).To(HaveLen(5))
		for idx, result := range batch.Results {
			Expect(result.Ticker).To(Equal(pairs[idx].Ticker))
			Expect(result.Exchange).To(Equal(pairs[idx].Exchange))
		}
		Expect(batch.Results[1].Success).To(BeFalse())
		Expect(batch.Results[3].Success).To(BeFalse())
		Expect(batch.StatementsCreated()).To(Equal(36))
		Expect(fetcher.calls).To(Equal([]string{"SAP.XETRA", "MISSING1.US", "NESN.SW", "MISSING2.US", "ASML.AS"}))
	})

	It("sleeps between pairs but not after the last one", func() {
		syncer.SyncBatch(ctx, pairs, financials.WithSleeper(sleeper.Sleep), financials.WithDelay(50*time.Millisecond))
		Expect(sleeper.delays).To(HaveLen(4))
		Expect(sleeper.delays).To(HaveEach(50 * time.Millisecond))
	})

	It("uses the default delay", func() {
		syncer.SyncBatch(ctx, pairs[:2], financials.WithSleeper(sleeper.Sleep))
		Expect(sleeper.delays).To(Equal([]time.Duration{financials.DefaultDelay}))
	})

	It("waits at least the delay between pairs with the real sleeper", func() {
		start := time.Now()
		syncer.SyncBatch(ctx, pairs[:3], financials.WithDelay(20*time.Millisecond))
		Expect(time.Since(start)).To(BeNumerically(">=", 40*time.Millisecond))
	})

	It("reports progress after each pair", func() {
		var seen []int
		syncer.SyncBatch(ctx, pairs, financials.WithSleeper(sleeper.Sleep),
			financials.WithProgress(func(idx, total int, result *financials.SyncResult) {
				Expect(total).To(Equal(5))
				seen = append(seen, idx)
			}))
		Expect(seen).To(Equal([]int{0, 1, 2, 3, 4}))
	})

	It("handles an empty batch", func() {
		batch := syncer.SyncBatch(ctx, nil, financials.WithSleeper(sleeper.Sleep))
		Expect(batch.Total).To(Equal(0))
		Expect(batch.Results).To(BeEmpty())
		Expect(sleeper.delays).To(BeEmpty())
	})

	It("keeps going after a panicking pair", func() {
		fetcher.panics["SAP.XETRA"] = true
		batch := syncer.SyncBatch(ctx, pairs, financials.WithSleeper(sleeper.Sleep))
		Expect(batch.Failed).To(Equal(3))
		Expect(batch.Successful).To(Equal(2))
	})
})
