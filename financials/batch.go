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
	"time"

	"github.com/rs/zerolog"
)

// DefaultDelay keeps the batch under five provider requests per second
const DefaultDelay = 200 * time.Millisecond

// Sleeper blocks for d between two syncs of a batch
type Sleeper func(ctx context.Context, d time.Duration)

type batchConfig struct {
	delay    time.Duration
	sleep    Sleeper
	progress func(idx, total int, result *SyncResult)
}

type BatchOption func(*batchConfig)

// WithDelay sets the pause between two consecutive pairs
func WithDelay(delay time.Duration) BatchOption {
	return func(cfg *batchConfig) {
		if delay >= 0 {
			cfg.delay = delay
		}
	}
}

// WithSleeper replaces the function used to wait between pairs
func WithSleeper(sleep Sleeper) BatchOption {
	return func(cfg *batchConfig) {
		if sleep != nil {
			cfg.sleep = sleep
		}
	}
}

// WithProgress registers a callback invoked after each pair is synced
func WithProgress(progress func(idx, total int, result *SyncResult)) BatchOption {
	return func(cfg *batchConfig) {
		cfg.progress = progress
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// SyncBatch syncs every pair in order, one at a time, pausing between pairs.
// A failed pair never stops the batch.
func (syncer *Syncer) SyncBatch(ctx context.Context, pairs []Pair, opts ...BatchOption) *BatchResult {
	cfg := &batchConfig{
		delay: DefaultDelay,
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := zerolog.Ctx(ctx)
	batch := &BatchResult{
		Total:   len(pairs),
		Results: make([]*SyncResult, 0, len(pairs)),
	}

	for idx, pair := range pairs {
		if idx > 0 {
			cfg.sleep(ctx, cfg.delay)
		}

		result := syncer.SyncFinancials(ctx, pair.Ticker, pair.Exchange)
		batch.Results = append(batch.Results, result)

		if result.Success {
			batch.Successful++
		} else {
			batch.Failed++
		}

		if cfg.progress != nil {
			cfg.progress(idx, len(pairs), result)
		}
	}

	logger.Info().Object("Batch", batch).Msg("batch sync complete")

	return batch
}
