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
package eodhd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://eodhd.com/api"
	DefaultTimeout = 30 * time.Second
)

var (
	// ErrNotFound is returned when EODHD has no fundamentals for the symbol
	ErrNotFound = errors.New("symbol not found")

	// ErrTransport is returned when the request could not be completed or
	// the API responded with an unexpected status code
	ErrTransport = errors.New("eodhd request failed")

	// ErrMalformed is returned when the response is not a fundamentals document
	ErrMalformed = errors.New("malformed fundamentals response")
)

// Client fetches fundamentals from the EODHD API
type Client struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter

	client *resty.Client
}

type Option func(*Client)

// WithBaseURL overrides the API base URL
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout sets the timeout of a single request
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRateLimit caps the number of requests issued per minute. A limit of 0
// disables the cap.
func WithRateLimit(requestsPerMinute int) Option {
	return func(c *Client) {
		if requestsPerMinute <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/float64(61)), 1)
	}
}

// New creates an EODHD client authenticated with apiKey
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.client = resty.New().
		SetBaseURL(c.baseURL).
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/json")

	return c
}

// Fundamentals downloads the fundamentals document of symbol (e.g. SAP.XETRA).
// Financials is nil when EODHD has no statements for the symbol.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (*Fundamentals, error) {
	logger := zerolog.Ctx(ctx).With().Str("Symbol", symbol).Logger()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			logger.Error().Err(err).Msg("rate limiter wait failed")
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParam("api_token", c.apiKey).
		SetQueryParam("fmt", "json").
		Get("/fundamentals/{symbol}")
	if err != nil {
		logger.Error().Err(err).Msg("resty returned an error when querying fundamentals")
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		logger.Warn().Int("StatusCode", resp.StatusCode()).Msg("eodhd has no fundamentals for symbol")
		return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}

	if resp.StatusCode() >= 300 {
		body := excerpt(resp.Body())
		logger.Error().Int("StatusCode", resp.StatusCode()).Str("ResponseBody", body).
			Msg("received an invalid status code when querying eodhd fundamentals endpoint")
		return nil, fmt.Errorf("%w (%d): %s", ErrTransport, resp.StatusCode(), body)
	}

	return decodeFundamentals(logger, symbol, resp.Body())
}

func decodeFundamentals(logger zerolog.Logger, symbol string, body []byte) (*Fundamentals, error) {
	raw := bytes.TrimSpace(body)
	if len(raw) == 0 || bytes.Equal(raw, []byte("[]")) || bytes.Equal(raw, []byte("{}")) {
		logger.Warn().Msg("eodhd returned an empty fundamentals document")
		return nil, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}

	fundamentals := &Fundamentals{}
	if err := json.Unmarshal(raw, fundamentals); err != nil {
		logger.Error().Err(err).Str("ResponseBody", excerpt(raw)).Msg("could not decode fundamentals document")
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if fundamentals.Financials != nil {
		if fundamentals.Financials.Empty() {
			fundamentals.Financials = nil
		} else {
			fundamentals.Financials.normalize()
		}
	}

	if fundamentals.Financials == nil {
		logger.Info().Msg("fundamentals document has no financial statements")
	}

	return fundamentals, nil
}

func excerpt(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		return string(body[:maxLen]) + "..."
	}
	return string(body)
}
