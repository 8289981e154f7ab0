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
package healthcheck

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
)

const (
	DefaultAPIURL  = "https://healthchecks.io/api/v3"
	DefaultPingURL = "https://hc-ping.com"
)

var (
	ErrStatus    = errors.New("status code is invalid")
	ErrNoCheckID = errors.New("health check id is empty")
)

type createReq struct {
	APIKey      string `json:"api_key"`
	Name        string `json:"name"`
	Description string `json:"desc,omitempty"`
	Grace       int    `json:"grace"`
	Schedule    string `json:"schedule"`
	Slug        string `json:"slug"`
	Tags        string `json:"tags"`
	Timezone    string `json:"tz"`
}

type createResp struct {
	PingURL string `json:"ping_url"`
}

// Check describes a healthchecks.io check to create
type Check struct {
	Name        string
	Description string
	Tags        []string
	Schedule    string
	Timezone    string
}

// Client talks to the healthchecks.io management and ping APIs
type Client struct {
	apiKey  string
	apiURL  string
	pingURL string

	client *resty.Client
}

type Option func(*Client)

// WithURLs overrides the management and ping endpoints
func WithURLs(apiURL, pingURL string) Option {
	return func(c *Client) {
		c.apiURL = strings.TrimSuffix(apiURL, "/")
		c.pingURL = strings.TrimSuffix(pingURL, "/")
	}
}

func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		apiURL:  DefaultAPIURL,
		pingURL: DefaultPingURL,
		client:  resty.New(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Create a new healthchecks.io check and return the id
func (c *Client) Create(ctx context.Context, check Check) (string, error) {
	timezone := check.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	command := createReq{
		APIKey:      c.apiKey,
		Name:        check.Name,
		Description: check.Description,
		Slug:        slug.Make(check.Name),
		Tags:        strings.Join(check.Tags, " "),
		Grace:       3600,
		Schedule:    check.Schedule,
		Timezone:    timezone,
	}

	result := createResp{}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(command).
		SetResult(&result).
		Post(c.apiURL + "/checks/")
	if err != nil {
		return "", err
	}

	if resp.StatusCode() > 201 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	checkID := strings.Split(strings.TrimSuffix(result.PingURL, "/"), "/")
	healthCheckID := checkID[len(checkID)-1]
	if healthCheckID == "" {
		return "", ErrNoCheckID
	}

	return healthCheckID, nil
}

// Start signals that a run has begun
func (c *Client) Start(ctx context.Context, id string) error {
	return c.ping(ctx, id, "/start", "")
}

// Ping signals that a run succeeded
func (c *Client) Ping(ctx context.Context, id string) error {
	return c.ping(ctx, id, "", "")
}

// Fail signals that a run failed. msg is attached to the ping.
func (c *Client) Fail(ctx context.Context, id string, msg string) error {
	return c.ping(ctx, id, "/fail", msg)
}

func (c *Client) ping(ctx context.Context, id, suffix, body string) error {
	if id == "" {
		return ErrNoCheckID
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("%s/%s%s", c.pingURL, id, suffix))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("CheckID", id).Msg("healthcheck ping failed")
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}
