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
)

var (
	ErrStatus = errors.New("status code is invalid")
)

const (
	DefaultAPIURL  = "https://healthchecks.io/api/v3"
	DefaultPingURL = "https://hc-ping.com"
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

// Create a new healthchecks.io check for the snapshot job and return the id
func Create(ctx context.Context, apiURL, apiKey, name, slug string, tags []string, schedule string) (string, error) {
	command := createReq{
		APIKey:   apiKey,
		Name:     name,
		Slug:     slug,
		Tags:     strings.Join(tags, " "),
		Grace:    3600,
		Schedule: schedule,
		Timezone: "America/New_York",
	}

	result := createResp{}

	client := resty.New()
	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(command).
		SetResult(&result).
		Post(fmt.Sprintf("%s/checks/", apiURL))

	if err != nil {
		return "", err
	}

	if resp.StatusCode() > 201 {
		return "", fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	checkID := strings.Split(result.PingURL, "/")
	healthCheckID := checkID[len(checkID)-1]

	return healthCheckID, nil
}

// Check pings a single healthchecks.io check. A check with an empty ID is
// disabled and every ping is a no-op.
type Check struct {
	ID      string
	PingURL string
}

func New(id string) *Check {
	return &Check{
		ID:      id,
		PingURL: DefaultPingURL,
	}
}

// Start signals that a run has begun
func (check *Check) Start(ctx context.Context) error {
	return check.ping(ctx, "/start", "")
}

// Success signals that a run completed; msg is attached as the ping body
func (check *Check) Success(ctx context.Context, msg string) error {
	return check.ping(ctx, "", msg)
}

// Fail signals that a run failed; msg is attached as the ping body
func (check *Check) Fail(ctx context.Context, msg string) error {
	return check.ping(ctx, "/fail", msg)
}

func (check *Check) ping(ctx context.Context, suffix, msg string) error {
	if check == nil || check.ID == "" {
		return nil
	}

	resp, err := resty.New().R().
		SetContext(ctx).
		SetBody(msg).
		Post(fmt.Sprintf("%s/%s%s", check.PingURL, check.ID, suffix))

	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode())
	}

	return nil
}
