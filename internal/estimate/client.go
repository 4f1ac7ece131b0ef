/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package estimate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fencestudio/internal/domain"
)

// CalculatePath is the estimator endpoint issued relative to the base URL.
const CalculatePath = "/api/fence/calculate"

// Estimator is the remote calculation dependency of the pipeline. The nil
// client (no base URL configured) makes every recompute take the fallback
// branch.
type Estimator interface {
	Calculate(ctx context.Context, req domain.CalcRequest) (domain.CalcResponse, error)
}

// Client is a minimal HTTP JSON client for the external calculation service.
type Client struct {
	BaseURL string
	Token   string // optional bearer token
	client  *http.Client
}

// NewClient creates a client; baseURL may carry a trailing slash.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// Calculate posts the segment payload and decodes the response envelope.
// A transport failure, a non-2xx status or a success=false payload are all
// reported as errors so the pipeline degrades to its local fallback.
func (c *Client) Calculate(ctx context.Context, reqBody domain.CalcRequest) (domain.CalcResponse, error) {
	var out domain.CalcResponse
	buf, err := json.Marshal(reqBody)
	if err != nil {
		return out, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+CalculatePath, bytes.NewReader(buf))
	if err != nil {
		return out, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, fmt.Errorf("calculation service: %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	if !out.Success {
		return out, fmt.Errorf("calculation service rejected request: %s", out.Error)
	}
	return out, nil
}
