// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-interactions.
//
// go-interactions is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package discord is a minimal client for the platform's REST API,
// covering the single outbound call this gateway needs: installing the
// global application command definitions.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIBase is the platform API root.
const DefaultAPIBase = "https://discord.com/api/v10"

// Sentinel errors for the platform client.
var (
	// ErrMissingToken is returned when no bot token is configured.
	ErrMissingToken = errors.New("bot token is required")

	// ErrMissingAppID is returned when no application id is configured.
	ErrMissingAppID = errors.New("application id is required")
)

// Client calls the platform REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// ClientConfig holds platform client configuration.
type ClientConfig struct {
	// Token is the bot token used for authorization. Required.
	Token string

	// APIBase overrides the platform API root (useful for testing).
	APIBase string

	// Timeout bounds each request. Defaults to 10 seconds.
	Timeout time.Duration
}

// NewClient creates a platform API client.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil || cfg.Token == "" {
		return nil, ErrMissingToken
	}

	baseURL := cfg.APIBase
	if baseURL == "" {
		baseURL = DefaultAPIBase
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      cfg.Token,
	}, nil
}

// RegisterCommands installs the given global application commands,
// replacing the full existing set (bulk overwrite semantics).
func (c *Client) RegisterCommands(ctx context.Context, appID string, commands []Command) error {
	if appID == "" {
		return ErrMissingAppID
	}

	path := fmt.Sprintf("/applications/%s/commands", appID)
	_, err := c.doRequest(ctx, http.MethodPut, path, commands)
	return err
}

// doRequest performs one JSON request against the platform API.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("platform API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return data, nil
}
