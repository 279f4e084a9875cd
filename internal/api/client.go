// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

// Package api implements the HTTP client for the cheap-gpt backend.
// It speaks the backend's four endpoints (send, history, clear, models)
// and normalizes every failure into a single Error type. The package
// has no knowledge of UI or session state.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ===== CONSTANTS =====

const (
	// DefaultTimeout bounds every round trip. The backend proxies to an
	// LLM provider, so responses routinely take several seconds.
	DefaultTimeout = 30 * time.Second

	// DefaultHistoryLimit is how many stored exchanges History fetches
	// when the caller passes a non-positive limit.
	DefaultHistoryLimit = 20

	// maxResponseSize caps how much of a response body is read.
	// PERFORMANCE: a misbehaving backend cannot make the client buffer
	// an unbounded body.
	maxResponseSize = 2 * 1024 * 1024

	userAgent = "cheap-gpt-tui/1.0"
)

// ===== RESULT TYPES =====

// ChatResult is the outcome of a successful send: the backend echoes
// the user text and returns the assistant reply.
type ChatResult struct {
	UserText      string
	AssistantText string
	Timestamp     time.Time
	ModelUsed     string
}

// HistoryRecord is one stored exchange. The backend keeps a single
// timestamp per exchange, not one per side.
type HistoryRecord struct {
	ID            int64
	UserText      string
	AssistantText string
	Timestamp     time.Time
}

// ModelOption describes one selectable model from the catalog.
type ModelOption struct {
	ID          string
	Name        string
	Description string
	BestFor     string
	Available   bool
}

// ModelCatalog is the backend's model listing plus its default choice.
type ModelCatalog struct {
	Default string
	Models  []ModelOption
}

// ===== WIRE TYPES =====

type chatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

type chatResponse struct {
	UserMessage string `json:"user_message"`
	AIResponse  string `json:"ai_response"`
	Timestamp   string `json:"timestamp"`
	ModelUsed   string `json:"model_used"`
}

type historyRecordResponse struct {
	ID          int64  `json:"id"`
	UserMessage string `json:"user_message"`
	AIResponse  string `json:"ai_response"`
	Timestamp   string `json:"timestamp"`
}

type modelResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	BestFor     string `json:"best_for"`
	Available   bool   `json:"available"`
}

type modelsResponse struct {
	Default string          `json:"default"`
	Models  []modelResponse `json:"models"`
}

// ===== CLIENT =====

// Client talks to one backend instance. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient builds a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
}

// WithTimeout overrides the per-request deadline. Non-positive values
// are ignored.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.timeout = d
	}
	return c
}

// BaseURL returns the backend address the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ===== OPERATIONS =====

// SendMessage posts one user message and returns the assistant reply.
// Exactly one round trip; the caller decides whether to retry.
func (c *Client) SendMessage(ctx context.Context, text, modelID string) (ChatResult, error) {
	var resp chatResponse
	err := c.doJSON(ctx, http.MethodPost, "/chat", chatRequest{Message: text, Model: modelID}, &resp)
	if err != nil {
		return ChatResult{}, err
	}
	return ChatResult{
		UserText:      resp.UserMessage,
		AssistantText: resp.AIResponse,
		Timestamp:     parseTimestamp(resp.Timestamp),
		ModelUsed:     resp.ModelUsed,
	}, nil
}

// History fetches up to limit stored exchanges. The backend returns
// them newest first; History reverses the slice so callers always see
// chronological order.
func (c *Client) History(ctx context.Context, limit int) ([]HistoryRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var resp []historyRecordResponse
	path := "/history?limit=" + strconv.Itoa(limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]HistoryRecord, len(resp))
	for i, r := range resp {
		records[len(resp)-1-i] = HistoryRecord{
			ID:            r.ID,
			UserText:      r.UserMessage,
			AssistantText: r.AIResponse,
			Timestamp:     parseTimestamp(r.Timestamp),
		}
	}
	return records, nil
}

// ClearHistory deletes all stored exchanges on the backend.
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/history", nil, nil)
}

// Models fetches the selectable model catalog.
func (c *Client) Models(ctx context.Context) (ModelCatalog, error) {
	var resp modelsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/models", nil, &resp); err != nil {
		return ModelCatalog{}, err
	}

	catalog := ModelCatalog{
		Default: resp.Default,
		Models:  make([]ModelOption, len(resp.Models)),
	}
	for i, m := range resp.Models {
		catalog.Models[i] = ModelOption(m)
	}
	return catalog, nil
}

// ===== HTTP PLUMBING =====

// doJSON runs one request/response cycle: marshal body, apply the
// deadline, classify the outcome, decode into out when provided.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: fmt.Sprintf("encode request: %v", err)}
		}
		reader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return normalizeTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return normalizeTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{
			Message:    "backend returned a malformed response",
			StatusCode: resp.StatusCode,
		}
	}
	return nil
}

// parseTimestamp accepts the formats the backend actually emits.
// FastAPI serializes naive datetimes without a zone offset, which
// RFC 3339 parsing rejects, so that shape gets its own layout.
func parseTimestamp(s string) time.Time {
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}
