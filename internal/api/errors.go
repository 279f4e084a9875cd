// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ===== ERROR TYPE =====

// Error is the single failure shape the rest of the program sees.
// Every transport failure - HTTP error status, timeout, refused
// connection, malformed body - is reduced to one of these, so callers
// never inspect raw net/http errors.
type Error struct {
	Message    string // human-readable, safe to show in the UI
	StatusCode int    // HTTP status, 0 when no response was received
	Timeout    bool   // the client-side deadline expired
}

func (e *Error) Error() string {
	return e.Message
}

// IsTimeout reports whether err is a transport error caused by the
// request deadline expiring.
func IsTimeout(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Timeout
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not
// a transport error or no response was received.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// ===== NORMALIZATION =====

const (
	timeoutMessage    = "request timed out - the backend took too long to respond"
	connectionMessage = "cannot reach the backend - check that the server is running"
)

// errorResponse is the JSON body the backend sends with error statuses.
type errorResponse struct {
	Detail string `json:"detail"`
}

// newStatusError builds an Error from a non-2xx response. The backend
// puts its explanation in a "detail" field; when that is absent or the
// body is not JSON, a generic message carries the status code.
func newStatusError(status int, body []byte) *Error {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		if msg := strings.TrimSpace(resp.Detail); msg != "" {
			return &Error{Message: msg, StatusCode: status}
		}
	}
	return &Error{
		Message:    fmt.Sprintf("request failed with status %d", status),
		StatusCode: status,
	}
}

// normalizeTransportError maps errors from the HTTP round trip itself
// (no response received) onto the two cases callers care about:
// deadline expiry and everything else.
func normalizeTransportError(err error) *Error {
	if isDeadlineError(err) {
		return &Error{Message: timeoutMessage, Timeout: true}
	}
	return &Error{Message: connectionMessage}
}

func isDeadlineError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
