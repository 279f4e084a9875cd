// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(raw)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"user_message": "hello",
			"ai_response": "hi there",
			"timestamp": "2025-06-01T10:30:00.123456",
			"model_used": "gemini-2.5-flash"
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	result, err := client.SendMessage(context.Background(), "hello", "auto")

	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"hello","model":"auto"}`, gotBody)
	assert.Equal(t, "hello", result.UserText)
	assert.Equal(t, "hi there", result.AssistantText)
	assert.Equal(t, "gemini-2.5-flash", result.ModelUsed)
	assert.Equal(t, 2025, result.Timestamp.Year())
	assert.False(t, result.Timestamp.IsZero())
}

func TestSendMessageErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"detail": "LLM provider unavailable"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SendMessage(context.Background(), "hello", "")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "LLM provider unavailable", apiErr.Message)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.False(t, apiErr.Timeout)
}

func TestSendMessageErrorWithoutDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>nginx error page</html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SendMessage(context.Background(), "hello", "")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "request failed with status 500", apiErr.Message)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestSendMessageTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewClient(srv.URL).WithTimeout(50 * time.Millisecond)
	_, err := client.SendMessage(context.Background(), "hello", "")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Timeout)
	assert.True(t, IsTimeout(err))
	assert.Equal(t, 0, apiErr.StatusCode)
}

func TestSendMessageConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	_, err := NewClient(srv.URL).SendMessage(context.Background(), "hello", "")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.False(t, apiErr.Timeout)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "cannot reach the backend")
}

func TestHistoryReversesToChronological(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/history", r.URL.Path)
		require.Equal(t, "5", r.URL.Query().Get("limit"))

		// Backend order: newest first.
		w.Write([]byte(`[
			{"id": 3, "user_message": "third", "ai_response": "c", "timestamp": "2025-06-01T12:00:00"},
			{"id": 2, "user_message": "second", "ai_response": "b", "timestamp": "2025-06-01T11:00:00"},
			{"id": 1, "user_message": "first", "ai_response": "a", "timestamp": "2025-06-01T10:00:00"}
		]`))
	}))
	defer srv.Close()

	records, err := NewClient(srv.URL).History(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, "first", records[0].UserText)
	assert.Equal(t, int64(3), records[2].ID)
	assert.True(t, records[0].Timestamp.Before(records[2].Timestamp))
}

func TestHistoryDefaultLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "20", r.URL.Query().Get("limit"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	records, err := NewClient(srv.URL).History(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClearHistory(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"message": "History cleared"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).ClearHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/history", gotPath)
}

func TestModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models", r.URL.Path)
		w.Write([]byte(`{
			"default": "gemini-2.5-flash",
			"models": [
				{"id": "gemini-2.5-flash", "name": "Gemini 2.5 Flash",
				 "description": "Fast general model", "best_for": "everyday chat", "available": true},
				{"id": "gemini-2.5-pro", "name": "Gemini 2.5 Pro",
				 "description": "Deeper reasoning", "best_for": "hard problems", "available": false}
			]
		}`))
	}))
	defer srv.Close()

	catalog, err := NewClient(srv.URL).Models(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", catalog.Default)
	require.Len(t, catalog.Models, 2)
	assert.Equal(t, "Gemini 2.5 Flash", catalog.Models[0].Name)
	assert.Equal(t, "everyday chat", catalog.Models[0].BestFor)
	assert.False(t, catalog.Models[1].Available)
}

func TestMalformedResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Models(context.Background())

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "malformed response")
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{"rfc3339 with zone", "2025-06-01T10:30:00Z", false},
		{"naive with microseconds", "2025-06-01T10:30:00.123456", false},
		{"naive without fraction", "2025-06-01T10:30:00", false},
		{"garbage", "yesterday", true},
		{"empty", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := parseTimestamp(tc.input)
			assert.Equal(t, tc.zero, got.IsZero())
		})
	}
}
