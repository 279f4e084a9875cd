// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

package session

import (
	"context"
	"testing"
	"time"

	"github.com/AmarSmajlovic/cheap-gpt/internal/api"
	"github.com/AmarSmajlovic/cheap-gpt/internal/model"
)

// fakeTransport is a scripted Transport that records every call.
type fakeTransport struct {
	sendCalls     int
	lastSendText  string
	lastSendModel string
	sendResult    api.ChatResult
	sendErr       error

	historyCalls     int
	lastHistoryLimit int
	historyRecords   []api.HistoryRecord
	historyErr       error

	clearCalls int
	clearErr   error

	modelsCalls   int
	modelsCatalog api.ModelCatalog
	modelsErr     error
}

func (f *fakeTransport) SendMessage(_ context.Context, text, modelID string) (api.ChatResult, error) {
	f.sendCalls++
	f.lastSendText = text
	f.lastSendModel = modelID
	return f.sendResult, f.sendErr
}

func (f *fakeTransport) History(_ context.Context, limit int) ([]api.HistoryRecord, error) {
	f.historyCalls++
	f.lastHistoryLimit = limit
	return f.historyRecords, f.historyErr
}

func (f *fakeTransport) ClearHistory(_ context.Context) error {
	f.clearCalls++
	return f.clearErr
}

func (f *fakeTransport) Models(_ context.Context) (api.ModelCatalog, error) {
	f.modelsCalls++
	return f.modelsCatalog, f.modelsErr
}

// run executes an effect synchronously and applies its event, the way
// the UI event loop does across a goroutine boundary.
func run(t *testing.T, s *Session, eff Effect, ok bool) {
	t.Helper()
	if !ok {
		t.Fatal("operation was rejected")
	}
	s.Apply(eff(context.Background()))
}

// ===== SEND =====

func TestSendBlankInputIsNoOp(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"tabs and newlines", "\t\n \t"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ft := &fakeTransport{}
			s := New(ft)

			eff, ok := s.Send(tc.text)

			if ok || eff != nil {
				t.Error("blank input should be rejected without an effect")
			}
			if ft.sendCalls != 0 {
				t.Errorf("transport called %d times, want 0", ft.sendCalls)
			}
			if s.Loading() || s.Err() != "" || s.MessageCount() != 0 {
				t.Error("blank input must not change any state")
			}
		})
	}
}

func TestSendSuccess(t *testing.T) {
	ft := &fakeTransport{
		sendResult: api.ChatResult{
			AssistantText: "hi there",
			ModelUsed:     "gemini-2.5-flash",
		},
	}
	s := New(ft)

	eff, ok := s.Send("  hello  ")
	if !ok {
		t.Fatal("send was rejected")
	}
	if !s.Loading() {
		t.Error("loading should be true while the request is outstanding")
	}
	if s.MessageCount() != 1 {
		t.Fatalf("user message should be visible before the reply, got %d messages", s.MessageCount())
	}

	s.Apply(eff(context.Background()))

	if s.Loading() {
		t.Error("loading should be false after the reply arrives")
	}
	msgs := s.Messages()
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != model.RoleUser || msgs[0].Content != "hello" {
		t.Errorf("first message = %q %q, want user %q", msgs[0].Role, msgs[0].Content, "hello")
	}
	if msgs[1].Role != model.RoleAssistant || msgs[1].Content != "hi there" {
		t.Errorf("second message = %q %q, want assistant %q", msgs[1].Role, msgs[1].Content, "hi there")
	}
	if msgs[1].Model != "gemini-2.5-flash" {
		t.Errorf("assistant model = %q, want %q", msgs[1].Model, "gemini-2.5-flash")
	}
	if ft.lastSendText != "hello" {
		t.Errorf("transport received %q, want trimmed %q", ft.lastSendText, "hello")
	}
}

func TestSendFailureRollsBack(t *testing.T) {
	ft := &fakeTransport{
		sendErr: &api.Error{Message: "LLM provider unavailable", StatusCode: 502},
	}
	s := New(ft)

	eff, ok := s.Send("hello")
	run(t, s, eff, ok)

	if s.MessageCount() != 0 {
		t.Errorf("failed user message must be rolled back, got %d messages", s.MessageCount())
	}
	if s.FailedMessage() != "hello" {
		t.Errorf("FailedMessage() = %q, want %q", s.FailedMessage(), "hello")
	}
	if s.Err() != "LLM provider unavailable" {
		t.Errorf("Err() = %q, want %q", s.Err(), "LLM provider unavailable")
	}
	if s.Loading() {
		t.Error("loading should be false after failure")
	}
}

func TestSendRejectedWhileLoading(t *testing.T) {
	ft := &fakeTransport{sendResult: api.ChatResult{AssistantText: "ok"}}
	s := New(ft)

	eff, ok := s.Send("first")
	if !ok {
		t.Fatal("first send was rejected")
	}

	if _, ok := s.Send("second"); ok {
		t.Error("second send should be rejected while one is outstanding")
	}
	if s.MessageCount() != 1 {
		t.Errorf("rejected send must not append, got %d messages", s.MessageCount())
	}

	s.Apply(eff(context.Background()))
	if ft.sendCalls != 1 {
		t.Errorf("transport called %d times, want 1", ft.sendCalls)
	}
}

func TestSendClearsPreviousErrorAndRetrySlot(t *testing.T) {
	ft := &fakeTransport{sendErr: &api.Error{Message: "boom"}}
	s := New(ft)

	eff, ok := s.Send("first")
	run(t, s, eff, ok)

	ft.sendErr = nil
	ft.sendResult = api.ChatResult{AssistantText: "ok"}

	eff, ok = s.Send("second")
	if !ok {
		t.Fatal("send was rejected")
	}
	if s.Err() != "" || s.FailedMessage() != "" {
		t.Error("a new send must clear both the error and the retry slot")
	}
	s.Apply(eff(context.Background()))
}

func TestChronologicalOrderAcrossSends(t *testing.T) {
	ft := &fakeTransport{sendResult: api.ChatResult{AssistantText: "reply"}}
	s := New(ft)

	for _, text := range []string{"one", "two", "three"} {
		eff, ok := s.Send(text)
		run(t, s, eff, ok)
	}

	msgs := s.Messages()
	if len(msgs) != 6 {
		t.Fatalf("got %d messages, want 6", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].Timestamp.Before(msgs[i-1].Timestamp) {
			t.Errorf("message %d is timestamped before message %d", i, i-1)
		}
	}
	for i := 0; i < len(msgs); i += 2 {
		if msgs[i].Role != model.RoleUser || msgs[i+1].Role != model.RoleAssistant {
			t.Errorf("pair at %d is %q/%q, want user/assistant", i, msgs[i].Role, msgs[i+1].Role)
		}
	}
}

func TestAssistantTimestampNudgedPastUserTurn(t *testing.T) {
	// Backend timestamps can predate the local user turn.
	ft := &fakeTransport{
		sendResult: api.ChatResult{
			AssistantText: "reply",
			Timestamp:     time.Now().Add(-time.Hour),
		},
	}
	s := New(ft)

	eff, ok := s.Send("hello")
	run(t, s, eff, ok)

	msgs := s.Messages()
	if !msgs[0].Timestamp.Before(msgs[1].Timestamp) {
		t.Error("user turn must be strictly before its paired reply")
	}
}

// ===== RETRY =====

func TestRetryAfterFailure(t *testing.T) {
	ft := &fakeTransport{sendErr: &api.Error{Message: "boom"}}
	s := New(ft)

	eff, ok := s.Send("hello")
	run(t, s, eff, ok)

	if s.FailedMessage() != "hello" || s.MessageCount() != 0 {
		t.Fatal("failure setup did not leave the expected state")
	}

	ft.sendErr = nil
	ft.sendResult = api.ChatResult{AssistantText: "hi"}

	eff, ok = s.Retry()
	run(t, s, eff, ok)

	if s.FailedMessage() != "" || s.Err() != "" {
		t.Error("successful retry must clear the retry slot and the error")
	}
	msgs := s.Messages()
	if len(msgs) != 2 || msgs[0].Content != "hello" || msgs[1].Content != "hi" {
		t.Errorf("messages = %+v, want user %q then assistant %q", msgs, "hello", "hi")
	}
	if ft.sendCalls != 2 {
		t.Errorf("transport called %d times, want 2", ft.sendCalls)
	}
}

func TestRetryFailureRepopulatesSlot(t *testing.T) {
	ft := &fakeTransport{sendErr: &api.Error{Message: "still down"}}
	s := New(ft)

	eff, ok := s.Send("hello")
	run(t, s, eff, ok)

	eff, ok = s.Retry()
	run(t, s, eff, ok)

	if s.FailedMessage() != "hello" {
		t.Errorf("FailedMessage() = %q, want %q after a failed retry", s.FailedMessage(), "hello")
	}
	if s.Err() != "still down" {
		t.Errorf("Err() = %q, want %q", s.Err(), "still down")
	}
}

func TestRetryWithoutFailedMessageIsNoOp(t *testing.T) {
	ft := &fakeTransport{}
	s := New(ft)

	if _, ok := s.Retry(); ok {
		t.Error("retry with an empty slot should be rejected")
	}
	if ft.sendCalls != 0 {
		t.Error("retry with an empty slot must not call the transport")
	}
}

// ===== HISTORY =====

func TestLoadHistoryRebuildsTranscript(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ft := &fakeTransport{
		historyRecords: []api.HistoryRecord{
			{ID: 1, UserText: "first q", AssistantText: "first a", Timestamp: base},
			{ID: 2, UserText: "second q", AssistantText: "second a", Timestamp: base.Add(time.Minute)},
		},
	}
	s := New(ft, WithHistoryLimit(50))

	eff, ok := s.LoadHistory()
	run(t, s, eff, ok)

	if ft.lastHistoryLimit != 50 {
		t.Errorf("history limit = %d, want 50", ft.lastHistoryLimit)
	}

	msgs := s.Messages()
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want 2 per record", len(msgs))
	}
	for i, want := range []struct {
		id      string
		role    model.Role
		content string
	}{
		{model.HistoryUserID(1), model.RoleUser, "first q"},
		{model.HistoryAssistantID(1), model.RoleAssistant, "first a"},
		{model.HistoryUserID(2), model.RoleUser, "second q"},
		{model.HistoryAssistantID(2), model.RoleAssistant, "second a"},
	} {
		if msgs[i].ID != want.id || msgs[i].Role != want.role || msgs[i].Content != want.content {
			t.Errorf("message %d = {%s %s %q}, want {%s %s %q}",
				i, msgs[i].ID, msgs[i].Role, msgs[i].Content, want.id, want.role, want.content)
		}
	}
	for i := 1; i < len(msgs); i++ {
		if !msgs[i-1].Timestamp.Before(msgs[i].Timestamp) {
			t.Errorf("rebuilt transcript not strictly ordered at %d", i)
		}
	}
}

func TestLoadHistoryDuplicateTimestampsStayOrdered(t *testing.T) {
	// The backend keeps one timestamp per exchange at second precision,
	// so adjacent records can collide exactly.
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ft := &fakeTransport{
		historyRecords: []api.HistoryRecord{
			{ID: 1, UserText: "q1", AssistantText: "a1", Timestamp: base},
			{ID: 2, UserText: "q2", AssistantText: "a2", Timestamp: base},
			{ID: 3, UserText: "q3", AssistantText: "a3", Timestamp: base},
		},
	}
	s := New(ft)

	eff, ok := s.LoadHistory()
	run(t, s, eff, ok)

	msgs := s.Messages()
	if len(msgs) != 6 {
		t.Fatalf("got %d messages, want 6", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if !msgs[i-1].Timestamp.Before(msgs[i].Timestamp) {
			t.Errorf("rebuilt transcript not strictly ascending at %d: %v vs %v",
				i, msgs[i-1].Timestamp, msgs[i].Timestamp)
		}
	}
}

func TestLoadHistoryReplacesExistingMessages(t *testing.T) {
	ft := &fakeTransport{sendResult: api.ChatResult{AssistantText: "reply"}}
	s := New(ft)

	eff, ok := s.Send("local turn")
	run(t, s, eff, ok)

	ft.historyRecords = []api.HistoryRecord{
		{ID: 7, UserText: "stored q", AssistantText: "stored a", Timestamp: time.Now()},
	}
	eff, ok = s.LoadHistory()
	run(t, s, eff, ok)

	msgs := s.Messages()
	if len(msgs) != 2 || msgs[0].Content != "stored q" {
		t.Error("load should replace the transcript wholesale")
	}
}

func TestLoadHistoryFailureKeepsMessages(t *testing.T) {
	ft := &fakeTransport{sendResult: api.ChatResult{AssistantText: "reply"}}
	s := New(ft)

	eff, ok := s.Send("hello")
	run(t, s, eff, ok)

	ft.historyErr = &api.Error{Message: "backend is down"}
	eff, ok = s.LoadHistory()
	run(t, s, eff, ok)

	if s.MessageCount() != 2 {
		t.Error("a failed load must leave the current transcript intact")
	}
	if s.Err() != "backend is down" {
		t.Errorf("Err() = %q, want %q", s.Err(), "backend is down")
	}
	if s.FailedMessage() != "" {
		t.Error("history failures have no retry slot")
	}
}

func TestLoadHistoryEmpty(t *testing.T) {
	ft := &fakeTransport{}
	s := New(ft)

	eff, ok := s.LoadHistory()
	run(t, s, eff, ok)

	if s.MessageCount() != 0 || s.Err() != "" || s.Loading() {
		t.Error("empty history should yield an empty idle session")
	}
}

// ===== CLEAR =====

func TestClearHistorySuccess(t *testing.T) {
	ft := &fakeTransport{sendResult: api.ChatResult{AssistantText: "reply"}}
	s := New(ft)

	eff, ok := s.Send("hello")
	run(t, s, eff, ok)

	eff, ok = s.ClearHistory()
	run(t, s, eff, ok)

	if s.MessageCount() != 0 {
		t.Error("confirmed clear should empty the transcript")
	}
	if ft.clearCalls != 1 {
		t.Errorf("transport clear called %d times, want 1", ft.clearCalls)
	}
}

func TestClearHistoryFailureKeepsMessages(t *testing.T) {
	ft := &fakeTransport{sendResult: api.ChatResult{AssistantText: "reply"}}
	s := New(ft)

	eff, ok := s.Send("hello")
	run(t, s, eff, ok)

	ft.clearErr = &api.Error{Message: "delete failed", StatusCode: 500}
	eff, ok = s.ClearHistory()
	run(t, s, eff, ok)

	if s.MessageCount() != 2 {
		t.Error("a failed clear must leave the transcript intact")
	}
	if s.Err() != "delete failed" {
		t.Errorf("Err() = %q, want %q", s.Err(), "delete failed")
	}
}

// ===== MODELS =====

func TestLoadModelsSuccess(t *testing.T) {
	ft := &fakeTransport{
		modelsCatalog: api.ModelCatalog{
			Default: "gemini-2.5-flash",
			Models: []api.ModelOption{
				{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Available: true},
				{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro", Available: true},
			},
		},
	}
	s := New(ft)

	eff, ok := s.LoadModels()
	run(t, s, eff, ok)

	models := s.Models()
	if len(models) != 3 {
		t.Fatalf("got %d models, want catalog plus the auto option", len(models))
	}
	if models[0].ID != AutoModelID {
		t.Errorf("first option = %q, want %q", models[0].ID, AutoModelID)
	}
	if s.SelectedModel() != AutoModelID {
		t.Errorf("selection = %q, should keep %q when still valid", s.SelectedModel(), AutoModelID)
	}
}

func TestLoadModelsFailureFallsBack(t *testing.T) {
	ft := &fakeTransport{modelsErr: &api.Error{Message: "no catalog"}}
	s := New(ft, WithSelectedModel("gemini-2.5-pro"))

	eff, ok := s.LoadModels()
	run(t, s, eff, ok)

	models := s.Models()
	if len(models) != 1 || models[0].ID != AutoModelID {
		t.Errorf("fallback catalog = %+v, want the single auto option", models)
	}
	if s.SelectedModel() != AutoModelID {
		t.Errorf("selection = %q, want fallback to %q", s.SelectedModel(), AutoModelID)
	}
}

func TestSetSelectedModel(t *testing.T) {
	ft := &fakeTransport{
		modelsCatalog: api.ModelCatalog{
			Default: "gemini-2.5-flash",
			Models:  []api.ModelOption{{ID: "gemini-2.5-flash", Name: "Flash", Available: true}},
		},
	}
	s := New(ft)

	eff, ok := s.LoadModels()
	run(t, s, eff, ok)

	if !s.SetSelectedModel("gemini-2.5-flash") {
		t.Error("known model id should be accepted")
	}
	if s.SetSelectedModel("gpt-5-turbo-max") {
		t.Error("unknown model id should be rejected")
	}
	if s.SelectedModel() != "gemini-2.5-flash" {
		t.Errorf("selection = %q, want %q", s.SelectedModel(), "gemini-2.5-flash")
	}
}

// ===== ERROR HANDLING =====

func TestClearErrorKeepsRetrySlot(t *testing.T) {
	ft := &fakeTransport{sendErr: &api.Error{Message: "boom"}}
	s := New(ft)

	eff, ok := s.Send("hello")
	run(t, s, eff, ok)

	s.ClearError()

	if s.Err() != "" {
		t.Error("ClearError should clear the error")
	}
	if s.FailedMessage() != "hello" {
		t.Error("dismissing the error must not drop the retry slot")
	}
}

func TestClearFailedMessageKeepsError(t *testing.T) {
	ft := &fakeTransport{sendErr: &api.Error{Message: "boom"}}
	s := New(ft)

	eff, ok := s.Send("hello")
	run(t, s, eff, ok)

	s.ClearFailedMessage()

	if s.FailedMessage() != "" {
		t.Error("ClearFailedMessage should clear the slot")
	}
	if s.Err() != "boom" {
		t.Error("dropping the retry slot must not clear the error")
	}
}

func TestToggleSidebar(t *testing.T) {
	s := New(&fakeTransport{})

	if s.SidebarOpen() {
		t.Error("sidebar starts closed")
	}
	if !s.ToggleSidebar() || !s.SidebarOpen() {
		t.Error("first toggle should open the sidebar")
	}
	if s.ToggleSidebar() || s.SidebarOpen() {
		t.Error("second toggle should close it")
	}
}

func TestMutatingOpsRejectedWhileLoading(t *testing.T) {
	ft := &fakeTransport{}
	s := New(ft)

	eff, ok := s.LoadHistory()
	if !ok {
		t.Fatal("load was rejected")
	}

	if _, ok := s.LoadHistory(); ok {
		t.Error("second load should be rejected while one is outstanding")
	}
	if _, ok := s.ClearHistory(); ok {
		t.Error("clear should be rejected while a load is outstanding")
	}
	if _, ok := s.LoadModels(); ok {
		t.Error("model refresh should be rejected while a load is outstanding")
	}

	s.Apply(eff(context.Background()))
	if s.Loading() {
		t.Error("loading should be false once the outstanding event is applied")
	}
}
