// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

// Package session owns the in-memory conversation state: the message
// list, the loading flag, the current error, the failed-message slot
// used for retry, and the selected model. Operations validate and
// mutate state synchronously, then hand back an Effect that performs
// the network call; the Effect's resulting Event is fed to Apply to
// finish the transition. All mutation happens on the caller's event
// loop - effects run elsewhere but only ever touch the session through
// the Event they return.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AmarSmajlovic/cheap-gpt/internal/api"
	"github.com/AmarSmajlovic/cheap-gpt/internal/model"
)

// ===== TRANSPORT =====

// Transport is the backend surface the session needs. *api.Client
// satisfies it; tests substitute a scripted fake.
type Transport interface {
	SendMessage(ctx context.Context, text, modelID string) (api.ChatResult, error)
	History(ctx context.Context, limit int) ([]api.HistoryRecord, error)
	ClearHistory(ctx context.Context) error
	Models(ctx context.Context) (api.ModelCatalog, error)
}

// Effect is deferred work produced by an operation. Run it off the
// event loop and feed the Event it returns to Apply.
type Effect func(ctx context.Context) Event

// ===== SESSION =====

// AutoModelID selects server-side routing instead of a fixed model.
const AutoModelID = "auto"

// Session is the single mutable conversation aggregate. It is not safe
// for concurrent mutation; the owning event loop is the only writer.
type Session struct {
	id        string
	transport Transport

	historyLimit int

	messages      []model.Message
	loading       bool
	lastError     string
	failedMessage string
	selectedModel string
	models        []api.ModelOption
	sidebarOpen   bool
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithHistoryLimit sets how many stored exchanges LoadHistory fetches.
func WithHistoryLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithSelectedModel sets the initial model selection.
func WithSelectedModel(id string) Option {
	return func(s *Session) {
		if id != "" {
			s.selectedModel = id
		}
	}
}

// New builds an empty session backed by the given transport.
func New(t Transport, opts ...Option) *Session {
	s := &Session{
		id:            uuid.NewString(),
		transport:     t,
		historyLimit:  api.DefaultHistoryLimit,
		selectedModel: AutoModelID,
		models:        fallbackModels(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===== READ ACCESSORS =====

// ID returns the session's unique identifier, used in debug logs.
func (s *Session) ID() string { return s.id }

// Messages returns a copy of the transcript, oldest first.
func (s *Session) Messages() []model.Message {
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// MessageCount returns the number of messages in the transcript.
func (s *Session) MessageCount() int { return len(s.messages) }

// Loading reports whether a request is outstanding. It is true for
// exactly the window between an operation starting and its Event being
// applied.
func (s *Session) Loading() bool { return s.loading }

// Err returns the current error message, or "" when there is none.
func (s *Session) Err() string { return s.lastError }

// FailedMessage returns the text of the most recent send that failed,
// or "" when there is nothing to retry.
func (s *Session) FailedMessage() string { return s.failedMessage }

// SelectedModel returns the model id used for the next send.
func (s *Session) SelectedModel() string { return s.selectedModel }

// Models returns a copy of the selectable model options.
func (s *Session) Models() []api.ModelOption {
	out := make([]api.ModelOption, len(s.models))
	copy(out, s.models)
	return out
}

// ===== OPERATIONS =====

// Send validates text and begins a send. It returns false - with no
// state change and no network call - when the trimmed text is empty or
// another request is outstanding. On true, the user message is already
// appended and loading is set; run the Effect and Apply its Event.
func (s *Session) Send(text string) (Effect, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || s.loading {
		return nil, false
	}

	msg := model.NewUserMessage(trimmed)
	if n := len(s.messages); n > 0 {
		// Rapid sends can land inside the nudge window of the previous
		// reply; keep the transcript strictly ascending.
		if last := s.messages[n-1].Timestamp; !msg.Timestamp.After(last) {
			msg.Timestamp = last.Add(time.Millisecond)
		}
	}
	s.messages = append(s.messages, msg)
	s.loading = true
	s.lastError = ""
	s.failedMessage = ""

	modelID := s.selectedModel
	t := s.transport
	return func(ctx context.Context) Event {
		result, err := t.SendMessage(ctx, trimmed, modelID)
		return SendFinished{UserMessageID: msg.ID, Text: trimmed, Result: result, Err: err}
	}, true
}

// Retry re-sends the failed-message slot. No-op when the slot is empty
// or a request is outstanding.
func (s *Session) Retry() (Effect, bool) {
	if s.failedMessage == "" || s.loading {
		return nil, false
	}
	text := s.failedMessage
	s.failedMessage = ""
	s.lastError = ""
	// Re-enters Send; a failing retry repopulates both fields through
	// the normal failure path.
	return s.Send(text)
}

// LoadHistory begins fetching the stored transcript. Rejected while a
// request is outstanding.
func (s *Session) LoadHistory() (Effect, bool) {
	if s.loading {
		return nil, false
	}
	s.loading = true
	s.lastError = ""

	limit := s.historyLimit
	t := s.transport
	return func(ctx context.Context) Event {
		records, err := t.History(ctx, limit)
		return HistoryFinished{Records: records, Err: err}
	}, true
}

// ClearHistory begins deleting the stored transcript. The local
// message list is only emptied once the backend confirms.
func (s *Session) ClearHistory() (Effect, bool) {
	if s.loading {
		return nil, false
	}
	s.loading = true
	s.lastError = ""

	t := s.transport
	return func(ctx context.Context) Event {
		return ClearFinished{Err: t.ClearHistory(ctx)}
	}, true
}

// LoadModels begins refreshing the model catalog.
func (s *Session) LoadModels() (Effect, bool) {
	if s.loading {
		return nil, false
	}
	s.loading = true

	t := s.transport
	return func(ctx context.Context) Event {
		catalog, err := t.Models(ctx)
		return ModelsFinished{Catalog: catalog, Err: err}
	}, true
}

// SetSelectedModel changes the model used for subsequent sends.
// Unknown ids are rejected so a typo cannot wedge the session on a
// model the backend will refuse.
func (s *Session) SetSelectedModel(id string) bool {
	for _, m := range s.models {
		if m.ID == id {
			s.selectedModel = id
			return true
		}
	}
	return false
}

// ClearError dismisses the current error. The failed-message slot
// survives so the user can still retry later.
func (s *Session) ClearError() {
	s.lastError = ""
}

// ClearFailedMessage drops the retry slot without touching the error.
func (s *Session) ClearFailedMessage() {
	s.failedMessage = ""
}

// ToggleSidebar flips the sidebar flag and returns the new state.
// Pure UI preference, but it lives here so the whole screen state is
// one aggregate.
func (s *Session) ToggleSidebar() bool {
	s.sidebarOpen = !s.sidebarOpen
	return s.sidebarOpen
}

// SidebarOpen reports whether the sidebar is showing.
func (s *Session) SidebarOpen() bool { return s.sidebarOpen }

// ===== INTERNAL =====

// fallbackModels is the catalog used before LoadModels succeeds and
// after it fails, so the UI always has a selectable option.
func fallbackModels() []api.ModelOption {
	return []api.ModelOption{{
		ID:          AutoModelID,
		Name:        "Auto",
		Description: "automatic model selection",
		Available:   true,
	}}
}

// ensureSelectedValid resets the selection when the current choice is
// no longer in the catalog.
func (s *Session) ensureSelectedValid(defaultID string) {
	for _, m := range s.models {
		if m.ID == s.selectedModel {
			return
		}
	}
	for _, m := range s.models {
		if m.ID == defaultID {
			s.selectedModel = defaultID
			return
		}
	}
	s.selectedModel = AutoModelID
}

// removeMessage drops the message with the given id, preserving order.
func (s *Session) removeMessage(id string) {
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}

// userTimestamp finds the timestamp of the message with the given id.
func (s *Session) userTimestamp(id string) (time.Time, bool) {
	for _, m := range s.messages {
		if m.ID == id {
			return m.Timestamp, true
		}
	}
	return time.Time{}, false
}
