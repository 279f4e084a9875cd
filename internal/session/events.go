// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

package session

import (
	"time"

	"github.com/AmarSmajlovic/cheap-gpt/internal/api"
	"github.com/AmarSmajlovic/cheap-gpt/internal/model"
)

// ===== EVENTS =====

// Event is the result of a completed Effect. Feeding it to Apply
// finishes the state transition its operation began. Events carry
// everything Apply needs so the transition table stays a pure function
// of (state, event).
type Event interface {
	apply(*Session)
}

// SendFinished completes a Send.
type SendFinished struct {
	UserMessageID string         // the optimistically appended user message
	Text          string         // trimmed text, kept for rollback into the retry slot
	Result        api.ChatResult // valid when Err is nil
	Err           error
}

// HistoryFinished completes a LoadHistory.
type HistoryFinished struct {
	Records []api.HistoryRecord // chronological, valid when Err is nil
	Err     error
}

// ClearFinished completes a ClearHistory.
type ClearFinished struct {
	Err error
}

// ModelsFinished completes a LoadModels.
type ModelsFinished struct {
	Catalog api.ModelCatalog // valid when Err is nil
	Err     error
}

// Apply folds a completed Event into the session. It must be called
// from the same event loop that invoked the operation.
func (s *Session) Apply(ev Event) {
	ev.apply(s)
}

// ===== TRANSITIONS =====

func (e SendFinished) apply(s *Session) {
	s.loading = false

	if e.Err != nil {
		// Rollback: a user turn that failed to send never stays in
		// the transcript. Its text moves to the retry slot instead.
		s.removeMessage(e.UserMessageID)
		s.lastError = e.Err.Error()
		s.failedMessage = e.Text
		return
	}

	ts := e.Result.Timestamp
	if userTS, ok := s.userTimestamp(e.UserMessageID); ok && !ts.After(userTS) {
		// The backend stamps exchanges with a single timestamp that can
		// equal or precede the local user turn's. Nudge the reply
		// forward so the transcript stays strictly ordered.
		ts = userTS.Add(time.Millisecond)
	}
	s.messages = append(s.messages,
		model.NewAssistantMessage(e.Result.AssistantText, ts, e.Result.ModelUsed))
}

func (e HistoryFinished) apply(s *Session) {
	s.loading = false

	if e.Err != nil {
		// Keep whatever transcript we already have.
		s.lastError = e.Err.Error()
		return
	}

	// Replace wholesale: two messages per record, ids derived from the
	// record id so a reload yields identical messages. A running floor
	// keeps the rebuilt transcript strictly ascending even when adjacent
	// records share a timestamp and the nudged reply would overtake the
	// next record's user turn.
	rebuilt := make([]model.Message, 0, len(e.Records)*2)
	var floor time.Time
	for _, r := range e.Records {
		userTS := r.Timestamp
		if !floor.IsZero() && !userTS.After(floor) {
			userTS = floor.Add(time.Millisecond)
		}
		assistantTS := userTS.Add(time.Millisecond)
		floor = assistantTS

		rebuilt = append(rebuilt,
			model.Message{
				ID:        model.HistoryUserID(r.ID),
				Role:      model.RoleUser,
				Content:   r.UserText,
				Timestamp: userTS,
			},
			model.Message{
				ID:        model.HistoryAssistantID(r.ID),
				Role:      model.RoleAssistant,
				Content:   r.AssistantText,
				Timestamp: assistantTS,
			})
	}
	s.messages = rebuilt
}

func (e ClearFinished) apply(s *Session) {
	s.loading = false

	if e.Err != nil {
		s.lastError = e.Err.Error()
		return
	}
	s.messages = nil
	s.failedMessage = ""
}

func (e ModelsFinished) apply(s *Session) {
	s.loading = false

	if e.Err != nil {
		// A missing catalog is not fatal: fall back to automatic
		// selection so the picker is never empty.
		s.models = fallbackModels()
		s.ensureSelectedValid(AutoModelID)
		return
	}

	models := make([]api.ModelOption, 0, len(e.Catalog.Models)+1)
	if !containsModel(e.Catalog.Models, AutoModelID) {
		models = append(models, fallbackModels()...)
	}
	models = append(models, e.Catalog.Models...)
	s.models = models
	s.ensureSelectedValid(e.Catalog.Default)
}

func containsModel(models []api.ModelOption, id string) bool {
	for _, m := range models {
		if m.ID == id {
			return true
		}
	}
	return false
}
