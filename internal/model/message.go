// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

// Package model defines the core conversation types shared by the
// session state machine and the terminal UI.
package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ===== ROLES =====

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DisplayName returns the label shown next to a message in the transcript.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// Valid reports whether the role is one the UI knows how to render.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// ===== MESSAGES =====

// Message is a single entry in the conversation transcript.
// Messages are value types; the session owns the canonical slice and
// hands out copies.
type Message struct {
	ID        string    // unique within a session, stable across re-renders
	Role      Role      // who said it
	Content   string    // plain text; assistant content may contain markdown
	Timestamp time.Time // when the message was created or recorded
	Model     string    // model that produced an assistant message, if known
	Pending   bool      // assistant placeholder shown while a reply is generating
}

// NewPendingMessage builds the transient assistant placeholder the UI
// renders while a reply is outstanding. It never enters the session's
// message list.
func NewPendingMessage() Message {
	return Message{
		ID:        generateID(),
		Role:      RoleAssistant,
		Timestamp: time.Now(),
		Pending:   true,
	}
}

// NewUserMessage builds a user message stamped with the current time.
func NewUserMessage(content string) Message {
	return Message{
		ID:        generateID(),
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewAssistantMessage builds an assistant message. A zero timestamp is
// replaced with the current time so the transcript stays ordered even
// when the backend omits one.
func NewAssistantMessage(content string, ts time.Time, modelID string) Message {
	if ts.IsZero() {
		ts = time.Now()
	}
	return Message{
		ID:        generateID(),
		Role:      RoleAssistant,
		Content:   content,
		Timestamp: ts,
		Model:     modelID,
	}
}

// IsEmpty reports whether the message has no visible content.
func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}

// Preview returns the first maxLen runes of the content with newlines
// collapsed, for use in compact listings.
func (m Message) Preview(maxLen int) string {
	flat := strings.Join(strings.Fields(m.Content), " ")
	if utf8.RuneCountInString(flat) <= maxLen {
		return flat
	}
	runes := []rune(flat)
	return string(runes[:maxLen]) + "..."
}

// ===== HISTORY IDS =====

// History records come back from the backend with numeric row ids.
// Deriving message ids from them keeps reloads stable: fetching the
// same history twice yields the same ids, so the UI never flickers.

// HistoryUserID returns the message id for the user half of a stored exchange.
func HistoryUserID(recordID int64) string {
	return fmt.Sprintf("hist_%d_user", recordID)
}

// HistoryAssistantID returns the message id for the assistant half of a
// stored exchange.
func HistoryAssistantID(recordID int64) string {
	return fmt.Sprintf("hist_%d_assistant", recordID)
}

// generateID returns a random message id.
// SECURITY: uses crypto/rand; ids appear in debug logs and must not be
// guessable from one another.
func generateID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// Fall back to a timestamp id; collisions need two messages
		// in the same nanosecond.
		return fmt.Sprintf("msg_%d", time.Now().UnixNano())
	}
	return "msg_" + hex.EncodeToString(b)
}
