// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AmarSmajlovic/cheap-gpt/internal/session"
)

// ===== SESSION MESSAGES =====

// TransportDoneMsg delivers a completed session effect back to the
// event loop. Update applies the event to the session and reacts to
// its outcome; this is the only path that mutates session state after
// an operation starts.
type TransportDoneMsg struct {
	Event session.Event
}

// StartupHistoryMsg asks Update to begin the initial history fetch.
// Sent after the model catalog load resolves so the two startup calls
// never overlap.
type StartupHistoryMsg struct{}

// ===== COMMANDS =====

// runEffect executes a session effect off the event loop and returns
// its event as a message.
func runEffect(eff session.Effect) tea.Cmd {
	return func() tea.Msg {
		return TransportDoneMsg{Event: eff(context.Background())}
	}
}
