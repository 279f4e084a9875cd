// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AmarSmajlovic/cheap-gpt/internal/ui/components"
)

// ===== SLASH COMMANDS =====

// parseCommand reports whether the input is a slash command and
// returns it with the leading slash stripped. A lone "/" or "//escape"
// is not a command, so messages can still start with a slash.
func parseCommand(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if len(trimmed) < 2 || trimmed[0] != '/' || trimmed[1] == '/' {
		return "", false
	}
	return trimmed[1:], true
}

// splitCommand separates the command name from its argument string.
func splitCommand(cmdText string) (name, args string) {
	parts := strings.SplitN(cmdText, " ", 2)
	name = strings.ToLower(parts[0])
	if len(parts) == 2 {
		args = strings.TrimSpace(parts[1])
	}
	return name, args
}

func (m Model) runCommand(cmdText string) (tea.Model, tea.Cmd) {
	name, args := splitCommand(cmdText)

	switch name {
	case "help", "h", "?":
		m.showHelp = true
		return m, nil

	case "quit", "q", "exit":
		m.quitting = true
		return m, tea.Quit

	case "clear":
		if eff, ok := m.sess.ClearHistory(); ok {
			return m, tea.Batch(runEffect(eff), m.spinner.Tick)
		}
		return m, m.busyNotice()

	case "history", "reload":
		if eff, ok := m.sess.LoadHistory(); ok {
			return m, tea.Batch(runEffect(eff), m.spinner.Tick)
		}
		return m, m.busyNotice()

	case "models":
		m.picker.SetOptions(m.sess.Models(), m.sess.SelectedModel())
		m.picker.Show()
		return m, nil

	case "model":
		if args == "" {
			m.toasts.Push(components.ToastInfo, "usage: /model <id>")
			return m, components.ToastTickCmd()
		}
		if m.sess.SetSelectedModel(args) {
			m.picker.MarkSelected(args)
			m.statusNote = "model: " + args
			return m, nil
		}
		m.toasts.Push(components.ToastWarning, "unknown model: "+args)
		return m, components.ToastTickCmd()

	case "retry":
		next, cmd := m.beginRetry()
		return next, cmd

	default:
		m.toasts.Push(components.ToastWarning, "unknown command: /"+name)
		return m, components.ToastTickCmd()
	}
}

// busyNotice is the toast shown when a command is rejected because a
// request is already outstanding.
func (m Model) busyNotice() tea.Cmd {
	m.toasts.Push(components.ToastInfo, "still waiting for the previous request")
	return components.ToastTickCmd()
}
