// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

package chat

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AmarSmajlovic/cheap-gpt/internal/session"
	"github.com/AmarSmajlovic/cheap-gpt/internal/ui/components"
)

// ===== UPDATE =====

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case TransportDoneMsg:
		return m.applyEvent(msg.Event)

	case StartupHistoryMsg:
		if eff, ok := m.sess.LoadHistory(); ok {
			return m, tea.Batch(runEffect(eff), m.spinner.Tick)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.sess.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshTranscript(false)
		return m, cmd

	case components.ToastTickMsg:
		if m.toasts.Expire(time.Time(msg)) {
			return m, components.ToastTickCmd()
		}
		return m, nil
	}

	return m.updateChildren(msg)
}

// ===== KEY HANDLING =====

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.picker.Visible() {
		return m.handlePickerKey(msg)
	}

	if m.showHelp {
		// Any key dismisses the help overlay.
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Models):
		m.picker.SetOptions(m.sess.Models(), m.sess.SelectedModel())
		m.picker.Show()
		return m, nil

	case key.Matches(msg, m.keys.Sidebar):
		m.sess.ToggleSidebar()
		m.resize(m.width, m.height)
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		if _, ok := m.toasts.DismissNewest(); ok {
			m.sess.ClearError()
			return m, nil
		}
		return m, nil

	// Retry and dismiss are plain letters; they only act while a retry
	// toast is up and the input box is empty, so normal typing wins.
	case key.Matches(msg, m.keys.Retry) && m.toasts.HasRetryable() && m.input.Value() == "":
		return m.beginRetry()

	case key.Matches(msg, m.keys.DismissToast) && m.toasts.HasRetryable() && m.input.Value() == "":
		m.toasts.DismissRetryable()
		m.sess.ClearError()
		m.sess.ClearFailedMessage()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submitInput()

	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.LineDown(1)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	return m.updateChildren(msg)
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ScrollUp):
		m.picker.MoveUp()
	case key.Matches(msg, m.keys.ScrollDown):
		m.picker.MoveDown()
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Models):
		m.picker.Hide()
	case key.Matches(msg, m.keys.Submit):
		if opt, ok := m.picker.Current(); ok {
			if m.sess.SetSelectedModel(opt.ID) {
				m.picker.MarkSelected(opt.ID)
				m.statusNote = "model: " + opt.ID
			}
		}
		m.picker.Hide()
	}
	return m, nil
}

// ===== INPUT =====

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := m.input.Value()

	if cmdText, ok := parseCommand(value); ok {
		m.input.Reset()
		return m.runCommand(cmdText)
	}

	return m.beginSend(value)
}

func (m Model) beginSend(text string) (tea.Model, tea.Cmd) {
	eff, ok := m.sess.Send(text)
	if !ok {
		if m.sess.Loading() {
			m.toasts.Push(components.ToastInfo, "still waiting for the previous reply")
			return m, components.ToastTickCmd()
		}
		// Blank input: nothing to do.
		return m, nil
	}

	m.input.Reset()
	m.refreshTranscript(true)
	return m, tea.Batch(runEffect(eff), m.spinner.Tick)
}

func (m Model) beginRetry() (tea.Model, tea.Cmd) {
	eff, ok := m.sess.Retry()
	if !ok {
		return m, nil
	}
	m.toasts.DismissRetryable()
	m.refreshTranscript(true)
	return m, tea.Batch(runEffect(eff), m.spinner.Tick)
}

// ===== EVENT RECONCILIATION =====

// applyEvent folds a finished transport call into the session, then
// translates its outcome into toasts and follow-up commands.
func (m Model) applyEvent(ev session.Event) (tea.Model, tea.Cmd) {
	m.sess.Apply(ev)

	var cmds []tea.Cmd
	switch e := ev.(type) {
	case session.SendFinished:
		if e.Err != nil {
			m.toasts.PushRetryable(m.errText(e.Err))
		}

	case session.HistoryFinished:
		if e.Err != nil {
			m.toasts.Push(components.ToastError, m.errText(e.Err))
			cmds = append(cmds, components.ToastTickCmd())
		} else if n := len(e.Records); n > 0 {
			m.statusNote = fmt.Sprintf("loaded %d stored exchanges", n)
		}

	case session.ClearFinished:
		if e.Err != nil {
			m.toasts.Push(components.ToastError, m.errText(e.Err))
		} else {
			m.toasts.Push(components.ToastSuccess, "history cleared")
		}
		cmds = append(cmds, components.ToastTickCmd())

	case session.ModelsFinished:
		m.picker.SetOptions(m.sess.Models(), m.sess.SelectedModel())
		if e.Err != nil {
			m.toasts.Push(components.ToastWarning,
				"model catalog unavailable - using automatic selection")
			cmds = append(cmds, components.ToastTickCmd())
		}
		if !m.historyRequested {
			m.historyRequested = true
			cmds = append(cmds, func() tea.Msg { return StartupHistoryMsg{} })
		}
	}

	m.refreshTranscript(true)
	return m, tea.Batch(cmds...)
}

func (m Model) errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ===== CHILD COMPONENTS =====

func (m Model) updateChildren(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}
