// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AmarSmajlovic/cheap-gpt/internal/model"
	"github.com/AmarSmajlovic/cheap-gpt/internal/ui/styles"
)

// ===== VIEW =====

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "starting..."
	}

	body := m.viewport.View()
	if m.sess.SidebarOpen() && m.width > sidebarWidth*2 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.renderSidebar())
	}

	sections := []string{
		m.renderHeader(),
		body,
		m.renderInput(),
		m.renderStatusBar(),
		m.theme.HelpText.Render(" " + m.shortHelpLine()),
	}
	view := lipgloss.JoinVertical(lipgloss.Left, sections...)

	if m.picker.Visible() {
		return m.overlay(m.picker.View(m.theme))
	}
	if m.showHelp {
		return m.overlay(m.renderHelp())
	}

	return m.toasts.RenderToastStack(view, m.width, m.height, m.theme)
}

// overlay centers a box over a blank background. The transcript
// underneath is intentionally hidden; partial overdraw in a cell grid
// produces tearing artifacts.
func (m Model) overlay(box string) string {
	return lipgloss.Place(m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
	)
}

// ===== CHROME =====

func (m Model) renderHeader() string {
	title := m.theme.Header.Render("cheap-gpt")
	right := m.theme.Timestamp.Render(m.sess.SelectedModel() + " ")

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + right
}

func (m Model) renderInput() string {
	box := m.theme.InputBox.Width(m.width - 2)
	return box.Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	var state string
	switch {
	case m.sess.Loading():
		state = m.spinner.View() + " waiting"
	case m.sess.Err() != "":
		state = styles.StatusIndicators.Error + " error"
	default:
		state = styles.StatusIndicators.OK + " ready"
	}

	parts := []string{
		state,
		fmt.Sprintf("%d messages", m.sess.MessageCount()),
	}
	if m.statusNote != "" {
		parts = append(parts, m.statusNote)
	}
	bar := strings.Join(parts, "  |  ")
	return m.theme.StatusBar.Width(m.width).Render(bar)
}

// renderSidebar shows the model catalog and a few session facts next
// to the transcript.
func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(m.theme.OverlayTitle.Render("Models"))
	b.WriteString("\n")

	selected := m.sess.SelectedModel()
	for _, opt := range m.sess.Models() {
		name := opt.Name
		if name == "" {
			name = opt.ID
		}
		switch {
		case opt.ID == selected:
			b.WriteString(m.theme.PickerCursor.Render("* " + name))
		case !opt.Available:
			b.WriteString(m.theme.PickerDimmed.Render("  " + name))
		default:
			b.WriteString(m.theme.PickerItem.Render("  " + name))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.OverlayTitle.Render("Session"))
	b.WriteString("\n")
	b.WriteString(m.theme.PickerDetails.Render(fmt.Sprintf("  %d messages", m.sess.MessageCount())))
	b.WriteString("\n")
	if m.sess.FailedMessage() != "" {
		b.WriteString(m.theme.PickerDetails.Render("  1 message awaiting retry"))
		b.WriteString("\n")
	}

	box := lipgloss.NewStyle().
		Width(sidebarWidth - 2).
		Height(m.viewport.Height - 2).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(styles.Overlay).
		Padding(0, 1)
	return box.Render(b.String())
}

func (m Model) shortHelpLine() string {
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return strings.Join(parts, " · ")
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.theme.OverlayTitle.Render("Keys & commands"))
	b.WriteString("\n\n")

	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-12s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.theme.OverlayTitle.Render("Slash commands"))
	b.WriteString("\n\n")
	for _, line := range []string{
		"/model <id>  switch model",
		"/models      open the model picker",
		"/history     reload stored history",
		"/clear       delete stored history",
		"/retry       resend the failed message",
		"/quit        exit",
	} {
		b.WriteString("  " + line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.HelpText.Render("press any key to close"))
	return m.theme.OverlayBox.Render(b.String())
}

// ===== TRANSCRIPT =====

// refreshTranscript re-renders the message list into the viewport.
// goToBottom pins the view to the newest message, which is what the
// user wants after any transcript change but not while scrolling.
func (m *Model) refreshTranscript(goToBottom bool) {
	if !m.ready {
		return
	}

	msgs := m.sess.Messages()
	var b strings.Builder
	if len(msgs) == 0 && !m.sess.Loading() {
		b.WriteString("\n")
		b.WriteString(m.theme.HelpText.Render("  No messages yet. Say something."))
		b.WriteString("\n")
	}
	if m.sess.Loading() {
		msgs = append(msgs, model.NewPendingMessage())
	}
	for _, msg := range msgs {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	if goToBottom {
		m.viewport.GotoBottom()
	}
}

func (m Model) renderMessage(msg model.Message) string {
	label := m.labelFor(msg)

	if msg.Pending {
		return label + "\n" + m.theme.PendingText.Render(m.spinner.View()+" thinking...") + "\n"
	}

	if msg.Role == model.RoleUser {
		width := m.width * 2 / 3
		if width < 20 {
			width = 20
		}
		bubble := m.theme.UserBubble.MaxWidth(width).Render(msg.Content)
		return label + "\n" + bubble + "\n"
	}

	return label + "\n" + m.theme.AssistantText.Render(m.renderMarkdown(msg.Content)) + "\n"
}

func (m Model) labelFor(msg model.Message) string {
	style := m.theme.AssistantLabel
	if msg.Role == model.RoleUser {
		style = m.theme.UserLabel
	}
	label := style.Render(msg.Role.DisplayName())

	if msg.Role == model.RoleAssistant && msg.Model != "" {
		label += " " + m.theme.Timestamp.Render("("+msg.Model+")")
	}
	if m.showTimestamps && !msg.Timestamp.IsZero() && !msg.Pending {
		label += " " + m.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	}
	return label
}
