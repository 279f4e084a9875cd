// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

// Package chat implements the main bubbletea view: transcript,
// input box, model picker, toasts, and the slash commands.
package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/AmarSmajlovic/cheap-gpt/internal/session"
	"github.com/AmarSmajlovic/cheap-gpt/internal/ui/components"
	"github.com/AmarSmajlovic/cheap-gpt/internal/ui/styles"
)

// ===== MODEL =====

// Model is the bubbletea model for the chat screen. The session is the
// source of truth; everything else here is presentation state.
type Model struct {
	sess  *session.Session
	theme *styles.Theme
	keys  KeyMap

	width  int
	height int
	ready  bool

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	toasts *components.ToastManager
	picker *components.ModelPicker

	renderer *glamour.TermRenderer

	showHelp         bool
	showTimestamps   bool
	historyRequested bool
	statusNote       string

	quitting bool
}

// Options configures presentation details from the config file.
type Options struct {
	ShowTimestamps bool
}

// New builds the chat model around an existing session.
func New(sess *session.Session, theme *styles.Theme, opts Options) Model {
	input := textinput.New()
	input.Placeholder = "Type a message, or /help for commands"
	input.Prompt = styles.StatusIndicators.Prompt + " "
	input.PromptStyle = theme.InputPrompt
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.PendingText

	picker := components.NewModelPicker()
	picker.SetOptions(sess.Models(), sess.SelectedModel())

	return Model{
		sess:           sess,
		theme:          theme,
		keys:           DefaultKeyMap(),
		input:          input,
		spinner:        sp,
		toasts:         components.NewToastManager(),
		picker:         picker,
		showTimestamps: opts.ShowTimestamps,
	}
}

// Init loads the model catalog first, then history; the two must not
// overlap because the session allows one outstanding request.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if eff, ok := m.sess.LoadModels(); ok {
		cmds = append(cmds, runEffect(eff), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// ===== SIZING =====

const (
	headerHeight = 1
	inputHeight  = 3
	statusHeight = 1
	helpHeight   = 1
	sidebarWidth = 28
)

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	chromeHeight := headerHeight + inputHeight + statusHeight + helpHeight
	vpHeight := height - chromeHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	vpWidth := width
	if m.sess.SidebarOpen() && width > sidebarWidth*2 {
		vpWidth = width - sidebarWidth
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.input.Width = width - 6

	// Markdown wraps to the viewport, so the renderer is rebuilt on
	// every width change.
	wrap := vpWidth - 4
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		m.renderer = renderer
	}

	m.refreshTranscript(true)
}

// renderMarkdown renders assistant content, falling back to the raw
// text when the renderer is unavailable or chokes on the input.
func (m *Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}
