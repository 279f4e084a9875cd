// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme is the set of composed styles the chat view renders with.
// Built once at startup and shared; styles are value types so views
// may derive sized copies freely.
type Theme struct {
	Profile termenv.Profile

	// Chrome.
	Header    lipgloss.Style
	StatusBar lipgloss.Style
	HelpText  lipgloss.Style

	// Transcript.
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	UserBubble     lipgloss.Style
	AssistantText  lipgloss.Style
	Timestamp      lipgloss.Style
	PendingText    lipgloss.Style

	// Input.
	InputBox    lipgloss.Style
	InputPrompt lipgloss.Style

	// Notifications.
	ToastError   lipgloss.Style
	ToastWarning lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastInfo    lipgloss.Style

	// Overlays.
	OverlayBox    lipgloss.Style
	OverlayTitle  lipgloss.Style
	PickerCursor  lipgloss.Style
	PickerItem    lipgloss.Style
	PickerDimmed  lipgloss.Style
	PickerDetails lipgloss.Style
}

// NewTheme builds the theme for the given color profile.
func NewTheme(profile termenv.Profile) *Theme {
	toast := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		Foreground(TextPrimary)

	return &Theme{
		Profile: profile,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(Purple).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(TextMuted).
			Background(SurfaceBright).
			Padding(0, 1),
		HelpText: lipgloss.NewStyle().
			Foreground(TextFaint),

		UserLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan),
		AssistantLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(Purple),
		UserBubble: lipgloss.NewStyle().
			Foreground(TextPrimary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(UserBubble).
			Padding(0, 1),
		AssistantText: lipgloss.NewStyle().
			Foreground(TextPrimary),
		Timestamp: lipgloss.NewStyle().
			Foreground(TextFaint),
		PendingText: lipgloss.NewStyle().
			Foreground(TextMuted).
			Italic(true),

		InputBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Overlay).
			Padding(0, 1),
		InputPrompt: lipgloss.NewStyle().
			Bold(true).
			Foreground(Emerald),

		ToastError:   toast.BorderForeground(Rose),
		ToastWarning: toast.BorderForeground(Amber),
		ToastSuccess: toast.BorderForeground(Emerald),
		ToastInfo:    toast.BorderForeground(Cyan),

		OverlayBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Purple).
			Background(Surface).
			Padding(1, 2),
		OverlayTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Purple),
		PickerCursor: lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan),
		PickerItem: lipgloss.NewStyle().
			Foreground(TextPrimary),
		PickerDimmed: lipgloss.NewStyle().
			Foreground(TextFaint).
			Strikethrough(true),
		PickerDetails: lipgloss.NewStyle().
			Foreground(TextMuted),
	}
}

// DetectTheme builds a theme from the terminal's own color profile.
func DetectTheme() *Theme {
	return NewTheme(termenv.ColorProfile())
}
