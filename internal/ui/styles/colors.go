// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

// Package styles holds the color palette and the composed lipgloss
// theme used by every view.
package styles

import "github.com/charmbracelet/lipgloss"

// ===== PALETTE =====

// Adaptive colors pick the light variant on light terminal backgrounds
// and the dark variant elsewhere.
var (
	// Accents.
	Purple  = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	Cyan    = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}
	Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
	Rose    = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}
	Amber   = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

	// Surfaces.
	Surface       = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
	SurfaceBright = lipgloss.AdaptiveColor{Light: "#F4F4F5", Dark: "#313244"}
	Overlay       = lipgloss.AdaptiveColor{Light: "#E4E4E7", Dark: "#45475A"}

	// Text.
	TextPrimary = lipgloss.AdaptiveColor{Light: "#18181B", Dark: "#CDD6F4"}
	TextMuted   = lipgloss.AdaptiveColor{Light: "#71717A", Dark: "#6C7086"}
	TextFaint   = lipgloss.AdaptiveColor{Light: "#A1A1AA", Dark: "#585B70"}

	// Chat bubbles.
	UserBubble      = Purple
	AssistantBubble = SurfaceBright
)

// ===== INDICATORS =====

// StatusIndicators are plain-ASCII markers. Nerd-font glyphs render as
// boxes on too many terminals to be worth it.
var StatusIndicators = struct {
	OK      string
	Error   string
	Warning string
	Info    string
	Prompt  string
}{
	OK:      "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
	Prompt:  ">",
}
