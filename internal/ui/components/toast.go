// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

// Package components holds self-contained UI widgets: the toast stack
// and the model picker overlay.
package components

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/AmarSmajlovic/cheap-gpt/internal/ui/styles"
)

// ===== KINDS =====

// ToastKind selects the toast's color and auto-dismiss duration.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastWarning
	ToastError
)

// Auto-dismiss durations. Errors linger longest; a retryable error
// stays until dismissed so the user has time to press retry.
const (
	infoDuration    = 4 * time.Second
	warningDuration = 6 * time.Second
	errorDuration   = 8 * time.Second

	maxVisibleToasts = 3
	maxToastWidth    = 56
)

// ===== TOAST =====

// Toast is one notification in the stack.
type Toast struct {
	ID        int
	Kind      ToastKind
	Message   string
	CreatedAt time.Time
	Duration  time.Duration // 0 means sticky until dismissed
	ShowRetry bool          // render the retry hint; the view wires the key
}

// Expired reports whether the toast's lifetime has passed.
func (t Toast) Expired(now time.Time) bool {
	return t.Duration > 0 && now.Sub(t.CreatedAt) >= t.Duration
}

// ===== MANAGER =====

// ToastManager owns the active toast stack. It has its own mutex only
// because expiry is checked from the tick command's goroutine.
type ToastManager struct {
	mu     sync.Mutex
	nextID int
	toasts []Toast
}

func NewToastManager() *ToastManager {
	return &ToastManager{}
}

// Push adds a toast with the default duration for its kind.
func (m *ToastManager) Push(kind ToastKind, message string) {
	var d time.Duration
	switch kind {
	case ToastError:
		d = errorDuration
	case ToastWarning:
		d = warningDuration
	default:
		d = infoDuration
	}
	m.push(Toast{Kind: kind, Message: message, Duration: d})
}

// PushRetryable adds a sticky error toast with a retry hint. It stays
// until the user retries or dismisses it.
func (m *ToastManager) PushRetryable(message string) {
	m.push(Toast{Kind: ToastError, Message: message, ShowRetry: true})
}

func (m *ToastManager) push(t Toast) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	t.ID = m.nextID
	t.CreatedAt = time.Now()
	m.toasts = append(m.toasts, t)

	if len(m.toasts) > maxVisibleToasts {
		// Evict the oldest auto-dismissing toast first; a sticky retry
		// hint must survive later notices or the r key dies while the
		// failed message is still waiting.
		evicted := false
		for i, old := range m.toasts {
			if !old.ShowRetry {
				m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
				evicted = true
				break
			}
		}
		if !evicted {
			m.toasts = m.toasts[1:]
		}
	}
}

// DismissNewest removes the most recent toast, returning it.
func (m *ToastManager) DismissNewest() (Toast, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.toasts) == 0 {
		return Toast{}, false
	}
	t := m.toasts[len(m.toasts)-1]
	m.toasts = m.toasts[:len(m.toasts)-1]
	return t, true
}

// DismissRetryable removes every toast carrying the retry hint, used
// once a retry has been started.
func (m *ToastManager) DismissRetryable() {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.ShowRetry {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

// Expire drops toasts whose lifetime has passed and reports whether
// any remain, so the caller knows to keep ticking.
func (m *ToastManager) Expire(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.Expired(now) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
	return len(m.toasts) > 0
}

// HasRetryable reports whether a retry hint is currently visible.
func (m *ToastManager) HasRetryable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.toasts {
		if t.ShowRetry {
			return true
		}
	}
	return false
}

// Active returns a snapshot of the current stack, oldest first.
func (m *ToastManager) Active() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Toast, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// ===== TICKING =====

// ToastTickMsg drives toast expiry while any toast is visible.
type ToastTickMsg time.Time

// ToastTickCmd schedules the next expiry check.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg(t)
	})
}

// ===== RENDERING =====

// RenderToastStack composites the active toasts into the bottom-right
// corner of a view already sized to width x height. The view stays
// visible and usable underneath; only the cells the stack occupies are
// overwritten.
func (m *ToastManager) RenderToastStack(view string, width, height int, theme *styles.Theme) string {
	toasts := m.Active()
	if len(toasts) == 0 {
		return view
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(t, theme))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)

	return spliceBottomRight(view, stack, width, height)
}

// spliceBottomRight lays the overlay over the base line by line. Base
// rows keep their left portion; the overlay claims the right edge of
// the bottom rows. Truncation is ANSI-aware so styled base lines are
// not cut mid-escape.
func spliceBottomRight(base, overlay string, width, height int) string {
	baseLines := strings.Split(base, "\n")
	for len(baseLines) < height {
		baseLines = append(baseLines, "")
	}
	overlayLines := strings.Split(overlay, "\n")

	start := len(baseLines) - len(overlayLines)
	if start < 0 {
		start = 0
	}
	for i, ol := range overlayLines {
		idx := start + i
		if idx >= len(baseLines) {
			break
		}
		keep := width - lipgloss.Width(ol)
		if keep < 0 {
			keep = 0
		}
		left := truncate.String(baseLines[idx], uint(keep))
		pad := keep - lipgloss.Width(left)
		if pad < 0 {
			pad = 0
		}
		baseLines[idx] = left + strings.Repeat(" ", pad) + ol
	}
	return strings.Join(baseLines, "\n")
}

func renderToast(t Toast, theme *styles.Theme) string {
	var style lipgloss.Style
	var marker string
	switch t.Kind {
	case ToastError:
		style, marker = theme.ToastError, styles.StatusIndicators.Error
	case ToastWarning:
		style, marker = theme.ToastWarning, styles.StatusIndicators.Warning
	case ToastSuccess:
		style, marker = theme.ToastSuccess, styles.StatusIndicators.OK
	default:
		style, marker = theme.ToastInfo, styles.StatusIndicators.Info
	}

	msg := truncateLine(t.Message, maxToastWidth)
	body := marker + " " + msg
	if t.ShowRetry {
		body += "\n" + theme.HelpText.Render("r retry · x dismiss")
	}
	return style.Render(body)
}

// truncateLine flattens newlines and cuts the text to maxWidth cells,
// wide runes counted properly.
func truncateLine(s string, maxWidth int) string {
	flat := strings.Join(strings.Fields(s), " ")
	if runewidth.StringWidth(flat) <= maxWidth {
		return flat
	}
	return runewidth.Truncate(flat, maxWidth, "...")
}
