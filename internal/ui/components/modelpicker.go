// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

package components

import (
	"strings"

	"github.com/AmarSmajlovic/cheap-gpt/internal/api"
	"github.com/AmarSmajlovic/cheap-gpt/internal/ui/styles"
)

// ModelPicker is the overlay for choosing the backend model. The chat
// view owns visibility and key routing; the picker only tracks the
// cursor and renders itself.
type ModelPicker struct {
	options  []api.ModelOption
	cursor   int
	selected string
	visible  bool
}

func NewModelPicker() *ModelPicker {
	return &ModelPicker{}
}

// SetOptions replaces the option list, keeping the cursor on the
// currently selected model when it is still present.
func (p *ModelPicker) SetOptions(options []api.ModelOption, selectedID string) {
	p.options = options
	p.selected = selectedID
	p.cursor = 0
	for i, opt := range options {
		if opt.ID == selectedID {
			p.cursor = i
			break
		}
	}
}

// Visible reports whether the overlay is showing.
func (p *ModelPicker) Visible() bool { return p.visible }

// Show opens the overlay with the cursor on the selected model.
func (p *ModelPicker) Show() {
	p.visible = true
	for i, opt := range p.options {
		if opt.ID == p.selected {
			p.cursor = i
			return
		}
	}
	p.cursor = 0
}

// Hide closes the overlay.
func (p *ModelPicker) Hide() { p.visible = false }

// MoveUp and MoveDown step the cursor, clamped to the list.
func (p *ModelPicker) MoveUp() {
	if p.cursor > 0 {
		p.cursor--
	}
}

func (p *ModelPicker) MoveDown() {
	if p.cursor < len(p.options)-1 {
		p.cursor++
	}
}

// Current returns the option under the cursor. Selecting an
// unavailable option is allowed here and rejected by the session.
func (p *ModelPicker) Current() (api.ModelOption, bool) {
	if len(p.options) == 0 {
		return api.ModelOption{}, false
	}
	return p.options[p.cursor], true
}

// MarkSelected records the confirmed choice so reopening the picker
// starts from it.
func (p *ModelPicker) MarkSelected(id string) {
	p.selected = id
}

// View renders the overlay box.
func (p *ModelPicker) View(theme *styles.Theme) string {
	var b strings.Builder
	b.WriteString(theme.OverlayTitle.Render("Select model"))
	b.WriteString("\n\n")

	for i, opt := range p.options {
		cursor := "  "
		if i == p.cursor {
			cursor = theme.PickerCursor.Render("> ")
		}

		name := opt.Name
		if name == "" {
			name = opt.ID
		}
		line := name
		if opt.ID == p.selected {
			line += " " + styles.StatusIndicators.OK
		}

		if opt.Available {
			b.WriteString(cursor + theme.PickerItem.Render(line))
		} else {
			b.WriteString(cursor + theme.PickerDimmed.Render(line+" (unavailable)"))
		}
		b.WriteString("\n")

		if i == p.cursor {
			if detail := optionDetail(opt); detail != "" {
				b.WriteString("    " + theme.PickerDetails.Render(detail) + "\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpText.Render("enter select · esc cancel"))
	return theme.OverlayBox.Render(b.String())
}

func optionDetail(opt api.ModelOption) string {
	switch {
	case opt.Description != "" && opt.BestFor != "":
		return opt.Description + " · best for " + opt.BestFor
	case opt.Description != "":
		return opt.Description
	case opt.BestFor != "":
		return "best for " + opt.BestFor
	default:
		return ""
	}
}
