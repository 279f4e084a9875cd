// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

package chat

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		isCmd bool
	}{
		{"simple command", "/help", "help", true},
		{"command with args", "/model gemini-2.5-pro", "model gemini-2.5-pro", true},
		{"surrounding whitespace", "  /quit  ", "quit", true},
		{"plain message", "hello there", "", false},
		{"lone slash", "/", "", false},
		{"escaped slash message", "//not a command", "", false},
		{"empty", "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, isCmd := parseCommand(tc.input)
			if isCmd != tc.isCmd || got != tc.want {
				t.Errorf("parseCommand(%q) = (%q, %v), want (%q, %v)",
					tc.input, got, isCmd, tc.want, tc.isCmd)
			}
		})
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantArgs string
	}{
		{"bare command", "help", "help", ""},
		{"command with arg", "model gemini-2.5-pro", "model", "gemini-2.5-pro"},
		{"uppercase normalized", "CLEAR", "clear", ""},
		{"extra arg whitespace", "model   auto  ", "model", "auto"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			name, args := splitCommand(tc.input)
			if name != tc.wantName || args != tc.wantArgs {
				t.Errorf("splitCommand(%q) = (%q, %q), want (%q, %q)",
					tc.input, name, args, tc.wantName, tc.wantArgs)
			}
		})
	}
}
