// Copyright (c) 2025 Amar Smajlovic
// SPDX-License-Identifier: MIT

// cheap-gpt is a terminal chat client for the cheap-gpt backend.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/AmarSmajlovic/cheap-gpt/internal/api"
	"github.com/AmarSmajlovic/cheap-gpt/internal/config"
	"github.com/AmarSmajlovic/cheap-gpt/internal/session"
	"github.com/AmarSmajlovic/cheap-gpt/internal/ui/chat"
	"github.com/AmarSmajlovic/cheap-gpt/internal/ui/styles"
)

// Set by the release build via -ldflags.
var version = "dev"

func main() {
	var (
		configPath  = flag.String("config", "", "path to config.toml (default ~/.cheap-gpt/config.toml)")
		backendURL  = flag.String("backend", "", "backend base URL, overrides config")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("cheap-gpt " + version)
		return
	}

	if err := run(*configPath, *backendURL); err != nil {
		fmt.Fprintln(os.Stderr, "cheap-gpt:", err)
		os.Exit(1)
	}
}

func run(configPath, backendURL string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a terminal")
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if backendURL != "" {
		cfg.Backend.URL = backendURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if os.Getenv("CHEAPGPT_DEBUG") != "" {
		f, err := tea.LogToFile("cheap-gpt-debug.log", "debug")
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
	} else {
		// Drop stray log output; it would corrupt the alt screen.
		log.SetOutput(io.Discard)
	}

	client := api.NewClient(cfg.Backend.URL).WithTimeout(cfg.Timeout())
	sess := session.New(client,
		session.WithHistoryLimit(cfg.Backend.HistoryLimit),
		session.WithSelectedModel(cfg.Chat.DefaultModel),
	)
	log.Printf("session %s -> %s", sess.ID(), client.BaseURL())

	theme := themeFor(cfg.UI.Theme)
	m := chat.New(sess, theme, chat.Options{ShowTimestamps: cfg.UI.ShowTimestamps})

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// themeFor pins the background assumption when the config names a
// theme; "auto" leaves detection to the terminal query.
func themeFor(name string) *styles.Theme {
	switch name {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
	return styles.DetectTheme()
}
