// cmd/pixelquest/main.go
//
// This is the entry point for the PixelQuest CLI.
// When you run `pixelquest` from any directory, this is what executes.
//
// Flow:
// 1. Make sure ./.pixelquest exists (config, logs, chronicles)
// 2. Launch the TUI on the alternate screen

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/pixel-quest/internal/config"
	"github.com/kingrea/pixel-quest/internal/tui"
)

func main() {
	// Get the current working directory - quests are kept per directory
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		os.Exit(1)
	}

	if err := config.InitQuestDir(cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing %s directory: %v\n", config.QuestDir, err)
		os.Exit(1)
	}

	app, err := tui.NewApp(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting PixelQuest: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(), // Use alternate screen buffer (like vim does)
	)

	// Run blocks until the user quits
	if _, err := p.Run(); err != nil {
		app.Close()
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
