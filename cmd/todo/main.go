package main

import (
	"fmt"
	"os"

	"todo-tracker/internal/client"
	"todo-tracker/internal/config"
	"todo-tracker/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	api := client.New(cfg.Client.BaseURL, cfg.Client.RequestTimeout)

	p := tea.NewProgram(tui.NewModel(api), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
