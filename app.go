package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

type App struct {
	config  *Config
	model   *Model
	program *tea.Program
}

func NewApp(config *Config) *App {
	return &App{
		config: config,
		model:  NewModel(config),
	}
}

func (a *App) Run() error {
	a.program = tea.NewProgram(a.model, tea.WithAltScreen())

	if _, err := a.program.Run(); err != nil {
		return fmt.Errorf("failed to run program: %w", err)
	}

	return nil
}
