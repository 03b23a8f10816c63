// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/treebatch/internal/orchestrator"
)

// TickInterval is how often the model polls the orchestrator.
const TickInterval = 100 * time.Millisecond

// Controller is the part of the orchestrator the TUI drives.
type Controller interface {
	Register(ctx context.Context, paths ...string) error
	StartProcessing(ctx context.Context) (int, error)
	Clear()
	Poll(ctx context.Context) orchestrator.AppState
	Snapshot() orchestrator.Snapshot
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	ctrl     Controller
	snap     orchestrator.Snapshot
	phases   map[string]string // Last progress message per item ID
	spinner  spinner.Model
	input    textinput.Model
	adding   bool
	status   string // Result of the last user action
	width    int
	height   int
	quitting bool

	styles *Styles
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title      lipgloss.Style
	Settings   lipgloss.Style
	Pending    lipgloss.Style
	Running    lipgloss.Style
	Success    lipgloss.Style
	Failed     lipgloss.Style
	Invalid    lipgloss.Style
	Detail     lipgloss.Style
	StatusBar  lipgloss.Style
	StatusLine lipgloss.Style
	Help       lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")),
		Settings: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginBottom(1),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Invalid: lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")),
		Detail: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true),
		StatusBar: lipgloss.NewStyle().
			Bold(true).
			MarginTop(1),
		StatusLine: lipgloss.NewStyle().
			Foreground(lipgloss.Color("13")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
	}
}

// NewModel creates a new TUI model.
func NewModel(ctx context.Context, ctrl Controller) *Model {
	in := textinput.New()
	in.Prompt = "config path: "
	in.Placeholder = "./jobs/north-ridge.yaml"

	return &Model{
		ctx:     ctx,
		ctrl:    ctrl,
		snap:    ctrl.Snapshot(),
		phases:  make(map[string]string),
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		input:   in,
		styles:  NewStyles(),
	}
}

// Snapshot returns the last snapshot the model rendered.
func (m *Model) Snapshot() orchestrator.Snapshot {
	return m.snap
}
