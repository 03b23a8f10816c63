// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/treebatch/internal/orchestrator"
	"github.com/matt-FFFFFF/treebatch/internal/progress"
	"github.com/matt-FFFFFF/treebatch/internal/report"
	"github.com/matt-FFFFFF/treebatch/internal/video"
)

// tickMsg triggers a poll of the orchestrator.
type tickMsg time.Time

// ProgressEventMsg wraps a progress event for the tea framework.
type ProgressEventMsg struct {
	Event progress.Event
}

func tick() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case ProgressEventMsg:
		m.phases[msg.Event.ItemID] = fmt.Sprintf("%s: %s", msg.Event.Phase, msg.Event.Message)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 10) //nolint:mnd

		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.handleInputKey(msg)
		}

		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m *Model) refresh() {
	m.ctrl.Poll(m.ctx)
	m.snap = m.ctrl.Snapshot()

	for _, it := range m.snap.Items {
		if it.State.Terminal() {
			delete(m.phases, it.ID)
		}
	}
}

// handleKeyPress processes keyboard input outside of the path prompt.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "a":
		m.adding = true
		m.input.Reset()

		return m, m.input.Focus()

	case "p":
		m.refresh()

		if !m.snap.CanProcess {
			m.status = "cannot process: no or invalid config files"
			break
		}

		n, err := m.ctrl.StartProcessing(m.ctx)
		if err != nil {
			m.status = "cannot process: " + err.Error()
		} else {
			m.status = fmt.Sprintf("started %d job(s)", n)
		}

	case "c":
		if !m.snap.CanClear {
			m.status = "cannot clear while processing"
			break
		}

		m.ctrl.Clear()
		m.phases = make(map[string]string)
		m.status = "cleared"
	}

	m.refresh()

	return m, nil
}

// handleInputKey processes keyboard input while the path prompt is open.
func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.adding = false
		m.input.Blur()

		return m, nil

	case tea.KeyEnter:
		m.adding = false
		m.input.Blur()

		path := strings.TrimSpace(m.input.Value())
		if path == "" {
			return m, nil
		}

		if err := m.ctrl.Register(m.ctx, path); err != nil {
			m.status = "cannot add: " + err.Error()
		} else {
			m.status = "added " + path
		}

		m.refresh()

		return m, nil

	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	var view strings.Builder

	view.WriteString(m.styles.Title.Render("treebatch"))
	view.WriteString("\n")
	view.WriteString(m.styles.Settings.Render(settingsLine(m.snap.Settings)))
	view.WriteString("\n")

	if len(m.snap.Items) == 0 {
		view.WriteString(m.styles.Pending.Render("Nothing to process: press 'a' to add a config file"))
		view.WriteString("\n")
	}

	for _, it := range m.snap.Items {
		m.renderItem(&view, it)
	}

	view.WriteString(m.styles.StatusBar.Render(m.statusBar()))
	view.WriteString("\n")

	if m.status != "" {
		view.WriteString(m.styles.StatusLine.Render(m.status))
		view.WriteString("\n")
	}

	if m.adding {
		view.WriteString(m.input.View())
		view.WriteString("\n")
	}

	view.WriteString(m.styles.Help.Render(m.helpText()))

	return view.String()
}

func (m *Model) renderItem(b *strings.Builder, it orchestrator.ItemView) {
	var icon, name string

	switch it.State {
	case orchestrator.ItemProcessing:
		icon = m.spinner.View()
		name = m.styles.Running.Render(it.Path)
	case orchestrator.ItemProcessingDone:
		icon = "✓"
		name = m.styles.Success.Render(it.Path)
	case orchestrator.ItemProcessingError:
		icon = "✗"
		name = m.styles.Failed.Render(it.Path)
	case orchestrator.ItemInvalidConfig:
		icon = "!"
		name = m.styles.Invalid.Render(it.Path)
	default:
		icon = "•"
		name = m.styles.Pending.Render(it.Path)
	}

	detail := report.Detail(it)
	if phase, ok := m.phases[it.ID]; ok && it.State == orchestrator.ItemProcessing {
		detail = phase
	}

	fmt.Fprintf(b, "%s %s  %s\n", icon, name, m.styles.Detail.Render(truncate(detail, m.width/2))) //nolint:errcheck,mnd
}

func (m *Model) statusBar() string {
	switch m.snap.State {
	case orchestrator.StateEmpty:
		return "Nothing to process: no config files"
	case orchestrator.StateInvalidConfigs:
		return "Cannot process: invalid config files. " + report.Summary(m.snap)
	case orchestrator.StateProcessing:
		return fmt.Sprintf("%s Processing %d job(s)", m.spinner.View(), m.snap.InFlight)
	case orchestrator.StateProcessingErrors:
		return m.styles.Failed.Render("Processing error. ") + report.Summary(m.snap)
	default:
		return report.Summary(m.snap)
	}
}

func (m *Model) helpText() string {
	if m.adding {
		return "enter to add, esc to cancel"
	}

	keys := []string{"'a' add"}
	if m.snap.CanProcess {
		keys = append(keys, "'p' process")
	}

	if m.snap.CanClear {
		keys = append(keys, "'c' clear")
	}

	return strings.Join(append(keys, "'q' quit"), ", ")
}

func settingsLine(s orchestrator.Settings) string {
	parts := []string{fmt.Sprintf("forest green: %t", s.ForestGreen)}

	if !s.VideoRequested() {
		return strings.Join(append(parts, "video: off"), " | ")
	}

	encoder := s.EncoderPath
	if strings.EqualFold(encoder, video.AutoEncoder) {
		encoder = video.DefaultEncoder + " (PATH)"
	}

	out := s.VideoOutputDir
	if out == "" {
		out = "next to images"
	}

	return strings.Join(append(parts,
		fmt.Sprintf("video: %s @ %d fps", s.Codec, s.FrameRate),
		"encoder: "+encoder,
		"output: "+out,
	), " | ")
}

func truncate(s string, n int) string {
	const ellipsis = "..."

	if n <= len(ellipsis) || len(s) <= n {
		return s
	}

	return s[:n-len(ellipsis)] + ellipsis
}
