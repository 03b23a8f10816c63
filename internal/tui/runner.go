// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/treebatch/internal/orchestrator"
	"github.com/matt-FFFFFF/treebatch/internal/progress"
)

var _ progress.Reporter = (*Reporter)(nil)

// Reporter implements progress.Reporter and forwards events to a running TUI.
// Events sent before a program is attached, or after Close, are dropped.
type Reporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

// NewReporter creates a Reporter with no program attached.
func NewReporter() *Reporter {
	return &Reporter{}
}

func (tr *Reporter) attach(p *tea.Program) {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	tr.program = p
}

// Report implements progress.Reporter.Report.
func (tr *Reporter) Report(event progress.Event) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	if tr.closed || tr.program == nil {
		return
	}

	// Send blocks until the event loop reads the message, so it runs off the job's goroutine.
	go tr.program.Send(ProgressEventMsg{Event: event})
}

// Close implements progress.Reporter.Close.
func (tr *Reporter) Close() {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()

	tr.closed = true
}

// Runner manages the TUI application.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *Reporter
}

// NewRunner creates a new TUI runner. The reporter should be the one the orchestrator was built with.
func NewRunner(ctx context.Context, ctrl Controller, reporter *Reporter, opts ...tea.ProgramOption) *Runner {
	model := NewModel(ctx, ctrl)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(model, opts...)

	if reporter == nil {
		reporter = NewReporter()
	}

	reporter.attach(program)

	return &Runner{
		model:    model,
		program:  program,
		reporter: reporter,
	}
}

// Run blocks until the user quits or ctx is cancelled, and returns the last snapshot shown.
func (r *Runner) Run() (orchestrator.Snapshot, error) {
	_, err := r.program.Run()
	r.reporter.Close()

	return r.model.Snapshot(), err
}
