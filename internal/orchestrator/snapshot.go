// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import "github.com/matt-FFFFFF/treebatch/internal/migration"

// ItemView is a read-only view of an item for rendering.
type ItemView struct {
	ID        string
	Path      string
	State     ItemState
	Config    *migration.Config
	ConfigErr error
	Err       error // Job failure, set when State is ItemProcessingError
}

// Snapshot is the per-item and aggregate state for rendering.
type Snapshot struct {
	State      AppState
	Items      []ItemView
	Settings   Settings
	InFlight   int
	CanProcess bool // A batch may be started
	CanClear   bool // The registry may be cleared without discarding running jobs
}

// Count returns the number of items in state s.
func (s Snapshot) Count(state ItemState) int {
	var n int

	for _, it := range s.Items {
		if it.State == state {
			n++
		}
	}

	return n
}

// Snapshot returns the current state. Call Poll first to include finished jobs.
func (o *Orchestrator) Snapshot() Snapshot {
	items := o.registry.all()
	views := make([]ItemView, 0, len(items))

	for _, it := range items {
		v := ItemView{
			ID:        it.ID,
			Path:      it.Path,
			State:     classifyItem(o.state, it),
			Config:    it.Config.Clone(),
			ConfigErr: it.ConfigErr,
		}

		if it.Outcome != nil {
			v.Err = it.Outcome.Err
		}

		views = append(views, v)
	}

	return Snapshot{
		State:      o.state,
		Items:      views,
		Settings:   o.settings,
		InFlight:   o.InFlight(),
		CanProcess: o.state == StateValidConfigs || o.state == StateProcessingDone,
		CanClear:   o.state != StateProcessing,
	}
}
