// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"github.com/google/uuid"
	"github.com/matt-FFFFFF/treebatch/internal/migration"
)

// Item is one registered configuration path.
type Item struct {
	ID        string            // Generation identity, new for every registration of the path
	Path      string            // Registry key
	Config    *migration.Config // Set when validation succeeded
	ConfigErr error             // Set when validation failed
	Outcome   *Outcome          // Set once, when the item's job reports
}

// Outcome is the terminal result of a job. A nil Err means success.
type Outcome struct {
	Err error
}

// Valid reports whether the item holds a validated configuration.
func (it *Item) Valid() bool {
	return it.Config != nil && it.ConfigErr == nil
}

// registry holds items keyed by path, in first-registration order.
type registry struct {
	order   []string
	entries map[string]*Item
}

func newRegistry() *registry {
	return &registry{
		entries: make(map[string]*Item),
	}
}

// put creates or replaces the entry for path with a fresh identity and no outcome.
// A replaced entry keeps its position.
func (r *registry) put(path string, cfg *migration.Config, cfgErr error) *Item {
	it := &Item{
		ID:        uuid.NewString(),
		Path:      path,
		Config:    cfg,
		ConfigErr: cfgErr,
	}

	if _, ok := r.entries[path]; !ok {
		r.order = append(r.order, path)
	}

	r.entries[path] = it

	return it
}

func (r *registry) all() []*Item {
	items := make([]*Item, 0, len(r.order))
	for _, p := range r.order {
		items = append(items, r.entries[p])
	}

	return items
}

func (r *registry) len() int {
	return len(r.order)
}

func (r *registry) clear() {
	r.order = nil
	r.entries = make(map[string]*Item)
}

// markOutcome records the signal's outcome if the signal belongs to the current entry for
// its path and that entry has no outcome yet. It reports whether the signal was applied.
func (r *registry) markOutcome(s Signal) bool {
	it, ok := r.entries[s.Path]
	if !ok || it.ID != s.ItemID || it.Outcome != nil {
		return false
	}

	it.Outcome = &Outcome{Err: s.Err}

	return true
}
