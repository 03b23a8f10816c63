// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

// AppState summarises the whole registry.
type AppState int

const (
	// StateEmpty means nothing is registered.
	StateEmpty AppState = iota
	// StateInvalidConfigs means at least one registered config is invalid.
	StateInvalidConfigs
	// StateValidConfigs means every registered config is valid and waiting.
	StateValidConfigs
	// StateProcessing means a batch is in flight.
	StateProcessing
	// StateProcessingDone means the last batch finished without failures.
	StateProcessingDone
	// StateProcessingErrors means the last batch finished with at least one failure.
	StateProcessingErrors
)

// String implements the Stringer interface for AppState.
func (s AppState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateInvalidConfigs:
		return "invalid configs"
	case StateValidConfigs:
		return "ready"
	case StateProcessing:
		return "processing"
	case StateProcessingDone:
		return "done"
	case StateProcessingErrors:
		return "done with errors"
	default:
		return "unknown"
	}
}

// ItemState is the classification of a single item.
type ItemState int

const (
	// ItemInvalidConfig means the config failed validation.
	ItemInvalidConfig ItemState = iota
	// ItemValidConfig means the config is valid and the item has no outcome.
	ItemValidConfig
	// ItemProcessing means the item's job is in flight.
	ItemProcessing
	// ItemProcessingDone means the item's job succeeded.
	ItemProcessingDone
	// ItemProcessingError means the item's job failed.
	ItemProcessingError
	// ItemUnknown is unreachable when the registry invariants hold.
	ItemUnknown
)

// String implements the Stringer interface for ItemState.
func (s ItemState) String() string {
	switch s {
	case ItemInvalidConfig:
		return "invalid"
	case ItemValidConfig:
		return "ready"
	case ItemProcessing:
		return "processing"
	case ItemProcessingDone:
		return "done"
	case ItemProcessingError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is a job outcome.
func (s ItemState) Terminal() bool {
	return s == ItemProcessingDone || s == ItemProcessingError
}

// classifyItem derives the item state. The first matching rule wins.
func classifyItem(app AppState, it *Item) ItemState {
	switch {
	case it.Outcome != nil && it.Outcome.Err == nil:
		return ItemProcessingDone
	case it.Outcome != nil:
		return ItemProcessingError
	case it.Valid() && app == StateProcessing:
		return ItemProcessing
	case it.Valid():
		return ItemValidConfig
	case it.ConfigErr != nil:
		return ItemInvalidConfig
	default:
		return ItemUnknown
	}
}

// deriveAppState computes the application state from the state on entry and the items.
// Completion states are sticky: only Register or Clear leave them.
func deriveAppState(prev AppState, items []*Item) AppState {
	if len(items) == 0 {
		return StateEmpty
	}

	switch prev {
	case StateProcessing:
		var failed bool

		for _, it := range items {
			switch classifyItem(prev, it) {
			case ItemProcessing:
				return StateProcessing
			case ItemProcessingError:
				failed = true
			}
		}

		if failed {
			return StateProcessingErrors
		}

		return StateProcessingDone

	case StateProcessingDone, StateProcessingErrors:
		return prev
	}

	for _, it := range items {
		if classifyItem(prev, it) == ItemInvalidConfig {
			return StateInvalidConfigs
		}
	}

	return StateValidConfigs
}
