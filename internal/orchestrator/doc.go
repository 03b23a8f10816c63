// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package orchestrator is the batch engine. It keeps the registry of dropped configuration
// paths, starts one job per valid item, and aggregates job outcomes into per-item and
// application states.
//
// An Orchestrator is driven from a single control goroutine. Register, StartProcessing, Clear,
// Poll, Snapshot and SetSettings must not be called concurrently. Jobs run on their own
// goroutines and talk to the orchestrator only through an internal signal queue, which Poll
// drains.
//
// Jobs cannot be cancelled. Clearing the registry does not stop running jobs; their signals
// are discarded when they arrive.
package orchestrator
