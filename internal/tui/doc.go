// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides an interactive terminal interface for a batch.
//
// The model drives the orchestrator from the bubbletea event loop. Every tick polls the
// orchestrator and re-renders the settings header, the item list and a status bar.
// Progress events from running jobs arrive as messages through a Reporter.
package tui
