// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package report renders orchestrator snapshots as text, tables or JSON.
package report
