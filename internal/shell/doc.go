// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shell provides a line-oriented interface for a batch.
//
// Every command is one tick: signals from finished jobs are applied before the command runs.
package shell
