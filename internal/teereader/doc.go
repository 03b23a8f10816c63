// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader wraps a process output stream and remembers its last complete line,
// so that long-running engines can report progress while their output is still being captured.
package teereader
