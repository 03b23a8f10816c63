// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a slog logger in a context.Context.
//
// The default logger uses a pretty console handler. The level comes from an
// environment variable named after the executable, so the treebatch binary reads
// TREEBATCH_LOG_LEVEL (DEBUG, INFO, WARN or ERROR; anything else means WARN).
package ctxlog
