// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress carries per-job progress events from running jobs to a presentation layer.
//
// Progress events are advisory. They describe which step a job is in (migration or video
// encoding) so that a UI can show more than a spinner. Terminal job outcomes never travel
// through this package; they are delivered to the orchestrator as signals.
package progress
