// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event is a real-time update from a running job.
type Event struct {
	Path      string    // Config path of the item the job belongs to
	ItemID    string    // Identity of the registry entry that started the job
	Phase     Phase     // Job step the event refers to
	Type      EventType // What happened
	Message   string    // Human-readable status message
	Timestamp time.Time // When the event occurred
	Err       error     // Set for EventFailed
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventStarted indicates a job step has begun.
	EventStarted EventType = iota
	// EventCompleted indicates a job step finished successfully.
	EventCompleted
	// EventFailed indicates a job step failed.
	EventFailed
	// EventSkipped indicates a job step was not attempted.
	EventSkipped
	// EventProgress carries the latest output line of a running step.
	EventProgress
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventStarted:
		return "started"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventSkipped:
		return "skipped"
	case EventProgress:
		return "progress"
	default:
		return "unknown"
	}
}

// Phase identifies the step of a job.
type Phase int

const (
	// PhaseMigration is the tree migration step.
	PhaseMigration Phase = iota
	// PhaseEncoding is the optional video encoding step.
	PhaseEncoding
)

// String implements the Stringer interface for Phase.
func (p Phase) String() string {
	switch p {
	case PhaseMigration:
		return "migration"
	case PhaseEncoding:
		return "encoding"
	default:
		return "unknown"
	}
}

// Reporter is the interface for sending progress events.
type Reporter interface {
	// Report sends a progress event. Implementations must not block.
	Report(event Event)
	// Close signals that no more events will be sent.
	Close()
}

// Listener receives progress events.
type Listener interface {
	// OnEvent is called for each event, from a single goroutine.
	OnEvent(event Event)
}

// NullReporter is a no-op implementation of Reporter.
type NullReporter struct{}

// Report implements Reporter.Report by doing nothing.
func (nr *NullReporter) Report(Event) {}

// Close implements Reporter.Close by doing nothing.
func (nr *NullReporter) Close() {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return &NullReporter{}
}
