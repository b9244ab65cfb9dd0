// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// ProgressEvent represents a real-time update from a load run.
// Events are emitted at run and batch boundaries to provide feedback
// for the TUI and other monitoring systems.
type ProgressEvent struct {
	Scenario  string    // Name of the scenario emitting the event
	Type      EventType // Event type indicating what happened
	Message   string    // Human-readable status message
	Timestamp time.Time // When the event occurred
	Data      EventData // Type-specific data
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventRunStarted indicates a load run has begun.
	EventRunStarted EventType = iota
	// EventBatchStarted indicates a batch of invocations has been launched.
	EventBatchStarted
	// EventBatchCompleted indicates a batch barrier has been passed.
	EventBatchCompleted
	// EventRunCompleted indicates the run finished and all results are collected.
	EventRunCompleted
	// EventRunCancelled indicates the run stopped before every batch launched.
	EventRunCancelled
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventRunStarted:
		return "run started"
	case EventBatchStarted:
		return "batch started"
	case EventBatchCompleted:
		return "batch completed"
	case EventRunCompleted:
		return "run completed"
	case EventRunCancelled:
		return "run cancelled"
	default:
		return "unknown"
	}
}

// EventData contains type-specific information for progress events.
// Completed counts are cumulative for the run, never per batch, so a
// listener can render `Completed/Total` without keeping its own tally.
type EventData struct {
	BatchIndex int   // Zero-based batch ordinal, for batch events
	Completed  int   // Invocations completed so far
	Failed     int   // Failed invocations observed so far
	Total      int   // Invocations requested for the whole run
	Err        error // Error for EventRunCancelled
}

// ProgressReporter is the interface for sending progress events.
// The scheduler emits events through this to provide real-time updates
// during a run.
type ProgressReporter interface {
	// Report sends a progress event. Implementations should be non-blocking
	// and handle the case where the receiver might not be listening.
	Report(event ProgressEvent)
	// Close signals that no more events will be sent and cleans up resources.
	Close()
}

// ProgressListener receives progress events from a run.
// TUI implementations and other monitoring systems implement this interface.
type ProgressListener interface {
	// OnEvent is called when a progress event is received.
	// Implementations should handle events quickly to avoid blocking
	// the reporting goroutine.
	OnEvent(event ProgressEvent)
}

// NullReporter is a no-op implementation of ProgressReporter.
// Used when progress reporting is not needed.
type NullReporter struct{}

// Report implements ProgressReporter.Report by doing nothing.
func (nr *NullReporter) Report(event ProgressEvent) {
	// No-op
}

// Close implements ProgressReporter.Close by doing nothing.
func (nr *NullReporter) Close() {
	// No-op
}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() ProgressReporter {
	return &NullReporter{}
}
