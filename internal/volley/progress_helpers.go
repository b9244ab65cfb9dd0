// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package volley

import (
	"fmt"
	"time"

	"github.com/matt-FFFFFF/salvo/internal/progress"
)

// reportRunStarted emits the run start event.
func (s *Scheduler) reportRunStarted() {
	s.reporter.Report(progress.ProgressEvent{
		Scenario:  s.label,
		Type:      progress.EventRunStarted,
		Message:   fmt.Sprintf("Starting test with %d concurrent connections, %d total requests", s.limit, s.total),
		Timestamp: time.Now(),
		Data: progress.EventData{
			Total: s.total,
		},
	})
}

// reportBatchStarted emits the launch event for one batch.
func (s *Scheduler) reportBatchStarted(b Batch) {
	s.reporter.Report(progress.ProgressEvent{
		Scenario:  s.label,
		Type:      progress.EventBatchStarted,
		Message:   fmt.Sprintf("Launching batch %d (%d invocations)", b.Index, b.Size),
		Timestamp: time.Now(),
		Data: progress.EventData{
			BatchIndex: b.Index,
			Completed:  b.Offset,
			Total:      s.total,
		},
	})
}

// reportBatchCompleted emits the barrier event for one batch. Completed is
// the cumulative count for the run.
func (s *Scheduler) reportBatchCompleted(b Batch, completed, failed int) {
	s.reporter.Report(progress.ProgressEvent{
		Scenario:  s.label,
		Type:      progress.EventBatchCompleted,
		Message:   fmt.Sprintf("Completed %d/%d requests", completed, s.total),
		Timestamp: time.Now(),
		Data: progress.EventData{
			BatchIndex: b.Index,
			Completed:  completed,
			Failed:     failed,
			Total:      s.total,
		},
	})
}

// reportRunCompleted emits the final event of an uncancelled run.
func (s *Scheduler) reportRunCompleted(completed, failed int) {
	s.reporter.Report(progress.ProgressEvent{
		Scenario:  s.label,
		Type:      progress.EventRunCompleted,
		Message:   fmt.Sprintf("Run complete: %d requests, %d failed", completed, failed),
		Timestamp: time.Now(),
		Data: progress.EventData{
			Completed: completed,
			Failed:    failed,
			Total:     s.total,
		},
	})
}

// reportRunCancelled emits the final event of a cancelled run.
func (s *Scheduler) reportRunCancelled(completed, failed int, err error) {
	s.reporter.Report(progress.ProgressEvent{
		Scenario:  s.label,
		Type:      progress.EventRunCancelled,
		Message:   fmt.Sprintf("Run cancelled after %d/%d requests", completed, s.total),
		Timestamp: time.Now(),
		Data: progress.EventData{
			Completed: completed,
			Failed:    failed,
			Total:     s.total,
			Err:       err,
		},
	})
}
