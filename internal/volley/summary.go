// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package volley

import (
	"slices"
	"time"
)

// MaxFailureSamples is the number of failure samples retained in a summary
// for diagnostics. The full collection stays available to programmatic
// consumers.
const MaxFailureSamples = 3

// FailureSample is one failed invocation quoted in the summary.
type FailureSample struct {
	SessionID int
	ErrText   string
}

// Summary holds the aggregate statistics of one load run. It is recomputed
// from the full result collection after the run completes, never maintained
// incrementally, and is invariant to the completion order of invocations
// within a batch.
type Summary struct {
	Requested   int           // Invocations the run was asked to perform
	Started     int           // Invocations actually launched; equals len(results)
	Succeeded   int           // Invocations that exited with a zero status
	Failed      int           // Everything else, including launch faults and timeouts
	RunDuration time.Duration // Wall clock time for the whole run
	MinDuration time.Duration // Fastest invocation, successes and failures alike
	AvgDuration time.Duration // Mean invocation duration
	MaxDuration time.Duration // Slowest invocation
	P50Duration time.Duration // Median invocation duration
	P95Duration time.Duration // 95th percentile invocation duration
	P99Duration time.Duration // 99th percentile invocation duration
	PerSecond   float64       // Completed invocations per wall clock second

	FailureSamples []FailureSample // First few failures, in session order
}

// FailureRate returns the failed fraction of started invocations, between 0
// and 1. An empty run has a zero failure rate. The fraction is comparable
// directly with a scenario's max_failure_rate threshold.
func (s *Summary) FailureRate() float64 {
	if s.Started == 0 {
		return 0
	}

	return float64(s.Failed) / float64(s.Started)
}

// Summarize computes the aggregate statistics for a completed run.
// Duration statistics cover every result regardless of success. A run with
// no results yields a zero-valued summary rather than a fault.
func Summarize(results Results, requested int, elapsed time.Duration) *Summary {
	s := &Summary{
		Requested:   requested,
		Started:     len(results),
		RunDuration: elapsed,
	}

	if len(results) == 0 {
		return s
	}

	durations := results.Durations()

	var total time.Duration

	s.MinDuration = durations[0]
	s.MaxDuration = durations[0]

	for _, r := range results {
		if r.Success {
			s.Succeeded++
		} else {
			s.Failed++
		}

		total += r.Duration

		if r.Duration < s.MinDuration {
			s.MinDuration = r.Duration
		}

		if r.Duration > s.MaxDuration {
			s.MaxDuration = r.Duration
		}
	}

	s.AvgDuration = total / time.Duration(len(results))
	s.P50Duration = percentile(durations, 50)
	s.P95Duration = percentile(durations, 95)
	s.P99Duration = percentile(durations, 99)

	if elapsed > 0 {
		s.PerSecond = float64(len(results)) / elapsed.Seconds()
	}

	for _, f := range results.Failures() {
		if len(s.FailureSamples) == MaxFailureSamples {
			break
		}

		s.FailureSamples = append(s.FailureSamples, FailureSample{
			SessionID: f.SessionID,
			ErrText:   f.ErrText,
		})
	}

	return s
}

// percentile returns the p-th percentile of the given durations using linear
// interpolation between the two nearest ranks. p must be between 0 and 100.
func percentile(durations []time.Duration, p float64) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	slices.Sort(sorted)

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)

	return time.Duration(float64(sorted[lower])*(1-weight) + float64(sorted[upper])*weight)
}
