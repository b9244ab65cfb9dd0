// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package volley

import (
	"slices"
	"time"
)

// Result represents the outcome of a single invocation of the target command.
// It is created by an Invoker when the invocation completes and is not
// modified afterwards. All fields are value types so that saved reports can
// be round-tripped through encoding/gob.
type Result struct {
	SessionID int           // Global ordinal of the invocation across the whole run
	Success   bool          // True when the process exited with a zero status
	ExitCode  int           // Raw exit code, -1 for invocations that never ran
	Duration  time.Duration // Wall clock time from launch initiation to observed completion
	Output    []byte        // Captured stdout
	ErrText   string        // Captured stderr of a failed invocation, or a fault description
}

// Results is an ordered collection of invocation results. Results appear in
// batch order; within a batch they are sorted by session id.
type Results []*Result

// HasFailure reports whether any invocation in the collection failed.
func (r Results) HasFailure() bool {
	return slices.ContainsFunc(r, func(v *Result) bool { return !v.Success })
}

// Failures returns the failed results, preserving collection order.
func (r Results) Failures() Results {
	failures := make(Results, 0)

	for v := range slices.Values(r) {
		if v.Success {
			continue
		}

		failures = append(failures, v)
	}

	return failures
}

// Durations returns the wall clock duration of every result, in collection order.
func (r Results) Durations() []time.Duration {
	durations := make([]time.Duration, len(r))
	for i, v := range r {
		durations[i] = v.Duration
	}

	return durations
}

// sortBySession orders the collection by session id in place.
func (r Results) sortBySession() {
	slices.SortFunc(r, func(a, b *Result) int {
		return a.SessionID - b.SessionID
	})
}
