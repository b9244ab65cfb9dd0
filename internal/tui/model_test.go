// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"testing"
	"time"

	"github.com/matt-FFFFFF/salvo/internal/progress"
	"github.com/matt-FFFFFF/salvo/internal/volley"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunState(t *testing.T) {
	rs := NewRunState("checkout")

	require.NotNil(t, rs)
	assert.Equal(t, "checkout", rs.Name)
	assert.Equal(t, StatusPending, rs.Status)
	assert.Nil(t, rs.StartTime)
	assert.Nil(t, rs.EndTime)
	assert.Zero(t, rs.Completed)
	assert.Zero(t, rs.Total)
}

func TestRunState_Start(t *testing.T) {
	rs := NewRunState("checkout")

	rs.Start(100)

	status, name, _, _, total, _ := rs.GetDisplayInfo()
	assert.Equal(t, StatusRunning, status)
	assert.Equal(t, "checkout", name)
	assert.Equal(t, 100, total)
	assert.NotNil(t, rs.StartTime)
	assert.Nil(t, rs.EndTime)
}

func TestRunState_UpdateProgress(t *testing.T) {
	rs := NewRunState("checkout")
	rs.Start(100)

	rs.UpdateProgress(progress.EventData{
		BatchIndex: 2,
		Completed:  30,
		Failed:     1,
		Total:      100,
	})

	status, _, completed, failed, total, _ := rs.GetDisplayInfo()
	assert.Equal(t, StatusRunning, status)
	assert.Equal(t, 30, completed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 100, total)
	assert.Equal(t, 2, rs.BatchIndex)
}

func TestRunState_Finish(t *testing.T) {
	rs := NewRunState("checkout")
	rs.Start(10)

	rs.Finish(progress.EventData{Completed: 10, Failed: 3, Total: 10})

	status, _, completed, failed, _, _ := rs.GetDisplayInfo()
	assert.Equal(t, StatusCompleted, status)
	assert.Equal(t, 10, completed)
	assert.Equal(t, 3, failed)
	assert.NotNil(t, rs.EndTime)
}

func TestRunState_Cancel(t *testing.T) {
	rs := NewRunState("checkout")
	rs.Start(20)

	rs.Cancel(progress.EventData{
		Completed: 5,
		Total:     20,
		Err:       context.Canceled,
	})

	status, _, completed, _, _, errMsg := rs.GetDisplayInfo()
	assert.Equal(t, StatusCancelled, status)
	assert.Equal(t, 5, completed)
	assert.Contains(t, errMsg, "context canceled")
	assert.NotNil(t, rs.EndTime)
}

func TestRunState_Ratio(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(rs *RunState)
		expected float64
	}{
		{
			name:     "not started",
			setup:    func(rs *RunState) {},
			expected: 0,
		},
		{
			name: "half way",
			setup: func(rs *RunState) {
				rs.Start(10)
				rs.UpdateProgress(progress.EventData{Completed: 5, Total: 10})
			},
			expected: 0.5,
		},
		{
			name: "zero total completed",
			setup: func(rs *RunState) {
				rs.Start(0)
				rs.Finish(progress.EventData{})
			},
			expected: 1,
		},
		{
			name: "zero total running",
			setup: func(rs *RunState) {
				rs.Start(0)
			},
			expected: 0,
		},
		{
			name: "never exceeds one",
			setup: func(rs *RunState) {
				rs.Start(4)
				rs.UpdateProgress(progress.EventData{Completed: 9, Total: 4})
			},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := NewRunState("test")
			tt.setup(rs)
			assert.InDelta(t, tt.expected, rs.Ratio(), 0.0001)
		})
	}
}

func TestRunState_Elapsed(t *testing.T) {
	rs := NewRunState("checkout")
	assert.Zero(t, rs.Elapsed())

	rs.Start(10)
	rs.Finish(progress.EventData{Completed: 10, Total: 10})

	assert.GreaterOrEqual(t, rs.Elapsed(), time.Duration(0))
	assert.Less(t, rs.Elapsed(), time.Second)
}

func TestModel_GetOrCreateRun(t *testing.T) {
	ctx := context.Background()
	model := NewModel(ctx)

	// Test creating a new run
	rs := model.getOrCreateRun("checkout")

	require.NotNil(t, rs)
	assert.Equal(t, "checkout", rs.Name)

	// Test getting the existing run
	existing := model.getOrCreateRun("checkout")
	assert.Same(t, rs, existing)

	// Verify it's tracked in order of first appearance
	second := model.getOrCreateRun("browse")
	require.Len(t, model.runs, 2)
	assert.Same(t, rs, model.runs[0])
	assert.Same(t, second, model.runs[1])
	assert.Contains(t, model.runMap, "checkout")
}

func TestModel_ProcessProgressEvent(t *testing.T) {
	ctx := context.Background()
	model := NewModel(ctx)

	// Test run started
	model.processProgressEvent(progress.ProgressEvent{
		Scenario:  "checkout",
		Type:      progress.EventRunStarted,
		Message:   "Starting test with 5 concurrent connections, 20 total requests",
		Timestamp: time.Now(),
		Data:      progress.EventData{Total: 20},
	})

	rs, exists := model.runMap["checkout"]
	require.True(t, exists)

	status, _, _, _, total, _ := rs.GetDisplayInfo()
	assert.Equal(t, StatusRunning, status)
	assert.Equal(t, 20, total)

	// Test batch completed
	model.processProgressEvent(progress.ProgressEvent{
		Scenario:  "checkout",
		Type:      progress.EventBatchCompleted,
		Message:   "Completed 5/20 requests",
		Timestamp: time.Now(),
		Data:      progress.EventData{BatchIndex: 0, Completed: 5, Failed: 1, Total: 20},
	})

	status, _, completed, failed, _, _ := rs.GetDisplayInfo()
	assert.Equal(t, StatusRunning, status)
	assert.Equal(t, 5, completed)
	assert.Equal(t, 1, failed)

	// Test run completed
	model.processProgressEvent(progress.ProgressEvent{
		Scenario:  "checkout",
		Type:      progress.EventRunCompleted,
		Message:   "Run complete: 20 requests, 2 failed",
		Timestamp: time.Now(),
		Data:      progress.EventData{Completed: 20, Failed: 2, Total: 20},
	})

	status, _, completed, failed, _, _ = rs.GetDisplayInfo()
	assert.Equal(t, StatusCompleted, status)
	assert.Equal(t, 20, completed)
	assert.Equal(t, 2, failed)
}

func TestModel_ProcessProgressEvent_Cancelled(t *testing.T) {
	ctx := context.Background()
	model := NewModel(ctx)

	model.processProgressEvent(progress.ProgressEvent{
		Scenario: "checkout",
		Type:     progress.EventRunStarted,
		Data:     progress.EventData{Total: 50},
	})

	model.processProgressEvent(progress.ProgressEvent{
		Scenario: "checkout",
		Type:     progress.EventRunCancelled,
		Data: progress.EventData{
			Completed: 10,
			Total:     50,
			Err:       context.Canceled,
		},
	})

	rs := model.runMap["checkout"]
	status, _, completed, _, _, errMsg := rs.GetDisplayInfo()
	assert.Equal(t, StatusCancelled, status)
	assert.Equal(t, 10, completed)
	assert.Contains(t, errMsg, "context canceled")
}

func TestModel_Update_RunCompleted(t *testing.T) {
	model := NewModel(context.Background())

	results := []volley.Results{
		{&volley.Result{SessionID: 0, Success: true}},
	}

	updated, _ := model.Update(RunCompletedMsg{Results: results})

	m, ok := updated.(*Model)
	require.True(t, ok)
	assert.True(t, m.completed)
	assert.Equal(t, results, m.results)
}

func TestResultsHaveFailures(t *testing.T) {
	ok := volley.Results{&volley.Result{SessionID: 0, Success: true}}
	bad := volley.Results{&volley.Result{SessionID: 1, Success: false}}

	assert.False(t, resultsHaveFailures(nil))
	assert.False(t, resultsHaveFailures([]volley.Results{ok}))
	assert.True(t, resultsHaveFailures([]volley.Results{ok, bad}))
}

func TestTUIReporter(t *testing.T) {
	// This is a basic test since we can't easily test the full bubbletea integration
	reporter := &TUIReporter{}

	event := progress.ProgressEvent{
		Scenario:  "test",
		Type:      progress.EventRunStarted,
		Message:   "Test message",
		Timestamp: time.Now(),
	}

	// Test that reporting on a nil program doesn't panic
	assert.NotPanics(t, func() {
		reporter.Report(event)
	})

	// Test close
	assert.NotPanics(t, func() {
		reporter.Close()
	})

	// Test that reporting after close doesn't panic
	assert.NotPanics(t, func() {
		reporter.Report(event)
	})
}
