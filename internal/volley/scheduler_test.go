// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package volley

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matt-FFFFFF/salvo/internal/ctxlog"
	"github.com/matt-FFFFFF/salvo/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeInvoker is a controllable Invoker for scheduler tests. It records the
// number of in-flight invocations so tests can assert the concurrency bound.
type fakeInvoker struct {
	delay     time.Duration
	failIDs   map[int]bool
	cancelAt  int
	cancel    context.CancelFunc
	calls     atomic.Int32
	active    atomic.Int32
	maxActive atomic.Int32
}

func (f *fakeInvoker) Invoke(ctx context.Context, sessionID int) *Result {
	cur := f.active.Add(1)
	for {
		observed := f.maxActive.Load()
		if cur <= observed || f.maxActive.CompareAndSwap(observed, cur) {
			break
		}
	}

	defer f.active.Add(-1)
	f.calls.Add(1)

	if f.cancel != nil && sessionID == f.cancelAt {
		f.cancel()
	}

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
		}
	}

	res := &Result{
		SessionID: sessionID,
		Success:   true,
		Duration:  f.delay,
	}

	if f.failIDs[sessionID] {
		res.Success = false
		res.ExitCode = 1
		res.ErrText = "boom"
	}

	return res
}

// drainEvents closes the reporter and returns every buffered event.
func drainEvents(reporter *progress.ChannelReporter) []progress.ProgressEvent {
	reporter.Close()

	var events []progress.ProgressEvent
	for ev := range reporter.Events() {
		events = append(events, ev)
	}

	return events
}

func TestScheduler_Run(t *testing.T) {
	defer goleak.VerifyNone(t)

	fake := &fakeInvoker{}
	s, err := NewScheduler("run", fake, 3, 7)
	require.NoError(t, err)

	ctx := ctxlog.New(context.Background(), ctxlog.DefaultLogger)
	results := s.Run(ctx)

	require.Len(t, results, 7, "expected one result per requested invocation")
	assert.Equal(t, int32(7), fake.calls.Load())

	for i, r := range results {
		assert.Equal(t, i, r.SessionID, "results are ordered by session id")
		assert.True(t, r.Success)
	}
}

func TestScheduler_RunsBatchConcurrently(t *testing.T) {
	defer goleak.VerifyNone(t)

	fake := &fakeInvoker{delay: 50 * time.Millisecond}
	s, err := NewScheduler("parallel", fake, 10, 10)
	require.NoError(t, err)

	start := time.Now()
	results := s.Run(context.Background())
	duration := time.Since(start)

	require.Len(t, results, 10)
	// Serial execution would take 500ms.
	assert.Less(t, duration, 180*time.Millisecond, "invocations should run in parallel")
	assert.Equal(t, int32(10), fake.maxActive.Load(), "a full batch occupies every slot")
}

func TestScheduler_InFlightNeverExceedsLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	fake := &fakeInvoker{delay: 10 * time.Millisecond}
	s, err := NewScheduler("bounded", fake, 4, 22)
	require.NoError(t, err)

	results := s.Run(context.Background())

	require.Len(t, results, 22)
	assert.LessOrEqual(t, fake.maxActive.Load(), int32(4), "in-flight invocations must not exceed the limit")
}

func TestScheduler_ZeroTotal(t *testing.T) {
	defer goleak.VerifyNone(t)

	fake := &fakeInvoker{}
	s, err := NewScheduler("empty", fake, 10, 0)
	require.NoError(t, err)

	reporter := progress.NewChannelReporter(context.Background(), 16)
	s.SetProgressReporter(reporter)

	results := s.Run(context.Background())

	assert.Empty(t, results)
	assert.Equal(t, int32(0), fake.calls.Load(), "nothing should be invoked for an empty run")

	events := drainEvents(reporter)
	require.Len(t, events, 2, "an empty run still reports its start and completion")
	assert.Equal(t, progress.EventRunStarted, events[0].Type)
	assert.Equal(t, progress.EventRunCompleted, events[1].Type)
}

func TestScheduler_ProgressEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	fake := &fakeInvoker{failIDs: map[int]bool{1: true, 6: true}}
	s, err := NewScheduler("events", fake, 5, 7)
	require.NoError(t, err)

	reporter := progress.NewChannelReporter(context.Background(), 64)
	s.SetProgressReporter(reporter)

	results := s.Run(context.Background())
	require.Len(t, results, 7)

	events := drainEvents(reporter)
	require.Len(t, events, 6)

	wantTypes := []progress.EventType{
		progress.EventRunStarted,
		progress.EventBatchStarted,
		progress.EventBatchCompleted,
		progress.EventBatchStarted,
		progress.EventBatchCompleted,
		progress.EventRunCompleted,
	}
	for i, want := range wantTypes {
		assert.Equal(t, want, events[i].Type, "event %d", i)
		assert.Equal(t, "events", events[i].Scenario)
		assert.Equal(t, 7, events[i].Data.Total)
	}

	assert.Equal(t, "Starting test with 5 concurrent connections, 7 total requests", events[0].Message)

	// The completion counter is clamped to the total for the short final batch.
	assert.Equal(t, 5, events[2].Data.Completed)
	assert.Equal(t, "Completed 5/7 requests", events[2].Message)
	assert.Equal(t, 1, events[2].Data.Failed)
	assert.Equal(t, 7, events[4].Data.Completed)
	assert.Equal(t, "Completed 7/7 requests", events[4].Message)
	assert.Equal(t, 2, events[4].Data.Failed)

	assert.Equal(t, 7, events[5].Data.Completed)
	assert.Equal(t, 2, events[5].Data.Failed)
}

func TestScheduler_CancellationStopsNewBatches(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fake := &fakeInvoker{cancelAt: 2, cancel: cancel}
	s, err := NewScheduler("cancelled", fake, 5, 20)
	require.NoError(t, err)

	reporter := progress.NewChannelReporter(context.Background(), 64)
	s.SetProgressReporter(reporter)

	results := s.Run(ctx)

	// The first batch was already in flight when the run was cancelled, so
	// the collection holds exactly its results and nothing more.
	require.Len(t, results, 5, "expected one result per invocation actually started")
	assert.Equal(t, int32(5), fake.calls.Load())

	events := drainEvents(reporter)
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	assert.Equal(t, progress.EventRunCancelled, last.Type)
	assert.Equal(t, 5, last.Data.Completed)
	assert.Equal(t, "Run cancelled after 5/20 requests", last.Message)
	require.Error(t, last.Data.Err)
	assert.ErrorIs(t, last.Data.Err, context.Canceled)
}

func TestScheduler_FailuresCollected(t *testing.T) {
	defer goleak.VerifyNone(t)

	fake := &fakeInvoker{failIDs: map[int]bool{0: true, 3: true, 4: true}}
	s, err := NewScheduler("failures", fake, 2, 6)
	require.NoError(t, err)

	results := s.Run(context.Background())

	require.Len(t, results, 6)
	assert.True(t, results.HasFailure())

	failures := results.Failures()
	require.Len(t, failures, 3)
	assert.Equal(t, 0, failures[0].SessionID)
	assert.Equal(t, 3, failures[1].SessionID)
	assert.Equal(t, 4, failures[2].SessionID)
}

func TestNewScheduler_Validation(t *testing.T) {
	_, err := NewScheduler("bad", nil, 0, -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNilInvoker)
	assert.ErrorIs(t, err, ErrInvalidConcurrency)
	assert.ErrorIs(t, err, ErrInvalidTotal)

	s, err := NewScheduler("good", &fakeInvoker{}, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, "good", s.Label())
	assert.Equal(t, 10, s.Limit())
	assert.Equal(t, 100, s.Total())
}

func TestScheduler_SetProgressReporter_Nil(t *testing.T) {
	s, err := NewScheduler("nilreporter", &fakeInvoker{}, 1, 1)
	require.NoError(t, err)

	// A nil reporter must not panic the run.
	s.SetProgressReporter(nil)

	results := s.Run(context.Background())
	require.Len(t, results, 1)
}
