// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package volley

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/salvo/internal/ctxlog"
	"github.com/matt-FFFFFF/salvo/internal/progress"
)

var _ Runnable = (*Scheduler)(nil)

var (
	// ErrNilInvoker is returned when a scheduler is built without an invoker.
	ErrNilInvoker = errors.New("invoker must not be nil")
	// ErrInvalidConcurrency is returned when the concurrency limit is less than one.
	ErrInvalidConcurrency = errors.New("concurrency limit must be at least 1")
	// ErrInvalidTotal is returned when the total request count is negative.
	ErrInvalidTotal = errors.New("total requests must not be negative")
)

// Scheduler partitions a load run into sequential batches of at most the
// concurrency limit and fans each batch out to the invoker. The batch
// barrier is the concurrency control: the next batch does not launch until
// every invocation in the current one has completed.
type Scheduler struct {
	label    string
	invoker  Invoker
	limit    int
	total    int
	reporter progress.ProgressReporter
}

// NewScheduler validates the run configuration and returns a Scheduler.
// Validation problems are aggregated so a caller sees every defect at once;
// nothing is invoked until configuration is known good.
func NewScheduler(label string, invoker Invoker, limit, total int) (*Scheduler, error) {
	var errs *multierror.Error

	if invoker == nil {
		errs = multierror.Append(errs, ErrNilInvoker)
	}

	if limit < 1 {
		errs = multierror.Append(errs, fmt.Errorf("%w: got %d", ErrInvalidConcurrency, limit))
	}

	if total < 0 {
		errs = multierror.Append(errs, fmt.Errorf("%w: got %d", ErrInvalidTotal, total))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	return &Scheduler{
		label:    label,
		invoker:  invoker,
		limit:    limit,
		total:    total,
		reporter: progress.NewNullReporter(),
	}, nil
}

// Label returns the scheduler's display label.
func (s *Scheduler) Label() string {
	return s.label
}

// Limit returns the concurrency limit.
func (s *Scheduler) Limit() int {
	return s.limit
}

// Total returns the number of invocations the run will attempt.
func (s *Scheduler) Total() int {
	return s.total
}

// SetProgressReporter implements the Runnable interface for Scheduler.
func (s *Scheduler) SetProgressReporter(reporter progress.ProgressReporter) {
	if reporter == nil {
		reporter = progress.NewNullReporter()
	}

	s.reporter = reporter
}

// Run implements the Runnable interface for Scheduler. It executes every
// batch in order and returns the collected results. The returned collection
// holds exactly one result per invocation actually started: cancelling the
// run context stops new batches from launching but never discards results
// already collected.
func (s *Scheduler) Run(ctx context.Context) Results {
	logger := ctxlog.Logger(ctx).
		With("runnableType", "Scheduler").
		With("label", s.label).
		With("concurrency", s.limit).
		With("total", s.total)

	batches := PartitionBatches(s.total, s.limit)
	results := make(Results, 0, s.total)

	logger.Debug("run starting", "batches", len(batches))
	s.reportRunStarted()

	failed := 0

	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			logger.Info("run cancelled, not launching further batches",
				"completed", len(results),
				"error", err)
			s.reportRunCancelled(len(results), failed, err)

			return results
		}

		s.reportBatchStarted(b)

		batchResults := s.runBatch(ctx, b)
		results = append(results, batchResults...)
		failed += len(batchResults.Failures())

		// Cumulative completion count, clamped for the final partial batch.
		completed := min(b.Offset+s.limit, s.total)

		logger.Debug("batch complete", "batch", b.Index, "completed", completed)
		s.reportBatchCompleted(b, completed, failed)
	}

	logger.Debug("run complete", "completed", len(results), "failed", failed)
	s.reportRunCompleted(len(results), failed)

	return results
}

// runBatch fans one batch out to the invoker and barrier-waits for every
// invocation to complete. Each invocation is assigned its global session
// ordinal: batch offset plus position.
func (s *Scheduler) runBatch(ctx context.Context, b Batch) Results {
	wg := &sync.WaitGroup{}
	resChan := make(chan *Result, b.Size)

	for i := range b.Size {
		wg.Add(1)

		go func(sessionID int) {
			defer wg.Done()

			resChan <- s.invoker.Invoke(ctx, sessionID)
		}(b.Offset + i)
	}

	wg.Wait()
	close(resChan)

	batchResults := make(Results, 0, b.Size)
	for r := range resChan {
		batchResults = append(batchResults, r)
	}

	// Completion order within a batch is unspecified; session order keeps
	// the collection and failure samples deterministic.
	batchResults.sortBySession()

	return batchResults
}
