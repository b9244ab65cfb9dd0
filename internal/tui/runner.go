// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/salvo/internal/progress"
	"github.com/matt-FFFFFF/salvo/internal/volley"
)

// Runner manages the TUI application and progress event integration.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *TUIReporter
	mutex    sync.Mutex
}

// TUIReporter implements ProgressReporter and forwards events to the TUI.
type TUIReporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

// NewTUIReporter creates a new TUI progress reporter.
func NewTUIReporter(program *tea.Program) *TUIReporter {
	return &TUIReporter{
		program: program,
	}
}

// Report implements ProgressReporter.Report.
func (tr *TUIReporter) Report(event progress.ProgressEvent) {
	tr.mutex.RLock()
	defer tr.mutex.RUnlock()

	if tr.closed || tr.program == nil {
		return
	}

	// Send the event to the TUI program
	tr.program.Send(ProgressEventMsg{Event: event})
}

// Close implements ProgressReporter.Close.
func (tr *TUIReporter) Close() {
	tr.mutex.Lock()
	defer tr.mutex.Unlock()
	tr.closed = true
}

// NewRunner creates a new TUI runner.
func NewRunner(ctx context.Context) *Runner {
	model := NewModel(ctx)
	program := tea.NewProgram(model, tea.WithAltScreen())
	reporter := NewTUIReporter(program)

	model.SetReporter(reporter)

	return &Runner{
		model:    model,
		program:  program,
		reporter: reporter,
	}
}

// GetReporter returns the progress reporter for this TUI runner.
func (r *Runner) GetReporter() progress.ProgressReporter {
	return r.reporter
}

// Run starts the TUI and executes the given runnables sequentially with
// progress reporting. If the user quits the TUI before the runs finish the
// run context is cancelled, so the partial results collected up to that
// point are returned.
func (r *Runner) Run(ctx context.Context, runnables ...volley.Runnable) ([]volley.Results, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	// Channel to receive results from the load runs
	resultChan := make(chan []volley.Results, 1)

	go func() {
		defer close(resultChan)

		results := make([]volley.Results, 0, len(runnables))

		for _, runnable := range runnables {
			if runCtx.Err() != nil {
				break
			}

			runnable.SetProgressReporter(r.reporter)
			results = append(results, runnable.Run(runCtx))
		}

		resultChan <- results
	}()

	// Start the TUI program in a goroutine
	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	var results []volley.Results

	var tuiErr error

	select {
	case results = <-resultChan:
		// Runs completed, notify the TUI but don't quit yet
		r.program.Send(RunCompletedMsg{Results: results})

		// Wait for the user to manually exit the TUI
		tuiErr = <-tuiDone

		r.reporter.Close()

	case tuiErr = <-tuiDone:
		// TUI exited (user pressed 'q' or an error occurred). Stop launching
		// batches and collect what already ran.
		r.reporter.Close()
		cancelRun()

		results = <-resultChan

	case <-ctx.Done():
		// Context cancelled. Every in-flight invocation is killed on cancel,
		// so the partial results arrive promptly.
		r.reporter.Close()

		results = <-resultChan

		r.program.Quit()
		<-tuiDone // Wait for TUI cleanup
	}

	return results, tuiErr
}

// RunWithoutTUI executes the runnables sequentially with progress reporting
// but without the TUI. This is useful for headless environments or when the
// TUI is not desired.
func RunWithoutTUI(ctx context.Context, reporter progress.ProgressReporter, runnables ...volley.Runnable) []volley.Results {
	results := make([]volley.Results, 0, len(runnables))

	for _, runnable := range runnables {
		if ctx.Err() != nil {
			break
		}

		runnable.SetProgressReporter(reporter)
		results = append(results, runnable.Run(ctx))
	}

	return results
}
