// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package volley

import (
	"context"

	"github.com/matt-FFFFFF/salvo/internal/progress"
)

// Runnable is the interface for anything that can execute a load run and
// produce a collection of results. Run never returns an error: invocation
// faults are folded into the results, and configuration problems are
// rejected before a Runnable is constructed.
type Runnable interface {
	// Run executes the load run. It must return one result per invocation
	// actually started, even when the run context is cancelled part-way.
	Run(ctx context.Context) Results
	// SetProgressReporter sets the reporter used to emit run and batch
	// boundary events.
	SetProgressReporter(reporter progress.ProgressReporter)
}
