// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides a real-time Terminal User Interface (TUI) for
// monitoring load runs. It displays a progress bar per scenario with
// cumulative completion and failure counts, updated at run and batch
// boundaries.
//
// The TUI integrates with the progress event system to provide real-time
// updates while batches execute, offering better visibility into long runs
// compared to plain text output.
package tui
