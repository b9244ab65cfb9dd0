// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress provides real-time progress reporting for load runs.
// The scheduler emits an event at every run and batch boundary; listeners
// such as the console printer and the TUI consume them without coupling
// the run loop to any particular display.
package progress
