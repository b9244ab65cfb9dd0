// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker converts OS termination signals into a channel that
// the run watchdog consumes. The first signal asks the run to stop cleanly
// and the second terminates the process, so the channel is buffered for
// both.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/salvo/internal/ctxlog"
)

// signalDepth buffers the stop signal and the kill signal. A second Ctrl-C
// arriving before the watchdog has drained the first must not be dropped.
const signalDepth = 2

var defaultSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New returns a channel that receives the given OS signals, or the default
// termination set when none are supplied. Pass the channel to Watch.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	if len(sigs) == 0 {
		sigs = defaultSignals
	}

	ch := make(chan os.Signal, signalDepth)

	ctxlog.Debug(ctx, "signalbroker", "detail", "listening for signals", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}
