package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/salvo/internal/ctxlog"
)

// interruptExitCode is the conventional exit code for a signal-interrupted process.
const interruptExitCode = 130

// exitFunc is swapped in tests.
var exitFunc = os.Exit

// Watch monitors the signal channel and handles signals.
// The first signal cancels the context, which stops new work from launching
// and lets results collected so far be reported. A second signal terminates
// the process immediately.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	cancelled := false

	for sig := range sigCh {
		if cancelled {
			ctxlog.Logger(ctx).Info("watchdog", "detail", "received second signal, forcefully terminating", "signal", sig.String())
			exitFunc(interruptExitCode)

			return
		}

		ctxlog.Logger(ctx).Info("watchdog", "detail", "received signal, cancelling run", "signal", sig.String())
		cancel()

		cancelled = true
	}
}
