// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package volley

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/matt-FFFFFF/salvo/internal/ctxlog"
)

const (
	maxBufferSize = 8 * 1024 * 1024 // 8MB

	// DefaultInvocationTimeout bounds a single invocation unless overridden.
	// A zero timeout disables the watchdog and restores an unbounded wait.
	DefaultInvocationTimeout = 60 * time.Second
)

const (
	goosWindows          = "windows"
	commandSwitchWindows = "/C"         // Command switch for Windows cmd.exe
	commandSwitchUnix    = "-c"         // Command switch for Unix-like shells
	winSystem32          = "System32"   // Directory where cmd.exe is located on Windows
	cmdExe               = "cmd.exe"    // Command interpreter executable on Windows
	binSh                = "/bin/sh"    // Default shell for Unix-like systems
	winSystemRootEnv     = "SystemRoot" // Environment variable for the Windows system root directory
)

var (
	// ErrBufferOverflow is recorded when the output exceeds the max size.
	ErrBufferOverflow = fmt.Errorf("output exceeds max size of %d bytes", maxBufferSize)
	// ErrCouldNotStartProcess is recorded when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToReadBuffer is recorded when the buffer from the operating system pipe could not be read.
	ErrFailedToReadBuffer = errors.New("failed to read buffer")
	// ErrTimeoutExceeded is recorded when an invocation exceeds its timeout.
	ErrTimeoutExceeded = errors.New("timeout exceeded")
	// ErrRunCancelled is recorded when the run is cancelled while an invocation is in flight.
	ErrRunCancelled = errors.New("run cancelled")
	// ErrFailedToCreatePipe is recorded when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrEmptyCommand is returned when the target command line is empty.
	ErrEmptyCommand = errors.New("target command is empty")
)

// Invoker launches a single invocation of the target command and reports its
// outcome. Invoke never returns an error: launch and execution faults are
// folded into the Result so that one broken invocation cannot abort a run.
type Invoker interface {
	Invoke(ctx context.Context, sessionID int) *Result
}

var _ Invoker = (*CommandInvoker)(nil)

// CommandInvoker runs the fixed target command line as an operating system
// process. The same invoker is shared by every session in a run; it holds no
// per-invocation state.
type CommandInvoker struct {
	Path    string            // Shell or executable full path
	Args    []string          // Arguments to the command, do not include the executable name itself
	Env     map[string]string // Extra environment for the target process
	Cwd     string            // Working directory, empty to inherit
	Timeout time.Duration     // Per-invocation watchdog, 0 disables
}

// NewCommandInvoker resolves commandLine to a shell invocation in the manner
// of the platform: `$SHELL -c` with a /bin/sh fallback on Unix-like systems,
// `cmd.exe /C` on Windows. The command line is never parsed by the harness
// itself.
func NewCommandInvoker(ctx context.Context, commandLine string, timeout time.Duration) (*CommandInvoker, error) {
	if strings.TrimSpace(commandLine) == "" {
		return nil, ErrEmptyCommand
	}

	var args []string

	switch runtime.GOOS {
	case goosWindows:
		args = []string{commandSwitchWindows, commandLine}
	default:
		args = []string{commandSwitchUnix, commandLine}
	}

	return &CommandInvoker{
		Path:    defaultShell(ctx),
		Args:    args,
		Timeout: timeout,
	}, nil
}

// Invoke implements the Invoker interface for CommandInvoker.
func (c *CommandInvoker) Invoke(ctx context.Context, sessionID int) *Result {
	logger := ctxlog.Logger(ctx).
		With("invokerType", "CommandInvoker").
		With("sessionID", sessionID)

	logger.Debug("invocation info", "path", c.Path, "cwd", c.Cwd, "args", c.Args)

	res := &Result{
		SessionID: sessionID,
	}

	env := os.Environ()

	for k, v := range c.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	// stdin is detached; invocations are non-interactive.
	stdin, err := os.OpenFile(os.DevNull, os.O_RDONLY, 0)
	if err != nil {
		return fault(res, errors.Join(ErrFailedToCreatePipe, err))
	}
	defer stdin.Close() //nolint:errcheck

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return fault(res, errors.Join(ErrFailedToCreatePipe, err))
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		closeAll(rOut, wOut)
		return fault(res, errors.Join(ErrFailedToCreatePipe, err))
	}

	execName := filepath.Base(c.Path)
	args := slices.Concat([]string{execName}, c.Args)

	logger.Debug("starting process")

	startTime := time.Now()

	ps, err := os.StartProcess(c.Path, args, &os.ProcAttr{
		Dir:   c.Cwd,
		Env:   env,
		Files: []*os.File{stdin, wOut, wErr},
	})
	if err != nil {
		res.Duration = time.Since(startTime)

		closeAll(rOut, wOut, rErr, wErr)

		return fault(res, errors.Join(ErrCouldNotStartProcess, err))
	}

	logger.Debug("process started", "pid", ps.Pid)

	// Both pipes are drained while the process runs. A process that writes
	// more than the operating system pipe buffer would otherwise block
	// inside Wait and never exit.
	outCh := make(chan pipeRead, 1)
	errCh := make(chan pipeRead, 1)

	go drainPipe(ctx, rOut, outCh)
	go drainPipe(ctx, rErr, errCh)

	// The watchdog kills the process when the per-invocation timeout elapses
	// or the run context is cancelled. The kill reason is placed on the
	// buffered channel before the kill so it is observable as soon as Wait
	// returns.
	done := make(chan struct{})
	killed := make(chan error, 1)

	go func() {
		var timeout <-chan time.Time

		if c.Timeout > 0 {
			t := time.NewTimer(c.Timeout)
			defer t.Stop()

			timeout = t.C
		}

		select {
		case <-timeout:
			logger.Debug("invocation timeout exceeded, killing process", "timeout", c.Timeout)
			killed <- ErrTimeoutExceeded

			killPs(ctx, ps)

		case <-ctx.Done():
			logger.Debug("run cancelled, killing process")
			killed <- ErrRunCancelled

			killPs(ctx, ps)

		case <-done:
		}
	}()

	logger.Debug("waiting for process to finish")

	state, psErr := ps.Wait()
	res.Duration = time.Since(startTime)

	close(done)

	_ = wOut.Close()
	_ = wErr.Close()

	res.ExitCode = -1
	if state != nil {
		res.ExitCode = state.ExitCode()
	}

	logger.Debug("process finished", "exitCode", res.ExitCode, "duration", res.Duration)

	var killReason error

	select {
	case killReason = <-killed:
	default:
		// Process completed without watchdog intervention.
	}

	// Closing the write ends above delivered EOF to the drain goroutines.
	out := <-outCh
	errOut := <-errCh

	res.Output = out.data
	stderr := errOut.data
	outErr := out.err
	errErr := errOut.err

	_ = rOut.Close()
	_ = rErr.Close()

	switch {
	case killReason != nil:
		res.ExitCode = -1
		res.ErrText = failureText(killReason, stderr)
	case psErr != nil:
		res.ExitCode = -1
		res.ErrText = failureText(psErr, stderr)
	case outErr != nil || errErr != nil:
		res.ExitCode = -1
		res.ErrText = failureText(errors.Join(outErr, errErr), stderr)
	case res.ExitCode != 0:
		res.ErrText = failureText(nil, stderr)

		if res.ErrText == "" {
			res.ErrText = fmt.Sprintf("exit status %d", res.ExitCode)
		}
	default:
		res.Success = true
	}

	return res
}

// fault finalizes a result for an invocation-level fault. The harness never
// raises: the fault travels in the result's error text.
func fault(res *Result, err error) *Result {
	res.Success = false
	res.ExitCode = -1
	res.ErrText = err.Error()

	return res
}

// failureText combines a harness-level reason with whatever the process wrote
// to stderr before it died.
func failureText(reason error, stderr []byte) string {
	parts := make([]string, 0, 2)

	if reason != nil {
		parts = append(parts, reason.Error())
	}

	if s := strings.TrimSpace(string(stderr)); s != "" {
		parts = append(parts, s)
	}

	return strings.Join(parts, ": ")
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// pipeRead is the outcome of draining one pipe to EOF.
type pipeRead struct {
	data []byte
	err  error
}

func drainPipe(ctx context.Context, r io.Reader, ch chan<- pipeRead) {
	data, err := readAllUpToMax(ctx, r, maxBufferSize)
	ch <- pipeRead{data: data, err: err}
}

func readAllUpToMax(ctx context.Context, r io.Reader, maxBufferSize int64) ([]byte, error) {
	var buf bytes.Buffer

	n, err := io.CopyN(&buf, r, maxBufferSize+1)
	if err != nil && err != io.EOF {
		return nil, errors.Join(ErrFailedToReadBuffer, err)
	}

	if n > maxBufferSize {
		ctxlog.Logger(ctx).Debug(
			"buffer overflow in readAllUpToMax",
			"bytesRead", n,
			"maxBytes", maxBufferSize,
		)

		// Keep draining so the writer is never blocked on a full pipe.
		_, _ = io.Copy(io.Discard, r)

		return buf.Bytes()[:maxBufferSize], ErrBufferOverflow
	}

	return buf.Bytes(), nil
}

// killPs kills the process, tolerating one that has already exited.
func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Logger(ctx).Debug("process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Logger(ctx).Error("process kill error", "pid", ps.Pid, "error", err)
	}

	ctxlog.Logger(ctx).Debug("process killed", "pid", ps.Pid)
}

func defaultShell(ctx context.Context) string {
	if runtime.GOOS == goosWindows {
		systemRoot := os.Getenv(winSystemRootEnv)
		if systemRoot == "" {
			systemRoot = `C:\Windows`
		}

		return fmt.Sprintf(`%s\%s\%s`, systemRoot, winSystem32, cmdExe)
	}

	if shell := os.Getenv("SHELL"); shell != "" {
		ctxlog.Debug(ctx, "using SHELL environment variable", "shell", shell)
		return shell
	}

	return binSh
}
