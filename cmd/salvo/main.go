// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the salvo command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/salvo"
	"github.com/matt-FFFFFF/salvo/cmd/salvo/probe"
	"github.com/matt-FFFFFF/salvo/cmd/salvo/run"
	"github.com/matt-FFFFFF/salvo/cmd/salvo/schema"
	"github.com/matt-FFFFFF/salvo/cmd/salvo/show"
	"github.com/matt-FFFFFF/salvo/internal/ctxlog"
	"github.com/matt-FFFFFF/salvo/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd is the root command for the CLI.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		show.ShowCmd,
		probe.ProbeCmd,
		schema.SchemaCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "salvo",
	Description: `Salvo is a load-test harness for command-line driven services.
It fires a configurable number of concurrent invocations of a target command,
collects per-invocation timings and exit statuses, and renders summary reports
with latency percentiles. Scenarios can be defined inline, in YAML files
fetched from local or remote locations, or composed in HCL.`,
	Usage:     "salvo run -x 'curl -fsS http://localhost:8080/healthz' -c 8 -n 200",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", salvo.Version, salvo.Commit)

	err := rootCmd.Run(ctx, os.Args) // Err is handled by cli framework

	// Check if the context was cancelled (e.g., due to signals)
	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Error("run terminated due to cancellation", "error", ctx.Err())
		os.Exit(1)
	}

	if err != nil {
		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(1)
	}

	ctxlog.Logger(ctx).Info("command completed successfully")
}
