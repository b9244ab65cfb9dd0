// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/matt-FFFFFF/salvo/internal/ctxlog"
	"github.com/matt-FFFFFF/salvo/internal/hclscenario"
	"github.com/matt-FFFFFF/salvo/internal/progress"
	"github.com/matt-FFFFFF/salvo/internal/scenario"
	"github.com/matt-FFFFFF/salvo/internal/tui"
	"github.com/matt-FFFFFF/salvo/internal/volley"
	"github.com/urfave/cli/v3"
)

const (
	commandFlag           = "command"
	concurrentFlag        = "concurrent"
	totalFlag             = "total"
	fileFlag              = "file"
	hclFlag               = "hcl"
	hclDebugFlag          = "hcl-debug"
	invocationTimeoutFlag = "invocation-timeout"
	maxFailureRateFlag    = "max-failure-rate"
	outFlag               = "out"
	jsonFlag              = "json"
	tuiFlag               = "tui"
	noPercentilesFlag     = "no-percentiles"
	noSamplesFlag         = "no-samples"
	progressBufferSize    = 64
	cliExitStr            = ""
	disabledFailureRate   = -1.0
)

var (
	// ErrNoTarget is returned when neither a command nor a scenario source is given.
	ErrNoTarget = errors.New("no target command or scenario specified")
	// ErrExceededFailureRate is returned when the observed failure rate is above the configured threshold.
	ErrExceededFailureRate = errors.New("failure rate exceeded the configured threshold")
)

// RunCmd is the command that runs load scenarios against a target command.
var RunCmd = &cli.Command{
	Name: "run",
	Description: `Run a load test against a command line target.

The target command is launched repeatedly in concurrency-bounded batches and a
summary of the observed durations is printed when the run completes. A failing
invocation never fails the harness: faults are recorded in the results.

Specify the target inline with --command, or load scenarios from YAML files
with --file. Scenario file URLs use Hashicorp's go-getter syntax, which allows
fetching files from various sources.
See https://github.com/hashicorp/go-getter.

Directories of HCL scenarios (*.salvo.hcl, with variables and expressions) are
loaded with --hcl.
`,
	Arguments: []cli.Argument{},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     commandFlag,
			Aliases:  []string{"x"},
			Usage:    "The target command line. It is passed to the system shell without being parsed.",
			OnlyOnce: true,
		},
		&cli.IntFlag{
			Name:    concurrentFlag,
			Aliases: []string{"c"},
			Usage:   "Maximum number of invocations in flight at once.",
			Value:   scenario.DefaultConcurrent,
		},
		&cli.IntFlag{
			Name:    totalFlag,
			Aliases: []string{"n"},
			Usage:   "Total number of invocations to perform.",
			Value:   scenario.DefaultTotal,
		},
		&cli.StringSliceFlag{
			Name:    fileFlag,
			Aliases: []string{"f"},
			Usage: "Specify the URL of a YAML scenario file to run. " +
				"Supports Hashicorp's go-getter syntax for fetching files from various sources. " +
				"Specify multiple times to run multiple scenarios.",
			OnlyOnce: false,
		},
		&cli.StringFlag{
			Name:      hclFlag,
			Usage:     "Directory containing *.salvo.hcl scenario files.",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.BoolFlag{
			Name: hclDebugFlag,
			Usage: "Open an interactive console that evaluates HCL expressions against " +
				"the --hcl configuration instead of running it.",
			OnlyOnce: true,
		},
		&cli.DurationFlag{
			Name:  invocationTimeoutFlag,
			Usage: "Per-invocation timeout. Zero disables the timeout.",
			Value: volley.DefaultInvocationTimeout,
		},
		&cli.FloatFlag{
			Name: maxFailureRateFlag,
			Usage: "Exit nonzero when the failure rate exceeds this fraction (0 to 1). " +
				"Negative values disable the threshold.",
			Value: disabledFailureRate,
		},
		&cli.StringFlag{
			Name:      outFlag,
			Usage:     "Specify the output file name for the gob-encoded reports",
			TakesFile: true,
			Value:     "",
			OnlyOnce:  true,
		},
		&cli.BoolFlag{
			Name:        jsonFlag,
			Usage:       "Render each summary as colorized JSON instead of text",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        tuiFlag,
			Aliases:     []string{"t", "interactive"},
			Usage:       "Run with interactive Terminal User Interface (TUI) showing real-time progress",
			Value:       false,
			DefaultText: "false",
			TakesFile:   false,
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        noPercentilesFlag,
			Usage:       "Exclude p50/p95/p99 latencies from the output",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
		&cli.BoolFlag{
			Name:        noSamplesFlag,
			Usage:       "Exclude failure samples from the output",
			Value:       false,
			DefaultText: "false",
			OnlyOnce:    true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("Running run command")

	if cmd.Bool(hclDebugFlag) {
		dir := cmd.String(hclFlag)
		if dir == "" {
			logger.Error("--hcl-debug requires --hcl to point at a scenario directory.")
			return cli.Exit(cliExitStr, 1)
		}

		cfg, err := hclscenario.BuildSalvoConfig(ctx, dir, dir, nil)
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to load scenarios: %s", err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		hclscenario.EnterDebugMode(*cfg)

		return nil
	}

	configs, err := buildRunConfigs(ctx, cmd)
	if err != nil {
		if errors.Is(err, ErrNoTarget) {
			logger.Error("Please specify a target with --command or -x, " +
				"scenario files with --file or -f, or an HCL directory with --hcl.")
			return cli.Exit(cliExitStr, 1)
		}

		logger.Error(fmt.Sprintf("Failed to load scenarios: %s", err.Error()))

		return cli.Exit(cliExitStr, 1)
	}

	applyFlagOverrides(cmd, configs)

	runs := make([]*timedRun, 0, len(configs))
	runnables := make([]volley.Runnable, 0, len(configs))

	for _, rc := range configs {
		invoker, err := volley.NewCommandInvoker(ctx, rc.Command, rc.Timeout)
		if err != nil {
			logger.Error(fmt.Sprintf("Invalid command for scenario %q: %s", rc.Label, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		invoker.Env = rc.Env
		invoker.Cwd = rc.Cwd

		scheduler, err := volley.NewScheduler(rc.Label, invoker, rc.Concurrent, rc.Total)
		if err != nil {
			logger.Error(fmt.Sprintf("Invalid scenario %q: %s", rc.Label, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		tr := &timedRun{Scheduler: scheduler}
		runs = append(runs, tr)
		runnables = append(runnables, tr)
	}

	// Execute with TUI or regular mode based on flag
	var resultSets []volley.Results

	var execErr error

	switch cmd.Bool(tuiFlag) {
	case true:
		// Run with TUI - use TUI-compatible logger that won't interfere with display
		logger.Info("Starting interactive TUI mode...")

		buf := new(bytes.Buffer)
		// Create a TUI-friendly context that buffers log output
		tuiCtx := ctxlog.NewForTUI(ctx, buf)

		runner := tui.NewRunner(tuiCtx)

		resultSets, execErr = runner.Run(tuiCtx, runnables...)

		buf.WriteTo(cmd.Writer) //nolint:errcheck // Write any buffered log output to the command writer

		if execErr != nil {
			logger.Error(fmt.Sprintf("TUI execution error: %s", execErr.Error()), "error", execErr.Error())
		}
	default:
		// Run in standard mode with progress lines on the command writer
		reporter := progress.NewChannelReporter(ctx, progressBufferSize)
		reporter.Listen(progress.NewWriterListener(cmd.Writer))

		resultSets = tui.RunWithoutTUI(ctx, reporter, runnables...)

		reporter.Close()
	}

	reports := buildReports(configs, runs, resultSets)

	outFileName := cmd.String(outFlag)
	if outFileName != "" {
		f, err := os.Create(outFileName) // Create the output file if it doesn't exist
		if err != nil {
			logger.Error(fmt.Sprintf("Failed to create output file %s: %s", outFileName, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		defer f.Close() //nolint:errcheck

		if err := reports.WriteBinary(f); err != nil {
			logger.Error(fmt.Sprintf("Failed to write reports to file %s: %s", outFileName, err.Error()))
			return cli.Exit(cliExitStr, 1)
		}

		logger.Info(fmt.Sprintf("Reports written to %s", outFileName))
	}

	opts := volley.DefaultOutputOptions()
	opts.IncludePercentiles = !cmd.Bool(noPercentilesFlag)
	opts.IncludeFailureSamples = !cmd.Bool(noSamplesFlag)

	for _, report := range reports {
		var writeErr error

		switch cmd.Bool(jsonFlag) {
		case true:
			writeErr = report.WriteJSON(cmd.Writer)
		default:
			writeErr = report.WriteText(cmd.Writer, opts)
		}

		if writeErr != nil {
			logger.Error(fmt.Sprintf("Failed to write summary: %s", writeErr.Error()))
			return cli.Exit(cliExitStr, 1)
		}
	}

	// A cancelled run reports what it observed but still exits nonzero.
	if ctx.Err() != nil || runWasCut(runnables, resultSets, reports) {
		logger.Error("Run was cancelled before completing every scenario.")
		return cli.Exit(cliExitStr, 1)
	}

	if err := checkFailureRates(configs, reports, logger); err != nil {
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

var _ volley.Runnable = (*timedRun)(nil)

// timedRun couples a scheduler with the wall clock observations needed to
// build its report.
type timedRun struct {
	*volley.Scheduler
	startedAt time.Time
	elapsed   time.Duration
}

// Run implements the Runnable interface for timedRun.
func (t *timedRun) Run(ctx context.Context) volley.Results {
	t.startedAt = time.Now()
	results := t.Scheduler.Run(ctx)
	t.elapsed = time.Since(t.startedAt)

	return results
}

// buildRunConfigs assembles the scenarios to execute from the inline command
// flag, YAML scenario files, and HCL scenario directories.
func buildRunConfigs(ctx context.Context, cmd *cli.Command) ([]*scenario.RunConfig, error) {
	configs := make([]*scenario.RunConfig, 0, 1)

	if commandLine := cmd.String(commandFlag); commandLine != "" {
		rc, err := inlineConfig(cmd, commandLine)
		if err != nil {
			return nil, err
		}

		configs = append(configs, rc)
	}

	for _, url := range cmd.StringSlice(fileFlag) {
		data, err := scenario.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}

		rc, err := scenario.Load(data)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", url, err)
		}

		configs = append(configs, rc)
	}

	if dir := cmd.String(hclFlag); dir != "" {
		fromHCL, err := hclConfigs(ctx, dir)
		if err != nil {
			return nil, err
		}

		configs = append(configs, fromHCL...)
	}

	if len(configs) == 0 {
		return nil, ErrNoTarget
	}

	return configs, nil
}

// inlineConfig builds a scenario from the command line flags alone.
func inlineConfig(cmd *cli.Command, commandLine string) (*scenario.RunConfig, error) {
	concurrent := cmd.Int(concurrentFlag)
	total := cmd.Int(totalFlag)
	timeout := cmd.Duration(invocationTimeoutFlag)

	def := &scenario.Definition{
		Command:           commandLine,
		Concurrent:        &concurrent,
		Total:             &total,
		InvocationTimeout: &timeout,
	}

	if rate := cmd.Float(maxFailureRateFlag); rate >= 0 {
		def.MaxFailureRate = &rate
	}

	return def.Resolve()
}

// hclConfigs loads every scenario block found in dir.
func hclConfigs(ctx context.Context, dir string) ([]*scenario.RunConfig, error) {
	cfg, err := hclscenario.BuildSalvoConfig(ctx, dir, dir, nil)
	if err != nil {
		return nil, err
	}

	plan, err := hclscenario.RunSalvoPlan(cfg)
	if err != nil {
		return nil, err
	}

	configs := make([]*scenario.RunConfig, 0, len(plan.Scenarios))

	for _, block := range plan.Scenarios {
		rc, err := block.ToRunConfig()
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", block.Address(), err)
		}

		configs = append(configs, rc)
	}

	return configs, nil
}

// applyFlagOverrides overlays explicitly set tuning flags onto every
// scenario, so a file-defined scenario can be re-run at a different scale
// without editing the file.
func applyFlagOverrides(cmd *cli.Command, configs []*scenario.RunConfig) {
	for _, rc := range configs {
		if cmd.IsSet(concurrentFlag) {
			rc.Concurrent = cmd.Int(concurrentFlag)
		}

		if cmd.IsSet(totalFlag) {
			rc.Total = cmd.Int(totalFlag)
		}

		if cmd.IsSet(invocationTimeoutFlag) {
			rc.Timeout = cmd.Duration(invocationTimeoutFlag)
		}

		if cmd.IsSet(maxFailureRateFlag) {
			rc.MaxFailureRate = cmd.Float(maxFailureRateFlag)
		}
	}
}

// buildReports pairs each executed scenario with its results and summary.
// A cancelled run yields fewer result collections than scenarios; only the
// scenarios that ran are reported.
func buildReports(configs []*scenario.RunConfig, runs []*timedRun, resultSets []volley.Results) volley.Reports {
	reports := make(volley.Reports, 0, len(resultSets))

	for i, results := range resultSets {
		rc := configs[i]

		reports = append(reports, &volley.Report{
			Label:       rc.Label,
			Command:     rc.Command,
			Concurrency: rc.Concurrent,
			StartedAt:   runs[i].startedAt,
			Results:     results,
			Summary:     volley.Summarize(results, rc.Total, runs[i].elapsed),
		})
	}

	return reports
}

// runWasCut reports whether the run stopped before every scenario finished.
// A scheduler only starts fewer invocations than requested when its context
// is cancelled, so a short collection marks a cut run even when the parent
// context has already been cleaned up.
func runWasCut(runnables []volley.Runnable, resultSets []volley.Results, reports volley.Reports) bool {
	if len(resultSets) < len(runnables) {
		return true
	}

	for _, report := range reports {
		if report.Summary.Started < report.Summary.Requested {
			return true
		}
	}

	return false
}

// checkFailureRates enforces each scenario's opt-in failure rate threshold.
func checkFailureRates(configs []*scenario.RunConfig, reports volley.Reports, logger *slog.Logger) error {
	var err error

	for i, report := range reports {
		rc := configs[i]
		if !rc.EnforcesFailureRate() {
			continue
		}

		if rate := report.Summary.FailureRate(); rate > rc.MaxFailureRate {
			logger.Error(fmt.Sprintf("Scenario %q failure rate %.3f exceeded the maximum %.3f",
				rc.Label, rate, rc.MaxFailureRate))

			err = ErrExceededFailureRate
		}
	}

	return err
}
