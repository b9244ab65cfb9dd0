// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package volley

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/salvo/internal/color"
)

var (
	// ErrWriteSummary is returned when the summary cannot be written.
	ErrWriteSummary = errors.New("failed to write summary")
	// ErrMarshalSummary is returned when the summary cannot be marshalled to JSON.
	ErrMarshalSummary = errors.New("failed to marshal summary")
)

// OutputOptions controls what is included in the summary output.
type OutputOptions struct {
	IncludeFailureSamples bool // Whether to quote the first few failures
	IncludePercentiles    bool // Whether to include p50/p95/p99 durations
}

// DefaultOutputOptions returns a default set of output options.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		IncludeFailureSamples: true,
		IncludePercentiles:    true,
	}
}

// WriteText renders the report's summary as aligned, colored text.
func (r *Report) WriteText(w io.Writer, options *OutputOptions) error {
	if options == nil {
		options = DefaultOutputOptions()
	}

	var statusStr, labelPrefix string

	switch {
	case r.Summary.Started == 0:
		statusStr = color.Colorize("~", color.FgYellow)
		labelPrefix = color.ControlString(color.Bold, color.FgYellow)
	case r.Summary.Failed > 0:
		statusStr = color.Colorize("✗", color.FgRed)
		labelPrefix = color.ControlString(color.Bold, color.FgRed)
	default:
		statusStr = color.Colorize("✓", color.FgGreen)
		labelPrefix = color.ControlString(color.Bold, color.FgGreen)
	}

	label := r.Label
	if label == "" {
		label = "[unnamed]"
	}

	if _, err := fmt.Fprintf(
		w,
		"%s %s%s%s (%d requests, concurrency %d)\n",
		statusStr,
		labelPrefix,
		label,
		color.ControlString(color.Reset),
		r.Summary.Requested,
		r.Concurrency,
	); err != nil {
		return errors.Join(ErrWriteSummary, err)
	}

	s := r.Summary

	rows := []struct {
		name  string
		value string
	}{
		{"Total time:", fmt.Sprintf("%.2f seconds", s.RunDuration.Seconds())},
		{"Successful requests:", fmt.Sprintf("%d", s.Succeeded)},
		{"Failed requests:", fmt.Sprintf("%d", s.Failed)},
		{"Average request duration:", fmt.Sprintf("%.3f seconds", s.AvgDuration.Seconds())},
		{"Min request duration:", fmt.Sprintf("%.3f seconds", s.MinDuration.Seconds())},
		{"Max request duration:", fmt.Sprintf("%.3f seconds", s.MaxDuration.Seconds())},
	}

	if options.IncludePercentiles {
		rows = append(rows,
			struct{ name, value string }{"P50 request duration:", fmt.Sprintf("%.3f seconds", s.P50Duration.Seconds())},
			struct{ name, value string }{"P95 request duration:", fmt.Sprintf("%.3f seconds", s.P95Duration.Seconds())},
			struct{ name, value string }{"P99 request duration:", fmt.Sprintf("%.3f seconds", s.P99Duration.Seconds())},
		)
	}

	rows = append(rows, struct{ name, value string }{
		"Requests per second:", fmt.Sprintf("%.2f", s.PerSecond),
	})

	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "  %-26s %s\n", row.name, row.value); err != nil {
			return errors.Join(ErrWriteSummary, err)
		}
	}

	if options.IncludeFailureSamples && len(s.FailureSamples) > 0 {
		if _, err := fmt.Fprintf(w, "\n%s\n", color.Colorize("Error samples:", color.FgHiRed)); err != nil {
			return errors.Join(ErrWriteSummary, err)
		}

		for _, sample := range s.FailureSamples {
			if _, err := fmt.Fprintf(
				w,
				"  %s %s\n",
				color.ColorizeNoReset(fmt.Sprintf("Session %d:", sample.SessionID), color.FgRed),
				sample.ErrText+color.ControlString(color.Reset),
			); err != nil {
				return errors.Join(ErrWriteSummary, err)
			}
		}
	}

	return nil
}

var jsonFormatter = colorjson.NewFormatter()

func init() {
	jsonFormatter.Indent = 2
	jsonFormatter.DisabledColor = !color.Enabled()
}

// WriteJSON renders the report's summary as colorized JSON. Durations are
// reported in seconds to match the text output.
func (r *Report) WriteJSON(w io.Writer) error {
	s := r.Summary

	view := map[string]any{
		"scenario":             r.Label,
		"concurrency":          r.Concurrency,
		"requested":            s.Requested,
		"started":              s.Started,
		"successful_requests":  s.Succeeded,
		"failed_requests":      s.Failed,
		"total_time_seconds":   s.RunDuration.Seconds(),
		"avg_duration_seconds": s.AvgDuration.Seconds(),
		"min_duration_seconds": s.MinDuration.Seconds(),
		"max_duration_seconds": s.MaxDuration.Seconds(),
		"p50_duration_seconds": s.P50Duration.Seconds(),
		"p95_duration_seconds": s.P95Duration.Seconds(),
		"p99_duration_seconds": s.P99Duration.Seconds(),
		"requests_per_second":  s.PerSecond,
	}

	if len(s.FailureSamples) > 0 {
		samples := make([]any, 0, len(s.FailureSamples))
		for _, sample := range s.FailureSamples {
			samples = append(samples, map[string]any{
				"session_id": sample.SessionID,
				"error":      sample.ErrText,
			})
		}

		view["error_samples"] = samples
	}

	// colorjson expects the generic shapes produced by encoding/json.
	raw, err := json.Marshal(view)
	if err != nil {
		return errors.Join(ErrMarshalSummary, err)
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return errors.Join(ErrMarshalSummary, err)
	}

	out, err := jsonFormatter.Marshal(obj)
	if err != nil {
		return errors.Join(ErrMarshalSummary, err)
	}

	if _, err := w.Write(append(out, '\n')); err != nil {
		return errors.Join(ErrWriteSummary, err)
	}

	return nil
}
