// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"fmt"
	"io"

	"github.com/matt-FFFFFF/salvo/internal/color"
)

var _ ProgressListener = (*WriterListener)(nil)

// WriterListener renders progress events as text lines on an io.Writer.
// It is the progress surface for non-TUI runs.
type WriterListener struct {
	w io.Writer
}

// NewWriterListener creates a listener that writes one line per event.
func NewWriterListener(w io.Writer) *WriterListener {
	return &WriterListener{w: w}
}

// OnEvent implements ProgressListener.OnEvent.
func (wl *WriterListener) OnEvent(event ProgressEvent) {
	label := event.Scenario
	if label == "" {
		label = "run"
	}

	prefix := color.Colorize(fmt.Sprintf("[%s]", label), color.FgCyan)

	switch event.Type {
	case EventRunCancelled:
		fmt.Fprintf(wl.w, "%s %s\n", prefix, color.Colorize(event.Message, color.FgYellow))
	case EventRunCompleted:
		fmt.Fprintf(wl.w, "%s %s\n", prefix, color.Colorize(event.Message, color.FgGreen))
	default:
		fmt.Fprintf(wl.w, "%s %s\n", prefix, event.Message)
	}
}
