// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/salvo/internal/color"
)

var (
	// ErrMarshalAttribute is returned when a log attribute cannot be rendered as JSON.
	ErrMarshalAttribute = errors.New("error when marshaling attribute")
	// ErrIoWrite is returned when the log line cannot be written to the destination.
	ErrIoWrite = errors.New("error when writing to output")
)

// TimeFormat is the format used for timestamps in log messages.
const TimeFormat = "[15:04:05.000]"

var jsonFormatter = colorjson.NewFormatter()

func init() {
	jsonFormatter.Indent = 2
}

// PrettyHandler is a slog handler for humans: one line per record with a
// colored level tag and the attributes rendered as indented JSON. Attribute
// flattening is delegated to an inner JSONHandler writing into a shared
// buffer, so ReplaceAttr, WithAttrs and WithGroup behave exactly as they do
// for the standard handlers.
type PrettyHandler struct {
	inner          slog.Handler
	replace        func([]string, slog.Attr) slog.Attr
	buf            *bytes.Buffer
	mu             *sync.Mutex
	writer         io.Writer
	colour         bool
	emitEmptyAttrs bool
}

// Enabled implements slog.Handler.
func (h *PrettyHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// WithAttrs implements slog.Handler. The derived handler shares the buffer
// and mutex with its parent.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := *h
	derived.inner = h.inner.WithAttrs(attrs)

	return &derived
}

// WithGroup implements slog.Handler. The derived handler shares the buffer
// and mutex with its parent.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	derived := *h
	derived.inner = h.inner.WithGroup(name)

	return &derived
}

// Handle implements slog.Handler.
func (h *PrettyHandler) Handle(ctx context.Context, r slog.Record) error {
	parts := make([]string, 0, 4)

	if ts, ok := h.builtin(slog.TimeKey, slog.StringValue(r.Time.Format(TimeFormat))); ok {
		parts = append(parts, h.paint(ts, color.FgWhite))
	}

	if level, ok := h.builtin(slog.LevelKey, slog.AnyValue(r.Level)); ok {
		parts = append(parts, h.paint(level+":", levelColor(r.Level)))
	}

	if msg, ok := h.builtin(slog.MessageKey, slog.StringValue(r.Message)); ok {
		parts = append(parts, h.paint(msg, color.FgHiWhite))
	}

	attrs, err := h.collectAttrs(ctx, r)
	if err != nil {
		return err
	}

	if h.emitEmptyAttrs || len(attrs) > 0 {
		rendered, err := h.renderAttrs(attrs)
		if err != nil {
			return errors.Join(ErrMarshalAttribute, err)
		}

		parts = append(parts, rendered)
	}

	if _, err := io.WriteString(h.writer, strings.Join(parts, " ")+"\n"); err != nil {
		return errors.Join(ErrIoWrite, err)
	}

	return nil
}

// builtin synthesizes one of the record's built-in keys as an attribute and
// runs it through the configured ReplaceAttr, so a replacer that removes the
// time removes it from this handler's output too.
func (h *PrettyHandler) builtin(key string, v slog.Value) (string, bool) {
	attr := slog.Attr{Key: key, Value: v}
	if h.replace != nil {
		attr = h.replace([]string{}, attr)
	}

	if attr.Equal(slog.Attr{}) {
		return "", false
	}

	return attr.Value.String(), true
}

// collectAttrs runs the record through the inner JSON handler and decodes
// the attribute object it produced.
func (h *PrettyHandler) collectAttrs(ctx context.Context, r slog.Record) (map[string]any, error) {
	h.mu.Lock()
	defer func() {
		h.buf.Reset()
		h.mu.Unlock()
	}()

	if err := h.inner.Handle(ctx, r); err != nil {
		return nil, fmt.Errorf("error when calling inner handler's Handle: %w", err)
	}

	var attrs map[string]any
	if err := json.Unmarshal(h.buf.Bytes(), &attrs); err != nil {
		return nil, fmt.Errorf("error when unmarshaling inner handler's Handle result: %w", err)
	}

	return attrs, nil
}

// renderAttrs renders the attribute object as indented JSON, colorized when
// colour is on.
func (h *PrettyHandler) renderAttrs(attrs map[string]any) (string, error) {
	if !h.colour {
		raw, err := json.MarshalIndent(attrs, "", "  ")
		return string(raw), err
	}

	out, err := jsonFormatter.Marshal(attrs)

	return string(out), err
}

// paint applies c to s when colour is on.
func (h *PrettyHandler) paint(s string, c color.Code) string {
	if !h.colour {
		return s
	}

	return color.Colorize(s, c)
}

func levelColor(l slog.Level) color.Code {
	switch {
	case l <= slog.LevelDebug:
		return color.FgWhite
	case l <= slog.LevelInfo:
		return color.FgCyan
	case l < slog.LevelWarn:
		return color.FgBlue
	case l < slog.LevelError:
		return color.FgYellow
	case l <= slog.LevelError+1:
		return color.FgRed
	default:
		return color.FgHiMagenta
	}
}

// suppressDefaults hides the time, level and message keys from the inner
// handler; Handle renders them itself.
func suppressDefaults(next func([]string, slog.Attr) slog.Attr) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		switch a.Key {
		case slog.TimeKey, slog.LevelKey, slog.MessageKey:
			return slog.Attr{}
		}

		if next == nil {
			return a
		}

		return next(groups, a)
	}
}

// NewPrettyHandler creates a PrettyHandler. handlerOptions configure the
// inner attribute handler; the functional options configure presentation.
// The destination defaults to stdout.
func NewPrettyHandler(handlerOptions *slog.HandlerOptions, options ...Option) *PrettyHandler {
	if handlerOptions == nil {
		handlerOptions = &slog.HandlerOptions{}
	}

	buf := &bytes.Buffer{}
	handler := &PrettyHandler{
		buf: buf,
		inner: slog.NewJSONHandler(buf, &slog.HandlerOptions{
			Level:       handlerOptions.Level,
			AddSource:   handlerOptions.AddSource,
			ReplaceAttr: suppressDefaults(handlerOptions.ReplaceAttr),
		}),
		replace: handlerOptions.ReplaceAttr,
		mu:      &sync.Mutex{},
		writer:  os.Stdout,
	}

	for _, opt := range options {
		opt(handler)
	}

	return handler
}

// Option implements a functional options pattern for PrettyHandler.
type Option func(h *PrettyHandler)

// WithDestinationWriter sets the destination writer for the PrettyHandler.
func WithDestinationWriter(writer io.Writer) Option {
	return func(h *PrettyHandler) {
		h.writer = writer
	}
}

// WithColour enables color output for the PrettyHandler.
func WithColour() Option {
	return func(h *PrettyHandler) {
		h.colour = true
	}
}

// WithAutoColour enables color output when the process-wide capability check
// allows it.
func WithAutoColour() Option {
	return func(h *PrettyHandler) {
		h.colour = color.Enabled()
	}
}

// WithOutputEmptyAttrs renders the attribute object even when it is empty.
func WithOutputEmptyAttrs() Option {
	return func(h *PrettyHandler) {
		h.emitEmptyAttrs = true
	}
}
