// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/salvo/internal/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrettyHandler(t *testing.T) {
	tests := []struct {
		name    string
		options *slog.HandlerOptions
		opts    []Option
	}{
		{
			name:    "nil options",
			options: nil,
		},
		{
			name: "custom options",
			options: &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			},
		},
		{
			name:    "functional options",
			options: &slog.HandlerOptions{},
			opts: []Option{
				WithColour(),
				WithOutputEmptyAttrs(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPrettyHandler(tt.options, tt.opts...)
			require.NotNil(t, handler)
			assert.NotNil(t, handler.inner)
			assert.NotNil(t, handler.buf)
			assert.NotNil(t, handler.mu)
			assert.NotNil(t, handler.writer, "destination must default to stdout")
		})
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	tests := []struct {
		name    string
		level   slog.Level
		options *slog.HandlerOptions
		want    bool
	}{
		{
			name:    "debug level with debug handler",
			level:   slog.LevelDebug,
			options: &slog.HandlerOptions{Level: slog.LevelDebug},
			want:    true,
		},
		{
			name:    "debug level with info handler",
			level:   slog.LevelDebug,
			options: &slog.HandlerOptions{Level: slog.LevelInfo},
			want:    false,
		},
		{
			name:    "info level with debug handler",
			level:   slog.LevelInfo,
			options: &slog.HandlerOptions{Level: slog.LevelDebug},
			want:    true,
		},
		{
			name:    "error level with warn handler",
			level:   slog.LevelError,
			options: &slog.HandlerOptions{Level: slog.LevelWarn},
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewPrettyHandler(tt.options)
			assert.Equal(t, tt.want, handler.Enabled(context.Background(), tt.level))
		})
	}
}

// Derived handlers must share the buffer and mutex with their parent and
// carry the presentation settings forward, otherwise records logged through
// a child handler would race or render differently.
func TestPrettyHandler_DerivedHandlersShareState(t *testing.T) {
	var buf bytes.Buffer
	parent := NewPrettyHandler(
		&slog.HandlerOptions{},
		WithDestinationWriter(&buf),
		WithColour(),
		WithOutputEmptyAttrs(),
	)

	withAttrs, ok := parent.WithAttrs([]slog.Attr{slog.String("key", "value")}).(*PrettyHandler)
	require.True(t, ok)
	withGroup, ok := parent.WithGroup("grp").(*PrettyHandler)
	require.True(t, ok)

	for _, derived := range []*PrettyHandler{withAttrs, withGroup} {
		assert.Same(t, parent.buf, derived.buf)
		assert.Same(t, parent.mu, derived.mu)
		assert.Equal(t, parent.writer, derived.writer)
		assert.True(t, derived.colour)
		assert.True(t, derived.emitEmptyAttrs)
	}
}

func TestPrettyHandler_Handle(t *testing.T) {
	tests := []struct {
		name    string
		level   slog.Level
		message string
		attrs   []any
		options []Option
		want    []string
	}{
		{
			name:    "basic info message",
			level:   slog.LevelInfo,
			message: "test message",
			want:    []string{"INFO:", "test message"},
		},
		{
			name:    "debug message with attributes",
			level:   slog.LevelDebug,
			message: "debug message",
			attrs:   []any{"key", "value", "number", 42},
			want:    []string{"DEBUG:", "debug message", "key", "value", "42"},
		},
		{
			name:    "warning message",
			level:   slog.LevelWarn,
			message: "warning message",
			want:    []string{"WARN:", "warning message"},
		},
		{
			name:    "error message",
			level:   slog.LevelError,
			message: "error message",
			want:    []string{"ERROR:", "error message"},
		},
		{
			name:    "empty attrs rendered when enabled",
			level:   slog.LevelInfo,
			message: "test message",
			options: []Option{WithOutputEmptyAttrs()},
			want:    []string{"INFO:", "test message", "{}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			opts := append([]Option{WithDestinationWriter(&buf)}, tt.options...)
			handler := NewPrettyHandler(&slog.HandlerOptions{
				Level: slog.LevelDebug,
			}, opts...)

			record := slog.NewRecord(time.Now(), tt.level, tt.message, 0)
			record.Add(tt.attrs...)
			require.NoError(t, handler.Handle(context.Background(), record))

			output := buf.String()
			for _, want := range tt.want {
				assert.Contains(t, output, want)
			}

			assert.True(t, strings.HasSuffix(output, "\n"), "each record is one line")
			assert.NotContains(t, output, "\x1b[", "colour is off unless requested")
		})
	}
}

func TestPrettyHandler_Handle_DerivedAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPrettyHandler(&slog.HandlerOptions{}, WithDestinationWriter(&buf))
	derived := handler.WithAttrs([]slog.Attr{slog.String("session", "42")})

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "attached", 0)
	require.NoError(t, derived.Handle(context.Background(), record))

	assert.Contains(t, buf.String(), "session")
	assert.Contains(t, buf.String(), "42")
}

func TestPrettyHandler_Handle_ReplaceAttr(t *testing.T) {
	var buf bytes.Buffer
	replaceAttr := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			return slog.Attr{}
		}
		if a.Key == "secret" {
			return slog.String("secret", "[REDACTED]")
		}
		return a
	}

	handler := NewPrettyHandler(&slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceAttr,
	}, WithDestinationWriter(&buf))

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "test message", 0)
	record.Add("secret", "password123", "public", "data")
	require.NoError(t, handler.Handle(context.Background(), record))

	output := buf.String()
	assert.Contains(t, output, "[REDACTED]")
	assert.NotContains(t, output, "password123")
	assert.Contains(t, output, "public")
	assert.True(t, strings.HasPrefix(output, "INFO:"), "removed time leaves the level first")
}

func TestPrettyHandler_CollectAttrs_Error(t *testing.T) {
	handler := &PrettyHandler{
		inner: &failingHandler{},
		buf:   &bytes.Buffer{},
		mu:    &sync.Mutex{},
	}

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "test", 0)
	_, err := handler.collectAttrs(context.Background(), record)
	require.Error(t, err)
}

func TestPrettyHandler_Handle_WriteError(t *testing.T) {
	handler := NewPrettyHandler(&slog.HandlerOptions{
		Level: slog.LevelDebug,
	}, WithDestinationWriter(&failingWriter{}))

	record := slog.NewRecord(time.Now(), slog.LevelInfo, "test message", 0)
	err := handler.Handle(context.Background(), record)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIoWrite)
}

func TestFunctionalOptions(t *testing.T) {
	t.Run("WithDestinationWriter", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(nil, WithDestinationWriter(&buf))
		assert.Equal(t, &buf, handler.writer)
	})

	t.Run("WithColour", func(t *testing.T) {
		handler := NewPrettyHandler(nil, WithColour())
		assert.True(t, handler.colour)
	})

	t.Run("WithAutoColour", func(t *testing.T) {
		handler := NewPrettyHandler(nil, WithAutoColour())
		assert.Equal(t, color.Enabled(), handler.colour)
	})

	t.Run("WithOutputEmptyAttrs", func(t *testing.T) {
		handler := NewPrettyHandler(nil, WithOutputEmptyAttrs())
		assert.True(t, handler.emitEmptyAttrs)
	})
}

func TestLevelColor(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  color.Code
	}{
		{slog.LevelDebug, color.FgWhite},
		{slog.LevelInfo, color.FgCyan},
		{slog.LevelInfo + 2, color.FgBlue},
		{slog.LevelWarn, color.FgYellow},
		{slog.LevelError, color.FgRed},
		{slog.LevelError + 2, color.FgHiMagenta},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, levelColor(tt.level))
		})
	}
}

func TestSuppressDefaults(t *testing.T) {
	suppressFunc := suppressDefaults(nil)

	tests := []struct {
		name string
		attr slog.Attr
		want slog.Attr
	}{
		{
			name: "time key is suppressed",
			attr: slog.Time(slog.TimeKey, time.Now()),
			want: slog.Attr{},
		},
		{
			name: "level key is suppressed",
			attr: slog.Any(slog.LevelKey, slog.LevelInfo),
			want: slog.Attr{},
		},
		{
			name: "message key is suppressed",
			attr: slog.String(slog.MessageKey, "test"),
			want: slog.Attr{},
		},
		{
			name: "custom key passes through",
			attr: slog.String("custom", "value"),
			want: slog.String("custom", "value"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suppressFunc([]string{}, tt.attr)
			assert.True(t, got.Equal(tt.want), "suppressDefaults() = %v, want %v", got, tt.want)
		})
	}
}

func TestSuppressDefaults_WithNext(t *testing.T) {
	nextFunc := func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == "transform" {
			return slog.String("transform", "transformed")
		}
		return a
	}

	suppressFunc := suppressDefaults(nextFunc)

	tests := []struct {
		name string
		attr slog.Attr
		want slog.Attr
	}{
		{
			name: "time key is still suppressed",
			attr: slog.Time(slog.TimeKey, time.Now()),
			want: slog.Attr{},
		},
		{
			name: "transform key is transformed",
			attr: slog.String("transform", "original"),
			want: slog.String("transform", "transformed"),
		},
		{
			name: "other key passes through",
			attr: slog.String("other", "value"),
			want: slog.String("other", "value"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suppressFunc([]string{}, tt.attr)
			assert.True(t, got.Equal(tt.want), "suppressDefaults() = %v, want %v", got, tt.want)
		})
	}
}

type failingHandler struct{}

func (h *failingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *failingHandler) Handle(ctx context.Context, r slog.Record) error {
	return errors.New("failing handler error")
}

func (h *failingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *failingHandler) WithGroup(name string) slog.Handler {
	return h
}

type failingWriter struct{}

func (w *failingWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
