// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Code is a single ANSI SGR parameter.
type Code int

// Text attributes.
const (
	Reset Code = iota
	Bold
	Faint
	Italic
	Underline
)

// Foreground colors.
const (
	FgBlack Code = iota + 30
	FgRed
	FgGreen
	FgYellow
	FgBlue
	FgMagenta
	FgCyan
	FgWhite
)

// High intensity foreground colors.
const (
	FgHiBlack Code = iota + 90
	FgHiRed
	FgHiGreen
	FgHiYellow
	FgHiBlue
	FgHiMagenta
	FgHiCyan
	FgHiWhite
)

// Environment variables consulted by the capability check. NO_COLOR wins
// over FORCE_COLOR, and FORCE_COLOR wins over terminal detection.
const (
	NoColor    = "NO_COLOR"
	ForceColor = "FORCE_COLOR"
)

const (
	csi       = "\033[" // Control sequence introducer
	sgrSuffix = "m"
	resetSeq  = csi + "0" + sgrSuffix

	codeDigits = 4 // Builder headroom per rendered code, including the separator
)

var enabled = isColorCapable()

// sequence renders codes as one SGR escape sequence.
func sequence(codes []Code) string {
	sb := strings.Builder{}
	sb.Grow(len(csi) + len(sgrSuffix) + codeDigits*len(codes))
	sb.WriteString(csi)

	for i, code := range codes {
		if i > 0 {
			sb.WriteByte(';')
		}

		sb.WriteString(strconv.Itoa(int(code)))
	}

	sb.WriteString(sgrSuffix)

	return sb.String()
}

// ControlString returns the bare escape sequence for codes, with no text and
// no reset. An empty string is returned when color output is off, so callers
// can embed it unconditionally.
func ControlString(codes ...Code) string {
	if !enabled {
		return ""
	}

	return sequence(codes)
}

// Colorize wraps str in the escape sequence for codes and appends a reset.
// When color output is off str is returned unchanged.
func Colorize(str string, codes ...Code) string {
	if !enabled {
		return str
	}

	return sequence(codes) + str + resetSeq
}

// ColorizeNoReset wraps str in the escape sequence for codes and leaves the
// style open. Pair it with ControlString(Reset) once the styled run of text
// ends.
func ColorizeNoReset(str string, codes ...Code) string {
	if !enabled {
		return str
	}

	return sequence(codes) + str
}

// Enabled reports whether color output is on. The capability check runs once
// at package initialization.
func Enabled() bool {
	return enabled
}

func isColorCapable() bool {
	if os.Getenv(NoColor) != "" {
		return false
	}

	if os.Getenv(ForceColor) != "" {
		return true
	}

	return term.IsTerminal(int(os.Stdout.Fd()))
}
