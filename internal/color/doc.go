// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color renders strings with ANSI SGR escape sequences for the
// summary and progress output. Whether color is emitted is decided once at
// startup: the NO_COLOR environment variable disables it, FORCE_COLOR
// enables it, and otherwise it is on only when stdout is a terminal. With
// color off every function degrades to plain text, so callers never need
// their own capability checks.
package color
