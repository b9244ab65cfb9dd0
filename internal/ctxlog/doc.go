// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a slog.Logger through a context.Context so every
// layer of a run, from the command line entry point down to individual
// command invocations, logs through the same handler.
//
// The default handler is a pretty console handler. The SALVO_LOG_LEVEL
// environment variable selects the minimum level, and NewForTUI returns a
// logger that writes somewhere other than the terminal while the interactive
// display owns it.
package ctxlog
