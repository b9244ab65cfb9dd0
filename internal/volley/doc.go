// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package volley runs a fixed external command many times in bounded parallel
// batches and aggregates per-invocation latency and outcome statistics.
// An Invoker launches one process per session and folds every fault into a
// Result rather than returning an error, so a load run keeps going no matter
// what the target does. A Scheduler partitions the requested total into
// batches of at most the concurrency limit, fans each batch out, and
// barrier-waits before starting the next, so the number of in-flight
// processes never exceeds the limit.
package volley
