// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"
)

// ChannelReporter is a ProgressReporter backed by a buffered channel. Report
// never blocks the run loop: when the buffer is full the event is dropped.
type ChannelReporter struct {
	ch     chan ProgressEvent
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once

	mu     sync.RWMutex
	closed bool
}

// NewChannelReporter creates a ChannelReporter. bufferSize sets how many
// events may be queued before Report starts dropping them.
func NewChannelReporter(ctx context.Context, bufferSize int) *ChannelReporter {
	reporterCtx, cancel := context.WithCancel(ctx)

	return &ChannelReporter{
		ch:     make(chan ProgressEvent, bufferSize),
		ctx:    reporterCtx,
		cancel: cancel,
	}
}

// Report implements ProgressReporter. Events arriving after Close, after the
// context is cancelled, or while the buffer is full are dropped.
func (cr *ChannelReporter) Report(event ProgressEvent) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	// The closed flag is set under the write lock before the channel is
	// closed, so no send can reach a closed channel.
	if cr.closed || cr.ctx.Err() != nil {
		return
	}

	select {
	case cr.ch <- event:
	default:
	}
}

// Close stops the reporter and waits for listeners to drain the buffered
// events. Safe to call more than once.
func (cr *ChannelReporter) Close() {
	cr.once.Do(func() {
		cr.mu.Lock()
		cr.closed = true
		cr.mu.Unlock()

		cr.cancel()
		close(cr.ch)
		cr.wg.Wait()
	})
}

// Listen forwards events to listener from a new goroutine until the reporter
// is closed or the context is cancelled. Close waits for the goroutine, so
// events buffered before Close reach the listener before Close returns.
func (cr *ChannelReporter) Listen(listener ProgressListener) {
	cr.wg.Add(1)

	go func() {
		defer cr.wg.Done()

		for {
			select {
			case event, ok := <-cr.ch:
				if !ok {
					return
				}

				listener.OnEvent(event)
			case <-cr.ctx.Done():
				// Report refuses new events once the context is done, so a
				// non-blocking drain delivers everything already buffered.
				for {
					select {
					case event, ok := <-cr.ch:
						if !ok {
							return
						}

						listener.OnEvent(event)
					default:
						return
					}
				}
			}
		}
	}()
}

// Events exposes the event stream for callers that consume it directly
// instead of through Listen. The channel closes when the reporter closes.
func (cr *ChannelReporter) Events() <-chan ProgressEvent {
	return cr.ch
}
