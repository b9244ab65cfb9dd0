// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"sync"
	"time"

	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/salvo/internal/progress"
	"github.com/matt-FFFFFF/salvo/internal/volley"
)

const (
	defaultViewportWidth  = 80
	defaultViewportHeight = 20
	minViewportWidth      = 20
	viewportBorderPadding = 4
	maxProgressBarWidth   = 40
)

// RunStatus represents the current state of a scenario run in the TUI.
type RunStatus int

const (
	StatusPending RunStatus = iota
	StatusRunning
	StatusCompleted
	StatusCancelled
)

// String returns a string representation of the run status.
func (s RunStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// RunState tracks the observed progress of a single scenario run. Counts are
// cumulative and come straight from progress events, so the TUI never keeps
// its own tally.
type RunState struct {
	Name       string       // Scenario label
	Status     RunStatus    // Current run status
	Completed  int          // Invocations completed so far
	Failed     int          // Failed invocations observed so far
	Total      int          // Invocations requested for the run
	BatchIndex int          // Zero-based ordinal of the most recent batch
	StartTime  *time.Time   // When the run started
	EndTime    *time.Time   // When the run finished or was cancelled
	ErrorMsg   string       // Cancellation cause if the run stopped early
	mutex      sync.RWMutex // Protects concurrent access to fields
}

// NewRunState creates run state for a scenario that has not started yet.
func NewRunState(name string) *RunState {
	return &RunState{
		Name:   name,
		Status: StatusPending,
	}
}

// Start marks the run as started with the requested invocation count.
func (rs *RunState) Start(total int) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	rs.Status = StatusRunning
	rs.Total = total

	if rs.StartTime == nil {
		now := time.Now()
		rs.StartTime = &now
	}
}

// UpdateProgress records cumulative completion counts from a batch event.
func (rs *RunState) UpdateProgress(data progress.EventData) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	rs.BatchIndex = data.BatchIndex
	rs.Completed = data.Completed
	rs.Failed = data.Failed

	if data.Total > 0 {
		rs.Total = data.Total
	}
}

// Finish marks the run as completed and records the final counts.
func (rs *RunState) Finish(data progress.EventData) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	rs.Status = StatusCompleted
	rs.Completed = data.Completed
	rs.Failed = data.Failed

	if rs.EndTime == nil {
		now := time.Now()
		rs.EndTime = &now
	}
}

// Cancel marks the run as cancelled and records the cause.
func (rs *RunState) Cancel(data progress.EventData) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	rs.Status = StatusCancelled
	rs.Completed = data.Completed
	rs.Failed = data.Failed

	if data.Err != nil {
		rs.ErrorMsg = data.Err.Error()
	}

	if rs.EndTime == nil {
		now := time.Now()
		rs.EndTime = &now
	}
}

// Ratio returns the completed fraction of the run, between 0 and 1.
// A zero-invocation run counts as fully complete once it has finished.
func (rs *RunState) Ratio() float64 {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()

	if rs.Total <= 0 {
		if rs.Status == StatusCompleted {
			return 1
		}

		return 0
	}

	ratio := float64(rs.Completed) / float64(rs.Total)
	if ratio > 1 {
		ratio = 1
	}

	return ratio
}

// Elapsed returns how long the run has been going, or how long it took.
func (rs *RunState) Elapsed() time.Duration {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()

	if rs.StartTime == nil {
		return 0
	}

	if rs.EndTime != nil {
		return rs.EndTime.Sub(*rs.StartTime)
	}

	return time.Since(*rs.StartTime)
}

// GetDisplayInfo safely retrieves display information.
func (rs *RunState) GetDisplayInfo() (RunStatus, string, int, int, int, string) {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()

	return rs.Status, rs.Name, rs.Completed, rs.Failed, rs.Total, rs.ErrorMsg
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	reporter  progress.ProgressReporter
	runs      []*RunState          // Scenario runs in the order they first reported
	runMap    map[string]*RunState // Maps scenario names to run state for quick lookup
	width     int
	height    int
	quitting  bool
	completed bool             // Track if every scheduled run has finished
	results   []volley.Results // Final results, one collection per run
	viewport  viewport.Model
	bar       progressbar.Model
	mutex     sync.RWMutex

	// Style definitions
	styles *Styles
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title     lipgloss.Style
	Pending   lipgloss.Style
	Running   lipgloss.Style
	Success   lipgloss.Style
	Failed    lipgloss.Style
	Cancelled lipgloss.Style
	Output    lipgloss.Style
	Error     lipgloss.Style
	Help      lipgloss.Style
	Border    lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Cancelled: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")),
		Output: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1),
	}
}

// NewModel creates a new TUI model.
func NewModel(ctx context.Context) *Model {
	return &Model{
		ctx:      ctx,
		runMap:   make(map[string]*RunState),
		viewport: viewport.New(defaultViewportWidth, defaultViewportHeight),
		bar:      progressbar.New(progressbar.WithDefaultGradient()),
		styles:   NewStyles(),
	}
}

// SetReporter sets the progress reporter for the model.
func (m *Model) SetReporter(reporter progress.ProgressReporter) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.reporter = reporter
}

// getViewportHeight returns the available height for content display.
func (m *Model) getViewportHeight() int {
	// Reserve space for title (3 lines), border (2 lines), and help text (2 lines)
	reservedLines := 7
	if m.height <= reservedLines {
		return 1 // Minimum viewport height
	}

	return m.height - reservedLines
}

// updateViewportSize resizes the viewport and progress bar for the window.
func (m *Model) updateViewportSize() {
	width := m.width - viewportBorderPadding
	if width < minViewportWidth {
		width = minViewportWidth
	}

	m.viewport.Width = width
	m.viewport.Height = m.getViewportHeight()

	barWidth := width / 2 //nolint:mnd // Leave room for the counts next to the bar
	if barWidth > maxProgressBarWidth {
		barWidth = maxProgressBarWidth
	}

	m.bar.Width = barWidth
}

// getOrCreateRun safely gets or creates the run state for a scenario.
func (m *Model) getOrCreateRun(name string) *RunState {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if rs, exists := m.runMap[name]; exists {
		return rs
	}

	rs := NewRunState(name)
	m.runMap[name] = rs
	m.runs = append(m.runs, rs)

	return rs
}

// processProgressEvent handles incoming progress events.
func (m *Model) processProgressEvent(event progress.ProgressEvent) tea.Cmd {
	rs := m.getOrCreateRun(event.Scenario)

	switch event.Type {
	case progress.EventRunStarted:
		rs.Start(event.Data.Total)

	case progress.EventBatchStarted, progress.EventBatchCompleted:
		rs.UpdateProgress(event.Data)

	case progress.EventRunCompleted:
		rs.Finish(event.Data)

	case progress.EventRunCancelled:
		rs.Cancel(event.Data)
	}

	return nil
}
