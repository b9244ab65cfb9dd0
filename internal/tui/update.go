// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/salvo/internal/progress"
	"github.com/matt-FFFFFF/salvo/internal/volley"
)

const (
	minStatusBarAvailableHeight = 10
	runDurationRounding         = 100 * time.Millisecond // Round durations to 100ms
)

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.EnableMouseCellMotion, // Enable mouse support
	)
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Update the viewport first
	m.viewport, cmd = m.viewport.Update(msg)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Handle keys not handled by viewport
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.mutex.Lock()
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewportSize()
		m.mutex.Unlock()

		return m, cmd

	case ProgressEventMsg:
		progressCmd := m.processProgressEvent(msg.Event)
		return m, tea.Batch(cmd, progressCmd)

	case RunCompletedMsg:
		m.mutex.Lock()
		m.completed = true
		m.results = msg.Results
		m.mutex.Unlock()

		return m, nil

	case tea.QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// ProgressEventMsg wraps a progress event for the tea framework.
type ProgressEventMsg struct {
	Event progress.ProgressEvent
}

// RunCompletedMsg indicates that every scheduled run has finished.
type RunCompletedMsg struct {
	Results []volley.Results
}

// handleKeyPress processes keyboard input.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "r":
		// Refresh view
		return m, nil
	}

	// All other keys (scrolling) are handled by viewport
	return m, nil
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	// Build content for the viewport
	var content strings.Builder

	for _, rs := range m.runs {
		m.renderRunState(&content, rs)
	}

	// Show completion status once every run is done
	if m.completed {
		content.WriteString("\n")

		if resultsHaveFailures(m.results) {
			content.WriteString(m.styles.Failed.Render("⚠️  Run completed with failed invocations"))
		} else {
			content.WriteString(m.styles.Success.Render("✅ Run completed successfully"))
		}

		content.WriteString("\n")
	}

	// Set viewport content
	m.viewport.SetContent(content.String())

	// Build the final view
	var view strings.Builder

	// Title
	title := m.styles.Title.Render("🎯 Salvo Load Harness")
	view.WriteString(title)
	view.WriteString("\n")

	// Viewport with border
	viewportContent := m.viewport.View()
	borderedViewport := m.styles.Border.Render(viewportContent)
	view.WriteString(borderedViewport)

	// Footer with status bar and help
	if m.height > minStatusBarAvailableHeight {
		view.WriteString("\n\n")

		// Status bar
		statusBar := m.renderStatusBar()
		view.WriteString(statusBar)
		view.WriteString("\n")

		// Help text
		helpText := "↑/↓ or j/k to scroll, PgUp/PgDn for pages, 'q' to stop the run and quit"
		if m.completed {
			helpText = "'q' to quit and print the report"
		}

		help := m.styles.Help.Render(helpText)
		view.WriteString(help)
	}

	return view.String()
}

// renderRunState renders a single scenario run with its progress bar.
func (m *Model) renderRunState(b *strings.Builder, rs *RunState) {
	status, name, completed, failed, total, errMsg := rs.GetDisplayInfo()

	// Status icon and styling
	var statusIcon string

	var styledName string

	switch status {
	case StatusPending:
		statusIcon = "⏳"
		styledName = m.styles.Pending.Render(name)
	case StatusRunning:
		statusIcon = "⚡"
		styledName = m.styles.Running.Render(name)
	case StatusCompleted:
		if failed > 0 {
			statusIcon = "❌"
			styledName = m.styles.Failed.Render(name)
		} else {
			statusIcon = "✅"
			styledName = m.styles.Success.Render(name)
		}
	case StatusCancelled:
		statusIcon = "⚠️"
		styledName = m.styles.Cancelled.Render(name)
	default:
		statusIcon = "❓"
		styledName = m.styles.Pending.Render(name)
	}

	b.WriteString(fmt.Sprintf("%s %s", statusIcon, styledName))

	// Add timing information if available
	if elapsed := rs.Elapsed(); elapsed > 0 {
		b.WriteString(m.styles.Output.Render(fmt.Sprintf(" (%v)", elapsed.Round(runDurationRounding))))
	}

	b.WriteString("\n")

	// Progress bar with cumulative counts
	counts := fmt.Sprintf(" %d/%d requests", completed, total)
	if failed > 0 {
		counts += m.styles.Error.Render(fmt.Sprintf(", %d failed", failed))
	}

	b.WriteString("   ")
	b.WriteString(m.bar.ViewAs(rs.Ratio()))
	b.WriteString(counts)
	b.WriteString("\n")

	if errMsg != "" && status == StatusCancelled {
		b.WriteString("   ")
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Cancelled: %s", errMsg)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
}

// renderStatusBar summarises every run on a single line.
func (m *Model) renderStatusBar() string {
	var completed, failed, total int

	for _, rs := range m.runs {
		_, _, c, f, t, _ := rs.GetDisplayInfo()
		completed += c
		failed += f
		total += t
	}

	status := fmt.Sprintf("%d/%d requests completed, %d failed across %d scenarios",
		completed, total, failed, len(m.runs))

	return m.styles.Output.Render(status)
}

// resultsHaveFailures reports whether any run collection contains a failure.
func resultsHaveFailures(results []volley.Results) bool {
	for _, r := range results {
		if r.HasFailure() {
			return true
		}
	}

	return false
}
