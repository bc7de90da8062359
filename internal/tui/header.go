package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header displays the scenario name and barrier progress.
type Header struct {
	width    int
	scenario string

	finished int
	total    int
	armed    bool
	complete bool
}

// NewHeader creates a new header component.
func NewHeader(scenario string) Header {
	return Header{scenario: scenario}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.width = width
}

// SetProgress updates the job counts.
func (h *Header) SetProgress(finished, total int) {
	h.finished = finished
	h.total = total
}

// SetArmed marks the barrier as armed.
func (h *Header) SetArmed(armed bool) {
	h.armed = armed
}

// SetComplete marks the barrier as fired.
func (h *Header) SetComplete(complete bool) {
	h.complete = complete
}

// View renders the header.
func (h Header) View() string {
	brand := headerBrandStyle.Render("chimera · " + h.scenario)

	state := "idle"
	switch {
	case h.complete:
		state = "complete"
	case h.armed:
		state = "armed"
	}
	stats := headerStatsStyle.Render(fmt.Sprintf("%d/%d finished  %s", h.finished, h.total, state))

	spacerWidth := h.width - lipgloss.Width(brand) - lipgloss.Width(stats)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := headerContainerStyle.Render(strings.Repeat(" ", spacerWidth))

	return lipgloss.JoinHorizontal(lipgloss.Top, brand, spacer, stats)
}
