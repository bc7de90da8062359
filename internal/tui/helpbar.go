package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// HelpBar displays keyboard shortcuts or the run outcome at the bottom of the view.
type HelpBar struct {
	width int
	keys  KeyBindings

	outcome  string
	errorMsg string
}

// NewHelpBar creates a new help bar component.
func NewHelpBar() HelpBar {
	return HelpBar{
		keys: DefaultKeyBindings(),
	}
}

// SetWidth updates the help bar width.
func (h *HelpBar) SetWidth(width int) {
	h.width = width
}

// SetOutcome shows a completion message ahead of the shortcuts.
func (h *HelpBar) SetOutcome(msg string) {
	h.outcome = msg
}

// SetError sets the error message to display.
func (h *HelpBar) SetError(msg string) {
	h.errorMsg = msg
}

// View renders the help bar.
func (h HelpBar) View() string {
	// Error display takes top priority
	if h.errorMsg != "" {
		return errorBarStyle.Width(h.width).Render("Error: " + h.errorMsg + "  " + formatHelp([]key.Binding{h.keys.Quit}))
	}
	helpText := formatHelp(h.keys.ShortHelp())
	if h.outcome != "" {
		return completeStyle.Render(h.outcome) + statusStyle.Render(helpText)
	}
	return statusStyle.Width(h.width).Render(helpText)
}

// formatHelp formats a list of key bindings as help text.
func formatHelp(bindings []key.Binding) string {
	var parts []string
	for _, b := range bindings {
		help := b.Help()
		parts = append(parts, help.Key+": "+help.Desc)
	}
	return strings.Join(parts, "  ")
}
