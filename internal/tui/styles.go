package tui

import (
	"charm.land/lipgloss/v2"
)

// widgetBlue matches the branding of the hosted widget.
const widgetBlue = "#007BFF"

// Styles contains all lipgloss styles for the widget.
type Styles struct {
	Header      lipgloss.Style
	User        lipgloss.Style
	Assistant   lipgloss.Style
	System      lipgloss.Style
	Error       lipgloss.Style
	ErrorBanner lipgloss.Style
	Prompt      lipgloss.Style
	Separator   lipgloss.Style
	StatusBar   lipgloss.Style
	Timestamp   lipgloss.Style
	Citation    lipgloss.Style
	FollowUp    lipgloss.Style
	Button      lipgloss.Style
	Badge       lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(widgetBlue)),
		User:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Assistant:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:      lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Error:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		ErrorBanner: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("196")).PaddingLeft(1),
		Prompt:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		StatusBar:   lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Timestamp:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Citation:    lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
		FollowUp:    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		Button:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(widgetBlue)).Border(lipgloss.RoundedBorder()).Padding(0, 2),
		Badge:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(lipgloss.Color("196")).Padding(0, 1),
	}
}
