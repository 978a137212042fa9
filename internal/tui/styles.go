package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#00AFAF")
	colorGray   = lipgloss.Color("#666666")
	colorRed    = lipgloss.Color("#FF5F5F")
	colorYellow = lipgloss.Color("#FFD75F")
	colorBlue   = lipgloss.Color("#5FAFFF")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginTop(1)

	busyStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	dividerStyle = lipgloss.NewStyle().
			Foreground(colorGray)
)
