package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary = lipgloss.Color("#7C3AED") // Purple
	Muted   = lipgloss.Color("#6B7280") // Gray
	Warning = lipgloss.Color("#F59E0B") // Amber
	Error   = lipgloss.Color("#EF4444") // Red
	White   = lipgloss.Color("#FFFFFF")

	Frame = lipgloss.NewStyle().
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Grid cells
	Cell = lipgloss.NewStyle().
		Border(lipgloss.HiddenBorder())

	CellSelected = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary)

	CellName = lipgloss.NewStyle().
			Foreground(Muted)

	CellNameFailed = lipgloss.NewStyle().
			Foreground(Warning)

	Status = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	StatusError = lipgloss.NewStyle().
			Foreground(Error).
			MarginTop(1)
)
