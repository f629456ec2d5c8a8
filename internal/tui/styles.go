package tui

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ishaan812/farmer/internal/git"
)

// Shared TUI styles used across all commands
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			MarginBottom(1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	inputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("86")).
			Padding(0, 1)
)

func parseDate(date string) (time.Time, error) {
	return time.ParseInLocation(git.DateLayout, date, time.Local)
}
