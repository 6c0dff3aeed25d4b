// Package styles defines shared lipgloss styles for the TUI.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fastygo/taskproof/internal/progress"
)

var (
	primaryColor   = lipgloss.Color(progress.ColorOnTime)
	secondaryColor = lipgloss.Color("#666666")
	successColor   = lipgloss.Color(progress.ColorCompleted)
	errorColor     = lipgloss.Color(progress.ColorOverrun)

	// TitleStyle for headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// SubtleStyle for hints and help text
	SubtleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// SelectedStyle for the row under the cursor
	SelectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// BoxStyle for panel borders
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(1, 2)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(successColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)

// Dot renders a status marker in the given hex color.
func Dot(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("●")
}

// Colored renders s in the given hex color.
func Colored(hex, s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(s)
}

// ProgressBar draws a fixed-width bar filled to percentage in the given color.
func ProgressBar(percentage, width int, hex string) string {
	if width <= 0 {
		return ""
	}
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	filled := percentage * width / 100
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(strings.Repeat("█", filled))
	return bar + SubtleStyle.Render(strings.Repeat("░", width-filled))
}

