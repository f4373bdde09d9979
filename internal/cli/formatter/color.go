package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusStyle colors a status by its configured color, falling back to
// green for final statuses and the foreground color otherwise.
func StatusStyle(s domain.Status) lipgloss.Style {
	switch {
	case s.Color != "":
		return lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color))
	case s.IsFinal:
		return StyleGreen
	default:
		return StyleFg
	}
}

// StatusPill renders a status as "● Label", or "✔ Label" when final.
func StatusPill(s domain.Status) string {
	label := s.DisplayName
	if label == "" {
		label = s.Name
	}
	marker := "●"
	if s.IsFinal {
		marker = "✔"
	}
	return StatusStyle(s).Render(marker + " " + label)
}

// TypeBadge renders an issue type in a fixed color per built-in type.
func TypeBadge(issueType string) string {
	style := StylePurple
	switch issueType {
	case domain.TypeBug:
		style = StyleRed
	case domain.TypeStory:
		style = StyleGreen
	case domain.TypeEpic:
		style = StyleYellow
	case domain.TypeSubtask:
		style = StyleDim
	case domain.TypeTask:
		style = StyleBlue
	}
	return style.Render(issueType)
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
