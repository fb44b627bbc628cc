package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/blocksched/internal/domain"
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

// FirmnessStyle returns the style used to render a block's firmness.
func FirmnessStyle(f domain.Firmness) lipgloss.Style {
	switch f {
	case domain.FirmnessHard:
		return StyleRed
	case domain.FirmnessSoft:
		return StyleYellow
	default:
		return StyleDim
	}
}

// StatusIndicator returns a colored marker such as "● planned".
func StatusIndicator(s domain.BlockStatus) string {
	switch s {
	case domain.BlockRunning:
		return StyleGreen.Render("● running")
	case domain.BlockDone:
		return StyleBlue.Render("● done")
	case domain.BlockPartial:
		return StyleYellow.Render("● partial")
	case domain.BlockSkipped:
		return StyleDim.Render("● skipped")
	default:
		return StyleFg.Render("● planned")
	}
}

// TaskStatusStyled renders a task status in its urgency color.
func TaskStatusStyled(s domain.TaskStatus) string {
	switch s {
	case domain.TaskInProgress:
		return StyleGreen.Render(string(s))
	case domain.TaskCompleted:
		return StyleBlue.Render(string(s))
	case domain.TaskDeferred:
		return StyleDim.Render(string(s))
	default:
		return StyleFg.Render(string(s))
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
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
