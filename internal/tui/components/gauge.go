package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/tui/theme"
)

// Cushion renders how much of the current spending balance survives to the
// projected low point, as a bar followed by a percentage. pct is clamped to
// [0, 1].
func Cushion(pct float64, width int) string {
	t := theme.Active
	pct = max(0, min(pct, 1))
	filled := int(pct * float64(width))

	var color lipgloss.Color
	switch {
	case pct >= 0.5:
		color = t.Income
	case pct >= 0.2:
		color = t.Warning
	default:
		color = t.Expense
	}

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(t.TextDim).Render(strings.Repeat("░", width-filled))
	return bar + " " + lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%.0f%%", pct*100))
}
