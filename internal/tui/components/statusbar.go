package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// right-aligned info (owner, refresh state) on the right.
func RenderStatusBar(width int, info string) string {
	t := theme.Active

	left := " [?]help  [r]efresh  [a]dd  [q]uit"
	right := info + " "

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)

	return lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width).
		Render(left + strings.Repeat(" ", padding) + right)
}
