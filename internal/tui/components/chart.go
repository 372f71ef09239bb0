package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/tui/theme"
)

var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// BalanceChart renders a column chart of a balance series. Columns rise
// from the lower of zero and the series minimum, so a balance that dips
// below zero still shows its shape. Columns under warn are drawn in the
// warning color. When there are more values than columns the series is
// sampled down, always keeping the lowest value of each bucket.
func BalanceChart(values []float64, labels []string, warn float64, width, height int) string {
	if len(values) == 0 || width < 15 || height < 3 {
		return ""
	}
	t := theme.Active

	lo, hi := math.Min(0, values[0]), values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}

	yLabelW := max(len(formatChartLabel(hi)), len(formatChartLabel(lo))) + 1
	chartW := max(width-yLabelW-1, 5)

	values, labels = sampleMin(values, labels, chartW)
	n := len(values)

	axis := lipgloss.NewStyle().Foreground(t.TextDim)
	ok := lipgloss.NewStyle().Foreground(t.Accent)
	low := lipgloss.NewStyle().Foreground(t.Warning)

	var b strings.Builder
	for row := height; row >= 1; row-- {
		rowTop := lo + (hi-lo)*float64(row)/float64(height)
		rowBottom := lo + (hi-lo)*float64(row-1)/float64(height)

		label := ""
		switch row {
		case height:
			label = formatChartLabel(hi)
		case 1:
			label = formatChartLabel(lo)
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", yLabelW, label)))

		for _, v := range values {
			style := ok
			if v < warn {
				style = low
			}
			switch {
			case v >= rowTop:
				b.WriteString(style.Render("█"))
			case v > rowBottom:
				idx := int((v - rowBottom) / (rowTop - rowBottom) * 8)
				b.WriteString(style.Render(string(blocks[max(1, min(idx, 8))])))
			default:
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axis.Render(strings.Repeat(" ", yLabelW) + "└" + strings.Repeat("─", n)))

	if len(labels) == n && n > 0 {
		first, last := labels[0], labels[n-1]
		gap := n - len(first) - len(last)
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", yLabelW+1))
		if gap > 0 {
			b.WriteString(axis.Render(first + strings.Repeat(" ", gap) + last))
		} else {
			b.WriteString(axis.Render(first))
		}
	}

	return b.String()
}

// sampleMin reduces values to at most limit buckets, keeping each bucket's
// minimum and the label of its first element.
func sampleMin(values []float64, labels []string, limit int) ([]float64, []string) {
	n := len(values)
	if n <= limit {
		return values, labels
	}
	withLabels := len(labels) == n

	outV := make([]float64, limit)
	var outL []string
	if withLabels {
		outL = make([]string, limit)
	}
	for i := range outV {
		from := i * n / limit
		to := max((i+1)*n/limit, from+1)
		m := values[from]
		for _, v := range values[from+1 : to] {
			m = math.Min(m, v)
		}
		outV[i] = m
		if withLabels {
			outL[i] = labels[from]
		}
	}
	if withLabels {
		outL[limit-1] = labels[n-1]
	}
	return outV, outL
}

func formatChartLabel(v float64) string {
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%s%.1fM", sign, v/1e6)
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("%s%.0fk", sign, v/1e3)
		}
		return fmt.Sprintf("%s%.1fk", sign, v/1e3)
	default:
		return fmt.Sprintf("%s%.0f", sign, v)
	}
}
