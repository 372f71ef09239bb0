package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

const overviewUpcoming = 5

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	if a.report == nil {
		return ""
	}
	funds := a.report.Funds
	proj := a.report.Projection
	cur := a.opts.Currency
	var b strings.Builder

	// Row 1: metric cards
	lowColor := t.Income
	lowNote := "stays above threshold"
	if proj.MinSpending.LessThan(a.opts.Threshold) {
		lowColor = t.Warning
		lowNote = "below " + cli.FormatMoney(a.opts.Threshold, cur)
	}
	lowDate := "today"
	if proj.LowDate != a.lastDay {
		lowDate = cli.FormatDate(proj.LowDate)
	}
	horizon := fmt.Sprintf("horizon %s", cli.FormatDate(proj.Horizon))

	b.WriteString(components.MetricRow([]components.Metric{
		{Label: "Spending", Value: cli.FormatMoney(funds.Spending, cur), Note: "available now"},
		{Label: "Savings", Value: cli.FormatMoney(funds.Savings, cur), Note: "set aside", Color: t.Savings},
		{Label: "Projected low", Value: cli.FormatMoney(proj.MinSpending, cur), Note: lowNote, Color: lowColor},
		{Label: "Low date", Value: lowDate, Note: horizon},
	}, cw))
	b.WriteString("\n")

	// Row 2: how much of today's spending survives to the low point
	pct := 0.0
	if funds.Spending.IsPositive() {
		pct = proj.MinSpending.Div(funds.Spending).InexactFloat64()
	}
	inner := components.CardInnerWidth(cw)
	b.WriteString(components.ContentCard("Cushion", components.Cushion(pct, max(inner-6, 10)), cw))
	b.WriteString("\n")

	// Row 3: spending balance until the horizon
	if len(a.points) > 1 {
		vals := make([]float64, len(a.points))
		labels := make([]string, len(a.points))
		for i, p := range a.points {
			vals[i] = p.Spending.InexactFloat64()
			labels[i] = cli.FormatDate(p.Date)
		}
		b.WriteString(components.ContentCard(
			fmt.Sprintf("Spending until %s", cli.FormatDate(proj.Horizon)),
			components.BalanceChart(vals, labels, a.opts.Threshold.InexactFloat64(), inner, 8),
			cw,
		))
		b.WriteString("\n")
	}

	// Row 4: next few occurrences
	b.WriteString(components.ContentCard("Coming up", a.renderUpcoming(inner), cw))

	return b.String()
}

func (a App) renderUpcoming(width int) string {
	t := theme.Active
	if len(a.entries) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextMuted).Render("Nothing scheduled")
	}

	dateStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	inStyle := lipgloss.NewStyle().Foreground(t.Income)
	outStyle := lipgloss.NewStyle().Foreground(t.Expense)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	var lines []string
	for i, e := range a.entries {
		if i == overviewUpcoming {
			break
		}
		amount := cli.FormatSigned(e.Transaction, a.opts.Currency)
		style := outStyle
		if e.Transaction.IsIncome() {
			style = inStyle
		}
		line := fmt.Sprintf("%s  %s  %s",
			dateStyle.Render(fmt.Sprintf("%-14s", cli.FormatDate(e.Next))),
			style.Render(fmt.Sprintf("%12s", amount)),
			labelStyle.Render(cli.FormatMovement(e.Transaction)),
		)
		lines = append(lines, lipgloss.NewStyle().MaxWidth(width).Render(line))
	}
	if n := len(a.entries) - overviewUpcoming; n > 0 {
		lines = append(lines, dateStyle.Render(fmt.Sprintf("+%d more on the Schedule tab", n)))
	}
	return strings.Join(lines, "\n")
}
