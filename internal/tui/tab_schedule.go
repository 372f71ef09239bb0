package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/runway/internal/cli"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/store"
	"github.com/theirongolddev/runway/internal/tui/components"
	"github.com/theirongolddev/runway/internal/tui/theme"
)

var scheduleColumns = []table.Column{
	{Title: "Next", Width: 14},
	{Title: "Amount", Width: 12},
	{Title: "Type", Width: 12},
	{Title: "Frequency", Width: 28},
	{Title: "ID", Width: 36},
}

func newScheduleTable() table.Model {
	t := theme.Active
	tbl := table.New(
		table.WithColumns(scheduleColumns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Foreground(t.TextMuted).
		Bold(true)
	styles.Cell = styles.Cell.Foreground(t.TextPrimary)
	styles.Selected = styles.Selected.
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true)
	tbl.SetStyles(styles)
	return tbl
}

func scheduleRows(entries []pipeline.Entry, currency string) []table.Row {
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		tx := e.Transaction
		rows[i] = table.Row{
			cli.FormatDate(e.Next),
			cli.FormatSigned(tx, currency),
			cli.FormatMovement(tx),
			cli.FormatFrequency(tx.Pattern, tx.Day, e.Next),
			tx.ID,
		}
	}
	return rows
}

func (a *App) resizeSchedule() {
	// Header, tab bar, status bar, card border and card title.
	a.schedule.SetHeight(max(a.height-8, minContentHeight))
	a.schedule.SetWidth(components.CardInnerWidth(a.contentWidth()))
}

func (a App) updateSchedule(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "d" {
		if e, ok := a.selectedEntry(); ok {
			a.flash = ""
			return a, deleteCmd(a.opts.Store, a.owner, e.Transaction)
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.schedule, cmd = a.schedule.Update(msg)
	return a, cmd
}

func (a App) selectedEntry() (pipeline.Entry, bool) {
	i := a.schedule.Cursor()
	if i < 0 || i >= len(a.entries) {
		return pipeline.Entry{}, false
	}
	return a.entries[i], true
}

func (a App) renderScheduleTab(cw int) string {
	t := theme.Active
	if len(a.entries) == 0 {
		return components.ContentCard("Schedule",
			lipgloss.NewStyle().Foreground(t.TextMuted).Render("Nothing scheduled. Press a to add a transaction."), cw)
	}

	credits, debits := pipeline.SplitIncome(a.entries)
	title := fmt.Sprintf("Schedule · %d in · %d out", len(credits), len(debits))
	return components.ContentCard(title, a.schedule.View(), cw)
}

func addCmd(st *store.Store, owner string, t model.Transaction) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		created, err := st.CreateTransaction(ctx, owner, t)
		if err != nil {
			return SavedMsg{Err: err}
		}
		return SavedMsg{Note: fmt.Sprintf("Added %s %s", cli.FormatMovement(created), shortID(created.ID))}
	}
}

func deleteCmd(st *store.Store, owner string, t model.Transaction) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := st.DeleteTransaction(ctx, owner, t.ID); err != nil {
			return SavedMsg{Err: err}
		}
		return SavedMsg{Note: "Deleted " + shortID(t.ID)}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
