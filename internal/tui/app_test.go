package tui

import (
	"errors"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/calendar"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/store"
	"github.com/theirongolddev/runway/internal/tui/components"
)

func testApp() App {
	today := civil.Date{Year: 2024, Month: 1, Day: 15}
	return NewApp(Options{
		Owner:     "alice",
		Threshold: decimal.NewFromInt(75),
		Today:     func() civil.Date { return today },
		Log:       zerolog.Nop(),
	})
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0

		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + 1
		}
		if got := a.tabAtX(pos + 50); got != -1 {
			t.Errorf("tabAtX past the bar = %d, want -1", got)
		}
	}
}

func TestTransactionValues(t *testing.T) {
	vals := TransactionValues{
		Value:       "1,200.505",
		Kind:        string(model.Debit),
		Destination: string(model.Spending),
		Frequency:   "monthly",
		Start:       "2024-01-15",
		Monthly:     "last",
	}
	tx, err := vals.Transaction()
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if !tx.Value.Equal(decimal.RequireFromString("1200.51")) {
		t.Errorf("Value = %s, want 1200.51", tx.Value)
	}
	if tx.Pattern != (calendar.Monthly{Rule: calendar.MonthLast}) {
		t.Errorf("Pattern = %v, want monthly last", tx.Pattern)
	}
	if tx.Day != 31 {
		t.Errorf("Day = %d, want 31", tx.Day)
	}

	vals.Frequency = "weekly"
	vals.Stride = "2"
	tx, err = vals.Transaction()
	if err != nil {
		t.Fatalf("Transaction weekly: %v", err)
	}
	if tx.Pattern != (calendar.Weekly{Stride: 2}) {
		t.Errorf("Pattern = %v, want weekly stride 2", tx.Pattern)
	}

	vals.Value = "-5"
	if _, err := vals.Transaction(); err == nil {
		t.Error("negative amount accepted")
	}
}

func TestLeapDayNeedsFallback(t *testing.T) {
	vals := TransactionValues{
		Value:       "10",
		Kind:        string(model.Credit),
		Destination: string(model.Spending),
		Frequency:   "yearly",
		Start:       "2024-02-29",
	}
	if _, err := vals.Transaction(); err == nil {
		t.Fatal("Feb 29 start without fallback accepted")
	}
	vals.LeapFallback = "mar1"
	tx, err := vals.Transaction()
	if err != nil {
		t.Fatalf("Transaction: %v", err)
	}
	if tx.Pattern != (calendar.Yearly{Rule: calendar.LeapDay}) {
		t.Errorf("Pattern = %v, want yearly leap day", tx.Pattern)
	}
}

func TestUnseededOwnerOpensSetup(t *testing.T) {
	m, _ := testApp().Update(ReportMsg{Err: store.ErrNotSeeded})
	a := m.(App)
	if a.form == nil || a.formKind != formSetup {
		t.Fatalf("formKind = %v, want setup form", a.formKind)
	}
	if a.setupVals.Owner != "alice" {
		t.Errorf("setup owner = %q, want alice", a.setupVals.Owner)
	}
}

func TestReportFillsSchedule(t *testing.T) {
	rent := model.Transaction{
		ID: "rent", Value: decimal.NewFromInt(50), Kind: model.Debit, Destination: model.Spending,
		Pattern: calendar.Monthly{Rule: calendar.MonthFirst}, Day: 1,
	}
	next := civil.Date{Year: 2024, Month: 2, Day: 1}
	rep := &pipeline.Report{
		Funds: model.Funds{Owner: "alice", Spending: decimal.NewFromInt(100)},
		Transactions: []model.Transaction{rent},
		Projection: model.Projection{
			MinSpending: decimal.NewFromInt(50), LowDate: next, Horizon: next,
		},
	}

	m, _ := testApp().Update(ReportMsg{
		Report:  rep,
		Entries: []pipeline.Entry{{Transaction: rent, Next: next}},
		Today:   civil.Date{Year: 2024, Month: 1, Day: 15},
	})
	a := m.(App)
	if !a.loaded || a.err != nil {
		t.Fatalf("loaded = %v err = %v", a.loaded, a.err)
	}
	rows := a.schedule.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0][2] != "Payment" || rows[0][4] != "rent" {
		t.Errorf("row = %v", rows[0])
	}

	m, _ = a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	a = m.(App)
	view := a.View()
	if !strings.Contains(view, "Projected low") {
		t.Error("overview missing projected low card")
	}

	m, _ = a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	a = m.(App)
	if a.activeTab != tabSchedule {
		t.Errorf("activeTab = %d, want schedule", a.activeTab)
	}
	if e, ok := a.selectedEntry(); !ok || e.Transaction.ID != "rent" {
		t.Errorf("selectedEntry = %v, %v", e.Transaction.ID, ok)
	}
}

func TestRefreshErrorIsShown(t *testing.T) {
	m, _ := testApp().Update(ReportMsg{Err: errors.New("disk on fire")})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	if view := m.View(); !strings.Contains(view, "disk on fire") {
		t.Error("error not rendered")
	}
}

func TestNarrowTerminal(t *testing.T) {
	m, _ := testApp().Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	if view := m.View(); !strings.Contains(view, "too narrow") {
		t.Errorf("View = %q, want narrow notice", view)
	}
}
