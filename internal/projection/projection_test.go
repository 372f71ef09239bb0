package projection

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/calendar"
	"github.com/theirongolddev/runway/internal/ledger"
	"github.com/theirongolddev/runway/internal/model"
)

func mustDate(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func txn(id, value string, kind model.Kind, dest model.Destination, p calendar.Pattern, day int) model.Transaction {
	return model.Transaction{ID: id, Value: money(value), Kind: kind, Destination: dest, Pattern: p, Day: day}
}

// naiveProject walks every day and replays that day's occurrences, the
// direct reading of the projection rule.
func naiveProject(t *testing.T, spending, savings decimal.Decimal, txns []model.Transaction, today, horizon civil.Date) model.Projection {
	t.Helper()
	p := model.Projection{MinSpending: spending, SavingsAtMin: savings, LowDate: today, Horizon: horizon}
	active := append([]model.Transaction(nil), txns...)
	for prev, day := today, today.AddDays(1); !day.After(horizon); prev, day = day, day.AddDays(1) {
		var keep []model.Transaction
		for _, tr := range active {
			occ, err := ledger.Occurrences(tr, prev, day)
			if err != nil {
				t.Fatalf("Occurrences: %v", err)
			}
			for range occ {
				spending, savings = ledger.Apply(tr, spending, savings)
			}
			if tr.IsSingle() && len(occ) > 0 {
				continue
			}
			keep = append(keep, tr)
		}
		active = keep
		if spending.LessThan(p.MinSpending) {
			p.MinSpending = spending
			p.SavingsAtMin = savings
			p.LowDate = day
			if !p.MinSpending.IsPositive() {
				p.MinSpending = decimal.Zero
			}
		}
	}
	return p
}

func assertProjection(t *testing.T, got, want model.Projection) {
	t.Helper()
	if !got.MinSpending.Equal(want.MinSpending) || !got.SavingsAtMin.Equal(want.SavingsAtMin) ||
		got.LowDate != want.LowDate || got.Horizon != want.Horizon {
		t.Fatalf("projection = {%s %s %s %s}, want {%s %s %s %s}",
			got.MinSpending, got.SavingsAtMin, got.LowDate, got.Horizon,
			want.MinSpending, want.SavingsAtMin, want.LowDate, want.Horizon)
	}
}

func TestFarthestRelevantDate(t *testing.T) {
	today := mustDate(t, "2024-01-10")
	txns := []model.Transaction{
		txn("rent", "900", model.Debit, model.Spending, calendar.Monthly{Rule: calendar.MonthFirst}, 1),
		txn("save", "100", model.Credit, model.Savings, calendar.Monthly{Rule: calendar.MonthDay}, 20),
		txn("bonus", "5000", model.Credit, model.Spending, calendar.Yearly{Rule: calendar.YearDay}, 300),
		txn("pull", "50", model.Debit, model.Savings, calendar.Yearly{Rule: calendar.YearDay}, 200),
	}

	got, err := FarthestRelevantDate(txns, today)
	if err != nil {
		t.Fatalf("FarthestRelevantDate: %v", err)
	}
	if want := mustDate(t, "2024-02-01"); got != want {
		t.Fatalf("horizon = %s, want %s", got, want)
	}

	again, err := FarthestRelevantDate(txns, today)
	if err != nil || again != got {
		t.Fatalf("second horizon = %s, %v; want %s", again, err, got)
	}
}

func TestFarthestRelevantDateDefaultsToToday(t *testing.T) {
	today := mustDate(t, "2024-01-10")
	txns := []model.Transaction{
		txn("pay", "2000", model.Credit, model.Spending, calendar.Weekly{Stride: 2}, calendar.Ordinal(today)),
		txn("old", "10", model.Debit, model.Spending, calendar.Single{}, calendar.Ordinal(mustDate(t, "2024-01-01"))),
	}
	got, err := FarthestRelevantDate(txns, today)
	if err != nil {
		t.Fatalf("FarthestRelevantDate: %v", err)
	}
	if got != today {
		t.Fatalf("horizon = %s, want %s", got, today)
	}
}

func TestProjectHorizonToday(t *testing.T) {
	today := mustDate(t, "2024-01-10")
	rent := txn("rent", "900", model.Debit, model.Spending, calendar.Daily{}, 0)

	got, err := Project(money("-5"), money("10"), []model.Transaction{rent}, today, today)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	assertProjection(t, got, model.Projection{MinSpending: money("-5"), SavingsAtMin: money("10"), LowDate: today, Horizon: today})
}

func TestProjectRecordsLowPoint(t *testing.T) {
	today := mustDate(t, "2024-01-10")
	txns := []model.Transaction{
		txn("rent", "900", model.Debit, model.Spending, calendar.Monthly{Rule: calendar.MonthFirst}, 1),
		txn("pay", "1000", model.Credit, model.Spending, calendar.Monthly{Rule: calendar.MonthDay}, 15),
		txn("save", "200", model.Credit, model.Savings, calendar.Monthly{Rule: calendar.MonthDay}, 20),
	}
	horizon, err := FarthestRelevantDate(txns, today)
	if err != nil {
		t.Fatalf("FarthestRelevantDate: %v", err)
	}

	got, err := Project(money("500"), money("50"), txns, today, horizon)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	// 500 +1000 (Jan 15) -200 (Jan 20) -900 (Feb 1) = 400, the only dip below 500.
	assertProjection(t, got, model.Projection{
		MinSpending:  money("400"),
		SavingsAtMin: money("250"),
		LowDate:      mustDate(t, "2024-02-01"),
		Horizon:      mustDate(t, "2024-02-01"),
	})
}

func TestProjectClampsNegativeMinimum(t *testing.T) {
	today := mustDate(t, "2024-03-01")
	horizon := mustDate(t, "2024-03-20")
	txns := []model.Transaction{
		txn("car", "300", model.Debit, model.Spending, calendar.Single{}, calendar.Ordinal(mustDate(t, "2024-03-05"))),
	}

	got, err := Project(money("100"), money("0"), txns, today, horizon)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	// Spending sits at -200 from Mar 5, below the clamped zero every day.
	assertProjection(t, got, model.Projection{
		MinSpending:  decimal.Zero,
		SavingsAtMin: money("0"),
		LowDate:      horizon,
		Horizon:      horizon,
	})
}

func TestProjectMatchesDailyWalk(t *testing.T) {
	today := mustDate(t, "2024-01-10")
	txns := []model.Transaction{
		txn("pay", "1450.50", model.Credit, model.Spending, calendar.Weekly{Stride: 2}, calendar.Ordinal(mustDate(t, "2023-12-29"))),
		txn("rent", "1200", model.Debit, model.Spending, calendar.Monthly{Rule: calendar.MonthFirst}, 1),
		txn("phone", "45.99", model.Debit, model.Spending, calendar.Monthly{Rule: calendar.MonthDay}, 31),
		txn("card", "300", model.Debit, model.Spending, calendar.Monthly{Rule: calendar.MonthLast}, 31),
		txn("coffee", "3.75", model.Debit, model.Spending, calendar.Daily{}, 0),
		txn("gym", "25", model.Debit, model.Spending, calendar.Weekly{Stride: 1}, calendar.Ordinal(mustDate(t, "2024-01-08"))),
		txn("save", "150", model.Credit, model.Savings, calendar.Weekly{Stride: 4}, calendar.Ordinal(mustDate(t, "2024-01-12"))),
		txn("pull", "400", model.Debit, model.Savings, calendar.Single{}, calendar.Ordinal(mustDate(t, "2024-03-02"))),
		txn("late", "75", model.Debit, model.Spending, calendar.Single{}, calendar.Ordinal(mustDate(t, "2024-01-09"))),
		txn("insurance", "800", model.Debit, model.Spending, calendar.Yearly{Rule: calendar.FebruaryLast}, 59),
		txn("tax", "2500", model.Debit, model.Spending, calendar.Yearly{Rule: calendar.YearDay}, 106),
	}
	horizon, err := FarthestRelevantDate(txns, today)
	if err != nil {
		t.Fatalf("FarthestRelevantDate: %v", err)
	}
	if want := mustDate(t, "2024-04-15"); horizon != want {
		t.Fatalf("horizon = %s, want %s", horizon, want)
	}

	for _, start := range []string{"2500", "800", "0", "-40"} {
		got, err := Project(money(start), money("1000"), txns, today, horizon)
		if err != nil {
			t.Fatalf("Project(%s): %v", start, err)
		}
		want := naiveProject(t, money(start), money("1000"), txns, today, horizon)
		assertProjection(t, got, want)
	}
}

func TestSeries(t *testing.T) {
	today := mustDate(t, "2024-01-30")
	txns := []model.Transaction{
		txn("rent", "100", model.Debit, model.Spending, calendar.Monthly{Rule: calendar.MonthFirst}, 1),
		txn("card", "20", model.Debit, model.Spending, calendar.Monthly{Rule: calendar.MonthLast}, 31),
		txn("move", "30", model.Credit, model.Savings, calendar.Single{}, calendar.Ordinal(mustDate(t, "2024-02-01"))),
	}

	points, err := Series(money("500"), money("0"), txns, today, mustDate(t, "2024-02-29"))
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	want := []struct {
		date     string
		spending string
		savings  string
	}{
		{"2024-01-31", "480.00", "0.00"},
		{"2024-02-01", "350.00", "30.00"},
		{"2024-02-29", "330.00", "30.00"},
	}
	if len(points) != len(want) {
		t.Fatalf("points = %d, want %d (%+v)", len(points), len(want), points)
	}
	for i, w := range want {
		p := points[i]
		if p.Date != mustDate(t, w.date) || p.Spending.StringFixed(2) != w.spending || p.Savings.StringFixed(2) != w.savings {
			t.Fatalf("point %d = {%s %s %s}, want {%s %s %s}", i, p.Date, p.Spending.StringFixed(2), p.Savings.StringFixed(2), w.date, w.spending, w.savings)
		}
	}
}
