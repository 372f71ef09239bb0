package pipeline

import (
	"fmt"
	"testing"

	"github.com/theirongolddev/runway/internal/calendar"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/projection"
)

func benchSchedule() []model.Transaction {
	patterns := []calendar.Pattern{
		calendar.Daily{},
		calendar.Weekly{Stride: 1},
		calendar.Weekly{Stride: 2},
		calendar.Monthly{Rule: calendar.MonthFirst},
		calendar.Monthly{Rule: calendar.MonthLast},
		calendar.Monthly{Rule: calendar.MonthDay},
		calendar.Yearly{Rule: calendar.YearDay},
	}
	start := day(2020, 3, 17)

	var txns []model.Transaction
	for i := 0; i < 200; i++ {
		p := patterns[i%len(patterns)]
		kind := model.Debit
		if i%5 == 0 {
			kind = model.Credit
		}
		txns = append(txns, model.Transaction{
			ID:          fmt.Sprintf("t%d", i),
			Value:       money("12.34"),
			Kind:        kind,
			Destination: model.Spending,
			Pattern:     p,
			Day:         calendar.AnchorFor(p, start.AddDays(i)),
		})
	}
	return txns
}

func BenchmarkRefresh(b *testing.B) {
	txns := benchSchedule()
	funds := model.Funds{Spending: money("5000"), LastUpdate: day(2024, 1, 1), Seeded: true}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Refresh(funds, txns, day(2024, 12, 31)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkProject(b *testing.B) {
	txns := benchSchedule()
	today := day(2024, 1, 1)
	horizon := day(2025, 1, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := projection.Project(money("5000"), money("0"), txns, today, horizon); err != nil {
			b.Fatal(err)
		}
	}
}
