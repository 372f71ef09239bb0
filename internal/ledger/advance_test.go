package ledger

import (
	"testing"

	"github.com/theirongolddev/runway/internal/calendar"
	"github.com/theirongolddev/runway/internal/model"
)

func TestAdvanceNoopWhenCurrent(t *testing.T) {
	today := mustDate(t, "2024-03-01")
	funds := model.Funds{Spending: money("10"), Savings: money("5"), LastUpdate: today}
	txns := []model.Transaction{txn("d", "1", model.Debit, model.Spending, calendar.Daily{}, 0)}

	res, err := Advance(funds, txns, today)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !res.Update.IsZero() {
		t.Fatalf("update = %+v, want zero", res.Update)
	}
	if res.Applied != 0 || !res.Funds.Spending.Equal(money("10")) {
		t.Fatalf("current funds changed: %+v", res.Funds)
	}
}

func TestAdvanceExhaustsSingles(t *testing.T) {
	last := mustDate(t, "2024-02-01")
	today := mustDate(t, "2024-02-15")
	txns := []model.Transaction{
		txn("gift", "20", model.Debit, model.Spending, calendar.Single{}, calendar.Ordinal(mustDate(t, "2024-02-10"))),
		txn("later", "30", model.Debit, model.Spending, calendar.Single{}, calendar.Ordinal(mustDate(t, "2024-03-10"))),
	}
	funds := model.Funds{Spending: money("100"), Savings: money("0"), LastUpdate: last}

	res, err := Advance(funds, txns, today)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	assertMoney(t, "spending", res.Funds.Spending, "80.00")
	if res.Funds.LastUpdate != today {
		t.Fatalf("LastUpdate = %s, want %s", res.Funds.LastUpdate, today)
	}
	if len(res.Update.Deletes) != 1 || res.Update.Deletes[0] != "gift" {
		t.Fatalf("deletes = %v, want [gift]", res.Update.Deletes)
	}
	if len(res.Transactions) != 1 || res.Transactions[0].ID != "later" {
		t.Fatalf("surviving = %+v, want only later", res.Transactions)
	}
	if len(txns) != 2 {
		t.Fatal("input slice was modified")
	}

	// A second pass over the persisted state is a no-op on balances.
	spending, savings, err := Replay(res.Funds.LastUpdate, res.Funds.Spending, res.Funds.Savings, res.Transactions, today)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !spending.Equal(res.Funds.Spending) || !savings.Equal(res.Funds.Savings) {
		t.Fatalf("re-replay = (%s, %s), want unchanged", spending, savings)
	}
	again, err := Advance(res.Funds, res.Transactions, today)
	if err != nil {
		t.Fatalf("second Advance: %v", err)
	}
	if !again.Update.IsZero() {
		t.Fatalf("second Advance update = %+v, want zero", again.Update)
	}
}

func TestAdvanceRewritesWeeklyCursor(t *testing.T) {
	anchor := calendar.Ordinal(mustDate(t, "2024-01-01"))
	pay := txn("pay", "100", model.Credit, model.Spending, calendar.Weekly{Stride: 1}, anchor)
	funds := model.Funds{Spending: money("0"), Savings: money("0"), LastUpdate: mustDate(t, "2024-01-01")}

	res, err := Advance(funds, []model.Transaction{pay}, mustDate(t, "2024-01-20"))
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	assertMoney(t, "spending", res.Funds.Spending, "200.00")

	want := calendar.Ordinal(mustDate(t, "2024-01-15"))
	if len(res.Update.Anchors) != 1 {
		t.Fatalf("anchor updates = %+v, want 1", res.Update.Anchors)
	}
	up := res.Update.Anchors[0]
	if up.ID != "pay" || up.Day != want || up.Revision != 1 {
		t.Fatalf("anchor update = %+v, want {pay %d 1}", up, want)
	}
	if res.Transactions[0].Day != want || res.Transactions[0].Revision != 1 {
		t.Fatalf("surviving pay = %+v", res.Transactions[0])
	}
	if res.Update.Funds == nil || !res.Update.Funds.Spending.Equal(res.Funds.Spending) {
		t.Fatalf("update funds = %+v, want %+v", res.Update.Funds, res.Funds)
	}
}

func TestAdvanceKeepsFixedDayAnchor(t *testing.T) {
	bill := txn("bill", "10", model.Debit, model.Spending, calendar.Monthly{Rule: calendar.MonthDay}, 31)
	funds := model.Funds{Spending: money("100"), Savings: money("0"), LastUpdate: mustDate(t, "2023-01-31")}

	res, err := Advance(funds, []model.Transaction{bill}, mustDate(t, "2023-03-01"))
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	assertMoney(t, "spending", res.Funds.Spending, "90.00")
	if len(res.Update.Anchors) != 0 {
		t.Fatalf("anchor updates = %+v, want none", res.Update.Anchors)
	}

	next, err := calendar.Next(res.Funds.LastUpdate, res.Transactions[0].Pattern, res.Transactions[0].Day)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if next != mustDate(t, "2023-03-31") {
		t.Fatalf("next bill = %s, want 2023-03-31", next)
	}
}
