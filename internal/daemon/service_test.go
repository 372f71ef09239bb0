package daemon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/calendar"
	"github.com/theirongolddev/runway/internal/logger"
	"github.com/theirongolddev/runway/internal/model"
	"github.com/theirongolddev/runway/internal/notify"
	"github.com/theirongolddev/runway/internal/store"
)

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []notify.Alert
}

func (r *recordingNotifier) Notify(_ context.Context, a notify.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

type fixture struct {
	svc      *Service
	st       *store.Store
	notifier *recordingNotifier
	today    civil.Date
}

// newFixture seeds alice with 100.00 and a 50.00 rent debit on the first of
// every month, then builds a service whose clock reads f.today.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(filepath.Join(t.TempDir(), "runway.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	start := civil.Date{Year: 2024, Month: 1, Day: 1}
	for _, name := range []string{"alice", "carol"} {
		if err := st.CreateOwner(ctx, name, start); err != nil {
			t.Fatalf("CreateOwner(%s): %v", name, err)
		}
	}
	if _, err := st.Seed(ctx, "alice", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	_, err = st.CreateTransaction(ctx, "alice", model.Transaction{
		Value:       decimal.NewFromInt(50),
		Kind:        model.Debit,
		Destination: model.Spending,
		Pattern:     calendar.Monthly{Rule: calendar.MonthFirst},
		Day:         1,
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	f := &fixture{st: st, notifier: &recordingNotifier{}, today: civil.Date{Year: 2024, Month: 1, Day: 15}}
	f.svc = New(Config{
		Interval:  time.Minute,
		Threshold: decimal.NewFromInt(75),
		Today:     func() civil.Date { return f.today },
	}, st, f.notifier, zerolog.Nop())
	return f
}

func (f *fixture) do(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	f.svc.Handler().ServeHTTP(w, req)
	return w
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Spending:    decimal.RequireFromString("100"),
		Savings:     decimal.RequireFromString("20"),
		MinSpending: decimal.RequireFromString("50"),
		LowDate:     civil.Date{Year: 2024, Month: 2, Day: 1},
	}
	curr := prev
	curr.Spending = decimal.RequireFromString("50")
	curr.MinSpending = decimal.Zero
	curr.LowDate = civil.Date{Year: 2024, Month: 3, Day: 1}

	delta := diffSnapshots(prev, curr)
	if !delta.Spending.Equal(decimal.NewFromInt(-50)) {
		t.Fatalf("Spending delta = %s, want -50", delta.Spending)
	}
	if !delta.Savings.IsZero() {
		t.Fatalf("Savings delta = %s, want 0", delta.Savings)
	}
	if !delta.MinSpending.Equal(decimal.NewFromInt(-50)) {
		t.Fatalf("MinSpending delta = %s, want -50", delta.MinSpending)
	}
	if !delta.LowDateMoved || delta.isZero() {
		t.Fatalf("delta = %+v, want non-zero with moved low date", delta)
	}
	if d := diffSnapshots(prev, prev); !d.isZero() {
		t.Fatalf("self diff = %+v, want zero", d)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{EventsBuffer: 2}, nil, nil, zerolog.Nop())

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollPublishesAndAlertsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.pollOnce(ctx)
	f.svc.pollOnce(ctx)

	st := f.svc.snapshotStatus()
	if st.PollCount != 2 || st.LastError != "" {
		t.Fatalf("status = %+v", st)
	}
	if len(st.Owners) != 1 || st.Owners[0].Owner != "alice" {
		t.Fatalf("owners = %+v, want only seeded alice", st.Owners)
	}
	snap := st.Owners[0]
	if !snap.MinSpending.Equal(decimal.NewFromInt(50)) || snap.LowDate != (civil.Date{Year: 2024, Month: 2, Day: 1}) {
		t.Fatalf("snapshot = %+v, want min 50 on 2024-02-01", snap)
	}
	if !snap.Shortfall {
		t.Fatal("expected shortfall under threshold 75")
	}
	if st.EventCount != 2 {
		t.Fatalf("EventCount = %d, want 2 (snapshot, shortfall)", st.EventCount)
	}
	if n := f.notifier.count(); n != 1 {
		t.Fatalf("alerts = %d, want 1", n)
	}

	f.today = civil.Date{Year: 2024, Month: 2, Day: 1}
	f.svc.pollOnce(ctx)

	f.svc.mu.RLock()
	last := f.svc.events[len(f.svc.events)-1]
	f.svc.mu.RUnlock()
	if last.Type != "balance_delta" || !last.Delta.Spending.Equal(decimal.NewFromInt(-50)) {
		t.Fatalf("last event = %+v, want balance_delta of -50", last)
	}
	if n := f.notifier.count(); n != 1 {
		t.Fatalf("alerts after second shortfall poll = %d, want 1", n)
	}
}

func TestPollLogsShortfallWithOwner(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	f.svc.log = logger.NewWithWriter(&buf)

	f.svc.pollOnce(context.Background())

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		if entry["message"] == "shortfall alert sent" {
			found = true
			if entry["owner"] != "alice" || entry["min"] != "50.00" {
				t.Fatalf("shortfall log = %v", entry)
			}
		}
	}
	if !found {
		t.Fatalf("no shortfall line in log:\n%s", buf.String())
	}
}

func TestPollForgetsStaleOwners(t *testing.T) {
	f := newFixture(t)
	f.svc.mu.Lock()
	f.svc.snapshots["ghost"] = Snapshot{Owner: "ghost"}
	f.svc.ownerErrors["ghost"] = "gone"
	f.svc.ownerErrors["carol"] = "old failure"
	f.svc.alerted["ghost"] = true
	f.svc.mu.Unlock()

	f.svc.pollOnce(context.Background())

	st := f.svc.snapshotStatus()
	if len(st.OwnerErrors) != 0 {
		t.Fatalf("owner errors = %v, want none", st.OwnerErrors)
	}
	for _, snap := range st.Owners {
		if snap.Owner == "ghost" {
			t.Fatal("snapshot for removed owner still reported")
		}
	}
	f.svc.mu.RLock()
	_, alerted := f.svc.alerted["ghost"]
	f.svc.mu.RUnlock()
	if alerted {
		t.Fatal("alert state for removed owner kept")
	}
}

func TestHandlers(t *testing.T) {
	f := newFixture(t)

	if w := f.do(t, http.MethodGet, "/healthz"); w.Code != http.StatusOK || w.Body.String() != "ok\n" {
		t.Fatalf("healthz = %d %q", w.Code, w.Body.String())
	}

	w := f.do(t, http.MethodGet, "/v1/owners/alice/projection")
	if w.Code != http.StatusOK {
		t.Fatalf("projection status = %d: %s", w.Code, w.Body.String())
	}
	var snap Snapshot
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("decode projection: %v", err)
	}
	if !snap.MinSpending.Equal(decimal.NewFromInt(50)) || snap.Horizon != (civil.Date{Year: 2024, Month: 2, Day: 1}) {
		t.Fatalf("projection = %+v", snap)
	}

	w = f.do(t, http.MethodGet, "/v1/owners/alice/schedule")
	var items []ScheduleItem
	if err := json.NewDecoder(w.Body).Decode(&items); err != nil {
		t.Fatalf("decode schedule: %v", err)
	}
	if len(items) != 1 || items[0].Pattern != "monthly1" || items[0].Next != (civil.Date{Year: 2024, Month: 2, Day: 1}) {
		t.Fatalf("schedule = %+v", items)
	}

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/v1/owners/bob/projection", http.StatusNotFound},
		{http.MethodGet, "/v1/owners/carol/projection", http.StatusConflict},
		{http.MethodPost, "/v1/owners/carol/refresh", http.StatusConflict},
		{http.MethodPost, "/v1/owners/alice/refresh", http.StatusOK},
		{http.MethodGet, "/v1/status", http.StatusOK},
		{http.MethodGet, "/v1/events", http.StatusOK},
	}
	for _, tt := range tests {
		if w := f.do(t, tt.method, tt.path); w.Code != tt.want {
			t.Errorf("%s %s = %d, want %d (%s)", tt.method, tt.path, w.Code, tt.want, w.Body.String())
		}
	}

	w = f.do(t, http.MethodGet, "/v1/events")
	var events []Event
	if err := json.NewDecoder(w.Body).Decode(&events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 2 || events[0].Type != "snapshot" || events[1].Type != "shortfall" {
		t.Fatalf("events = %+v, want snapshot then shortfall from the refresh", events)
	}
}

func TestStreamSendsCurrentSnapshot(t *testing.T) {
	f := newFixture(t)
	f.svc.pollOnce(context.Background())

	srv := httptest.NewServer(f.svc.Handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /v1/stream: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	var sawEvent, sawData bool
	for !(sawEvent && sawData) {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		switch {
		case strings.HasPrefix(line, "event:"):
			sawEvent = strings.Contains(line, "snapshot")
		case strings.HasPrefix(line, "data:"):
			sawData = strings.Contains(line, `"owner":"alice"`)
		}
	}
}
