// Package daemon runs a long-lived runway refresher that keeps every owner's
// books current and exposes the results over HTTP and Server-Sent Events.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/logger"
	"github.com/theirongolddev/runway/internal/notify"
	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/store"
)

// Config controls daemon runtime behavior.
type Config struct {
	Addr         string
	Interval     time.Duration
	Workers      int
	EventsBuffer int

	// Threshold triggers a shortfall alert when the projected minimum
	// spending balance drops below it.
	Threshold decimal.Decimal
	Currency  string

	// Today returns the current date. Defaults to the local calendar date.
	Today func() civil.Date
}

// Snapshot is one owner's refreshed state.
type Snapshot struct {
	Owner        string          `json:"owner"`
	At           time.Time       `json:"at"`
	Today        civil.Date      `json:"today"`
	Spending     decimal.Decimal `json:"spending"`
	Savings      decimal.Decimal `json:"savings"`
	MinSpending  decimal.Decimal `json:"min_spending"`
	SavingsAtMin decimal.Decimal `json:"savings_at_min"`
	LowDate      civil.Date      `json:"low_date"`
	Horizon      civil.Date      `json:"horizon"`
	Transactions int             `json:"transactions"`
	Applied      int             `json:"applied"`
	Shortfall    bool            `json:"shortfall"`
}

// Delta is the change between two snapshots of the same owner.
type Delta struct {
	Spending     decimal.Decimal `json:"spending"`
	Savings      decimal.Decimal `json:"savings"`
	MinSpending  decimal.Decimal `json:"min_spending"`
	LowDateMoved bool            `json:"low_date_moved"`
}

func (d Delta) isZero() bool {
	return d.Spending.IsZero() && d.Savings.IsZero() && d.MinSpending.IsZero() && !d.LowDateMoved
}

// Event is emitted on the stream whenever an owner's snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Owner     string    `json:"owner"`
	Timestamp time.Time `json:"ts"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served by /v1/status.
type Status struct {
	StartedAt       time.Time         `json:"started_at"`
	LastPollAt      time.Time         `json:"last_poll_at"`
	PollIntervalSec int               `json:"poll_interval_sec"`
	PollCount       int               `json:"poll_count"`
	Backend         string            `json:"backend"`
	Owners          []Snapshot        `json:"owners"`
	OwnerErrors     map[string]string `json:"owner_errors,omitempty"`
	LastError       string            `json:"last_error,omitempty"`
	EventCount      int               `json:"event_count"`
	SubscriberCount int               `json:"subscriber_count"`
}

// Service runs the polling loop and HTTP API.
type Service struct {
	cfg      Config
	store    *store.Store
	notifier notify.Notifier
	log      zerolog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int
	lastError   string
	snapshots   map[string]Snapshot
	ownerErrors map[string]string
	alerted     map[string]bool

	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a configured daemon service. A nil notifier disables alerts.
func New(cfg Config, st *store.Store, n notify.Notifier, log zerolog.Logger) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Interval < 10*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer <= 0 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8470"
	}
	if cfg.Today == nil {
		cfg.Today = func() civil.Date { return civil.DateOf(time.Now()) }
	}
	if n == nil {
		n = notify.Nop{}
	}

	return &Service{
		cfg:         cfg,
		store:       st,
		notifier:    n,
		log:         log.With().Str("component", "daemon").Logger(),
		startedAt:   time.Now(),
		snapshots:   make(map[string]Snapshot),
		ownerErrors: make(map[string]string),
		alerted:     make(map[string]bool),
		subs:        make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.log.Info().Str("addr", s.cfg.Addr).Dur("interval", s.cfg.Interval).Msg("daemon started")

	// Refresh once up front so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.log.Info().Msg("daemon stopping")
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	start := time.Now()
	today := s.cfg.Today()

	owners, err := s.store.ListOwners(ctx)
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		s.log.Error().Err(err).Msg("listing owners")
		return
	}

	names := make([]string, len(owners))
	for i, o := range owners {
		names[i] = o.Name
	}

	s.prune(names)

	failed := 0
	for _, res := range pipeline.RefreshAll(ctx, s.store, names, today, s.cfg.Workers, nil) {
		olog := s.ownerLog(res.Owner)
		switch {
		case errors.Is(res.Err, store.ErrNotSeeded):
			s.mu.Lock()
			delete(s.ownerErrors, res.Owner)
			s.mu.Unlock()
			olog.Debug().Msg("skipping unseeded owner")
		case res.Err != nil:
			failed++
			s.mu.Lock()
			s.ownerErrors[res.Owner] = res.Err.Error()
			s.mu.Unlock()
			olog.Error().Err(res.Err).Msg("refresh failed")
		default:
			s.observe(ctx, res.Owner, res.Report, today)
		}
	}

	s.mu.Lock()
	s.lastPollAt = time.Now()
	s.pollCount++
	s.lastError = ""
	if failed > 0 {
		s.lastError = fmt.Sprintf("%d of %d owners failed to refresh", failed, len(names))
	}
	s.mu.Unlock()

	s.log.Info().
		Int("owners", len(names)).
		Int("failed", failed).
		Str("today", today.String()).
		Dur("took", time.Since(start)).
		Msg("poll complete")
}

// prune forgets snapshots, errors and alert state for owners that no
// longer exist.
func (s *Service) prune(names []string) {
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for owner := range s.snapshots {
		if !keep[owner] {
			delete(s.snapshots, owner)
		}
	}
	for owner := range s.ownerErrors {
		if !keep[owner] {
			delete(s.ownerErrors, owner)
		}
	}
	for owner := range s.alerted {
		if !keep[owner] {
			delete(s.alerted, owner)
		}
	}
}

func (s *Service) ownerLog(owner string) zerolog.Logger {
	return logger.WithFields(s.log, map[string]any{"owner": owner})
}

// observe records a fresh report, publishes what changed and raises a
// shortfall alert when an owner first crosses the threshold.
func (s *Service) observe(ctx context.Context, owner string, rep *pipeline.Report, today civil.Date) Snapshot {
	snap := snapshotFromReport(owner, rep, today, s.cfg.Threshold, time.Now())

	var evs []Event
	s.mu.Lock()
	prev, seen := s.snapshots[owner]
	s.snapshots[owner] = snap
	delete(s.ownerErrors, owner)

	if !seen {
		evs = append(evs, s.newEventLocked("snapshot", snap, Delta{}))
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		evs = append(evs, s.newEventLocked("balance_delta", snap, delta))
	}

	alert := snap.Shortfall && !s.alerted[owner]
	s.alerted[owner] = snap.Shortfall
	if alert {
		evs = append(evs, s.newEventLocked("shortfall", snap, Delta{}))
	}
	s.mu.Unlock()

	for _, ev := range evs {
		s.publishEvent(ev)
	}

	if alert {
		a := notify.Alert{
			Owner:       owner,
			MinSpending: snap.MinSpending,
			LowDate:     snap.LowDate,
			Threshold:   s.cfg.Threshold,
			Currency:    s.cfg.Currency,
		}
		olog := s.ownerLog(owner)
		if err := s.notifier.Notify(ctx, a); err != nil {
			olog.Warn().Err(err).Msg("shortfall alert not delivered")
		} else {
			olog.Info().Str("min", snap.MinSpending.StringFixed(2)).Msg("shortfall alert sent")
		}
	}
	return snap
}

func snapshotFromReport(owner string, rep *pipeline.Report, today civil.Date, threshold decimal.Decimal, at time.Time) Snapshot {
	p := rep.Projection
	return Snapshot{
		Owner:        owner,
		At:           at,
		Today:        today,
		Spending:     rep.Funds.Spending,
		Savings:      rep.Funds.Savings,
		MinSpending:  p.MinSpending,
		SavingsAtMin: p.SavingsAtMin,
		LowDate:      p.LowDate,
		Horizon:      p.Horizon,
		Transactions: len(rep.Transactions),
		Applied:      rep.Applied,
		Shortfall:    pipeline.Shortfall(p, threshold),
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Spending:     curr.Spending.Sub(prev.Spending),
		Savings:      curr.Savings.Sub(prev.Savings),
		MinSpending:  curr.MinSpending.Sub(prev.MinSpending),
		LowDateMoved: curr.LowDate != prev.LowDate,
	}
}

// newEventLocked must be called with s.mu held.
func (s *Service) newEventLocked(typ string, snap Snapshot, d Delta) Event {
	s.nextEventID++
	return Event{
		ID:        s.nextEventID,
		Type:      typ,
		Owner:     snap.Owner,
		Timestamp: snap.At,
		Snapshot:  snap,
		Delta:     d,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) currentSnapshots() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Owner < out[j].Owner })
	return out
}

func (s *Service) snapshotStatus() Status {
	owners := s.currentSnapshots()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs map[string]string
	if len(s.ownerErrors) > 0 {
		errs = make(map[string]string, len(s.ownerErrors))
		for k, v := range s.ownerErrors {
			errs[k] = v
		}
	}

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Backend:         s.store.Backend(),
		Owners:          owners,
		OwnerErrors:     errs,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// stream writes the current snapshots and then every new event until the
// client goes away.
func (s *Service) stream(c *gin.Context) {
	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	for _, snap := range s.currentSnapshots() {
		c.SSEvent("snapshot", Event{Type: "snapshot", Owner: snap.Owner, Timestamp: time.Now(), Snapshot: snap})
	}
	c.Writer.Flush()

	c.Stream(func(io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev := <-ch:
			c.SSEvent(ev.Type, ev)
			return true
		}
	})
}
