package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/runway/internal/pipeline"
	"github.com/theirongolddev/runway/internal/store"
)

// ScheduleItem is one transaction as served by the schedule endpoint.
type ScheduleItem struct {
	ID          string          `json:"id"`
	Value       decimal.Decimal `json:"value"`
	Kind        string          `json:"kind"`
	Destination string          `json:"destination"`
	Pattern     string          `json:"pattern"`
	Day         int             `json:"day"`
	Revision    int             `json:"revision"`
	Next        civil.Date      `json:"next"`
}

// Handler returns the HTTP routes.
func (s *Service) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET("/healthz", s.handleHealth)

	v1 := r.Group("/v1")
	v1.GET("/status", s.handleStatus)
	v1.GET("/events", s.handleEvents)
	v1.GET("/stream", s.stream)
	v1.GET("/owners/:owner/projection", s.handleProjection)
	v1.GET("/owners/:owner/schedule", s.handleSchedule)
	v1.POST("/owners/:owner/refresh", s.handleRefresh)

	return r
}

func (s *Service) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func (s *Service) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

func (s *Service) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(c *gin.Context) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	c.JSON(http.StatusOK, events)
}

// handleProjection computes a read-only projection. Nothing is persisted;
// the next poll or an explicit refresh writes the catch-up.
func (s *Service) handleProjection(c *gin.Context) {
	owner := c.Param("owner")
	today := s.cfg.Today()

	rep, err := s.preview(c.Request.Context(), owner, today)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshotFromReport(owner, rep, today, s.cfg.Threshold, time.Now()))
}

func (s *Service) handleSchedule(c *gin.Context) {
	owner := c.Param("owner")
	today := s.cfg.Today()

	rep, err := s.preview(c.Request.Context(), owner, today)
	if err != nil {
		s.abort(c, err)
		return
	}

	entries, err := pipeline.Upcoming(rep.Transactions, today)
	if err != nil {
		s.abort(c, err)
		return
	}

	items := make([]ScheduleItem, 0, len(entries))
	for _, e := range entries {
		t := e.Transaction
		items = append(items, ScheduleItem{
			ID:          t.ID,
			Value:       t.Value,
			Kind:        string(t.Kind),
			Destination: string(t.Destination),
			Pattern:     t.Pattern.String(),
			Day:         t.Day,
			Revision:    t.Revision,
			Next:        e.Next,
		})
	}
	c.JSON(http.StatusOK, items)
}

func (s *Service) handleRefresh(c *gin.Context) {
	owner := c.Param("owner")
	today := s.cfg.Today()
	ctx := c.Request.Context()

	rep, err := pipeline.RefreshOwner(ctx, s.store, owner, today)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, s.observe(ctx, owner, rep, today))
}

func (s *Service) preview(ctx context.Context, owner string, today civil.Date) (*pipeline.Report, error) {
	funds, err := s.store.GetFunds(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !funds.Seeded {
		return nil, fmt.Errorf("owner %q: %w", owner, store.ErrNotSeeded)
	}
	txns, err := s.store.ListTransactions(ctx, owner)
	if err != nil {
		return nil, err
	}
	return pipeline.Refresh(funds, txns, today)
}

func (s *Service) abort(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, store.ErrNotSeeded), errors.Is(err, store.ErrConflict):
		code = http.StatusConflict
	}
	if code == http.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}
