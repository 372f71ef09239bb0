package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
)

var (
	// ErrOwnerNotFound is returned when the daemon does not know the owner.
	ErrOwnerNotFound = errors.New("daemon: owner not found")
	// ErrOwnerNotReady is returned for unseeded owners and write conflicts.
	ErrOwnerNotReady = errors.New("daemon: owner not ready")
)

// Client talks to a running daemon's HTTP API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the daemon listening on addr, given as
// host:port or as a full URL.
func NewClient(addr string) *Client {
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &Client{base: addr, http: &http.Client{}}
}

// Status fetches the daemon's status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.do(ctx, http.MethodGet, "/v1/status", &st)
	return st, err
}

// Projection fetches a read-only projection for owner.
func (c *Client) Projection(ctx context.Context, owner string) (Snapshot, error) {
	var snap Snapshot
	err := c.do(ctx, http.MethodGet, "/v1/owners/"+url.PathEscape(owner)+"/projection", &snap)
	return snap, err
}

// Schedule fetches owner's schedule ordered by next occurrence.
func (c *Client) Schedule(ctx context.Context, owner string) ([]ScheduleItem, error) {
	var items []ScheduleItem
	err := c.do(ctx, http.MethodGet, "/v1/owners/"+url.PathEscape(owner)+"/schedule", &items)
	return items, err
}

// Refresh asks the daemon to bring owner up to date now.
func (c *Client) Refresh(ctx context.Context, owner string) (Snapshot, error) {
	var snap Snapshot
	err := c.do(ctx, http.MethodPost, "/v1/owners/"+url.PathEscape(owner)+"/refresh", &snap)
	return snap, err
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("daemon: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("daemon: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &apiErr)
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrOwnerNotFound, apiErr.Error)
		case http.StatusConflict:
			return fmt.Errorf("%w: %s", ErrOwnerNotReady, apiErr.Error)
		}
		return fmt.Errorf("daemon: unexpected status %d: %s", resp.StatusCode, apiErr.Error)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("daemon: parsing %s: %w", path, err)
	}
	return nil
}
