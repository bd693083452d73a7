// Package client is the typed HTTP client for the signalboard query surface.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/quantwatch/signalboard/internal/database"
	"github.com/quantwatch/signalboard/internal/models"
)

// Client talks to the three read operations. Every request carries a timeout
// so a hung server cannot wedge the caller's poll loop.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// New creates a Client for the server at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		timeout: timeout,
	}
}

// ListStocks fetches the full watchlist.
func (c *Client) ListStocks(ctx context.Context) ([]*models.Stock, error) {
	var stocks []*models.Stock
	if err := c.get(ctx, url.Values{"action": {"get_stocks"}}, &stocks); err != nil {
		return nil, err
	}
	return stocks, nil
}

// RecentSignals fetches the bounded newest-first snapshot.
func (c *Client) RecentSignals(ctx context.Context) ([]*models.SignalWithName, error) {
	var signals []*models.SignalWithName
	if err := c.get(ctx, url.Values{"action": {"get_signals"}}, &signals); err != nil {
		return nil, err
	}
	return signals, nil
}

// SignalsSince fetches every signal with id > lastID, ascending.
func (c *Client) SignalsSince(ctx context.Context, lastID int64) ([]*models.SignalWithName, error) {
	var signals []*models.SignalWithName
	params := url.Values{
		"action":  {"sync_new"},
		"last_id": {strconv.FormatInt(lastID, 10)},
	}
	if err := c.get(ctx, params, &signals); err != nil {
		return nil, err
	}
	return signals, nil
}

// get performs one bounded request and decodes the JSON array response.
// Transport failures and 5xx responses map to ErrStoreUnavailable so the
// reconciliation loop treats them uniformly: keep the cursor, retry next tick.
func (c *Client) get(ctx context.Context, params url.Values, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", database.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: server returned %d: %s", database.ErrStoreUnavailable, resp.StatusCode, body)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
