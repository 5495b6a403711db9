// Package firefly is a client for the Firefly III REST API, covering
// the slice of it reconciliation needs: directory data, transaction
// listing and storing, and the per-account settings attachment.
package firefly

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lvu/firemerge/internal/cache"
	"github.com/lvu/firemerge/internal/model"
)

const (
	defaultTimeout = 5 * time.Minute
	cacheTTL       = 10 * time.Minute
	pageLimit      = 1000
)

// StatusError is a non-2xx response from the Firefly III API, carried
// verbatim so callers can surface the server's own message.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("firefly api returned %d: %s", e.StatusCode, e.Body)
}

// Client talks to one Firefly III instance. Directory data is cached
// for ten minutes; mutations invalidate the affected caches.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *slog.Logger

	accounts     *cache.Store[[]model.Account]
	categories   *cache.Store[[]model.Category]
	currencies   *cache.Store[[]model.Currency]
	transactions *cache.Store[[]model.Transaction]
}

// Option adjusts a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the instance at baseURL, authenticating
// with a personal access token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		http:         &http.Client{Timeout: defaultTimeout},
		log:          slog.Default(),
		accounts:     cache.New[[]model.Account](cacheTTL),
		categories:   cache.New[[]model.Category](cacheTTL),
		currencies:   cache.New[[]model.Currency](cacheTTL),
		transactions: cache.New[[]model.Transaction](cacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) request(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	u := c.baseURL + "/api/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Trace-Id", uuid.NewString())
	if body != nil {
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response for %s: %w", path, err)
	}
	c.log.Debug("firefly request",
		"method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(started))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	raw, err := c.request(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response for %s: %w", path, err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request for %s: %w", path, err)
	}
	raw, err := c.request(ctx, method, path, nil, bytes.NewReader(body), "")
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decoding response for %s: %w", path, err)
		}
	}
	return nil
}

// pagedGet walks every page of a collection endpoint, invoking visit
// for each data item.
func (c *Client) pagedGet(ctx context.Context, path string, query url.Values, visit func(apiItem) error) error {
	base := url.Values{}
	for k, v := range query {
		base[k] = v
	}
	for page := 1; ; page++ {
		base.Set("page", fmt.Sprint(page))
		var resp listResponse
		if err := c.getJSON(ctx, path, base, &resp); err != nil {
			return err
		}
		for _, item := range resp.Data {
			if err := visit(item); err != nil {
				return err
			}
		}
		if resp.Meta.Pagination.TotalPages <= page {
			return nil
		}
	}
}
