// Package source fetches single pages of the upstream paginated JSON
// dataset with bounded retries, exponential backoff and client-side
// rate limiting.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/wcanexus/nexus/pkg/logger"
	"github.com/wcanexus/nexus/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultMaxAttempts    = 5
	defaultBaseDelay      = 500 * time.Millisecond
	defaultRequestTimeout = 30 * time.Second
	defaultRateLimit      = 40.0 // requests per second
	maxBodyBytes          = 32 << 20
)

// Page is one fetched page plus the pagination metadata an object root
// may carry. Total and PageSize are zero for array roots.
type Page struct {
	Items    []json.RawMessage
	Total    int
	PageSize int
}

// objectRoot mirrors the object-shaped page body.
type objectRoot struct {
	Items      []json.RawMessage `json:"items"`
	Total      int               `json:"total"`
	Pagination struct {
		Size int `json:"size"`
	} `json:"pagination"`
}

// Client fetches pages from one base URL. It is stateless apart from
// the shared rate limiter and safe for concurrent use.
type Client struct {
	base        string
	hc          *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseDelay   time.Duration
	log         logger.Logger
}

// NewClient creates a page fetcher for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:        strings.TrimRight(baseURL, "/"),
		hc:          &http.Client{Timeout: defaultRequestTimeout},
		limiter:     rate.NewLimiter(rate.Limit(defaultRateLimit), 1),
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get().Named("source")
	}
	return c
}

// PageURL returns the source URL for a page of a collection, e.g.
// {base}/persons-page-3.json.
func (c *Client) PageURL(collection string, page int) string {
	return fmt.Sprintf("%s/%s-page-%d.json", c.base, collection, page)
}

// FetchPage retrieves one page of a paginated collection.
// ErrPageNotFound is returned without retrying when the page does not
// exist; any other failure is retried with exponential backoff until
// the attempt bound is reached, then reported as ErrPageUnavailable.
func (c *Client) FetchPage(ctx context.Context, collection string, page int) (Page, error) {
	return c.fetch(ctx, c.PageURL(collection, page), fmt.Sprintf("%s-page-%d", collection, page))
}

// FetchStatic retrieves a non-paginated document such as countries.json
// and returns its records.
func (c *Client) FetchStatic(ctx context.Context, name string) ([]json.RawMessage, error) {
	p, err := c.fetch(ctx, fmt.Sprintf("%s/%s.json", c.base, name), name)
	if err != nil {
		return nil, err
	}
	return p.Items, nil
}

func (c *Client) fetch(ctx context.Context, url, label string) (Page, error) {
	var out Page

	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		p, err := c.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		out = p
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.baseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.3
	bo.MaxInterval = 30 * time.Second

	notify := func(err error, next time.Duration) {
		metrics.RecordPageRetry()
		c.log.Warn(ctx, "page fetch failed, retrying",
			logger.String("page", label),
			logger.Duration("backoff", next),
			logger.Error(err),
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1)), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		if errors.Is(err, ErrPageNotFound) || errors.Is(err, context.Canceled) {
			return Page{}, err
		}
		metrics.RecordPageFailed()
		return Page{}, fmt.Errorf("%w: %s: %v", ErrPageUnavailable, label, err)
	}

	metrics.RecordPageFetched()
	c.log.Debug(ctx, "page fetched",
		logger.String("page", label),
		logger.Int("items", len(out.Items)),
	)
	return out, nil
}

func (c *Client) fetchOnce(ctx context.Context, url string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return Page{}, backoff.Permanent(fmt.Errorf("%w: %s", ErrPageNotFound, url))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Page{}, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Page{}, err
	}
	return decodeRoot(body)
}

// decodeRoot accepts either a bare JSON array of records or an object
// with an items array; anything else is ErrBadShape and retried.
func decodeRoot(body []byte) (Page, error) {
	trimmed := strings.TrimLeft(string(body), " \t\r\n")
	if strings.HasPrefix(trimmed, "[") {
		var items []json.RawMessage
		if err := json.Unmarshal(body, &items); err != nil {
			return Page{}, fmt.Errorf("%w: %v", ErrBadShape, err)
		}
		return Page{Items: items}, nil
	}
	var root objectRoot
	if err := json.Unmarshal(body, &root); err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrBadShape, err)
	}
	if root.Items == nil {
		return Page{}, fmt.Errorf("%w: missing items array", ErrBadShape)
	}
	return Page{Items: root.Items, Total: root.Total, PageSize: root.Pagination.Size}, nil
}
