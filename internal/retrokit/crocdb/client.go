package crocdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/greeddj/go-retrokit/internal/retrokit/helpers"
	"github.com/greeddj/go-retrokit/internal/retrokit/store"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public catalog API.
const DefaultBaseURL = "https://api.crocdb.net"

// EntryCache stores raw entry responses between runs.
type EntryCache interface {
	GetEntry(key string) (store.EntryCacheEntry, bool)
	SetEntry(key string, entry store.EntryCacheEntry)
}

// Client talks to the catalog API.
type Client struct {
	baseURL  string
	http     *http.Client
	cache    EntryCache
	policy   Policy
	log      zerolog.Logger
	maxTries uint
	backoff  func() backoff.BackOff
	now      func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithCache enables the entry cache with policy.
func WithCache(cache EntryCache, policy Policy) Option {
	return func(c *Client) {
		c.cache = cache
		c.policy = policy
	}
}

// WithLogger sets the debug logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithBackOff replaces the retry schedule.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(c *Client) {
		if fn != nil {
			c.backoff = fn
		}
	}
}

// New returns a Client for baseURL. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, client *http.Client, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     client,
		log:      zerolog.Nop(),
		maxTries: helpers.FetchRetryMaxTries,
		backoff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Entry returns the catalog entry for slug.
func (c *Client) Entry(ctx context.Context, slug string) (Entry, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Entry{}, helpers.ErrEmptySlug
	}
	key := "entry:" + slug
	if body, ok := c.cached(key); ok {
		var env envelope[entryData]
		if err := json.Unmarshal(body, &env); err == nil {
			c.log.Debug().Str("slug", slug).Msg("entry served from cache")
			return env.Data.Entry, nil
		}
	}

	body, err := c.do(ctx, http.MethodPost, "/entry", map[string]string{"slug": slug})
	if err != nil {
		return Entry{}, err
	}
	var env envelope[entryData]
	if err := decode(body, &env); err != nil {
		return Entry{}, err
	}
	if env.Data.Entry.Slug == "" {
		return Entry{}, fmt.Errorf("%w: %w: %s", helpers.ErrNotFound, helpers.ErrCatalogResponse, slug)
	}
	c.store(key, body)
	return env.Data.Entry, nil
}

// Search runs a filtered catalog search.
func (c *Client) Search(ctx context.Context, req SearchRequest) (SearchResults, error) {
	body, err := c.do(ctx, http.MethodPost, "/search", req)
	if err != nil {
		return SearchResults{}, err
	}
	var env envelope[SearchResults]
	if err := decode(body, &env); err != nil {
		return SearchResults{}, err
	}
	return env.Data, nil
}

// Random returns a random catalog entry.
func (c *Client) Random(ctx context.Context) (Entry, error) {
	body, err := c.do(ctx, http.MethodGet, "/entry/random", nil)
	if err != nil {
		return Entry{}, err
	}
	var env envelope[entryData]
	if err := decode(body, &env); err != nil {
		return Entry{}, err
	}
	return env.Data.Entry, nil
}

// Platforms lists catalog platforms by id.
func (c *Client) Platforms(ctx context.Context) (map[string]Platform, error) {
	body, err := c.do(ctx, http.MethodGet, "/platforms", nil)
	if err != nil {
		return nil, err
	}
	var env envelope[platformsData]
	if err := decode(body, &env); err != nil {
		return nil, err
	}
	return env.Data.Platforms, nil
}

// Regions lists catalog regions by id.
func (c *Client) Regions(ctx context.Context) (map[string]string, error) {
	body, err := c.do(ctx, http.MethodGet, "/regions", nil)
	if err != nil {
		return nil, err
	}
	var env envelope[regionsData]
	if err := decode(body, &env); err != nil {
		return nil, err
	}
	return env.Data.Regions, nil
}

// Info returns catalog statistics.
func (c *Client) Info(ctx context.Context) (DatabaseInfo, error) {
	body, err := c.do(ctx, http.MethodGet, "/info", nil)
	if err != nil {
		return DatabaseInfo{}, err
	}
	var env envelope[DatabaseInfo]
	if err := decode(body, &env); err != nil {
		return DatabaseInfo{}, err
	}
	return env.Data, nil
}

func (c *Client) cached(key string) ([]byte, bool) {
	if c.cache == nil || !c.policy.Read {
		return nil, false
	}
	entry, ok := c.cache.GetEntry(key)
	if !ok || entry.Key != key || len(entry.Body) == 0 {
		return nil, false
	}
	if !c.policy.fresh(entry.FetchedAt, c.now()) {
		return nil, false
	}
	return entry.Body, true
}

func (c *Client) store(key string, body []byte) {
	if c.cache == nil || !c.policy.Write {
		return
	}
	c.cache.SetEntry(key, store.EntryCacheEntry{
		Key:       key,
		FetchedAt: c.now().UTC(),
		TTL:       c.policy.TTL,
		Body:      body,
	})
}

// do sends one API request, retrying transport errors and 5xx responses.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var data []byte
	if payload != nil {
		var err error
		if data, err = json.Marshal(payload); err != nil {
			return nil, err
		}
	}
	url := c.baseURL + path

	op := func() ([]byte, error) {
		var body io.Reader = http.NoBody
		if data != nil {
			body = bytes.NewReader(data)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.http.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, backoff.Permanent(ctxErr)
			}
			return nil, fmt.Errorf("%w: %w", helpers.ErrNetwork, err)
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			statusErr := &HTTPStatusError{URL: url, Status: resp.Status, Code: resp.StatusCode}
			if resp.StatusCode >= http.StatusInternalServerError {
				return nil, statusErr
			}
			return nil, backoff.Permanent(statusErr)
		}
		out, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", helpers.ErrNetwork, err)
		}
		return out, nil
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(c.backoff()),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.log.Debug().Err(err).Str("url", url).Dur("next", next).Msg("retrying catalog request")
		}),
	)
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", helpers.ErrCatalogResponse, err)
	}
	return nil
}

// HTTPStatusError describes a non-2xx catalog response.
type HTTPStatusError struct {
	URL    string
	Status string
	Code   int
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("catalog request failed: %s (%s)", e.Status, e.URL)
	}
	return "catalog request failed: " + e.Status
}

// Unwrap maps the status to a sentinel.
func (e *HTTPStatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return helpers.ErrNotFound
	}
	return helpers.ErrNetwork
}

// IsStatus reports whether err carries an HTTP status equal to code.
func IsStatus(err error, code int) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.Code == code
}
