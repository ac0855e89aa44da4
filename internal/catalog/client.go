// Package catalog provides the client for the external book search API.
// The core treats it as a blocking collaborator: one synchronous call
// per search, no internal retry, failures surfaced immediately.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shelfmark/shelfmark/internal/cache"
	"github.com/shelfmark/shelfmark/internal/metrics"
	"github.com/shelfmark/shelfmark/internal/model"
)

// Client errors.
var (
	// ErrNoMoreResults indicates the requested page starts past the
	// last available result.
	ErrNoMoreResults = errors.New("no more results")
	// ErrBookInfoFetch covers any malformed or failed upstream
	// response; raw transport and parse errors never escape.
	ErrBookInfoFetch = errors.New("book info fetch failed")
	// ErrEmptyQuery indicates a blank search query.
	ErrEmptyQuery = errors.New("search query is required")
)

// Upstream client timeouts.
const (
	dialTimeout           = 5 * time.Second
	tlsHandshakeTimeout   = 5 * time.Second
	responseHeaderTimeout = 10 * time.Second
)

// Config holds catalog client settings.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client queries the external book catalog over HTTP, with result
// pages cached in Redis.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	cache        *cache.Cache
	cacheTTL     time.Duration
	metrics      metrics.Recorder
}

// New creates a catalog Client. c may be nil to disable caching;
// recorder may be nil.
func New(cfg Config, c *cache.Cache, cacheTTL time.Duration, recorder metrics.Recorder) *Client {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   dialTimeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   tlsHandshakeTimeout,
				ResponseHeaderTimeout: responseHeaderTimeout,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		cache:    c,
		cacheTTL: cacheTTL,
		metrics:  recorder,
	}
}

// Result is one page of catalog search results. Books carry no
// internal id; they are stored only when shelved.
type Result struct {
	Books []model.Book `json:"books"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Size  int          `json:"size"`
}

// searchResponse mirrors the upstream search payload.
type searchResponse struct {
	Total int          `json:"total"`
	Start int          `json:"start"`
	Items []searchItem `json:"items"`
}

type searchItem struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	ISBN        string `json:"isbn"`
	Image       string `json:"image"`
	Description string `json:"description"`
}

// Search fetches one page of catalog results. The start offset is
// 1-indexed: page p of size s begins at (p-1)*s + 1. A start past the
// last result fails with ErrNoMoreResults; a query with no matches at
// all returns an empty page without error.
func (c *Client) Search(ctx context.Context, query string, page, size int) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}

	cacheKey := cache.SearchKey(query, page, size)
	if c.cache != nil {
		if payload, err := c.cache.GetSearchPage(ctx, cacheKey); err == nil {
			var result Result
			if err := json.Unmarshal(payload, &result); err == nil {
				c.metrics.IncSearchCacheHit()
				return &result, nil
			}
		}
		c.metrics.IncSearchCacheMiss()
	}

	start := (page-1)*size + 1

	began := time.Now()
	upstream, err := c.fetch(ctx, query, size, start)
	c.metrics.ObserveSearchDuration(time.Since(began))
	if err != nil {
		return nil, err
	}

	if upstream.Total != 0 && upstream.Total < start {
		return nil, ErrNoMoreResults
	}

	result := &Result{
		Books: make([]model.Book, 0, len(upstream.Items)),
		Total: upstream.Total,
		Page:  page,
		Size:  size,
	}
	for _, item := range upstream.Items {
		result.Books = append(result.Books, item.toBook())
	}

	if c.cache != nil {
		if payload, err := json.Marshal(result); err == nil {
			_ = c.cache.SetSearchPage(ctx, cacheKey, payload, c.cacheTTL)
		}
	}

	return result, nil
}

// fetch performs the upstream HTTP call.
func (c *Client) fetch(ctx context.Context, query string, display, start int) (*searchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(display))
	params.Set("start", strconv.Itoa(start))
	params.Set("sort", "sim")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v1/search/book.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBookInfoFetch, err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBookInfoFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: upstream status %d", ErrBookInfoFetch, resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBookInfoFetch, err)
	}

	return &payload, nil
}

// toBook maps an upstream item to the domain model.
func (item searchItem) toBook() model.Book {
	return model.Book{
		ISBN:        normalizeISBN(item.ISBN),
		Title:       item.Title,
		Authors:     splitAuthors(item.Author),
		Publisher:   item.Publisher,
		CoverURL:    item.Image,
		Description: item.Description,
	}
}

// splitAuthors breaks the upstream author field on its "^" separator.
func splitAuthors(raw string) []string {
	parts := strings.Split(raw, "^")
	authors := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			authors = append(authors, trimmed)
		}
	}
	return authors
}

// normalizeISBN keeps the last of the space-separated ISBN values the
// upstream may return (ISBN-10 and ISBN-13 pairs).
func normalizeISBN(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
