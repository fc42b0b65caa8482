// Package client talks to the fainder search backend over its REST API.
//
// A Client issues one request per call and never retries. Successful search
// responses are kept in an LRU cache keyed by the full request, mirroring the
// backend's own query cache.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/fainder-search/fainder"
)

// Backend routes.
const (
	pathQuery           = "/query"
	pathCacheStatistics = "/cache_statistics"
	pathClearCache      = "/clear_cache"
)

// Request is the body of a search request.
type Request struct {
	Query     string `json:"query"`
	Page      int    `json:"page"`
	PerPage   int    `json:"per_page"`
	IndexType string `json:"index_type"`
}

// Response is the backend's answer to a search request.
type Response struct {
	Query       string           `json:"query"        yaml:"query"`
	Results     []map[string]any `json:"results"      yaml:"results"`
	SearchTime  float64          `json:"search_time"  yaml:"search_time"`
	ResultCount int              `json:"result_count" yaml:"result_count"`
	Page        int              `json:"page"         yaml:"page"`
	TotalPages  int              `json:"total_pages"  yaml:"total_pages"`
}

// CacheInfo reports the backend's query cache statistics.
type CacheInfo struct {
	Hits     int  `json:"hits"      yaml:"hits"`
	Misses   int  `json:"misses"    yaml:"misses"`
	MaxSize  *int `json:"max_size"  yaml:"max_size"`
	CurrSize int  `json:"curr_size" yaml:"curr_size"`
}

// Client is a search backend client. It is safe for concurrent use.
type Client struct {
	http      *resty.Client
	logger    *zap.Logger
	cache     *lru.Cache[string, *Response]
	endpoint  string
	indexType string
	perPage   int
	timeout   time.Duration
	cacheSize int
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithCacheSize sets the number of cached responses. Zero or less disables
// the cache.
func WithCacheSize(n int) Option {
	return func(c *Client) {
		c.cacheSize = n
	}
}

// WithIndexType sets the index type used when a request leaves it empty.
func WithIndexType(t string) Option {
	return func(c *Client) {
		c.indexType = t
	}
}

// WithPerPage sets the page size used when a request leaves it zero.
func WithPerPage(n int) Option {
	return func(c *Client) {
		c.perPage = n
	}
}

// New creates a Client for the backend at endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}

	c := &Client{
		logger:    zap.NewNop(),
		endpoint:  endpoint,
		indexType: fainder.DefaultIndexType,
		perPage:   fainder.DefaultPerPage,
		timeout:   fainder.DefaultTimeout,
		cacheSize: fainder.DefaultCacheSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cacheSize > 0 {
		cache, err := lru.New[string, *Response](c.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating response cache: %w", err)
		}

		c.cache = cache
	}

	c.http = resty.New().
		SetBaseURL(endpoint).
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	return c, nil
}

// NewFromConfig creates a Client from the search section of a Config.
func NewFromConfig(cfg fainder.SearchConfig, opts ...Option) (*Client, error) {
	base := []Option{
		WithIndexType(cfg.IndexType),
		WithPerPage(cfg.PerPage),
		WithTimeout(cfg.Timeout),
		WithCacheSize(cfg.CacheSize),
	}

	return New(cfg.Endpoint, append(base, opts...)...)
}

// Endpoint returns the backend base URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) normalize(req Request) (Request, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return req, ErrEmptyQuery
	}

	if req.Page == 0 {
		req.Page = 1
	}

	if req.Page < 1 {
		return req, fmt.Errorf("%w: %d", ErrInvalidPage, req.Page)
	}

	if req.PerPage <= 0 {
		req.PerPage = c.perPage
	}

	if req.IndexType == "" {
		req.IndexType = c.indexType
	}

	return req, nil
}

func cacheKey(req Request) string {
	data, _ := json.Marshal(req)

	return string(data)
}

// Search runs a query against the backend.
func (c *Client) Search(ctx context.Context, req Request) (*Response, error) {
	req, err := c.normalize(req)
	if err != nil {
		return nil, err
	}

	key := cacheKey(req)
	if c.cache != nil {
		if resp, ok := c.cache.Get(key); ok {
			c.logger.Debug("search cache hit", zap.String("query", req.Query), zap.Int("page", req.Page))

			return resp, nil
		}
	}

	c.logger.Debug("loading results",
		zap.String("query", req.Query),
		zap.Int("page", req.Page),
		zap.String("index_type", req.IndexType),
	)

	var out Response

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post(pathQuery)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}

	if resp.IsError() {
		return nil, newAPIError("search request failed", resp)
	}

	c.logger.Info("search completed",
		zap.String("query", req.Query),
		zap.Int("results", out.ResultCount),
		zap.Float64("search_time", out.SearchTime),
	)

	if c.cache != nil {
		c.cache.Add(key, &out)
	}

	return &out, nil
}

// SearchParsed renders r back to a query string and searches for it.
func (c *Client) SearchParsed(ctx context.Context, r fainder.ParseResult, page int) (*Response, error) {
	return c.Search(ctx, Request{Query: r.Query(), Page: page})
}

// CacheStatistics returns the backend's query cache statistics.
func (c *Client) CacheStatistics(ctx context.Context) (*CacheInfo, error) {
	var out CacheInfo

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(pathCacheStatistics)
	if err != nil {
		return nil, fmt.Errorf("cache statistics request: %w", err)
	}

	if resp.IsError() {
		return nil, newAPIError("cache statistics request failed", resp)
	}

	return &out, nil
}

// ClearCache clears the backend's query cache and the local response cache.
func (c *Client) ClearCache(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(pathClearCache)
	if err != nil {
		return fmt.Errorf("clear cache request: %w", err)
	}

	if resp.IsError() {
		return newAPIError("clear cache request failed", resp)
	}

	if c.cache != nil {
		c.cache.Purge()
	}

	c.logger.Info("cleared search cache")

	return nil
}

// LocalCacheLen returns the number of responses cached client side.
func (c *Client) LocalCacheLen() int {
	if c.cache == nil {
		return 0
	}

	return c.cache.Len()
}

func newAPIError(msg string, resp *resty.Response) *APIError {
	body := strings.TrimSpace(string(resp.Body()))
	details := body

	var payload struct {
		Message string `json:"message"`
		Detail  any    `json:"detail"`
	}

	if json.Unmarshal(resp.Body(), &payload) == nil {
		switch d := payload.Detail.(type) {
		case string:
			details = d
		case nil:
		default:
			if b, err := json.Marshal(d); err == nil {
				details = string(b)
			}
		}

		if payload.Message != "" {
			details = payload.Message
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Message:    fmt.Sprintf("%s (%s)", msg, resp.Status()),
		Details:    details,
	}
}
