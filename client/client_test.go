package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fainder-search/fainder"
	"github.com/fainder-search/fainder/client"
)

type backend struct {
	t       *testing.T
	queries atomic.Int32
	cleared atomic.Int32
	status  int
	errBody string

	mu       sync.Mutex
	lastBody client.Request
}

func (b *backend) last() client.Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.lastBody
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/query":
		b.queries.Add(1)

		if b.status != 0 {
			w.WriteHeader(b.status)
			_, _ = w.Write([]byte(b.errBody))

			return
		}

		assert.Equal(b.t, http.MethodPost, r.Method)

		var req client.Request
		assert.NoError(b.t, json.NewDecoder(r.Body).Decode(&req))

		b.mu.Lock()
		b.lastBody = req
		b.mu.Unlock()

		_ = json.NewEncoder(w).Encode(map[string]any{
			"query":        req.Query,
			"results":      []map[string]any{{"id": 1, "name": "people"}},
			"search_time":  0.25,
			"result_count": 1,
			"page":         req.Page,
			"total_pages":  1,
		})
	case "/cache_statistics":
		_, _ = w.Write([]byte(`{"hits":3,"misses":1,"max_size":128,"curr_size":2}`))
	case "/clear_cache":
		b.cleared.Add(1)
		_, _ = w.Write([]byte(`{"message":"Cache cleared"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()

	b := &backend{t: t}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	return b, srv
}

func TestSearch_Defaults(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)

	c, err := client.New(srv.URL + "/")
	require.NoError(t, err)

	resp, err := c.Search(context.Background(), client.Request{Query: "  KW(test)  "})
	require.NoError(t, err)

	assert.Equal(t, client.Request{Query: "KW(test)", Page: 1, PerPage: 10, IndexType: "rebinning"}, b.last())
	assert.Equal(t, "KW(test)", resp.Query)
	assert.Equal(t, 1, resp.ResultCount)
	assert.InDelta(t, 0.25, resp.SearchTime, 1e-9)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "people", resp.Results[0]["name"])
}

func TestSearch_Cache(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)

	c, err := client.New(srv.URL, client.WithCacheSize(4))
	require.NoError(t, err)

	ctx := context.Background()

	for range 3 {
		_, err := c.Search(ctx, client.Request{Query: "KW(a)"})
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), b.queries.Load())
	assert.Equal(t, 1, c.LocalCacheLen())

	_, err = c.Search(ctx, client.Request{Query: "KW(a)", Page: 2})
	require.NoError(t, err)
	assert.Equal(t, int32(2), b.queries.Load())

	require.NoError(t, c.ClearCache(ctx))
	assert.Equal(t, int32(1), b.cleared.Load())
	assert.Equal(t, 0, c.LocalCacheLen())
}

func TestSearch_CacheDisabled(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)

	c, err := client.New(srv.URL, client.WithCacheSize(0))
	require.NoError(t, err)

	for range 2 {
		_, err := c.Search(context.Background(), client.Request{Query: "KW(a)"})
		require.NoError(t, err)
	}

	assert.Equal(t, int32(2), b.queries.Load())
}

func TestSearch_APIError(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	b.status = http.StatusBadRequest
	b.errBody = `{"detail":"Unexpected token"}`

	c, err := client.New(srv.URL)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), client.Request{Query: "KW("})
	require.Error(t, err)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Unexpected token", apiErr.Details)
	assert.Contains(t, apiErr.Error(), "search request failed (400 Bad Request)")
}

func TestSearch_APIErrorRawBody(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)
	b.status = http.StatusInternalServerError
	b.errBody = "boom"

	c, err := client.New(srv.URL)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), client.Request{Query: "KW(a)"})

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "boom", apiErr.Details)
}

func TestSearch_Validation(t *testing.T) {
	t.Parallel()

	_, srv := newBackend(t)

	c, err := client.New(srv.URL)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), client.Request{Query: "   "})
	require.ErrorIs(t, err, client.ErrEmptyQuery)

	_, err = c.Search(context.Background(), client.Request{Query: "KW(a)", Page: -1})
	require.ErrorIs(t, err, client.ErrInvalidPage)
}

func TestSearchParsed(t *testing.T) {
	t.Parallel()

	b, srv := newBackend(t)

	c, err := client.NewFromConfig(fainder.SearchConfig{
		Endpoint:  srv.URL,
		IndexType: fainder.IndexConversion,
		PerPage:   5,
	})
	require.NoError(t, err)

	parsed := fainder.ParseQuery("COLUMN(PERCENTILE(0.5;GT;1)) AND KW(a)")

	_, err = c.SearchParsed(context.Background(), parsed, 3)
	require.NoError(t, err)

	assert.Equal(t, client.Request{
		Query:     "COLUMN(PERCENTILE(0.5;gt;1)) AND KW(a)",
		Page:      3,
		PerPage:   5,
		IndexType: fainder.IndexConversion,
	}, b.last())
}

func TestCacheStatistics(t *testing.T) {
	t.Parallel()

	_, srv := newBackend(t)

	c, err := client.New(srv.URL)
	require.NoError(t, err)

	info, err := c.CacheStatistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, info.Hits)
	assert.Equal(t, 1, info.Misses)
	require.NotNil(t, info.MaxSize)
	assert.Equal(t, 128, *info.MaxSize)
	assert.Equal(t, 2, info.CurrSize)
}

func TestNew_NoEndpoint(t *testing.T) {
	t.Parallel()

	_, err := client.New("  ")
	assert.ErrorIs(t, err, client.ErrNoEndpoint)
}
