package eodhd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/portfolios"
	"github.com/etnz/portfolios/date"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves a tiny subset of EODHD and counts requests.
func fakeAPI(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	reply := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/eod/AAPL.US", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2020-08-28", r.URL.Query().Get("from"))
		assert.Equal(t, "2020-08-31", r.URL.Query().Get("to"))
		reply(w, []map[string]any{
			{"date": "2020-08-28", "open": 504.05, "high": 505.77, "low": 498.31, "close": 499.23, "adjusted_close": 122.5, "volume": 46907479},
			{"date": "2020-08-31", "open": 127.58, "high": 131, "low": 126, "close": 129.04, "adjusted_close": 126.6, "volume": 225702700.0},
		})
	})
	mux.HandleFunc("/splits/AAPL.US", func(w http.ResponseWriter, r *http.Request) {
		reply(w, []map[string]any{{"date": "2020-08-31", "split": "4.000000/1.000000"}})
	})
	mux.HandleFunc("/fundamentals/AAPL.US", func(w http.ResponseWriter, r *http.Request) {
		reply(w, map[string]any{"Name": "Apple Inc", "CurrencyCode": "USD", "Exchange": "NASDAQ"})
	})
	mux.HandleFunc("/eod/GSPC.INDX", func(w http.ResponseWriter, r *http.Request) {
		reply(w, []map[string]any{{"date": "2020-08-31", "open": 3500, "high": 3510, "low": 3490, "close": 3500.31, "volume": 0}})
	})
	mux.HandleFunc("/splits/GSPC.INDX", func(w http.ResponseWriter, r *http.Request) { reply(w, []any{}) })
	mux.HandleFunc("/search/apple", func(w http.ResponseWriter, r *http.Request) {
		reply(w, []map[string]any{{"Code": "AAPL", "Exchange": "US", "Name": "Apple Inc", "Currency": "USD", "previousCloseDate": "2020-08-31"}})
	})
	mux.HandleFunc("/exchanges-list/", func(w http.ResponseWriter, r *http.Request) {
		reply(w, []map[string]any{{"Code": "US", "OperatingMIC": "XNAS, XNYS"}, {"Code": "F", "OperatingMIC": "XFRA"}})
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("api_token") != "secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestSymbol(t *testing.T) {
	tests := []struct{ ticker, want string }{
		{"AAPL", "AAPL.US"},
		{"^GSPC", "GSPC.INDX"},
		{"NVD.F", "NVD.F"},
		{" MSFT ", "MSFT.US"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Symbol(tt.ticker), tt.ticker)
	}
}

func TestParseSplit(t *testing.T) {
	r, err := parseSplit("4.000000/1.000000")
	require.NoError(t, err)
	assert.True(t, r.Equal(decimal.NewFromInt(4)), r.String())

	r, err = parseSplit("1/2")
	require.NoError(t, err)
	assert.True(t, r.Equal(decimal.RequireFromString("0.5")), r.String())

	for _, bad := range []string{"4", "a/1", "1/b", "0/1", "1/0"} {
		_, err := parseSplit(bad)
		assert.Error(t, err, bad)
	}
}

func TestClient_Load(t *testing.T) {
	srv, _ := fakeAPI(t)
	c := New("secret", WithBaseURL(srv.URL))

	data, err := c.Load(context.Background(), "AAPL", date.MustParse("2020-08-28"), date.MustParse("2020-08-31"))
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc", data.Name)
	assert.Equal(t, "USD", data.Currency)
	require.Len(t, data.Bars, 2)
	assert.Equal(t, date.MustParse("2020-08-28"), data.Bars[0].Date)
	assert.True(t, data.Bars[0].Close.Equal(decimal.RequireFromString("499.23")))
	assert.Equal(t, int64(46907479), data.Bars[0].Volume)
	assert.Equal(t, int64(225702700), data.Bars[1].Volume)
	require.Len(t, data.Splits, 1)
	assert.True(t, data.Splits[0].Ratio.Equal(decimal.NewFromInt(4)))
}

func TestClient_LoadIndex(t *testing.T) {
	srv, _ := fakeAPI(t)
	c := New("secret", WithBaseURL(srv.URL))

	data, err := c.Load(context.Background(), "^GSPC", date.Date{}, date.Date{})
	require.NoError(t, err)
	assert.Empty(t, data.Name, "indices have no fundamentals")
	require.Len(t, data.Bars, 1)
	assert.Empty(t, data.Splits)
}

func TestClient_LoadErrors(t *testing.T) {
	srv, _ := fakeAPI(t)

	_, err := New("secret", WithBaseURL(srv.URL)).Load(context.Background(), "NOPE", date.Date{}, date.Date{})
	assert.ErrorIs(t, err, portfolios.ErrUnknownTicker)

	_, err = New("", WithBaseURL(srv.URL)).Load(context.Background(), "AAPL", date.Date{}, date.Date{})
	assert.ErrorContains(t, err, portfolios.EODHDAPIKeyEnv)

	_, err = New("wrong", WithBaseURL(srv.URL)).Load(context.Background(), "AAPL", date.Date{}, date.Date{})
	assert.ErrorContains(t, err, "401")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New("secret", WithBaseURL(srv.URL)).Load(ctx, "AAPL", date.Date{}, date.Date{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_DiskCache(t *testing.T) {
	srv, hits := fakeAPI(t)
	dir := t.TempDir()
	from, to := date.MustParse("2020-08-28"), date.MustParse("2020-08-31")

	first, err := New("secret", WithBaseURL(srv.URL), WithCacheDir(dir)).Load(context.Background(), "AAPL", from, to)
	require.NoError(t, err)
	n := hits.Load()
	assert.Equal(t, int32(3), n)

	second, err := New("secret", WithBaseURL(srv.URL), WithCacheDir(dir)).Load(context.Background(), "AAPL", from, to)
	require.NoError(t, err)
	assert.Equal(t, n, hits.Load(), "second load is served from disk")
	assert.Equal(t, first, second)
}

func TestWithTimeout(t *testing.T) {
	h := &http.Client{Timeout: time.Minute}
	c := New("secret", WithHTTPClient(h), WithTimeout(time.Second))
	assert.Equal(t, time.Minute, h.Timeout, "the given client is not modified")
	assert.Equal(t, time.Second, c.http.Timeout)

	c = New("secret", WithTimeout(time.Second), WithHTTPClient(h))
	assert.Same(t, h, c.http)
}

func TestClient_Search(t *testing.T) {
	srv, _ := fakeAPI(t)
	c := New("secret", WithBaseURL(srv.URL))

	results, err := c.Search(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "XNAS", results[0].MIC)
	assert.Equal(t, "XNYS", results[1].MIC)
	assert.Equal(t, "AAPL", results[0].Ticker())
	assert.Equal(t, date.MustParse("2020-08-31"), results[0].PreviousCloseDate)
}

func TestSearchResult_Ticker(t *testing.T) {
	assert.Equal(t, "^GSPC", SearchResult{Code: "GSPC", Exchange: "INDX"}.Ticker())
	assert.Equal(t, "NVD.F", SearchResult{Code: "NVD", Exchange: "F"}.Ticker())
}
