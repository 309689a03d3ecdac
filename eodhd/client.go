// Package eodhd implements a price provider backed by the EOD Historical Data
// API (https://eodhd.com).
package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/etnz/portfolios"
	"github.com/etnz/portfolios/date"
)

// DefaultBaseURL is the root of the EODHD API.
const DefaultBaseURL = "https://eodhd.com/api"

// Client fetches daily bars, splits and security names from EODHD.
type Client struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	logger   *portfolios.Logger
	cacheDir string
	today    func() date.Date
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient sets the http client used for every request.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger.
func WithLogger(l *portfolios.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout sets the timeout of each request. The http client is copied,
// one given by WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		h := *c.http
		h.Timeout = d
		c.http = &h
	}
}

// WithCacheDir keeps responses in dir for the rest of the day.
func WithCacheDir(dir string) Option {
	return func(c *Client) { c.cacheDir = dir }
}

// New returns a client authenticated by apiKey.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  portfolios.NewSilentLogger(),
		today:   date.Today,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cacheDir != "" {
		base := c.http.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		h := *c.http
		h.Transport = &diskCache{base: base, dir: c.cacheDir, period: date.Daily, today: c.today, logger: c.logger}
		c.http = &h
	}
	return c
}

// Symbol returns the EODHD symbol of a ticker. Index tickers like "^GSPC"
// live on the INDX exchange, tickers without an exchange are US listings.
func Symbol(ticker string) string {
	ticker = strings.TrimSpace(ticker)
	if after, ok := strings.CutPrefix(ticker, "^"); ok {
		return after + ".INDX"
	}
	if !strings.Contains(ticker, ".") {
		return ticker + ".US"
	}
	return ticker
}

// endpoint builds the address of an API call.
func (c *Client) endpoint(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_token", c.apiKey)
	query.Set("fmt", "json")
	return c.baseURL + path + "?" + query.Encode()
}

// Load implements portfolios.Provider.
func (c *Client) Load(ctx context.Context, ticker string, from, to date.Date) (portfolios.PriceData, error) {
	if c.apiKey == "" {
		return portfolios.PriceData{}, fmt.Errorf("eodhd: missing API key, set %s", portfolios.EODHDAPIKeyEnv)
	}
	sym := Symbol(ticker)
	bars, err := c.fetchBars(ctx, sym, from, to)
	if err != nil {
		return portfolios.PriceData{}, c.wrap(ticker, err)
	}
	splits, err := c.fetchSplits(ctx, sym)
	if err != nil {
		return portfolios.PriceData{}, c.wrap(ticker, err)
	}
	data := portfolios.PriceData{Bars: bars, Splits: splits}

	// indices have no fundamentals
	if info, err := c.fetchGeneral(ctx, sym); err == nil {
		data.Name, data.Currency = info.Name, info.Currency
	} else {
		c.logger.Debug().Err(err).Str("ticker", ticker).Msg("no fundamentals")
	}
	c.logger.Info().Str("ticker", ticker).Int("bars", len(bars)).Int("splits", len(splits)).Msg("loaded prices")
	return data, nil
}

// wrap maps a not found response to portfolios.ErrUnknownTicker.
func (c *Client) wrap(ticker string, err error) error {
	var se *statusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return fmt.Errorf("eodhd %q: %w", ticker, portfolios.ErrUnknownTicker)
	}
	return fmt.Errorf("eodhd %q: %w", ticker, err)
}
