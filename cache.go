package portfolios

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/etnz/portfolios/date"
)

// FileCache is a Provider that keeps a copy of every successful load on disk
// and serves it when the remote provider fails.
type FileCache struct {
	dir    string
	remote Provider
	logger *Logger
}

// NewFileCache returns a cache storing files in dir. remote may be nil, the
// cache then only serves what is on disk.
func NewFileCache(dir string, remote Provider, logger *Logger) *FileCache {
	if logger == nil {
		logger = NewSilentLogger()
	}
	return &FileCache{dir: dir, remote: remote, logger: logger}
}

func (c *FileCache) path(ticker string) string {
	return filepath.Join(c.dir, url.PathEscape(ticker)+".json")
}

// Load implements Provider.
func (c *FileCache) Load(ctx context.Context, ticker string, from, to date.Date) (PriceData, error) {
	var remoteErr error
	if c.remote != nil {
		data, err := c.remote.Load(ctx, ticker, from, to)
		if err == nil {
			if err := c.store(ticker, data); err != nil {
				c.logger.Warn().Err(err).Str("ticker", ticker).Msg("cache write failed (ignored)")
			}
			return data, nil
		}
		if ctx.Err() != nil {
			return PriceData{}, err
		}
		remoteErr = err
		c.logger.Warn().Err(err).Str("ticker", ticker).Msg("refresh failed, using cached data")
	}

	data, err := c.load(ticker)
	if err != nil {
		if remoteErr != nil {
			return PriceData{}, errors.Join(remoteErr, err)
		}
		return PriceData{}, err
	}
	return data.clip(from, to), nil
}

func (c *FileCache) store(ticker string, data PriceData) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	tmp := c.path(ticker) + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path(ticker))
}

func (c *FileCache) load(ticker string) (PriceData, error) {
	var data PriceData
	content, err := os.ReadFile(c.path(ticker))
	if errors.Is(err, os.ErrNotExist) {
		return data, fmt.Errorf("%q is not cached: %w", ticker, ErrNoData)
	}
	if err != nil {
		return data, err
	}
	if err := json.Unmarshal(content, &data); err != nil {
		return data, fmt.Errorf("invalid cache file for %q: %w", ticker, err)
	}
	return data, nil
}
