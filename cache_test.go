package portfolios

import (
	"context"
	"errors"
	"testing"

	"github.com/etnz/portfolios/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// switchProvider fails once broken is set.
type switchProvider struct {
	MemoryProvider
	broken bool
}

func (s *switchProvider) Load(ctx context.Context, ticker string, from, to date.Date) (PriceData, error) {
	if s.broken {
		return PriceData{}, errors.New("provider unreachable")
	}
	return s.MemoryProvider.Load(ctx, ticker, from, to)
}

func TestFileCache_Fallback(t *testing.T) {
	ctx := context.Background()
	remote := &switchProvider{MemoryProvider: testProvider()}
	cache := NewFileCache(t.TempDir(), remote, nil)

	fresh, err := cache.Load(ctx, "^GSPC", date.Date{}, date.Date{})
	require.NoError(t, err)
	require.NotEmpty(t, fresh.Bars)

	remote.broken = true
	cached, err := cache.Load(ctx, "^GSPC", day("2020-01-10"), day("2020-01-12"))
	require.NoError(t, err)
	require.Len(t, cached.Bars, 3)
	assert.Equal(t, day("2020-01-10"), cached.Bars[0].Date)
	assert.True(t, cached.Bars[0].Close.Equal(num(3000)))

	_, err = cache.Load(ctx, "TST", date.Date{}, date.Date{})
	assert.ErrorIs(t, err, ErrNoData)
	assert.ErrorContains(t, err, "provider unreachable")
}

func TestFileCache_Offline(t *testing.T) {
	dir := t.TempDir()
	online := NewFileCache(dir, testProvider(), nil)
	_, err := online.Load(context.Background(), "TST", date.Date{}, date.Date{})
	require.NoError(t, err)

	offline := NewFileCache(dir, nil, nil)
	data, err := offline.Load(context.Background(), "TST", date.Date{}, date.Date{})
	require.NoError(t, err)
	assert.Equal(t, "Test Corp", data.Name)
	assert.Len(t, data.Bars, 30)
}
