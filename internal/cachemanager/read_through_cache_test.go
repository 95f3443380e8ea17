package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReadThroughCache_FillsOnMiss(t *testing.T) {
	ctx := context.Background()
	backing := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)

	calls := 0
	rtc := NewReadThroughCache(backing, func(ctx context.Context, input string) (string, error) {
		calls++
		return "decoded:" + input, nil
	}, false)

	got, err := rtc.Get(ctx, "k", "doc", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "decoded:doc", got)
	require.Equal(t, 1, calls)

	// Second read is served from the cache.
	got, err = rtc.Get(ctx, "k", "doc", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "decoded:doc", got)
	require.Equal(t, 1, calls)
}

func TestReadThroughCache_SkipCache(t *testing.T) {
	ctx := context.Background()
	backing := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)

	calls := 0
	rtc := NewReadThroughCache(backing, func(ctx context.Context, input string) (string, error) {
		calls++
		return input, nil
	}, true)

	for range 3 {
		_, err := rtc.Get(ctx, "k", "doc", time.Minute)
		require.NoError(t, err)
	}
	require.Equal(t, 3, calls)
}

func TestReadThroughCache_FillErrorNotCached(t *testing.T) {
	ctx := context.Background()
	backing := NewInMemoryCacheManager[string, string]("test", DefaultExpiration, DefaultCleanupInterval)

	fillErr := errors.New("decode failed")
	calls := 0
	rtc := NewReadThroughCache(backing, func(ctx context.Context, input string) (string, error) {
		calls++
		if calls == 1 {
			return "", fillErr
		}
		return "ok", nil
	}, false)

	_, err := rtc.Get(ctx, "k", "doc", time.Minute)
	require.ErrorIs(t, err, fillErr)

	got, err := rtc.Get(ctx, "k", "doc", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "ok", got)
	require.Equal(t, 2, calls)
}
