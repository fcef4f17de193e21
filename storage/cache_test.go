package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rea_scraper/config"
)

func exerciseCache(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	urls := []string{
		"https://www.otodom.pl/pl/oferta/dzialka-ID1",
		"https://www.otodom.pl/pl/oferta/dzialka-ID2",
	}
	require.NoError(t, c.Put(ctx, "20240210-0930_OTODOM_LANDS_SEARCH_2", urls))
	require.NoError(t, c.Put(ctx, "20240210-0930_OTODOM_HOUSES_SEARCH_0", nil))

	keys, err := c.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"20240210-0930_OTODOM_LANDS_SEARCH_2",
		"20240210-0930_OTODOM_HOUSES_SEARCH_0",
	}, keys)

	got, err := c.Get(ctx, "20240210-0930_OTODOM_LANDS_SEARCH_2")
	require.NoError(t, err)
	assert.Equal(t, urls, got)

	empty, err := c.Get(ctx, "20240210-0930_OTODOM_HOUSES_SEARCH_0")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, c.Put(ctx, "20240210-0930_OTODOM_LANDS_SEARCH_2", urls[:1]))
	got, err = c.Get(ctx, "20240210-0930_OTODOM_LANDS_SEARCH_2")
	require.NoError(t, err)
	assert.Equal(t, urls[:1], got, "put overwrites")

	require.NoError(t, c.Delete(ctx, "20240210-0930_OTODOM_LANDS_SEARCH_2"))
	_, err = c.Get(ctx, "20240210-0930_OTODOM_LANDS_SEARCH_2")
	assert.ErrorIs(t, err, ErrCacheMiss)

	keys, err = c.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20240210-0930_OTODOM_HOUSES_SEARCH_0"}, keys)
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	defer c.Close()

	exerciseCache(t, c)
}

func TestRedisCache_StoresJSONList(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Put(context.Background(), "k", []string{"a", "b"}))

	raw, err := mr.Get("k")
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, raw)
}

func TestRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisCache(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

func TestSQLiteCache(t *testing.T) {
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer c.Close()

	exerciseCache(t, c)
}

func TestOpenCache(t *testing.T) {
	c, err := OpenCache(context.Background(), config.CacheConfig{
		Backend:    "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "cache.db"),
	})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteCache{}, c)
	c.Close()

	_, err = OpenCache(context.Background(), config.CacheConfig{Backend: "memcached"})
	assert.Error(t, err)
}
