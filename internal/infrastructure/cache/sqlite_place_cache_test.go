package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Meguri-App/internal/domain/model"
)

func newTestSQLiteCache(t *testing.T) *SQLitePlaceCache {
	t.Helper()
	c, err := NewSQLitePlaceCache(filepath.Join(t.TempDir(), "places_cache.db"))
	require.NoError(t, err)
	sc := c.(*SQLitePlaceCache)
	t.Cleanup(func() { sc.Close() })
	return sc
}

func TestSQLitePlaceCache_検索キャッシュの往復(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()
	key := model.NewSearchKey(model.LatLng{Lat: 52.23, Lng: 21.01}, 5000, model.GoalBars)
	places := []*model.Place{cachePlace("gpl:1", "Bar One", 52.231, 21.011)}

	_, ok := c.GetSearch(ctx, key)
	assert.False(t, ok)

	require.NoError(t, c.PutSearch(ctx, key, places))

	got, ok := c.GetSearch(ctx, key)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "gpl:1", got[0].ID)
	assert.Equal(t, model.SourceCache, got[0].Source) // 再取得時はソースがキャッシュになる
}

func TestSQLitePlaceCache_上書きはべき等(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()
	key := model.NewSearchKey(model.LatLng{Lat: 52.23, Lng: 21.01}, 5000, model.GoalBars)

	require.NoError(t, c.PutSearch(ctx, key, []*model.Place{cachePlace("gpl:1", "Old Name", 52.231, 21.011)}))
	require.NoError(t, c.PutSearch(ctx, key, []*model.Place{cachePlace("gpl:1", "New Name", 52.231, 21.011)}))

	got, ok := c.GetSearch(ctx, key)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "New Name", got[0].Name)
}

func TestSQLitePlaceCache_詳細キャッシュは補完済みのみ返す(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()

	raw := cachePlace("gpl:raw", "Raw", 52.231, 21.011)
	require.NoError(t, c.PutDetails(ctx, raw))
	_, ok := c.GetDetails(ctx, "gpl:raw")
	assert.False(t, ok) // 詳細未取得のレコードは詳細キャッシュとして扱わない

	enriched := cachePlace("gpl:done", "Done", 52.232, 21.012)
	enriched.Enriched = true
	enriched.Summary = "補完済み"
	require.NoError(t, c.PutDetails(ctx, enriched))

	got, ok := c.GetDetails(ctx, "gpl:done")
	require.True(t, ok)
	assert.Equal(t, "補完済み", got.Summary)
}

func TestSQLitePlaceCache_空間検索(t *testing.T) {
	c := newTestSQLiteCache(t)
	ctx := context.Background()
	origin := model.LatLng{Lat: 52.2319, Lng: 21.0067}
	key := model.NewSearchKey(origin, 5000, model.GoalBars)

	near := cachePlace("gpl:near", "Near Bar", 52.2330, 21.0070)
	far := cachePlace("gpl:far", "Far Bar", 52.3219, 21.0067)
	require.NoError(t, c.PutSearch(ctx, key, []*model.Place{near, far}))

	got, err := c.Nearby(ctx, origin, 1000)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "gpl:near", got[0].ID)
}
