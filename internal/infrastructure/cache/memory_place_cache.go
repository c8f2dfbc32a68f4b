package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"Meguri-App/internal/domain/model"
	"Meguri-App/internal/domain/repository"
)

// 検索結果は店舗の入れ替わりに追従するため短め、
// 詳細情報は変化が遅いため長めに保持する
const (
	searchCacheTTL  = 48 * time.Hour
	detailsCacheTTL = 14 * 24 * time.Hour

	searchCacheSize  = 1024
	detailsCacheSize = 4096
)

// MemoryPlaceCache はTTL付きLRUと空間インデックスによるインメモリキャッシュ。
// 外部ストレージ無しで動かす場合の既定実装
type MemoryPlaceCache struct {
	searches *expirable.LRU[string, []*model.Place]
	details  *expirable.LRU[string, *model.Place]
	spatial  *SpatialIndex
}

func NewMemoryPlaceCache() repository.PlaceCache {
	return &MemoryPlaceCache{
		searches: expirable.NewLRU[string, []*model.Place](searchCacheSize, nil, searchCacheTTL),
		details:  expirable.NewLRU[string, *model.Place](detailsCacheSize, nil, detailsCacheTTL),
		spatial:  NewSpatialIndex(),
	}
}

func (c *MemoryPlaceCache) GetSearch(ctx context.Context, key model.SearchKey) ([]*model.Place, bool) {
	stored, ok := c.searches.Get(key.String())
	if !ok {
		return nil, false
	}
	places := clonePlaces(stored)
	for _, p := range places {
		p.Source = model.SourceCache
	}
	return places, true
}

func (c *MemoryPlaceCache) PutSearch(ctx context.Context, key model.SearchKey, places []*model.Place) error {
	snapshot := clonePlaces(places)
	c.searches.Add(key.String(), snapshot)
	for _, p := range snapshot {
		c.spatial.Insert(p)
	}
	return nil
}

func (c *MemoryPlaceCache) GetDetails(ctx context.Context, placeID string) (*model.Place, bool) {
	stored, ok := c.details.Get(placeID)
	if !ok {
		return nil, false
	}
	return clonePlace(stored), true
}

func (c *MemoryPlaceCache) PutDetails(ctx context.Context, place *model.Place) error {
	snapshot := clonePlace(place)
	c.details.Add(place.ID, snapshot)
	c.spatial.Insert(snapshot)
	return nil
}

func (c *MemoryPlaceCache) Nearby(ctx context.Context, location model.LatLng, radiusMeters int) ([]*model.Place, error) {
	places := clonePlaces(c.spatial.Search(location, radiusMeters))
	for _, p := range places {
		p.Source = model.SourceCache
	}
	return places, nil
}

// clonePlace は後続工程の書き込みがキャッシュ内部へ波及しないよう深いコピーを返す。
// SQLite/PostgreSQL実装ではJSONの往復が同じ分離を担っている
func clonePlace(p *model.Place) *model.Place {
	cp := *p
	cp.Types = append([]string(nil), p.Types...)
	cp.OpeningHours = append([]string(nil), p.OpeningHours...)
	cp.PhotoRefs = append([]string(nil), p.PhotoRefs...)
	return &cp
}

func clonePlaces(places []*model.Place) []*model.Place {
	out := make([]*model.Place, len(places))
	for i, p := range places {
		out[i] = clonePlace(p)
	}
	return out
}
