package cache

import (
	"sort"
	"sync"

	"github.com/asim/quadtree"

	"Meguri-App/internal/domain/helper"
	"Meguri-App/internal/domain/model"
)

// SpatialIndex はキャッシュ済みスポットの半径検索を支える四分木インデックス。
// 同一の正規キーは一度だけ登録される
type SpatialIndex struct {
	mu    sync.RWMutex
	tree  *quadtree.QuadTree
	known map[string]struct{}
}

func NewSpatialIndex() *SpatialIndex {
	// 全世界をカバーする境界（緯度±90、経度±180）
	center := quadtree.NewPoint(0, 0, nil)
	half := quadtree.NewPoint(90, 180, nil)
	boundary := quadtree.NewAABB(center, half)
	return &SpatialIndex{
		tree:  quadtree.New(boundary, 0, nil),
		known: make(map[string]struct{}),
	}
}

// Insert はスポットをインデックスに登録する（登録済みの正規キーは無視）
func (idx *SpatialIndex) Insert(place *model.Place) {
	key := place.CanonicalID()
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.known[key]; ok {
		return
	}
	idx.known[key] = struct{}{}
	idx.tree.Insert(quadtree.NewPoint(place.Location.Lat, place.Location.Lng, place))
}

// Search は半径内のスポットを近い順で返す
func (idx *SpatialIndex) Search(location model.LatLng, radiusMeters int) []*model.Place {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	center := quadtree.NewPoint(location.Lat, location.Lng, nil)
	half := center.HalfPoint(float64(radiusMeters))
	boundary := quadtree.NewAABB(center, half)

	points := idx.tree.Search(boundary)
	results := make([]*model.Place, 0, len(points))
	for _, pt := range points {
		p, ok := pt.Data().(*model.Place)
		if !ok {
			continue
		}
		// 境界矩形は近似なので実距離で絞り直す
		if helper.DistanceKm(location, p.Location)*1000 > float64(radiusMeters) {
			continue
		}
		results = append(results, p)
	}
	sort.Slice(results, func(i, j int) bool {
		di := helper.DistanceKm(location, results[i].Location)
		dj := helper.DistanceKm(location, results[j].Location)
		if di != dj {
			return di < dj
		}
		return results[i].CanonicalID() < results[j].CanonicalID()
	})
	return results
}
