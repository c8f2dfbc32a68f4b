package service

import (
	"math"
	"sort"

	"Meguri-App/internal/domain/helper"
	"Meguri-App/internal/domain/model"
	"Meguri-App/internal/domain/rule"
)

// 貪欲法の効用関数の係数: -1.5*距離(km) + 0.3*評価値 + 0.2*ln(レビュー数+1)
const (
	nnDistanceWeight  = -1.5
	nnRatingWeight    = 0.3
	nnReviewLogWeight = 0.2
)

// RouteOptimizer は選定済みスポット群の訪問順を決めるサービス。
// 厳密なTSP解ではなく、近さと質を両立させる説明可能な貪欲ヒューリスティック
type RouteOptimizer interface {
	Order(origin model.LatLng, pool []*model.ScoredPlace) []*model.ScoredPlace
}

type routeOptimizer struct{}

func NewRouteOptimizer() RouteOptimizer {
	return &routeOptimizer{}
}

// Order は出発地点からの品質重み付き最近傍法で訪問順を決める。
// バー・ナイトライフ系のゴールは実際の行動に合わせて必ず最後に回す
func (o *routeOptimizer) Order(origin model.LatLng, pool []*model.ScoredPlace) []*model.ScoredPlace {
	var daytime, nightlife []*model.ScoredPlace
	for _, sp := range pool {
		if rule.IsNightlife(sp.Goal) {
			nightlife = append(nightlife, sp)
		} else {
			daytime = append(daytime, sp)
		}
	}

	ordered := greedyOrder(origin, daytime)

	// ナイトライフ枠は日中ルートの最終地点から続けて最近傍で並べる
	current := origin
	if len(ordered) > 0 {
		current = ordered[len(ordered)-1].Place.Location
	}
	ordered = append(ordered, greedyOrder(current, nightlife)...)
	return ordered
}

// greedyOrder は現在地から効用最大の候補を繰り返し選ぶ
func greedyOrder(start model.LatLng, pool []*model.ScoredPlace) []*model.ScoredPlace {
	if len(pool) == 0 {
		return nil
	}

	// 入力順への依存を断つため正規キーで安定化する
	remaining := make([]*model.ScoredPlace, len(pool))
	copy(remaining, pool)
	sort.Slice(remaining, func(i, j int) bool {
		return remaining[i].Place.CanonicalID() < remaining[j].Place.CanonicalID()
	})

	ordered := make([]*model.ScoredPlace, 0, len(remaining))
	current := start
	for len(remaining) > 0 {
		bestIdx := 0
		bestUtility := math.Inf(-1)
		for i, sp := range remaining {
			u := utility(current, sp.Place)
			if u > bestUtility {
				bestUtility = u
				bestIdx = i
			}
		}
		best := remaining[bestIdx]
		ordered = append(ordered, best)
		current = best.Place.Location
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return ordered
}

// utility は現在地からの移動コストとスポットの質を合成した効用値
func utility(current model.LatLng, p *model.Place) float64 {
	dist := helper.DistanceKm(current, p.Location)
	return nnDistanceWeight*dist +
		nnRatingWeight*p.Rating +
		nnReviewLogWeight*math.Log(float64(p.ReviewCount)+1)
}
