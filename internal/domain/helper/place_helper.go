package helper

import (
	"sort"

	"Meguri-App/internal/domain/model"
)

// SortByComposite はスコア付き候補を決定的な順序でソートする。
// コンポジットスコア降順 → vibe降順 → 正規キー昇順
func SortByComposite(places []*model.ScoredPlace) {
	sort.Slice(places, func(i, j int) bool {
		if places[i].Composite != places[j].Composite {
			return places[i].Composite > places[j].Composite
		}
		if places[i].Breakdown.Vibe != places[j].Breakdown.Vibe {
			return places[i].Breakdown.Vibe > places[j].Breakdown.Vibe
		}
		return places[i].Place.CanonicalID() < places[j].Place.CanonicalID()
	})
}

// TopNByPreScore は評価値とレビュー数による安価な事前スコアで上位N件を返す。
// 詳細取得の対象を絞るために使う（入力スライスは変更しない）
func TopNByPreScore(places []*model.ScoredPlace, n int) []*model.ScoredPlace {
	if n <= 0 || len(places) == 0 {
		return nil
	}
	sorted := make([]*model.ScoredPlace, len(places))
	copy(sorted, places)
	sort.Slice(sorted, func(i, j int) bool {
		si := preScore(sorted[i].Place)
		sj := preScore(sorted[j].Place)
		if si != sj {
			return si > sj
		}
		return sorted[i].Place.CanonicalID() < sorted[j].Place.CanonicalID()
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func preScore(p *model.Place) float64 {
	return p.Rating*1000 + float64(p.ReviewCount)
}
