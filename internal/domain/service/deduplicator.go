package service

import (
	"sort"

	"Meguri-App/internal/domain/helper"
	"Meguri-App/internal/domain/model"
)

// 正規キーが異なっても同一店舗とみなす距離の閾値（名前の正規形が等しい場合のみ）
const fuzzyMergeDistanceKm = 0.05

// Deduplicator は複数ソースから集めた候補の重複排除を行うサービス
type Deduplicator interface {
	// Dedupe は候補リストを正規キーでマージして返す（順序は正規キー昇順で決定的）
	Dedupe(places []*model.Place) []*model.Place
	// DedupeSelection は選定済み候補の全体からゴールをまたいだ同一店舗を1件に束ねる
	DedupeSelection(selected []*model.ScoredPlace) []*model.ScoredPlace
	// CollapseConsecutive は構築済み行程内の連続する重複スポットを除去する
	CollapseConsecutive(stops []model.ItineraryStop) []model.ItineraryStop
}

type deduplicator struct{}

func NewDeduplicator() Deduplicator {
	return &deduplicator{}
}

// Dedupe は2段階で重複を排除する。
// 1. 正規キーの完全一致でマージ
// 2. 名前の正規形が等しく約50m以内の候補をファジーマージ
// いずれもレビュー数が多い方（同数なら評価が高い方）を残す
func (d *deduplicator) Dedupe(places []*model.Place) []*model.Place {
	byCanonical := make(map[string]*model.Place)
	for _, p := range places {
		key := p.CanonicalID()
		if existing, ok := byCanonical[key]; ok {
			byCanonical[key] = preferPlace(existing, p)
		} else {
			byCanonical[key] = p
		}
	}

	// 決定的な順序にしてからファジーマージを行う
	keys := make([]string, 0, len(byCanonical))
	for k := range byCanonical {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var merged []*model.Place
	for _, key := range keys {
		candidate := byCanonical[key]
		absorbed := false
		for i, kept := range merged {
			if kept.NormalizedName() == candidate.NormalizedName() &&
				helper.DistanceKm(kept.Location, candidate.Location) <= fuzzyMergeDistanceKm {
				merged[i] = preferPlace(kept, candidate)
				absorbed = true
				break
			}
		}
		if !absorbed {
			merged = append(merged, candidate)
		}
	}
	return merged
}

// DedupeSelection はゴール別の選定を通り抜けた同一店舗の重複を排除する。
// 別ゴールで別の外部IDから拾われた同じ店（名前の正規形が等しく約50m以内）を
// レビュー数の多い方のレコードとゴールタグに束ねる
func (d *deduplicator) DedupeSelection(selected []*model.ScoredPlace) []*model.ScoredPlace {
	var result []*model.ScoredPlace
	for _, sp := range selected {
		absorbed := false
		for i, kept := range result {
			if sameRealWorldPlace(kept.Place, sp.Place) {
				if preferPlace(kept.Place, sp.Place) == sp.Place {
					result[i] = sp
				}
				absorbed = true
				break
			}
		}
		if !absorbed {
			result = append(result, sp)
		}
	}
	return result
}

// CollapseConsecutive は隣り合うスポットが同一店舗の場合に後者を取り除く。
// 上流のマージを通り抜けた近似重複への防波堤
func (d *deduplicator) CollapseConsecutive(stops []model.ItineraryStop) []model.ItineraryStop {
	if len(stops) < 2 {
		return stops
	}
	result := stops[:1]
	for _, stop := range stops[1:] {
		prev := result[len(result)-1]
		if sameRealWorldPlace(prev.Place.Place, stop.Place.Place) {
			continue
		}
		result = append(result, stop)
	}
	return result
}

// sameRealWorldPlace は2つのスポットが実世界で同一かを判定する
func sameRealWorldPlace(a, b *model.Place) bool {
	if a.CanonicalID() == b.CanonicalID() {
		return true
	}
	return a.NormalizedName() == b.NormalizedName() &&
		helper.DistanceKm(a.Location, b.Location) <= fuzzyMergeDistanceKm
}

// preferPlace はマージ時に残す方を選ぶ。レビュー数優先、同数なら評価値。
// 片方にしかない詳細フィールドは残す方に補完する
func preferPlace(a, b *model.Place) *model.Place {
	winner, loser := a, b
	if b.ReviewCount > a.ReviewCount ||
		(b.ReviewCount == a.ReviewCount && b.Rating > a.Rating) {
		winner, loser = b, a
	}
	if winner.Summary == "" {
		winner.Summary = loser.Summary
	}
	if len(winner.Types) == 0 {
		winner.Types = loser.Types
	}
	if len(winner.PhotoRefs) == 0 {
		winner.PhotoRefs = loser.PhotoRefs
	}
	return winner
}
