package service

import (
	"Meguri-App/internal/domain/helper"
	"Meguri-App/internal/domain/model"
)

// TrimResult は時間予算の適用結果
type TrimResult struct {
	Stops             []model.ItineraryStop
	TotalWalkMinutes  int
	TotalDwellMinutes int
}

// BudgetTrimmer はゴール網羅の保証・候補の絞り込み・時間予算の適用を行うサービス
type BudgetTrimmer interface {
	// Seed はゴールごとの最低確保数を保証しつつ最終候補プールを選定する。
	// 確保できなかったゴールは不足として報告する（黙って0件にはしない）
	Seed(buckets []*model.GoalBucket, minPerGoal, maxStops int) ([]*model.ScoredPlace, []model.GoalShortfall)
	// TrimToBudget は訪問順確定済みリストに時間予算を適用する
	TrimToBudget(origin model.LatLng, ordered []*model.ScoredPlace, requestedMinutes int, destinationPolicy string, destination *model.LatLng) TrimResult
	// SplitDays は訪問順確定済みリストを日数×1日あたり件数のバケットに分割する
	SplitDays(origin model.LatLng, ordered []*model.ScoredPlace, days, perDay int) TrimResult
}

type budgetTrimmer struct{}

func NewBudgetTrimmer() BudgetTrimmer {
	return &budgetTrimmer{}
}

// Seed は2段階で候補を選ぶ。
// 1. シード: 各ゴールからコンポジットスコア上位 minPerGoal 件（ゴール間の重複は正規キーで排除）。
//    0件になったゴールには未使用の最良候補を強制追加する
// 2. 追加枠: 残りの高スコア候補を上限件数まで詰める
func (t *budgetTrimmer) Seed(buckets []*model.GoalBucket, minPerGoal, maxStops int) ([]*model.ScoredPlace, []model.GoalShortfall) {
	used := make(map[string]bool)
	var selected []*model.ScoredPlace
	var shortfalls []model.GoalShortfall

	for _, bucket := range buckets {
		seeded := 0
		for _, sp := range bucket.Candidates {
			if seeded >= minPerGoal {
				break
			}
			key := sp.Place.CanonicalID()
			if used[key] {
				continue
			}
			used[key] = true
			selected = append(selected, sp)
			seeded++
		}

		// 他ゴールに全て取られた場合でも1件は必ず確保する
		if seeded == 0 {
			for _, sp := range bucket.Candidates {
				key := sp.Place.CanonicalID()
				if used[key] {
					continue
				}
				used[key] = true
				selected = append(selected, sp)
				seeded++
				break
			}
		}

		bucket.SeededCount = seeded
		if seeded < minPerGoal {
			shortfalls = append(shortfalls, model.GoalShortfall{
				Goal: bucket.Goal,
				Have: seeded,
				Need: minPerGoal,
			})
		}
	}

	// 追加枠: 未使用候補をスコア順に上限まで
	var leftovers []*model.ScoredPlace
	for _, bucket := range buckets {
		for _, sp := range bucket.Candidates {
			if !used[sp.Place.CanonicalID()] {
				leftovers = append(leftovers, sp)
			}
		}
	}
	helper.SortByComposite(leftovers)
	for _, sp := range leftovers {
		if len(selected) >= maxStops {
			break
		}
		key := sp.Place.CanonicalID()
		if used[key] {
			continue
		}
		used[key] = true
		selected = append(selected, sp)
	}

	if len(selected) > maxStops {
		selected = selected[:maxStops]
	}
	return selected, shortfalls
}

// TrimToBudget は順序を保ったまま先頭から徒歩+滞在時間を積算し、
// 予算を超える直前で打ち切る。周回・固定目的地の場合は戻り徒歩も予算に含め、
// 収まらなければ末尾から削る
func (t *budgetTrimmer) TrimToBudget(origin model.LatLng, ordered []*model.ScoredPlace, requestedMinutes int, destinationPolicy string, destination *model.LatLng) TrimResult {
	var stops []model.ItineraryStop
	walkTotal, dwellTotal := 0, 0
	current := origin

	for _, sp := range ordered {
		walk := helper.WalkMinutes(current, sp.Place.Location)
		dwell := model.DwellMinutesFor(sp.Goal)
		if walkTotal+dwellTotal+walk+dwell > requestedMinutes {
			break
		}
		stops = append(stops, model.ItineraryStop{
			Place:                   sp,
			WalkMinutesFromPrevious: walk,
			DwellMinutes:            dwell,
		})
		walkTotal += walk
		dwellTotal += dwell
		current = sp.Place.Location
	}

	// 戻り徒歩（周回は出発地点、固定は指定地点）が収まるまで末尾を削る
	endPoint := t.endPointFor(origin, destinationPolicy, destination)
	if endPoint != nil {
		for len(stops) > 0 {
			last := stops[len(stops)-1]
			returnWalk := helper.WalkMinutes(last.Place.Place.Location, *endPoint)
			if walkTotal+dwellTotal+returnWalk <= requestedMinutes {
				walkTotal += returnWalk
				break
			}
			stops = stops[:len(stops)-1]
			walkTotal -= last.WalkMinutesFromPrevious
			dwellTotal -= last.DwellMinutes
		}
	}

	return TrimResult{Stops: stops, TotalWalkMinutes: walkTotal, TotalDwellMinutes: dwellTotal}
}

// SplitDays は時間予算の代わりに固定サイズの日別バケットに分割する。
// 各日の最初のスポットは出発地点からの徒歩時間で計算する。
// 候補が足りない場合はあるだけで止める（埋め草は決して作らない）
func (t *budgetTrimmer) SplitDays(origin model.LatLng, ordered []*model.ScoredPlace, days, perDay int) TrimResult {
	limit := days * perDay
	if len(ordered) > limit {
		ordered = ordered[:limit]
	}

	var stops []model.ItineraryStop
	walkTotal, dwellTotal := 0, 0
	current := origin

	for i, sp := range ordered {
		day := i/perDay + 1
		if i%perDay == 0 {
			// 日をまたぐ移動は行程に含めず、毎朝出発地点から再開する
			current = origin
		}
		walk := helper.WalkMinutes(current, sp.Place.Location)
		dwell := model.DwellMinutesFor(sp.Goal)
		stops = append(stops, model.ItineraryStop{
			Place:                   sp,
			WalkMinutesFromPrevious: walk,
			DwellMinutes:            dwell,
			Day:                     day,
		})
		walkTotal += walk
		dwellTotal += dwell
		current = sp.Place.Location
	}

	return TrimResult{Stops: stops, TotalWalkMinutes: walkTotal, TotalDwellMinutes: dwellTotal}
}

func (t *budgetTrimmer) endPointFor(origin model.LatLng, policy string, destination *model.LatLng) *model.LatLng {
	switch policy {
	case model.DestinationLoop:
		return &origin
	case model.DestinationFixed:
		return destination
	default:
		return nil
	}
}
