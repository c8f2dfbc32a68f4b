package service

import (
	"Meguri-App/internal/domain/helper"
	"Meguri-App/internal/domain/model"
	"Meguri-App/internal/domain/rule"
)

// GoalMatcher は生候補をゴールごとに選別してスコア順のバケットを作るサービス
type GoalMatcher interface {
	// Match はルール判定とスコアリングを適用したバケットを返す。
	// strictの場合、キーワードのみの弱い一致（適合度1）は除外する
	Match(goal string, candidates []*model.Place, origin model.LatLng, strict bool) *model.GoalBucket
}

type goalMatcher struct {
	scorer PlaceScorer
}

func NewGoalMatcher(scorer PlaceScorer) GoalMatcher {
	return &goalMatcher{scorer: scorer}
}

func (m *goalMatcher) Match(goal string, candidates []*model.Place, origin model.LatLng, strict bool) *model.GoalBucket {
	bucket := &model.GoalBucket{
		Goal:     goal,
		RawCount: len(candidates),
	}

	for _, p := range candidates {
		// 営業していない店舗は判定以前に除外する
		if p.BusinessStatus != "" && p.BusinessStatus != model.BusinessStatusOperational {
			bucket.Dropped = append(bucket.Dropped, model.DroppedCandidate{
				Name:   p.Name,
				Reason: "営業状態: " + p.BusinessStatus,
			})
			continue
		}

		result := rule.Matches(p, goal)
		if !result.IsMatch {
			bucket.Dropped = append(bucket.Dropped, model.DroppedCandidate{
				Name:   p.Name,
				Reason: result.Reason,
			})
			continue
		}
		if strict && result.FitScore < 2 {
			bucket.Dropped = append(bucket.Dropped, model.DroppedCandidate{
				Name:   p.Name,
				Reason: "厳格モード: キーワードのみの弱い一致",
			})
			continue
		}

		bucket.Candidates = append(bucket.Candidates, m.scorer.Score(p, goal, result, origin))
	}

	bucket.MatchedCount = len(bucket.Candidates)
	helper.SortByComposite(bucket.Candidates)
	return bucket
}
