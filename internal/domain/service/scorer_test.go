package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"Meguri-App/internal/domain/model"
	"Meguri-App/internal/domain/rule"
)

var testOrigin = model.LatLng{Lat: 52.2319, Lng: 21.0067} // ワルシャワ中心部

func scoredBar(name string, rating float64, reviews int, lat, lng float64) *model.Place {
	return &model.Place{
		ID:          "test:" + name,
		Name:        name,
		Location:    model.LatLng{Lat: lat, Lng: lng},
		Types:       []string{"bar"},
		Rating:      rating,
		ReviewCount: reviews,
	}
}

func TestScore_基本式の再現(t *testing.T) {
	scorer := NewPlaceScorer(model.DefaultScoringConfig())
	// 出発地点と同一座標・レビュー0 → base = 2*rating のみ、距離ペナルティ0
	p := scoredBar("Plain Bar", 4.0, 0, testOrigin.Lat, testOrigin.Lng)

	sp := scorer.Score(p, model.GoalBars, rule.Matches(p, model.GoalBars), testOrigin)

	// base=8.0, fit=2 (タイプのみ), vibe=1.0 (基準値), keyword/chain/distance=0
	assert.InDelta(t, 8.0, sp.Breakdown.Base, 1e-9)
	assert.Equal(t, 2.0, sp.Breakdown.Fit)
	assert.Equal(t, 1.0, sp.Breakdown.Vibe)
	assert.InDelta(t, 8.0+1.5*3.0, sp.Composite, 1e-9)
}

func TestScore_キーワードボーナス(t *testing.T) {
	scorer := NewPlaceScorer(model.DefaultScoringConfig())
	p := scoredBar("Craft Beer Heaven", 4.0, 0, testOrigin.Lat, testOrigin.Lng)

	sp := scorer.Score(p, model.GoalBars, rule.Matches(p, model.GoalBars), testOrigin)

	assert.Equal(t, 2.0, sp.Breakdown.KeywordBonus)
	assert.Equal(t, 3.0, sp.Breakdown.Fit)
	// "craft"は正の雰囲気手がかりにも該当する
	assert.Equal(t, 1.5, sp.Breakdown.Vibe)
}

func TestScore_チェーン店ペナルティ(t *testing.T) {
	scorer := NewPlaceScorer(model.DefaultScoringConfig())
	chain := scoredBar("Starbucks Reserve", 4.2, 100, testOrigin.Lat, testOrigin.Lng)
	indie := scoredBar("Nieznany Bar", 4.2, 100, testOrigin.Lat, testOrigin.Lng)

	chainScore := scorer.Score(chain, model.GoalBars, rule.Matches(chain, model.GoalBars), testOrigin)
	indieScore := scorer.Score(indie, model.GoalBars, rule.Matches(indie, model.GoalBars), testOrigin)

	assert.Equal(t, 0.8, chainScore.Breakdown.ChainPenalty)
	assert.Equal(t, 0.0, indieScore.Breakdown.ChainPenalty)
	// チェーン店は雰囲気スコアも下がるため差はペナルティ以上になる
	assert.Less(t, chainScore.Composite, indieScore.Composite)
}

func TestScore_距離ペナルティの上限(t *testing.T) {
	scorer := NewPlaceScorer(model.DefaultScoringConfig())
	// 約10km離れた地点 → ペナルティは 0.5*4 = 2.0 で頭打ち
	far := scoredBar("Far Bar", 4.0, 10, testOrigin.Lat+0.09, testOrigin.Lng)

	sp := scorer.Score(far, model.GoalBars, rule.Matches(far, model.GoalBars), testOrigin)

	assert.InDelta(t, 2.0, sp.Breakdown.DistancePenalty, 1e-9)
}

func TestScore_レビュー数の対数効果(t *testing.T) {
	scorer := NewPlaceScorer(model.DefaultScoringConfig())
	few := scoredBar("Few Reviews", 4.0, 10, testOrigin.Lat, testOrigin.Lng)
	many := scoredBar("Many Reviews", 4.0, 10000, testOrigin.Lat, testOrigin.Lng)

	fewScore := scorer.Score(few, model.GoalBars, rule.Matches(few, model.GoalBars), testOrigin)
	manyScore := scorer.Score(many, model.GoalBars, rule.Matches(many, model.GoalBars), testOrigin)

	// レビュー数1000倍でもbase差は 0.5*ln(10001/11) ≒ 3.4 に留まる
	assert.Greater(t, manyScore.Breakdown.Base, fewScore.Breakdown.Base)
	assert.Less(t, manyScore.Breakdown.Base-fewScore.Breakdown.Base, 4.0)
}

func TestScore_決定性(t *testing.T) {
	scorer := NewPlaceScorer(model.DefaultScoringConfig())
	p := scoredBar("Deterministic Bar", 4.5, 321, 52.24, 21.02)
	match := rule.Matches(p, model.GoalBars)

	first := scorer.Score(p, model.GoalBars, match, testOrigin)
	for i := 0; i < 5; i++ {
		again := scorer.Score(p, model.GoalBars, match, testOrigin)
		assert.Equal(t, first.Composite, again.Composite)
		assert.Equal(t, first.Breakdown, again.Breakdown)
	}
}
