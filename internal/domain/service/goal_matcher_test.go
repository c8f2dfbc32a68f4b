package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"Meguri-App/internal/domain/model"
)

func matcherPlace(name string, types []string, summary, status string) *model.Place {
	return &model.Place{
		ID:             "test:" + name,
		Name:           name,
		Location:       model.LatLng{Lat: 52.23, Lng: 21.01},
		Types:          types,
		Rating:         4.0,
		ReviewCount:    100,
		Summary:        summary,
		BusinessStatus: status,
	}
}

func newTestMatcher() GoalMatcher {
	return NewGoalMatcher(NewPlaceScorer(model.DefaultScoringConfig()))
}

func TestMatch_バケットの統計情報(t *testing.T) {
	m := newTestMatcher()
	candidates := []*model.Place{
		matcherPlace("Good Bar", []string{"bar"}, "", ""),
		matcherPlace("Some Library", []string{"library"}, "", ""),
		matcherPlace("Another Pub", []string{"pub"}, "", ""),
	}

	bucket := m.Match(model.GoalBars, candidates, testOrigin, false)

	assert.Equal(t, 3, bucket.RawCount)
	assert.Equal(t, 2, bucket.MatchedCount)
	assert.Len(t, bucket.Dropped, 1)
	assert.Equal(t, "Some Library", bucket.Dropped[0].Name)
}

func TestMatch_営業していない店舗の除外(t *testing.T) {
	m := newTestMatcher()
	candidates := []*model.Place{
		matcherPlace("Open Bar", []string{"bar"}, "", "OPERATIONAL"),
		matcherPlace("Closed Bar", []string{"bar"}, "", "CLOSED_PERMANENTLY"),
		matcherPlace("Unknown Bar", []string{"bar"}, "", ""), // 状態不明は除外しない
	}

	bucket := m.Match(model.GoalBars, candidates, testOrigin, false)

	assert.Equal(t, 2, bucket.MatchedCount)
	assert.Len(t, bucket.Dropped, 1)
	assert.Contains(t, bucket.Dropped[0].Reason, "営業状態")
}

func TestMatch_厳格モードで弱い一致を除外(t *testing.T) {
	m := newTestMatcher()
	// タイプ不一致だがキーワード一致 → 適合度1の弱い一致
	weak := matcherPlace("Secret Speakeasy", []string{"point_of_interest"}, "", "")
	strong := matcherPlace("Proper Bar", []string{"bar"}, "", "")
	candidates := []*model.Place{weak, strong}

	relaxed := m.Match(model.GoalBars, candidates, testOrigin, false)
	strict := m.Match(model.GoalBars, candidates, testOrigin, true)

	assert.Equal(t, 2, relaxed.MatchedCount)
	assert.Equal(t, 1, strict.MatchedCount)
	assert.Contains(t, strict.Dropped[0].Reason, "厳格モード")
}

func TestMatch_スコア降順で並ぶ(t *testing.T) {
	m := newTestMatcher()
	low := matcherPlace("Low Bar", []string{"bar"}, "", "")
	low.Rating = 3.0
	high := matcherPlace("High Craft Beer Bar", []string{"bar"}, "", "")
	high.Rating = 4.8

	bucket := m.Match(model.GoalBars, []*model.Place{low, high}, testOrigin, false)

	assert.Equal(t, "High Craft Beer Bar", bucket.Candidates[0].Place.Name)
	assert.GreaterOrEqual(t, bucket.Candidates[0].Composite, bucket.Candidates[1].Composite)
}
