package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"Meguri-App/internal/domain/model"
)

func place(name string, types []string, summary string) *model.Place {
	return &model.Place{
		ID:      "test:" + name,
		Name:    name,
		Types:   types,
		Summary: summary,
	}
}

func TestMatches_タイプとキーワード両方一致で最高適合度(t *testing.T) {
	p := place("Warszawa Craft Beer Bar", []string{"bar"}, "")

	result := Matches(p, model.GoalBars)

	assert.True(t, result.IsMatch)
	assert.Equal(t, 3.0, result.FitScore)
	assert.Contains(t, result.MatchedKeywords, "craft beer")
}

func TestMatches_タイプのみ一致(t *testing.T) {
	p := place("U Szwejka", []string{"pub"}, "")

	result := Matches(p, model.GoalBars)

	assert.True(t, result.IsMatch)
	assert.Equal(t, 2.0, result.FitScore)
	assert.Empty(t, result.MatchedKeywords)
}

func TestMatches_キーワードのみの弱い一致(t *testing.T) {
	// タイプは不一致だが名前にキーワードを含む
	p := place("Hidden Speakeasy", []string{"point_of_interest"}, "")

	result := Matches(p, model.GoalBars)

	assert.True(t, result.IsMatch)
	assert.Equal(t, 1.0, result.FitScore)
}

func TestMatches_完全不一致(t *testing.T) {
	p := place("Biblioteka Narodowa", []string{"library"}, "")

	result := Matches(p, model.GoalBars)

	assert.False(t, result.IsMatch)
	assert.Equal(t, 0.0, result.FitScore)
	assert.NotEmpty(t, result.Reason)
}

func TestMatches_未定義のゴール(t *testing.T) {
	p := place("Anywhere", []string{"bar"}, "")

	result := Matches(p, "Skydiving")

	assert.False(t, result.IsMatch)
	assert.Contains(t, result.Reason, "未定義のゴール")
}

func TestMatches_展望台除外ルール(t *testing.T) {
	// 「観光名所」タグの博物館は展望キーワードが無ければ除外
	indoor := place("Muzeum Narodowe", []string{"tourist_attraction", "museum"}, "")
	result := Matches(indoor, model.GoalViewpoints)
	assert.False(t, result.IsMatch)
	assert.Contains(t, result.Reason, "除外ルール")

	// 展望キーワードがあれば残る
	withView := place("Palace of Culture", []string{"tourist_attraction", "museum"}, "observation deck on the 30th floor")
	result = Matches(withView, model.GoalViewpoints)
	assert.True(t, result.IsMatch)
}

func TestMatches_コワーキング図書館除外(t *testing.T) {
	library := place("City Library", []string{"library"}, "")
	result := Matches(library, model.GoalCoworking)
	assert.False(t, result.IsMatch)

	workLibrary := place("Library Lab", []string{"library"}, "coworking floor with hot desk rental")
	result = Matches(workLibrary, model.GoalCoworking)
	assert.True(t, result.IsMatch)
}

func TestMatches_スーパーは市場から除外(t *testing.T) {
	super := place("Biedronka", []string{"supermarket"}, "")
	result := Matches(super, model.GoalMarkets)
	assert.False(t, result.IsMatch)

	hall := place("Hala Mirowska", []string{"market"}, "historic market hall")
	result = Matches(hall, model.GoalMarkets)
	assert.True(t, result.IsMatch)
	assert.Equal(t, 3.0, result.FitScore)
}

func TestMatches_決定性_同じ入力で同じ結果(t *testing.T) {
	p := place("Stor Cafe", []string{"cafe"}, "specialty coffee and pour over")

	first := Matches(p, model.GoalSpecialtyCoffee)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Matches(p, model.GoalSpecialtyCoffee))
	}
}

func TestIsNightlife(t *testing.T) {
	assert.True(t, IsNightlife(model.GoalBars))
	assert.False(t, IsNightlife(model.GoalMuseums))
	assert.False(t, IsNightlife("Unknown"))
}

func TestRuleFor_全ゴールにフォールバックタグがある(t *testing.T) {
	for _, goal := range KnownGoals() {
		r, ok := RuleFor(goal)
		assert.True(t, ok)
		assert.NotEmpty(t, r.OSMFallbackTags, "goal %s", goal)
		assert.NotEmpty(t, r.AllowedTypes, "goal %s", goal)
		assert.NotEmpty(t, r.Keywords, "goal %s", goal)
	}
}
