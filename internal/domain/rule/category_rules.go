// Package rule はゴールごとの許可タイプ・キーワード・除外ルールのテーブルを提供する。
// 判定関数は純粋かつ全域的で、どの (スポット, ゴール) の組にも決定的な結果を返す。
package rule

import (
	"strings"

	"Meguri-App/internal/domain/model"
)

// MatchResult は (スポット, ゴール) 判定の結果
type MatchResult struct {
	IsMatch         bool
	MatchedKeywords []string
	FitScore        float64 // 0〜3: カテゴリルールとの適合度
	Reason          string  // 不一致の場合の理由（デバッグ用）
}

// ExclusionRule は順に評価される除外述語。trueを返すと候補を落とす
type ExclusionRule struct {
	Name     string
	Excludes func(p *model.Place, matchedKeywords []string) bool
}

// GoalRule は1ゴール分のルールレコード
type GoalRule struct {
	Goal            string
	AllowedTypes    []string        // プロバイダのタクソノミータグ
	Keywords        []string        // テキスト検索・一致判定に使うキーワード（重要度順）
	OSMFallbackTags []string        // オープンデータへのフォールバック検索タグ
	Exclusions      []ExclusionRule // 順に評価される除外ルール
	Nightlife       bool            // ルート最終盤に回すカテゴリか
}

// goalRules はゴール名からルールへのテーブル
var goalRules = map[string]*GoalRule{
	model.GoalBars: {
		Goal:            model.GoalBars,
		AllowedTypes:    []string{"bar", "night_club", "nightclub", "pub"},
		Keywords:        []string{"cocktail bar", "craft beer", "wine bar", "speakeasy"},
		OSMFallbackTags: []string{"amenity=bar", "amenity=pub", "amenity=nightclub"},
		Nightlife:       true,
		Exclusions:      []ExclusionRule{
			{
				// レストラン主体の店はバー目的から外す（バー系キーワードがあれば残す）
				Name: "restaurant_without_bar_keyword",
				Excludes: func(p *model.Place, kws []string) bool {
					return p.HasType([]string{"restaurant", "meal_takeaway"}) &&
						!p.HasType([]string{"bar", "night_club", "pub"}) && len(kws) == 0
				},
			},
		},
	},
	model.GoalMuseums: {
		Goal:            model.GoalMuseums,
		AllowedTypes:    []string{"museum"},
		Keywords:        []string{"museum", "exhibition", "history museum", "science museum"},
		OSMFallbackTags: []string{"tourism=museum"},
		Exclusions:      []ExclusionRule{
			{
				// 土産物店が"museum shop"等で引っかかるケースを除外
				Name: "gift_shop",
				Excludes: func(p *model.Place, kws []string) bool {
					return p.HasType([]string{"store", "shopping_mall"}) && !p.HasType([]string{"museum"})
				},
			},
		},
	},
	model.GoalSpecialtyCoffee: {
		Goal:            model.GoalSpecialtyCoffee,
		AllowedTypes:    []string{"cafe", "coffee_shop", "coffee"},
		Keywords:        []string{"specialty coffee", "third wave", "roastery", "pour over"},
		OSMFallbackTags: []string{"amenity=cafe", "shop=coffee"},
		Exclusions:      []ExclusionRule{
			{
				// ベーカリーやファストフードのカフェタグはコーヒー系キーワードが無ければ落とす
				Name: "bakery_or_fastfood",
				Excludes: func(p *model.Place, kws []string) bool {
					return p.HasType([]string{"bakery", "fast_food_restaurant", "meal_takeaway"}) && len(kws) == 0
				},
			},
		},
	},
	model.GoalViewpoints: {
		Goal:            model.GoalViewpoints,
		AllowedTypes:    []string{"tourist_attraction", "observation_deck", "viewpoint"},
		Keywords:        []string{"viewpoint", "panorama", "observation deck", "rooftop view", "lookout"},
		OSMFallbackTags: []string{"tourism=viewpoint"},
		Exclusions:      []ExclusionRule{
			{
				// 展望キーワードの無い博物館・劇場・商業施設は「観光名所」タグでも除外
				Name: "indoor_attraction_without_view_keyword",
				Excludes: func(p *model.Place, kws []string) bool {
					return p.HasType([]string{"museum", "performing_arts_theater", "theatre", "shopping_mall", "store"}) && len(kws) == 0
				},
			},
		},
	},
	model.GoalCoworking: {
		Goal:            model.GoalCoworking,
		AllowedTypes:    []string{"coworking_space", "shared_office", "coworking"},
		Keywords:        []string{"coworking", "hot desk", "shared office", "work cafe"},
		OSMFallbackTags: []string{"amenity=coworking_space", "office=coworking"},
		Exclusions:      []ExclusionRule{
			{
				// 図書館・礼拝所はコワーキングキーワードが無い限り不適合
				Name: "library_or_worship_without_keyword",
				Excludes: func(p *model.Place, kws []string) bool {
					return p.HasType([]string{"library", "place_of_worship", "church"}) && len(kws) == 0
				},
			},
		},
	},
	model.GoalParks: {
		Goal:            model.GoalParks,
		AllowedTypes:    []string{"park", "botanical_garden", "garden"},
		Keywords:        []string{"park", "garden", "riverside", "botanical"},
		OSMFallbackTags: []string{"leisure=park", "leisure=garden"},
	},
	model.GoalStreetFood: {
		Goal:            model.GoalStreetFood,
		AllowedTypes:    []string{"meal_takeaway", "food_court", "street_food", "fast_food"},
		Keywords:        []string{"street food", "food truck", "food hall", "stall"},
		OSMFallbackTags: []string{"amenity=fast_food", "amenity=food_court"},
		Exclusions:      []ExclusionRule{
			{
				// 大手ファストフードタイプのみでキーワード無しは屋台グルメとして扱わない
				Name: "plain_fastfood",
				Excludes: func(p *model.Place, kws []string) bool {
					return p.HasType([]string{"fast_food_restaurant"}) && len(kws) == 0
				},
			},
		},
	},
	model.GoalGalleries: {
		Goal:            model.GoalGalleries,
		AllowedTypes:    []string{"art_gallery", "gallery"},
		Keywords:        []string{"art gallery", "contemporary art", "exhibition space", "atelier"},
		OSMFallbackTags: []string{"tourism=gallery"},
		Exclusions:      []ExclusionRule{
			{
				// 額縁店・画材店の"gallery"タグ誤爆を除外
				Name: "art_supply_store",
				Excludes: func(p *model.Place, kws []string) bool {
					return p.HasType([]string{"home_goods_store", "store"}) && !p.HasType([]string{"art_gallery"}) && len(kws) == 0
				},
			},
		},
	},
	model.GoalLocalFood: {
		Goal:            model.GoalLocalFood,
		AllowedTypes:    []string{"restaurant"},
		Keywords:        []string{"traditional", "local cuisine", "bistro", "family owned"},
		OSMFallbackTags: []string{"amenity=restaurant"},
	},
	model.GoalMarkets: {
		Goal:            model.GoalMarkets,
		AllowedTypes:    []string{"market", "marketplace", "grocery_store", "supermarket"},
		Keywords:        []string{"market hall", "farmers market", "bazaar", "flea market"},
		OSMFallbackTags: []string{"amenity=marketplace"},
		Exclusions:      []ExclusionRule{
			{
				// キーワードの無い通常のスーパーは市場巡りの対象外
				Name: "plain_supermarket",
				Excludes: func(p *model.Place, kws []string) bool {
					return p.HasType([]string{"supermarket", "grocery_store"}) && !p.HasType([]string{"market"}) && len(kws) == 0
				},
			},
		},
	},
}

// RuleFor はゴールのルールを取得する
func RuleFor(goal string) (*GoalRule, bool) {
	r, ok := goalRules[goal]
	return r, ok
}

// KnownGoals は定義済みゴールの一覧を返す
func KnownGoals() []string {
	goals := make([]string, 0, len(goalRules))
	for g := range goalRules {
		goals = append(goals, g)
	}
	return goals
}

// IsNightlife はルート最終盤に回すべきゴールかを判定する
func IsNightlife(goal string) bool {
	if r, ok := goalRules[goal]; ok {
		return r.Nightlife
	}
	return false
}

// Matches は候補がゴールを満たすかを判定する。
// 純粋関数であり、同じ入力には常に同じ結果を返す
func Matches(p *model.Place, goal string) MatchResult {
	r, ok := goalRules[goal]
	if !ok {
		return MatchResult{Reason: "未定義のゴール: " + goal}
	}

	matched := matchedKeywords(p, r.Keywords)
	typeMatch := p.HasType(r.AllowedTypes)

	// 除外ルールを順に評価（最初にヒットしたものが理由になる）
	for _, ex := range r.Exclusions {
		if ex.Excludes(p, matched) {
			return MatchResult{
				MatchedKeywords: matched,
				Reason:          "除外ルール: " + ex.Name,
			}
		}
	}

	switch {
	case typeMatch && len(matched) > 0:
		return MatchResult{IsMatch: true, MatchedKeywords: matched, FitScore: 3}
	case typeMatch:
		return MatchResult{IsMatch: true, FitScore: 2}
	case len(matched) > 0:
		// タイプ不一致でもキーワードが強く一致すれば弱い適合として扱う
		return MatchResult{IsMatch: true, MatchedKeywords: matched, FitScore: 1}
	default:
		return MatchResult{Reason: "タイプ・キーワードともに不一致"}
	}
}

// matchedKeywords は名前と紹介文に含まれるキーワードを抽出する
func matchedKeywords(p *model.Place, keywords []string) []string {
	text := strings.ToLower(p.Name + " " + p.Summary)
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}
