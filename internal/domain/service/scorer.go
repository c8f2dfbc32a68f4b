package service

import (
	"math"
	"strings"

	"Meguri-App/internal/domain/helper"
	"Meguri-App/internal/domain/model"
	"Meguri-App/internal/domain/rule"
)

// PlaceScorer は (スポット, ゴール) のコンポジットスコアを計算するサービス。
// 係数は設定として注入され、既定値は挙動互換のために固定されている
type PlaceScorer interface {
	Score(place *model.Place, goal string, match rule.MatchResult, origin model.LatLng) *model.ScoredPlace
}

type placeScorer struct {
	config model.ScoringConfig
}

func NewPlaceScorer(config model.ScoringConfig) PlaceScorer {
	return &placeScorer{config: config}
}

// positiveVibeCues は「雰囲気」スコアを押し上げる手がかり（名前・紹介文に対して照合）
var positiveVibeCues = []string{
	"rooftop",
	"artisan",
	"panoramic",
	"third-wave",
	"third wave",
	"hidden",
	"historic",
	"independent",
	"craft",
	"award",
	"local favorite",
}

// negativeVibeCues は「雰囲気」スコアを下げる手がかり
var negativeVibeCues = []string{
	"tourist trap",
	"chain",
	"souvenir",
	"franchise",
	"fast food",
}

// chainBrands は既知のチェーンブランド名（部分一致で判定）
var chainBrands = []string{
	"starbucks",
	"mcdonald",
	"costa coffee",
	"kfc",
	"burger king",
	"subway",
	"dunkin",
	"pizza hut",
	"carrefour",
	"biedronka",
	"zabka",
	"żabka",
	"lidl",
	"tesco",
}

// Score は1つの (スポット, ゴール) 組のコンポジットスコアを計算する。
// 純粋関数であり外部呼び出しを行わない
func (s *placeScorer) Score(place *model.Place, goal string, match rule.MatchResult, origin model.LatLng) *model.ScoredPlace {
	base := s.config.RatingWeight*place.Rating +
		s.config.ReviewLogWeight*math.Log(float64(place.ReviewCount)+1)

	vibe := vibeScore(place)
	isChain := isChainBrand(place)

	var keywordBonus float64
	if len(match.MatchedKeywords) > 0 {
		keywordBonus = s.config.KeywordBonus
	}

	var chainPenalty float64
	if isChain {
		chainPenalty = s.config.ChainPenalty
	}

	distKm := helper.DistanceKm(origin, place.Location)
	distancePenalty := s.config.DistancePenaltyPerKm * math.Min(distKm, s.config.DistancePenaltyCapKm)

	composite := base +
		s.config.FitVibeWeight*(match.FitScore+vibe) +
		keywordBonus - chainPenalty - distancePenalty

	return &model.ScoredPlace{
		Place:     place,
		Goal:      goal,
		Composite: composite,
		Breakdown: model.ScoreBreakdown{
			Base:            base,
			Fit:             match.FitScore,
			Vibe:            vibe,
			KeywordBonus:    keywordBonus,
			ChainPenalty:    chainPenalty,
			DistancePenalty: distancePenalty,
		},
		MatchedKeywords: match.MatchedKeywords,
	}
}

// vibeScore は名前と紹介文のテキストヒューリスティックで「雰囲気」を見積もる。
// 基準値1.0から正の手がかりで+0.5、負の手がかりで-0.75し、[0,3]に収める
func vibeScore(place *model.Place) float64 {
	text := strings.ToLower(place.Name + " " + place.Summary)
	score := 1.0
	for _, cue := range positiveVibeCues {
		if strings.Contains(text, cue) {
			score += 0.5
		}
	}
	for _, cue := range negativeVibeCues {
		if strings.Contains(text, cue) {
			score -= 0.75
		}
	}
	if isChainBrand(place) {
		score -= 0.75
	}
	return math.Max(0, math.Min(3, score))
}

// isChainBrand は既知のチェーンブランド名との部分一致を判定する
func isChainBrand(place *model.Place) bool {
	name := strings.ToLower(place.Name)
	for _, brand := range chainBrands {
		if strings.Contains(name, brand) {
			return true
		}
	}
	return false
}
