package model

// GoalConstants アプリケーションで使用するゴール（興味カテゴリ）の定数
const (
	GoalBars            = "Bars"
	GoalMuseums         = "Museums"
	GoalSpecialtyCoffee = "Specialty coffee"
	GoalViewpoints      = "Viewpoints"
	GoalCoworking       = "Coworking"
	GoalParks           = "Parks & nature"
	GoalStreetFood      = "Street food"
	GoalGalleries       = "Galleries & art"
	GoalLocalFood       = "Local food"
	GoalMarkets         = "Markets"
)

// ScenarioConstants リクエストのシナリオ定数
const (
	ScenarioOnsite   = "onsite"   // 現地で時間内に歩き切るモード
	ScenarioPlanning = "planning" // 複数日の旅行計画モード
)

// DestinationPolicyConstants 目的地ポリシーの定数
const (
	DestinationNone  = "none"  // 最後のスポットで終了
	DestinationLoop  = "loop"  // 出発地点に戻る周回ルート
	DestinationFixed = "fixed" // 指定地点で終了
)

// GoalNameMap はゴールIDから日本語名へのマッピング（ログ表示用）
var GoalNameMap = map[string]string{
	GoalBars:            "バー巡り",
	GoalMuseums:         "博物館巡り",
	GoalSpecialtyCoffee: "スペシャルティコーヒー",
	GoalViewpoints:      "展望スポット",
	GoalCoworking:       "コワーキング",
	GoalParks:           "公園と自然",
	GoalStreetFood:      "屋台グルメ",
	GoalGalleries:       "ギャラリーとアート",
	GoalLocalFood:       "地元の食事処",
	GoalMarkets:         "市場巡り",
}

// GetGoalJapaneseName はゴールIDから日本語名を取得する
func GetGoalJapaneseName(goal string) string {
	if name, ok := GoalNameMap[goal]; ok {
		return name
	}
	return goal // デフォルトはそのまま返す
}

// DwellMinutesMap はゴールごとの標準滞在時間（分）。
// さっと立ち寄る系は10〜20分、食事は75分、博物館は90分を目安とする
var DwellMinutesMap = map[string]int{
	GoalBars:            45,
	GoalMuseums:         90,
	GoalSpecialtyCoffee: 30,
	GoalViewpoints:      15,
	GoalCoworking:       60,
	GoalParks:           40,
	GoalStreetFood:      30,
	GoalGalleries:       60,
	GoalLocalFood:       75,
	GoalMarkets:         40,
}

// DefaultDwellMinutes はゴールが不明な場合の滞在時間
const DefaultDwellMinutes = 30

// DwellMinutesFor はゴールに応じた滞在時間を取得する
func DwellMinutesFor(goal string) int {
	if m, ok := DwellMinutesMap[goal]; ok {
		return m
	}
	return DefaultDwellMinutes
}

// ScoringConfig はコンポジットスコアの係数設定。
// 値は経験的に調整された定数であり、挙動の互換性を保つため既定値を変更しないこと
type ScoringConfig struct {
	RatingWeight         float64 // base項: 評価値の重み
	ReviewLogWeight      float64 // base項: ln(レビュー数+1)の重み
	FitVibeWeight        float64 // fit+vibeの重み
	KeywordBonus         float64 // キーワード一致ボーナス
	ChainPenalty         float64 // チェーン店ペナルティ
	DistancePenaltyPerKm float64 // 出発地点からの距離ペナルティ（/km）
	DistancePenaltyCapKm float64 // 距離ペナルティの上限距離
}

// DefaultScoringConfig は既定のスコアリング係数を返す
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		RatingWeight:         2.0,
		ReviewLogWeight:      0.5,
		FitVibeWeight:        1.5,
		KeywordBonus:         2.0,
		ChainPenalty:         0.8,
		DistancePenaltyPerKm: 0.5,
		DistancePenaltyCapKm: 4.0,
	}
}

// 収集・選定まわりの既定値
const (
	DefaultMinPerGoal      = 2   // ゴールごとの最低確保数
	DefaultTargetRaw       = 120 // 全ゴール合計の生候補数の上限
	DefaultMaxStops        = 12  // 最終ルートのスポット数上限
	DefaultPlacesPerDay    = 7   // 複数日モードの1日あたりスポット数
	DefaultEnrichLimit     = 50  // 詳細取得の上限件数
	DefaultKeywordSearches = 3   // ゴールごとのキーワード検索数の上限
)

// SearchRadiiMeters は段階的に広げる検索半径（m）
var SearchRadiiMeters = []int{5000, 15000}
