package model

import "time"

// ScoreBreakdown はコンポジットスコアの内訳（レスポンスで監査可能にする）
type ScoreBreakdown struct {
	Base            float64 `json:"base" firestore:"base"`
	Fit             float64 `json:"fit" firestore:"fit"`
	Vibe            float64 `json:"vibe" firestore:"vibe"`
	KeywordBonus    float64 `json:"keyword_bonus" firestore:"keyword_bonus"`
	ChainPenalty    float64 `json:"chain_penalty" firestore:"chain_penalty"`
	DistancePenalty float64 `json:"distance_penalty" firestore:"distance_penalty"`
}

// ScoredPlace は特定のゴールに対してスコア付けされた候補。
// 同じスポットでもゴールが違えばコンポジットスコアは異なる
type ScoredPlace struct {
	Place           *Place         `json:"place"`
	Goal            string         `json:"goal"`
	Composite       float64        `json:"composite"`
	Breakdown       ScoreBreakdown `json:"breakdown"`
	MatchedKeywords []string       `json:"matched_keywords,omitempty"`
}

// DroppedCandidate はゴールマッチングで除外された候補（デバッグ用）
type DroppedCandidate struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// GoalBucket はゴールごとのマッチ済み候補と収集統計。
// 観測・デバッグ用であり永続化はしない
type GoalBucket struct {
	Goal         string             `json:"goal"`
	Candidates   []*ScoredPlace     `json:"candidates"` // コンポジットスコア降順
	RawCount     int                `json:"raw_count"`
	MatchedCount int                `json:"matched_count"`
	SeededCount  int                `json:"seeded_count"`
	Dropped      []DroppedCandidate `json:"dropped,omitempty"`
}

// GoalShortfall は最低確保数を満たせなかったゴールの報告
type GoalShortfall struct {
	Goal string `json:"goal" firestore:"goal"`
	Have int    `json:"have" firestore:"have"`
	Need int    `json:"need" firestore:"need"`
}

// ItineraryStop は行程内の1スポット（直前地点からの徒歩時間と滞在時間を持つ）
type ItineraryStop struct {
	Place                   *ScoredPlace `json:"place"`
	WalkMinutesFromPrevious int          `json:"walk_minutes_from_previous"`
	DwellMinutes            int          `json:"dwell_minutes"`
	Day                     int          `json:"day,omitempty"` // 複数日モードのみ（1始まり）
}

// Itinerary は生成された行程。リクエストごとに新規構築され、返却後は変更しない
type Itinerary struct {
	ID                string          `json:"id"`
	Success           bool            `json:"success"`
	Reason            string          `json:"reason,omitempty"` // Success=false の場合の説明
	Stops             []ItineraryStop `json:"stops"`
	TotalWalkMinutes  int             `json:"total_walk_minutes"`
	TotalDwellMinutes int             `json:"total_dwell_minutes"`
	TotalMinutes      int             `json:"total_minutes"`
	RequestedMinutes  int             `json:"requested_minutes"`
	InsufficientGoals []GoalShortfall `json:"insufficient_goals,omitempty"`
}

// StopResponse はAPIレスポンス内の1スポット
type StopResponse struct {
	Name                    string         `json:"name" firestore:"name"`
	Lat                     float64        `json:"lat" firestore:"lat"`
	Lng                     float64        `json:"lng" firestore:"lng"`
	Goal                    string         `json:"goal" firestore:"goal"`
	WalkMinutesFromPrevious int            `json:"walk_minutes_from_previous" firestore:"walk_minutes_from_previous"`
	DwellMinutes            int            `json:"dwell_minutes" firestore:"dwell_minutes"`
	Day                     int            `json:"day,omitempty" firestore:"day"`
	Score                   float64        `json:"score" firestore:"score"`
	ScoreBreakdown          ScoreBreakdown `json:"score_breakdown" firestore:"score_breakdown"`
	Description             string         `json:"description" firestore:"description"`
}

// ItineraryResponse はAPIレスポンス全体
type ItineraryResponse struct {
	ItineraryID       string          `json:"itinerary_id"`
	Success           bool            `json:"success"`
	Reason            string          `json:"reason,omitempty"`
	Places            []StopResponse  `json:"places"`
	TotalWalkMinutes  int             `json:"total_walk_minutes"`
	TotalDwellMinutes int             `json:"total_dwell_minutes"`
	TotalMinutes      int             `json:"total_minutes"`
	RequestedMinutes  int             `json:"requested_minutes"`
	InsufficientGoals []GoalShortfall `json:"insufficient_goals,omitempty"`
}

// FirestoreItinerary はFirestore保存用の構造体（TTL付き）
type FirestoreItinerary struct {
	Success           bool            `firestore:"success"`
	Reason            string          `firestore:"reason"`
	Places            []StopResponse  `firestore:"places"`
	TotalWalkMinutes  int             `firestore:"total_walk_minutes"`
	TotalDwellMinutes int             `firestore:"total_dwell_minutes"`
	TotalMinutes      int             `firestore:"total_minutes"`
	RequestedMinutes  int             `firestore:"requested_minutes"`
	InsufficientGoals []GoalShortfall `firestore:"insufficient_goals"`
	ExpireAt          time.Time       `firestore:"expireAt"`
}

// ToFirestoreItinerary レスポンスをFirestore保存用に変換
func (r *ItineraryResponse) ToFirestoreItinerary(ttlHours int) *FirestoreItinerary {
	return &FirestoreItinerary{
		Success:           r.Success,
		Reason:            r.Reason,
		Places:            r.Places,
		TotalWalkMinutes:  r.TotalWalkMinutes,
		TotalDwellMinutes: r.TotalDwellMinutes,
		TotalMinutes:      r.TotalMinutes,
		RequestedMinutes:  r.RequestedMinutes,
		InsufficientGoals: r.InsufficientGoals,
		ExpireAt:          time.Now().Add(time.Duration(ttlHours) * time.Hour),
	}
}

// ToItineraryResponse Firestoreのデータをレスポンス形式に戻す
func (f *FirestoreItinerary) ToItineraryResponse(itineraryID string) *ItineraryResponse {
	return &ItineraryResponse{
		ItineraryID:       itineraryID,
		Success:           f.Success,
		Reason:            f.Reason,
		Places:            f.Places,
		TotalWalkMinutes:  f.TotalWalkMinutes,
		TotalDwellMinutes: f.TotalDwellMinutes,
		TotalMinutes:      f.TotalMinutes,
		RequestedMinutes:  f.RequestedMinutes,
		InsufficientGoals: f.InsufficientGoals,
	}
}
