package model

// ItineraryRequest は行程生成に必要な全ての条件を保持する
type ItineraryRequest struct {
	Origin            *Location `json:"origin"`                       // 座標指定の出発地点
	OriginAddress     string    `json:"origin_address,omitempty"`     // 住所指定の出発地点（ジオコーディングされる）
	Goals             []string  `json:"goals" validate:"required"`    // 必須：興味カテゴリのリスト
	RequestedMinutes  int       `json:"requested_minutes"`            // scenarioが"onsite"の場合に必須
	Days              int       `json:"days"`                         // scenarioが"planning"の場合に必須
	Scenario          string    `json:"scenario" validate:"required,oneof=onsite planning"`
	DestinationPolicy string    `json:"destination_policy"`           // "none" | "loop" | "fixed"
	Destination       *Location `json:"destination"`                  // destination_policyが"fixed"の場合に必須
	StrictMatching    bool      `json:"strict_matching"`              // キーワードのみの弱い一致を除外する
	MinPerGoal        int       `json:"min_per_goal"`                 // ゴールごとの最低確保数（0なら既定値）
}

// OriginLatLng は出発地点を LatLng 形式で取得する（住所指定の場合はゼロ値）
func (r *ItineraryRequest) OriginLatLng() LatLng {
	if r.Origin == nil {
		return LatLng{}
	}
	return r.Origin.ToLatLng()
}

// HasOriginCoordinates は座標での出発地点指定があるかを判定する
func (r *ItineraryRequest) HasOriginCoordinates() bool {
	return r.Origin != nil
}

// DestinationLatLng は目的地を LatLng 形式で取得する
func (r *ItineraryRequest) DestinationLatLng() *LatLng {
	if r.Destination == nil {
		return nil
	}
	ll := r.Destination.ToLatLng()
	return &ll
}

// EffectiveMinPerGoal は指定が無い場合に既定値を補った最低確保数を返す
func (r *ItineraryRequest) EffectiveMinPerGoal() int {
	if r.MinPerGoal > 0 {
		return r.MinPerGoal
	}
	return DefaultMinPerGoal
}

// EffectiveDestinationPolicy は指定が無い場合に"none"を補ったポリシーを返す
func (r *ItineraryRequest) EffectiveDestinationPolicy() string {
	if r.DestinationPolicy == "" {
		return DestinationNone
	}
	return r.DestinationPolicy
}

// IsMultiDay は複数日モードかを判定する
func (r *ItineraryRequest) IsMultiDay() bool {
	return r.Scenario == ScenarioPlanning
}
