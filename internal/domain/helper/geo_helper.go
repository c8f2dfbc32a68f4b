package helper

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"Meguri-App/internal/domain/model"
)

// 徒歩ペース: 約5km/h → 1kmあたり12分
const walkMinutesPerKm = 12.0

// riverCrossingLngDelta を超える経度差がある移動には固定ペナルティを足す。
// 直線距離では見えない川・線路などの横断コストの粗い近似であり、
// 経路グラフ呼び出しの代替ではない
const (
	riverCrossingLngDelta      = 0.01
	riverCrossingPenaltyMinute = 3
)

// DistanceKm は2地点間の大円距離を計算する (km)
func DistanceKm(a, b model.LatLng) float64 {
	p1 := orb.Point{a.Lng, a.Lat}
	p2 := orb.Point{b.Lng, b.Lat}
	return geo.Distance(p1, p2) / 1000.0
}

// WalkMinutes は2地点間の徒歩時間を見積もる（分）。
// 直線距離×固定ペースの近似で、精度よりも挙動の再現性を優先している
func WalkMinutes(a, b model.LatLng) int {
	minutes := int(math.Round(DistanceKm(a, b) * walkMinutesPerKm))
	if math.Abs(a.Lng-b.Lng) > riverCrossingLngDelta {
		minutes += riverCrossingPenaltyMinute
	}
	return minutes
}

// BoundingDeltas は半径(m)を緯度・経度の差分に変換する（矩形の粗い絞り込み用）
func BoundingDeltas(lat float64, radiusM int) (latDelta, lngDelta float64) {
	latDelta = float64(radiusM) / 111000.0
	lngDelta = float64(radiusM) / (111000.0 * math.Cos(lat*math.Pi/180))
	return latDelta, lngDelta
}
