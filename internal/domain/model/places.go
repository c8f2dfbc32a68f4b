package model

import (
	"fmt"
	"math"
	"strings"
)

// LatLng 緯度経度を表す基本的な型（距離計算などで使用）
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location リクエスト境界で使用する座標型
type Location struct {
	Latitude  float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

// ToLatLng Location を LatLng 型に変換
func (l *Location) ToLatLng() LatLng {
	return LatLng{Lat: l.Latitude, Lng: l.Longitude}
}

// 候補の取得元を表す定数
const (
	SourcePrimary  = "primary"   // Google Places
	SourceOpenData = "open_data" // Overpass (OSM)
	SourceCache    = "cache"
)

// BusinessStatusOperational は営業中を表すプロバイダの状態値
const BusinessStatusOperational = "OPERATIONAL"

// Place 検索ソースから収集した候補スポットを表すモデル
type Place struct {
	ID             string   `json:"id"`              // 外部ID（"gpl:..." / "osm:..."）。無い場合は空
	Name           string   `json:"name"`            // スポット名
	Location       LatLng   `json:"location"`        // 位置情報
	Types          []string `json:"types"`           // プロバイダのタクソノミータグ（複数対応）
	Rating         float64  `json:"rating"`          // 評価値（0〜5、未評価は0）
	ReviewCount    int      `json:"review_count"`    // レビュー件数
	PriceLevel     int      `json:"price_level"`     // 価格帯（0〜4）
	BusinessStatus string   `json:"business_status"` // 営業状態
	OpeningHours   []string `json:"opening_hours,omitempty"`
	PhotoRefs      []string `json:"photo_refs,omitempty"`
	Summary        string   `json:"summary,omitempty"` // 編集者による紹介文
	Source         string   `json:"source"`
	Enriched       bool     `json:"enriched"` // 詳細取得済みか
}

// CanonicalID は同一スポット判定用の安定キーを返す。
// 外部IDがあればそれを、無ければ正規化した名前と約1m精度に丸めた座標を使う。
func (p *Place) CanonicalID() string {
	if p.ID != "" {
		return p.ID
	}
	return fmt.Sprintf("%s|%.5f,%.5f",
		NormalizeName(p.Name),
		roundTo(p.Location.Lat, 5),
		roundTo(p.Location.Lng, 5))
}

// NormalizedName は比較用に正規化した名前を返す
func (p *Place) NormalizedName() string {
	return NormalizeName(p.Name)
}

// HasType はスポットが指定タイプのいずれかを持つかチェック
func (p *Place) HasType(types []string) bool {
	typeSet := make(map[string]struct{}, len(types))
	for _, t := range types {
		typeSet[strings.ToLower(t)] = struct{}{}
	}
	for _, t := range p.Types {
		if _, ok := typeSet[strings.ToLower(t)]; ok {
			return true
		}
	}
	return false
}

// NormalizeName はスポット名を比較用に正規化する（小文字化・記号除去・空白圧縮）
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r > 127:
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func roundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// SearchKey 検索結果キャッシュのキー（丸めた座標＋半径バケット＋ゴール）
type SearchKey struct {
	Lat          float64
	Lng          float64
	RadiusBucket int
	Goal         string
}

// NewSearchKey は座標を約100m精度に丸めてキーを生成する
func NewSearchKey(loc LatLng, radiusM int, goal string) SearchKey {
	return SearchKey{
		Lat:          roundTo(loc.Lat, 3),
		Lng:          roundTo(loc.Lng, 3),
		RadiusBucket: radiusM,
		Goal:         goal,
	}
}

// String はキャッシュストアで使用する文字列キーを返す
func (k SearchKey) String() string {
	return fmt.Sprintf("search:%.3f:%.3f:%d:%s", k.Lat, k.Lng, k.RadiusBucket, k.Goal)
}
