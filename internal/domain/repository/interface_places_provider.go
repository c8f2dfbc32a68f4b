package repository

import (
	"context"

	"Meguri-App/internal/domain/model"
)

// PlacesProvider は一次スポット検索プロバイダのインターフェース
type PlacesProvider interface {
	// SearchByCategory は座標と半径を中心にカテゴリタイプで検索する
	SearchByCategory(ctx context.Context, location model.LatLng, radiusMeters int, placeType string) ([]*model.Place, error)
	// SearchByKeyword はキーワードのテキスト検索を行う
	SearchByKeyword(ctx context.Context, location model.LatLng, radiusMeters int, keyword string) ([]*model.Place, error)
	// GetPlaceDetails は詳細情報（紹介文・営業時間・価格帯）を取得する
	GetPlaceDetails(ctx context.Context, placeID string) (*model.Place, error)
}

// FallbackProvider はオープンデータソースへのフォールバック検索
type FallbackProvider interface {
	// SearchByTags はタグ（例: "amenity=bar"）でノードを検索する
	SearchByTags(ctx context.Context, location model.LatLng, radiusMeters int, tags []string) ([]*model.Place, error)
}

// Geocoder は住所から座標への変換を行う
type Geocoder interface {
	Geocode(ctx context.Context, address string) (model.LatLng, error)
}
