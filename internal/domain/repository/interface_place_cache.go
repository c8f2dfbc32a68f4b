package repository

import (
	"context"

	"Meguri-App/internal/domain/model"
)

// PlaceCache は検索結果とスポット詳細のキャッシュ層。
// 実装はメモリ・SQLite・PostgreSQLから選択できる
type PlaceCache interface {
	// GetSearch は検索キーに対応するキャッシュ済み結果を返す（未登録・期限切れなら ok=false）
	GetSearch(ctx context.Context, key model.SearchKey) ([]*model.Place, bool)
	// PutSearch は検索結果をTTL付きで保存する
	PutSearch(ctx context.Context, key model.SearchKey, places []*model.Place) error
	// GetDetails は詳細取得済みのスポットを返す
	GetDetails(ctx context.Context, placeID string) (*model.Place, bool)
	// PutDetails は詳細取得済みのスポットを保存する
	PutDetails(ctx context.Context, place *model.Place) error
	// Nearby はキャッシュ内から半径内のスポットを空間検索する
	Nearby(ctx context.Context, location model.LatLng, radiusMeters int) ([]*model.Place, error)
}
