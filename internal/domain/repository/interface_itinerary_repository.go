package repository

import (
	"context"

	"Meguri-App/internal/domain/model"
)

// ItineraryRepository は生成済み行程の永続化の責務を持つリポジトリインターフェース
type ItineraryRepository interface {
	// StoreItinerary は行程を保存し、発行したIDを返す
	StoreItinerary(ctx context.Context, itinerary *model.FirestoreItinerary) (string, error)
	// GetItinerary は保存済みの行程をIDで取得する
	GetItinerary(ctx context.Context, itineraryID string) (*model.ItineraryResponse, error)
}
