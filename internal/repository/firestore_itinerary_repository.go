package repository

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"Meguri-App/internal/domain/model"
	domainrepo "Meguri-App/internal/domain/repository"
)

const itineraryCollection = "itineraries"

// FirestoreItineraryRepository Firestoreを使用した行程の永続化リポジトリ
type FirestoreItineraryRepository struct {
	client   *firestore.Client
	ttlHours int
}

// NewFirestoreItineraryRepository 新しいFirestoreItineraryRepositoryインスタンスを作成
func NewFirestoreItineraryRepository(client *firestore.Client, ttlHours int) domainrepo.ItineraryRepository {
	return &FirestoreItineraryRepository{
		client:   client,
		ttlHours: ttlHours,
	}
}

// StoreItinerary は行程をFirestoreに保存し、発行したIDを返す
func (r *FirestoreItineraryRepository) StoreItinerary(ctx context.Context, itinerary *model.FirestoreItinerary) (string, error) {
	itineraryID := fmt.Sprintf("it_%s", uuid.New().String())

	_, err := r.client.Collection(itineraryCollection).Doc(itineraryID).Set(ctx, itinerary)
	if err != nil {
		log.Printf("❌ 行程の保存に失敗 %s: %v", itineraryID, err)
		return "", fmt.Errorf("行程の保存に失敗しました: %w", err)
	}

	log.Printf("✅ 行程を保存: %s (有効期限%d時間)", itineraryID, r.ttlHours)
	return itineraryID, nil
}

// GetItinerary は指定されたitinerary_idの行程をFirestoreから取得する
func (r *FirestoreItineraryRepository) GetItinerary(ctx context.Context, itineraryID string) (*model.ItineraryResponse, error) {
	doc, err := r.client.Collection(itineraryCollection).Doc(itineraryID).Get(ctx)
	if err != nil {
		// Firestoreのエラータイプをチェック
		if status := err.Error(); strings.Contains(status, "NotFound") || strings.Contains(status, "not found") {
			return nil, model.ErrItineraryNotFound
		}
		return nil, fmt.Errorf("行程の取得に失敗しました: %w", err)
	}

	var firestoreData model.FirestoreItinerary
	if err := doc.DataTo(&firestoreData); err != nil {
		return nil, fmt.Errorf("データの変換に失敗しました: %w", err)
	}

	log.Printf("✅ 行程を取得: %s", itineraryID)
	return firestoreData.ToItineraryResponse(itineraryID), nil
}
