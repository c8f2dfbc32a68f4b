package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"Meguri-App/internal/domain/model"
	"Meguri-App/internal/domain/repository"
	"Meguri-App/internal/domain/service"
)

// 保存した行程の有効期限（時間）
const itineraryTTLHours = 72

type ItineraryUseCase interface {
	// GenerateItinerary はリクエストに基づいて行程を生成し、保存してレスポンスを返す
	GenerateItinerary(ctx context.Context, req *model.ItineraryRequest) (*model.ItineraryResponse, error)

	// GetItinerary は保存済みの行程をitinerary_idで取得する
	GetItinerary(ctx context.Context, itineraryID string) (*model.ItineraryResponse, error)
}

// itineraryUseCaseImpl はItineraryUseCaseの実装
type itineraryUseCaseImpl struct {
	itineraryService service.ItineraryService
	itineraryRepo    repository.ItineraryRepository // nilの場合は保存をスキップ
}

// NewItineraryUseCase は新しいItineraryUseCaseインスタンスを作成
func NewItineraryUseCase(itineraryService service.ItineraryService, itineraryRepo repository.ItineraryRepository) ItineraryUseCase {
	return &itineraryUseCaseImpl{
		itineraryService: itineraryService,
		itineraryRepo:    itineraryRepo,
	}
}

// GenerateItinerary はリクエストに基づいて行程を生成し、保存してレスポンスを返す
func (u *itineraryUseCaseImpl) GenerateItinerary(ctx context.Context, req *model.ItineraryRequest) (*model.ItineraryResponse, error) {
	itinerary, err := u.itineraryService.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("行程生成に失敗: %w", err)
	}

	response := u.toResponse(itinerary)

	// 保存の失敗は行程の提供を妨げない（IDが無いだけで結果は返す）
	if u.itineraryRepo != nil {
		if id, err := u.itineraryRepo.StoreItinerary(ctx, response.ToFirestoreItinerary(itineraryTTLHours)); err != nil {
			log.Printf("⚠️ 行程の保存に失敗（処理は継続）: %v", err)
		} else {
			response.ItineraryID = id
		}
	} else {
		response.ItineraryID = fmt.Sprintf("it_%s", uuid.New().String())
	}

	return response, nil
}

// GetItinerary は保存済みの行程をitinerary_idで取得する
func (u *itineraryUseCaseImpl) GetItinerary(ctx context.Context, itineraryID string) (*model.ItineraryResponse, error) {
	if u.itineraryRepo == nil {
		return nil, model.ErrItineraryNotFound
	}
	return u.itineraryRepo.GetItinerary(ctx, itineraryID)
}

// toResponse は行程をAPIレスポンス形式に変換する
func (u *itineraryUseCaseImpl) toResponse(itinerary *model.Itinerary) *model.ItineraryResponse {
	places := make([]model.StopResponse, 0, len(itinerary.Stops))
	for _, stop := range itinerary.Stops {
		places = append(places, model.StopResponse{
			Name:                    stop.Place.Place.Name,
			Lat:                     stop.Place.Place.Location.Lat,
			Lng:                     stop.Place.Place.Location.Lng,
			Goal:                    stop.Place.Goal,
			WalkMinutesFromPrevious: stop.WalkMinutesFromPrevious,
			DwellMinutes:            stop.DwellMinutes,
			Day:                     stop.Day,
			Score:                   stop.Place.Composite,
			ScoreBreakdown:          stop.Place.Breakdown,
			Description:             describeStop(stop),
		})
	}

	return &model.ItineraryResponse{
		Success:           itinerary.Success,
		Reason:            itinerary.Reason,
		Places:            places,
		TotalWalkMinutes:  itinerary.TotalWalkMinutes,
		TotalDwellMinutes: itinerary.TotalDwellMinutes,
		TotalMinutes:      itinerary.TotalMinutes,
		RequestedMinutes:  itinerary.RequestedMinutes,
		InsufficientGoals: itinerary.InsufficientGoals,
	}
}

// describeStop は表示用の簡単な案内文を生成する
func describeStop(stop model.ItineraryStop) string {
	goalName := model.GetGoalJapaneseName(stop.Place.Goal)
	if stop.WalkMinutesFromPrevious == 0 {
		return fmt.Sprintf("%sで%sを楽しむ（滞在約%d分）",
			stop.Place.Place.Name, goalName, stop.DwellMinutes)
	}
	return fmt.Sprintf("徒歩%d分で%sへ。%sを楽しむ（滞在約%d分）",
		stop.WalkMinutesFromPrevious, stop.Place.Place.Name, goalName, stop.DwellMinutes)
}
