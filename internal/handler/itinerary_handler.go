package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"Meguri-App/internal/domain/model"
	"Meguri-App/internal/usecase"
)

// ItineraryHandler は行程生成APIのハンドラー
type ItineraryHandler struct {
	itineraryUseCase usecase.ItineraryUseCase
}

// NewItineraryHandler は新しいItineraryHandlerインスタンスを作成
func NewItineraryHandler(itineraryUseCase usecase.ItineraryUseCase) *ItineraryHandler {
	return &ItineraryHandler{
		itineraryUseCase: itineraryUseCase,
	}
}

// PostItinerary は行程を生成するエンドポイント
// POST /itineraries
func (h *ItineraryHandler) PostItinerary(c *gin.Context) {
	var req model.ItineraryRequest

	// リクエストボディのバインド
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return
	}

	// バリデーション
	if err := h.validateRequest(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "バリデーションエラー",
			"details": err.Error(),
		})
		return
	}

	// UseCase呼び出し
	response, err := h.itineraryUseCase.GenerateItinerary(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "行程の生成に失敗しました",
			"details": err.Error(),
		})
		return
	}

	// 成功レスポンス
	c.JSON(http.StatusOK, response)
}

// GetItinerary は保存済みの行程を取得するエンドポイント
// GET /itineraries/:id
func (h *ItineraryHandler) GetItinerary(c *gin.Context) {
	itineraryID := c.Param("id")
	if itineraryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "itinerary_idが指定されていません",
		})
		return
	}

	response, err := h.itineraryUseCase.GetItinerary(c.Request.Context(), itineraryID)
	if err != nil {
		if errors.Is(err, model.ErrItineraryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "行程が見つかりません（有効期限切れまたは無効なID）",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "行程の取得に失敗しました",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}

// validateRequest はリクエストの詳細バリデーションを行う
func (h *ItineraryHandler) validateRequest(req *model.ItineraryRequest) error {
	// 出発地点は座標か住所のどちらかが必須
	if req.Origin == nil && req.OriginAddress == "" {
		return &ValidationError{Field: "origin", Message: "出発地点（originまたはorigin_address）は必須です"}
	}

	// 緯度経度の範囲チェック
	if req.Origin != nil {
		if req.Origin.Latitude < -90 || req.Origin.Latitude > 90 {
			return &ValidationError{Field: "origin.latitude", Message: "緯度は-90から90の範囲で指定してください"}
		}
		if req.Origin.Longitude < -180 || req.Origin.Longitude > 180 {
			return &ValidationError{Field: "origin.longitude", Message: "経度は-180から180の範囲で指定してください"}
		}
	}

	// ゴールは1つ以上必須
	if len(req.Goals) == 0 {
		return &ValidationError{Field: "goals", Message: "興味カテゴリは1つ以上指定してください"}
	}

	// シナリオのチェック
	if req.Scenario != model.ScenarioOnsite && req.Scenario != model.ScenarioPlanning {
		return &ValidationError{Field: "scenario", Message: "scenarioは'onsite'または'planning'を指定してください"}
	}

	// onsiteモードの場合、時間予算が必須
	if req.Scenario == model.ScenarioOnsite && req.RequestedMinutes <= 0 {
		return &ValidationError{Field: "requested_minutes", Message: "onsiteシナリオでは正の整数のrequested_minutesが必要です"}
	}

	// planningモードの場合、日数が必須
	if req.Scenario == model.ScenarioPlanning && req.Days <= 0 {
		return &ValidationError{Field: "days", Message: "planningシナリオでは正の整数のdaysが必要です"}
	}

	// 目的地ポリシーのチェック
	policy := req.EffectiveDestinationPolicy()
	if policy != model.DestinationNone && policy != model.DestinationLoop && policy != model.DestinationFixed {
		return &ValidationError{Field: "destination_policy", Message: "destination_policyは'none'、'loop'、'fixed'のいずれかを指定してください"}
	}

	// fixedポリシーの場合、目的地座標が必須
	if policy == model.DestinationFixed {
		if req.Destination == nil {
			return &ValidationError{Field: "destination", Message: "fixedポリシーでは目的地の座標が必要です"}
		}
		if req.Destination.Latitude < -90 || req.Destination.Latitude > 90 {
			return &ValidationError{Field: "destination.latitude", Message: "緯度は-90から90の範囲で指定してください"}
		}
		if req.Destination.Longitude < -180 || req.Destination.Longitude > 180 {
			return &ValidationError{Field: "destination.longitude", Message: "経度は-180から180の範囲で指定してください"}
		}
	}

	return nil
}

// ValidationError はバリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
