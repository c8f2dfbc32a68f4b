package service

import (
	"context"
	"fmt"
	"log"

	"Meguri-App/internal/domain/helper"
	"Meguri-App/internal/domain/model"
	"Meguri-App/internal/domain/repository"
)

// ItineraryService は行程生成の全工程を束ねるオーケストレーションサービス。
// 工程は 収集 → 選別/スコア → 補完 → 重複排除 → 順序決定 → 時間予算適用 の一方向で、
// 途中で前の工程に戻ることはない
type ItineraryService interface {
	Generate(ctx context.Context, req *model.ItineraryRequest) (*model.Itinerary, error)
}

type itineraryService struct {
	collector CandidateCollector
	matcher   GoalMatcher
	enricher  Enricher
	dedup     Deduplicator
	optimizer RouteOptimizer
	trimmer   BudgetTrimmer
	geocoder  repository.Geocoder
}

func NewItineraryService(
	collector CandidateCollector,
	matcher GoalMatcher,
	enricher Enricher,
	dedup Deduplicator,
	optimizer RouteOptimizer,
	trimmer BudgetTrimmer,
	geocoder repository.Geocoder,
) ItineraryService {
	return &itineraryService{
		collector: collector,
		matcher:   matcher,
		enricher:  enricher,
		dedup:     dedup,
		optimizer: optimizer,
		trimmer:   trimmer,
		geocoder:  geocoder,
	}
}

// Generate は1リクエスト分の行程を生成する。
// 部分的な失敗は許容し、集められた範囲で最良の行程を返す。
// 全ゴールが空振りした場合も success=false の空行程を返し、エラーにはしない
func (s *itineraryService) Generate(ctx context.Context, req *model.ItineraryRequest) (*model.Itinerary, error) {
	if len(req.Goals) == 0 {
		return nil, model.ErrNoGoals
	}

	origin, err := s.resolveOrigin(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.IsMultiDay() {
		if req.Days <= 0 {
			return nil, model.ErrInvalidDays
		}
	} else if req.RequestedMinutes <= 0 {
		return nil, model.ErrInvalidTimeBudget
	}

	log.Printf("🚀 行程生成を開始: goals=%v, scenario=%s", req.Goals, req.Scenario)

	minPerGoal := req.EffectiveMinPerGoal()
	maxStops := s.maxStopsFor(req)

	// 収集 → 選別/スコア → シード選定
	selected, shortfalls, _ := s.collectAndSelect(ctx, origin, req, minPerGoal, minPerGoal, model.DefaultTargetRaw, maxStops)

	// 複数日モードで枠が埋まらない場合は収集予算を倍にして一度だけ収集し直す。
	// 広げるのは収集の打ち切り閾値と生候補数の上限だけで、
	// 不足報告の基準は利用者の指定した最低確保数のまま。
	// それでも足りなければあるだけで構成する（埋め草は作らない）
	if req.IsMultiDay() && len(selected) < maxStops {
		log.Printf("⚠️ 複数日の枠に対して候補不足 (%d/%d)、収集予算を拡大して再実行", len(selected), maxStops)
		selected, shortfalls, _ = s.collectAndSelect(ctx, origin, req, minPerGoal, minPerGoal*2, model.DefaultTargetRaw*2, maxStops)
	}

	// 補完（品質向上のみ、失敗は無視される）
	s.enricher.Enrich(ctx, selected, model.DefaultEnrichLimit)

	// 順序決定
	ordered := s.optimizer.Order(origin, selected)

	// 時間予算の適用 / 日別分割
	var result TrimResult
	if req.IsMultiDay() {
		result = s.trimmer.SplitDays(origin, ordered, req.Days, model.DefaultPlacesPerDay)
	} else {
		result = s.trimmer.TrimToBudget(origin, ordered, req.RequestedMinutes, req.EffectiveDestinationPolicy(), req.DestinationLatLng())
	}

	// 上流のマージを通り抜けた近似重複への最終防衛
	collapsed := s.dedup.CollapseConsecutive(result.Stops)
	if len(collapsed) != len(result.Stops) {
		result = s.recomputeLegs(origin, collapsed)
	}

	itinerary := s.buildItinerary(req, result, shortfalls)
	log.Printf("✅ 行程生成が完了: stops=%d, walk=%d分, dwell=%d分",
		len(itinerary.Stops), itinerary.TotalWalkMinutes, itinerary.TotalDwellMinutes)
	return itinerary, nil
}

// resolveOrigin は座標指定を優先し、無ければ住所をジオコーディングする
func (s *itineraryService) resolveOrigin(ctx context.Context, req *model.ItineraryRequest) (model.LatLng, error) {
	if req.HasOriginCoordinates() {
		return req.OriginLatLng(), nil
	}
	if req.OriginAddress == "" {
		return model.LatLng{}, model.ErrOriginRequired
	}
	origin, err := s.geocoder.Geocode(ctx, req.OriginAddress)
	if err != nil {
		return model.LatLng{}, fmt.Errorf("出発地点のジオコーディングに失敗: %w", err)
	}
	log.Printf("✅ 住所を座標に変換: %q -> (%.5f, %.5f)", req.OriginAddress, origin.Lat, origin.Lng)
	return origin, nil
}

// collectAndSelect は収集から最終候補プールの選定までを1回実行する。
// collectPerGoal は収集の打ち切り閾値、minPerGoal はシードと不足報告の基準
func (s *itineraryService) collectAndSelect(ctx context.Context, origin model.LatLng, req *model.ItineraryRequest, minPerGoal, collectPerGoal, targetRaw, maxStops int) ([]*model.ScoredPlace, []model.GoalShortfall, []*model.GoalBucket) {
	raw := s.collector.Collect(ctx, origin, req.Goals, collectPerGoal, targetRaw)

	buckets := make([]*model.GoalBucket, 0, len(req.Goals))
	for _, goal := range req.Goals {
		// ソース間の近似重複（同名・数十m差）を選別前にマージする
		merged := s.dedup.Dedupe(raw[goal])
		bucket := s.matcher.Match(goal, merged, origin, req.StrictMatching)
		log.Printf("✅ ゴール選別完了: %s (%s) raw=%d matched=%d",
			goal, model.GetGoalJapaneseName(goal), bucket.RawCount, bucket.MatchedCount)
		buckets = append(buckets, bucket)
	}

	selected, shortfalls := s.trimmer.Seed(buckets, minPerGoal, maxStops)

	// 同じ店が別ゴールで別の外部IDから選ばれるケースはここで1件に束ねる
	selected = s.dedup.DedupeSelection(selected)
	return selected, shortfalls, buckets
}

// maxStopsFor はシナリオに応じた最終候補数の上限を返す
func (s *itineraryService) maxStopsFor(req *model.ItineraryRequest) int {
	if req.IsMultiDay() {
		return req.Days * model.DefaultPlacesPerDay
	}
	return model.DefaultMaxStops
}

// recomputeLegs は重複除去後の行程の徒歩時間と合計を計算し直す
func (s *itineraryService) recomputeLegs(origin model.LatLng, stops []model.ItineraryStop) TrimResult {
	walkTotal, dwellTotal := 0, 0
	current := origin
	for i := range stops {
		if stops[i].Day > 0 && (i == 0 || stops[i].Day != stops[i-1].Day) {
			current = origin
		}
		stops[i].WalkMinutesFromPrevious = helper.WalkMinutes(current, stops[i].Place.Place.Location)
		walkTotal += stops[i].WalkMinutesFromPrevious
		dwellTotal += stops[i].DwellMinutes
		current = stops[i].Place.Place.Location
	}
	return TrimResult{Stops: stops, TotalWalkMinutes: walkTotal, TotalDwellMinutes: dwellTotal}
}

func (s *itineraryService) buildItinerary(req *model.ItineraryRequest, result TrimResult, shortfalls []model.GoalShortfall) *model.Itinerary {
	itinerary := &model.Itinerary{
		Success:           len(result.Stops) > 0,
		Stops:             result.Stops,
		TotalWalkMinutes:  result.TotalWalkMinutes,
		TotalDwellMinutes: result.TotalDwellMinutes,
		TotalMinutes:      result.TotalWalkMinutes + result.TotalDwellMinutes,
		RequestedMinutes:  req.RequestedMinutes,
		InsufficientGoals: shortfalls,
	}
	if !itinerary.Success {
		itinerary.Reason = "条件に合うスポットが見つかりませんでした。ゴールや時間予算を変えてお試しください"
	}
	return itinerary
}
