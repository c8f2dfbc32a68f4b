package service

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"Meguri-App/internal/domain/helper"
	"Meguri-App/internal/domain/model"
	"Meguri-App/internal/domain/repository"
)

const (
	detailsCallTimeout  = 8 * time.Second
	enricherConcurrency = 4
)

// Enricher は選定済み候補の詳細情報（営業時間・価格帯・紹介文）を補完するサービス。
// 補完は品質向上のための処理であり、失敗しても候補は縮小メタデータのまま使える
type Enricher interface {
	// Enrich は事前スコア上位 limit 件の詳細をキャッシュ優先で取得して埋める
	Enrich(ctx context.Context, candidates []*model.ScoredPlace, limit int)
}

type enricher struct {
	provider repository.PlacesProvider
	cache    repository.PlaceCache
}

func NewEnricher(provider repository.PlacesProvider, cache repository.PlaceCache) Enricher {
	return &enricher{provider: provider, cache: cache}
}

func (e *enricher) Enrich(ctx context.Context, candidates []*model.ScoredPlace, limit int) {
	targets := helper.TopNByPreScore(candidates, limit)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enricherConcurrency)

	var mu sync.Mutex
	for _, sp := range targets {
		sp := sp
		if sp.Place.Enriched || sp.Place.ID == "" {
			continue
		}
		g.Go(func() error {
			detailed, ok := e.fetchDetails(gctx, sp.Place.ID)
			if !ok {
				return nil
			}
			mu.Lock()
			mergeDetails(sp.Place, detailed)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
}

// fetchDetails はキャッシュ → 外部API の順に詳細を探す
func (e *enricher) fetchDetails(ctx context.Context, placeID string) (*model.Place, bool) {
	if cached, ok := e.cache.GetDetails(ctx, placeID); ok {
		return cached, true
	}

	callCtx, cancel := context.WithTimeout(ctx, detailsCallTimeout)
	defer cancel()
	detailed, err := e.provider.GetPlaceDetails(callCtx, placeID)
	if err != nil {
		log.Printf("⚠️ 詳細取得に失敗 (id=%s): %v", placeID, err)
		return nil, false
	}

	if err := e.cache.PutDetails(ctx, detailed); err != nil {
		log.Printf("⚠️ 詳細キャッシュの書き込みに失敗 (id=%s): %v", placeID, err)
	}
	return detailed, true
}

// mergeDetails は詳細取得の結果を既存レコードへ補完する（空フィールドのみ上書き）
func mergeDetails(base, detailed *model.Place) {
	if detailed.Summary != "" {
		base.Summary = detailed.Summary
	}
	if len(detailed.OpeningHours) > 0 {
		base.OpeningHours = detailed.OpeningHours
	}
	if len(detailed.PhotoRefs) > 0 {
		base.PhotoRefs = detailed.PhotoRefs
	}
	if detailed.PriceLevel > 0 {
		base.PriceLevel = detailed.PriceLevel
	}
	if detailed.BusinessStatus != "" {
		base.BusinessStatus = detailed.BusinessStatus
	}
	if detailed.ReviewCount > base.ReviewCount {
		base.ReviewCount = detailed.ReviewCount
	}
	if detailed.Rating > 0 {
		base.Rating = detailed.Rating
	}
	base.Enriched = true
}
