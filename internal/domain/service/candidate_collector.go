package service

import (
	"context"
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"Meguri-App/internal/domain/model"
	"Meguri-App/internal/domain/repository"
	"Meguri-App/internal/domain/rule"
)

const (
	// 外部検索1呼び出しあたりのタイムアウト
	searchCallTimeout = 10 * time.Second
	// ゴール間の同時実行数の上限（外部APIのレート制限対策）
	collectorConcurrency = 4
)

// CandidateCollector はゴールごとに段階的な半径で候補を収集するサービス。
// 個別の検索失敗はログに残してスキップし、収集全体を止めることは決してない
type CandidateCollector interface {
	Collect(ctx context.Context, origin model.LatLng, goals []string, minPerGoal, targetRaw int) map[string][]*model.Place
}

type candidateCollector struct {
	provider repository.PlacesProvider
	fallback repository.FallbackProvider
	cache    repository.PlaceCache
}

func NewCandidateCollector(provider repository.PlacesProvider, fallback repository.FallbackProvider, cache repository.PlaceCache) CandidateCollector {
	return &candidateCollector{
		provider: provider,
		fallback: fallback,
		cache:    cache,
	}
}

// Collect は全ゴールの候補を並行収集する。
// 戻り値はゴール名→外部IDで重複排除済みの生候補リスト
func (c *candidateCollector) Collect(ctx context.Context, origin model.LatLng, goals []string, minPerGoal, targetRaw int) map[string][]*model.Place {
	var (
		mu      sync.Mutex
		results = make(map[string][]*model.Place, len(goals))
		rawSeen atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(collectorConcurrency)

	for _, goal := range goals {
		goal := goal
		g.Go(func() error {
			places := c.collectForGoal(gctx, origin, goal, minPerGoal, targetRaw, &rawSeen)
			mu.Lock()
			results[goal] = places
			mu.Unlock()
			return nil
		})
	}

	// 各ゴールは失敗を内部で吸収するためエラーは返らない
	_ = g.Wait()
	return results
}

// collectForGoal は1ゴール分の収集を行う。
// 半径の段階ごとに キャッシュ → カテゴリ検索 → キーワード検索 の順で集め、
// ゴールに一致する候補が最低確保数に達したら打ち切る。
// 全段階を使い切っても足りなければオープンデータへフォールバックする
func (c *candidateCollector) collectForGoal(ctx context.Context, origin model.LatLng, goal string, minPerGoal, targetRaw int, rawSeen *atomic.Int64) []*model.Place {
	r, ok := rule.RuleFor(goal)
	if !ok {
		log.Printf("⚠️ 未定義のゴールをスキップ: %s", goal)
		return nil
	}

	byID := make(map[string]*model.Place)

	for _, radius := range model.SearchRadiiMeters {
		if rawSeen.Load() >= int64(targetRaw) {
			log.Printf("⚠️ 生候補数が上限に到達したため収集を打ち切り: goal=%s", goal)
			break
		}

		c.collectAtRadius(ctx, origin, goal, r, radius, byID, rawSeen, targetRaw)

		if countMatching(byID, goal) >= minPerGoal {
			break
		}
	}

	// 一次ソースで足りない場合のみオープンデータに頼る
	if countMatching(byID, goal) < minPerGoal && rawSeen.Load() < int64(targetRaw) {
		c.collectFromFallback(ctx, origin, goal, r, byID, rawSeen, targetRaw)
	}

	return sortedPlaces(byID)
}

// collectAtRadius は1つの (ゴール, 半径) の組について検索を実行する
func (c *candidateCollector) collectAtRadius(ctx context.Context, origin model.LatLng, goal string, r *rule.GoalRule, radius int, byID map[string]*model.Place, rawSeen *atomic.Int64, targetRaw int) {
	key := model.NewSearchKey(origin, radius, goal)

	// 完全一致キャッシュ
	if cached, ok := c.cache.GetSearch(ctx, key); ok {
		log.Printf("✅ 検索キャッシュ命中: %s (%d件)", key.String(), len(cached))
		absorb(byID, cached, rawSeen, targetRaw)
		return
	}

	// 空間検索の近道: 正確なキーが無くてもキャッシュ済みスポットを先に拾う
	if nearby, err := c.cache.Nearby(ctx, origin, radius); err == nil && len(nearby) > 0 {
		absorb(byID, nearby, rawSeen, targetRaw)
	}

	var (
		mu    sync.Mutex
		fresh []*model.Place
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(collectorConcurrency)

	// カテゴリ検索（許可タイプごと）
	for _, placeType := range r.AllowedTypes {
		placeType := placeType
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, searchCallTimeout)
			defer cancel()
			found, err := c.provider.SearchByCategory(callCtx, origin, radius, placeType)
			if err != nil {
				log.Printf("⚠️ カテゴリ検索に失敗 (goal=%s, type=%s, radius=%dm): %v", goal, placeType, radius, err)
				return nil
			}
			mu.Lock()
			fresh = append(fresh, found...)
			mu.Unlock()
			return nil
		})
	}

	// キーワード検索（呼び出し回数を抑えるため上位のみ）
	keywords := r.Keywords
	if len(keywords) > model.DefaultKeywordSearches {
		keywords = keywords[:model.DefaultKeywordSearches]
	}
	for _, keyword := range keywords {
		keyword := keyword
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, searchCallTimeout)
			defer cancel()
			found, err := c.provider.SearchByKeyword(callCtx, origin, radius, keyword)
			if err != nil {
				log.Printf("⚠️ キーワード検索に失敗 (goal=%s, keyword=%q, radius=%dm): %v", goal, keyword, radius, err)
				return nil
			}
			mu.Lock()
			fresh = append(fresh, found...)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	if len(fresh) > 0 {
		absorb(byID, fresh, rawSeen, targetRaw)
		// 成功した取得は必ずキャッシュへ書き戻す（べき等なupsert）
		if err := c.cache.PutSearch(ctx, key, fresh); err != nil {
			log.Printf("⚠️ 検索キャッシュの書き込みに失敗: %v", err)
		}
	}
}

// collectFromFallback はオープンデータソースからタグ検索で補完する
func (c *candidateCollector) collectFromFallback(ctx context.Context, origin model.LatLng, goal string, r *rule.GoalRule, byID map[string]*model.Place, rawSeen *atomic.Int64, targetRaw int) {
	maxRadius := model.SearchRadiiMeters[len(model.SearchRadiiMeters)-1]
	callCtx, cancel := context.WithTimeout(ctx, searchCallTimeout)
	defer cancel()

	found, err := c.fallback.SearchByTags(callCtx, origin, maxRadius, r.OSMFallbackTags)
	if err != nil {
		log.Printf("⚠️ オープンデータへのフォールバックに失敗 (goal=%s): %v", goal, err)
		return
	}
	log.Printf("✅ オープンデータから補完: goal=%s (%d件)", goal, len(found))
	absorb(byID, found, rawSeen, targetRaw)
}

// absorb は候補を外部ID（正規キー）で重複排除しつつ取り込む
func absorb(byID map[string]*model.Place, places []*model.Place, rawSeen *atomic.Int64, targetRaw int) {
	for _, p := range places {
		key := p.CanonicalID()
		if _, exists := byID[key]; exists {
			continue
		}
		if rawSeen.Load() >= int64(targetRaw) {
			return
		}
		byID[key] = p
		rawSeen.Add(1)
	}
}

// countMatching はゴールに一致する収集済み候補の数を返す
func countMatching(byID map[string]*model.Place, goal string) int {
	count := 0
	for _, p := range byID {
		if rule.Matches(p, goal).IsMatch {
			count++
		}
	}
	return count
}

// sortedPlaces はマップを正規キー昇順の決定的なスライスに変換する
func sortedPlaces(byID map[string]*model.Place) []*model.Place {
	keys := make([]string, 0, len(byID))
	for k := range byID {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	places := make([]*model.Place, 0, len(keys))
	for _, k := range keys {
		places = append(places, byID[k])
	}
	return places
}
