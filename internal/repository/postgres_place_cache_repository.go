package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"Meguri-App/internal/domain/helper"
	"Meguri-App/internal/domain/model"
	domainrepo "Meguri-App/internal/domain/repository"
	"Meguri-App/internal/infrastructure/database"
)

// 検索結果は短め、詳細情報は長めに保持する
const (
	pgSearchCacheTTL  = 48 * time.Hour
	pgDetailsCacheTTL = 14 * 24 * time.Hour
)

// PostgresPlaceCacheRepository PostgreSQLを使ったスポットキャッシュ。
// 複数インスタンスでキャッシュを共有する構成向け
type PostgresPlaceCacheRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresPlaceCacheRepository(client *database.PostgreSQLClient) (domainrepo.PlaceCache, error) {
	repo := &PostgresPlaceCacheRepository{client: client}
	if err := repo.ensureSchema(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *PostgresPlaceCacheRepository) ensureSchema() error {
	_, err := r.client.DB.Exec(`
		CREATE TABLE IF NOT EXISTS search_cache (
			key        TEXT PRIMARY KEY,
			payload    JSONB NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS cached_places (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			lat        DOUBLE PRECISION NOT NULL,
			lng        DOUBLE PRECISION NOT NULL,
			payload    JSONB NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_cached_places_lat ON cached_places(lat);
		CREATE INDEX IF NOT EXISTS idx_cached_places_lng ON cached_places(lng);
	`)
	if err != nil {
		return fmt.Errorf("キャッシュテーブルの作成に失敗: %w", err)
	}
	return nil
}

func (r *PostgresPlaceCacheRepository) GetSearch(ctx context.Context, key model.SearchKey) ([]*model.Place, bool) {
	var payload []byte
	err := r.client.DB.QueryRowContext(ctx,
		`SELECT payload FROM search_cache WHERE key = $1 AND expires_at > NOW()`,
		key.String(),
	).Scan(&payload)
	if err != nil {
		return nil, false
	}

	var places []*model.Place
	if err := json.Unmarshal(payload, &places); err != nil {
		log.Printf("⚠️ 検索キャッシュのデコードに失敗 (key=%s): %v", key.String(), err)
		return nil, false
	}
	for _, p := range places {
		p.Source = model.SourceCache
	}
	return places, true
}

func (r *PostgresPlaceCacheRepository) PutSearch(ctx context.Context, key model.SearchKey, places []*model.Place) error {
	payload, err := json.Marshal(places)
	if err != nil {
		return fmt.Errorf("検索結果のエンコードに失敗: %w", err)
	}

	_, err = r.client.DB.ExecContext(ctx, `
		INSERT INTO search_cache (key, payload, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at
	`, key.String(), payload, time.Now().Add(pgSearchCacheTTL))
	if err != nil {
		return fmt.Errorf("検索キャッシュの書き込みに失敗: %w", err)
	}

	for _, p := range places {
		if err := r.upsertPlace(ctx, p, pgSearchCacheTTL); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresPlaceCacheRepository) GetDetails(ctx context.Context, placeID string) (*model.Place, bool) {
	var payload []byte
	err := r.client.DB.QueryRowContext(ctx,
		`SELECT payload FROM cached_places WHERE id = $1 AND expires_at > NOW()`,
		placeID,
	).Scan(&payload)
	if err != nil {
		return nil, false
	}

	var place model.Place
	if err := json.Unmarshal(payload, &place); err != nil {
		log.Printf("⚠️ 詳細キャッシュのデコードに失敗 (id=%s): %v", placeID, err)
		return nil, false
	}
	if !place.Enriched {
		return nil, false
	}
	return &place, true
}

func (r *PostgresPlaceCacheRepository) PutDetails(ctx context.Context, place *model.Place) error {
	return r.upsertPlace(ctx, place, pgDetailsCacheTTL)
}

// Nearby は矩形で粗く絞ってから実距離で確定する空間検索
func (r *PostgresPlaceCacheRepository) Nearby(ctx context.Context, location model.LatLng, radiusMeters int) ([]*model.Place, error) {
	latDelta, lngDelta := helper.BoundingDeltas(location.Lat, radiusMeters)

	rows, err := r.client.DB.QueryContext(ctx, `
		SELECT payload FROM cached_places
		WHERE lat BETWEEN $1 AND $2
		  AND lng BETWEEN $3 AND $4
		  AND expires_at > NOW()
		ORDER BY id
	`, location.Lat-latDelta, location.Lat+latDelta,
		location.Lng-lngDelta, location.Lng+lngDelta)
	if err != nil {
		return nil, fmt.Errorf("空間検索に失敗: %w", err)
	}
	defer rows.Close()

	var places []*model.Place
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var place model.Place
		if err := json.Unmarshal(payload, &place); err != nil {
			continue
		}
		if helper.DistanceKm(location, place.Location)*1000 > float64(radiusMeters) {
			continue
		}
		place.Source = model.SourceCache
		places = append(places, &place)
	}
	return places, rows.Err()
}

func (r *PostgresPlaceCacheRepository) upsertPlace(ctx context.Context, place *model.Place, ttl time.Duration) error {
	payload, err := json.Marshal(place)
	if err != nil {
		return fmt.Errorf("スポットのエンコードに失敗: %w", err)
	}

	_, err = r.client.DB.ExecContext(ctx, `
		INSERT INTO cached_places (id, name, lat, lng, payload, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, lat = EXCLUDED.lat, lng = EXCLUDED.lng,
			payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at
	`, place.CanonicalID(), place.Name, place.Location.Lat, place.Location.Lng,
		payload, time.Now().Add(ttl))
	if err != nil {
		return fmt.Errorf("スポットキャッシュの書き込みに失敗: %w", err)
	}
	return nil
}
