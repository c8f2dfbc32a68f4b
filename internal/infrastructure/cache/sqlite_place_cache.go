package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"Meguri-App/internal/domain/helper"
	"Meguri-App/internal/domain/model"
	"Meguri-App/internal/domain/repository"
)

// SQLitePlaceCache はプロセス再起動をまたいで持続するファイルベースのキャッシュ。
// 書き込みはべき等なupsertで、期限切れの読み出しはミスとして扱う
type SQLitePlaceCache struct {
	db *sql.DB
}

func NewSQLitePlaceCache(dbPath string) (repository.PlaceCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("キャッシュディレクトリの作成に失敗: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=10000")
	if err != nil {
		return nil, fmt.Errorf("キャッシュDBのオープンに失敗: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS search_cache (
			key        TEXT PRIMARY KEY,
			payload    TEXT NOT NULL,
			expires_at DATETIME NOT NULL
		);
		CREATE TABLE IF NOT EXISTS cached_places (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			lat        REAL NOT NULL,
			lng        REAL NOT NULL,
			payload    TEXT NOT NULL,
			expires_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_cached_places_lat ON cached_places(lat);
		CREATE INDEX IF NOT EXISTS idx_cached_places_lng ON cached_places(lng);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("キャッシュDBのスキーマ作成に失敗: %w", err)
	}

	return &SQLitePlaceCache{db: db}, nil
}

func (c *SQLitePlaceCache) GetSearch(ctx context.Context, key model.SearchKey) ([]*model.Place, bool) {
	var payload string
	var expiresAt time.Time
	err := c.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM search_cache WHERE key = ?`, key.String(),
	).Scan(&payload, &expiresAt)
	if err != nil {
		return nil, false
	}
	if time.Now().After(expiresAt) {
		return nil, false
	}

	var places []*model.Place
	if err := json.Unmarshal([]byte(payload), &places); err != nil {
		log.Printf("⚠️ 検索キャッシュのデコードに失敗 (key=%s): %v", key.String(), err)
		return nil, false
	}
	for _, p := range places {
		p.Source = model.SourceCache
	}
	return places, true
}

func (c *SQLitePlaceCache) PutSearch(ctx context.Context, key model.SearchKey, places []*model.Place) error {
	payload, err := json.Marshal(places)
	if err != nil {
		return fmt.Errorf("検索結果のエンコードに失敗: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO search_cache (key, payload, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload=excluded.payload, expires_at=excluded.expires_at
	`, key.String(), string(payload), time.Now().Add(searchCacheTTL))
	if err != nil {
		return fmt.Errorf("検索キャッシュの書き込みに失敗: %w", err)
	}

	// 空間検索用にスポット単位でも保存する（詳細よりTTLが短い点に注意）
	for _, p := range places {
		if err := c.upsertPlace(ctx, p, searchCacheTTL); err != nil {
			return err
		}
	}
	return nil
}

func (c *SQLitePlaceCache) GetDetails(ctx context.Context, placeID string) (*model.Place, bool) {
	var payload string
	var expiresAt time.Time
	err := c.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM cached_places WHERE id = ?`, placeID,
	).Scan(&payload, &expiresAt)
	if err != nil {
		return nil, false
	}
	if time.Now().After(expiresAt) {
		return nil, false
	}

	var place model.Place
	if err := json.Unmarshal([]byte(payload), &place); err != nil {
		log.Printf("⚠️ 詳細キャッシュのデコードに失敗 (id=%s): %v", placeID, err)
		return nil, false
	}
	// 詳細取得済みでなければ詳細キャッシュとしては扱わない
	if !place.Enriched {
		return nil, false
	}
	return &place, true
}

func (c *SQLitePlaceCache) PutDetails(ctx context.Context, place *model.Place) error {
	return c.upsertPlace(ctx, place, detailsCacheTTL)
}

// Nearby は矩形で粗く絞ってから実距離で確定する空間検索
func (c *SQLitePlaceCache) Nearby(ctx context.Context, location model.LatLng, radiusMeters int) ([]*model.Place, error) {
	latDelta, lngDelta := helper.BoundingDeltas(location.Lat, radiusMeters)

	rows, err := c.db.QueryContext(ctx, `
		SELECT payload FROM cached_places
		WHERE lat BETWEEN ? AND ?
		  AND lng BETWEEN ? AND ?
		  AND expires_at > ?
		ORDER BY id
	`, location.Lat-latDelta, location.Lat+latDelta,
		location.Lng-lngDelta, location.Lng+lngDelta, time.Now())
	if err != nil {
		return nil, fmt.Errorf("空間検索に失敗: %w", err)
	}
	defer rows.Close()

	var places []*model.Place
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var place model.Place
		if err := json.Unmarshal([]byte(payload), &place); err != nil {
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

func (c *SQLitePlaceCache) upsertPlace(ctx context.Context, place *model.Place, ttl time.Duration) error {
	payload, err := json.Marshal(place)
	if err != nil {
		return fmt.Errorf("スポットのエンコードに失敗: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO cached_places (id, name, lat, lng, payload, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, lat=excluded.lat, lng=excluded.lng,
			payload=excluded.payload, expires_at=excluded.expires_at
	`, place.CanonicalID(), place.Name, place.Location.Lat, place.Location.Lng,
		string(payload), time.Now().Add(ttl))
	if err != nil {
		return fmt.Errorf("スポットキャッシュの書き込みに失敗: %w", err)
	}
	return nil
}

// Close はDB接続を閉じる
func (c *SQLitePlaceCache) Close() error {
	return c.db.Close()
}
