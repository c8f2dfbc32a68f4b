package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"Meguri-App/internal/domain/model"
	"Meguri-App/internal/domain/repository"
)

const overpassAPIURL = "https://overpass-api.de/api/interpreter"

// OverpassProvider はOSMのOverpass APIを使ったオープンデータのフォールバック検索。
// 一次ソースで候補が不足したゴールの補完にのみ使う
type OverpassProvider struct {
	httpClient *http.Client
	userAgent  string
}

func NewOverpassProvider() repository.FallbackProvider {
	return &OverpassProvider{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "Meguri-App/1.0",
	}
}

type overpassElement struct {
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

// SearchByTags は "amenity=bar" 形式のタグでノードを検索する
func (p *OverpassProvider) SearchByTags(ctx context.Context, location model.LatLng, radiusMeters int, tags []string) ([]*model.Place, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	var b strings.Builder
	b.WriteString("[out:json][timeout:25];\n(\n")
	for _, tag := range tags {
		key, value, found := strings.Cut(tag, "=")
		if !found {
			continue
		}
		fmt.Fprintf(&b, "  node[%q=%q](around:%d,%f,%f);\n", key, value, radiusMeters, location.Lat, location.Lng)
	}
	b.WriteString(");\nout body;")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, overpassAPIURL,
		strings.NewReader("data="+url.QueryEscape(b.String())))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Overpass APIへのリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Overpass APIがステータス%dを返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var ovResp overpassResponse
	if err := json.Unmarshal(body, &ovResp); err != nil {
		return nil, fmt.Errorf("レスポンスのパースに失敗: %w", err)
	}

	return parseElements(ovResp.Elements), nil
}

// parseElements はOSMノードを候補モデルに変換する。名前の無いノードは除外する
func parseElements(elements []overpassElement) []*model.Place {
	places := make([]*model.Place, 0, len(elements))
	for _, el := range elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}

		var types []string
		for _, key := range []string{"amenity", "shop", "tourism", "leisure", "office"} {
			if v, ok := el.Tags[key]; ok {
				types = append(types, v)
			}
		}

		places = append(places, &model.Place{
			ID:       fmt.Sprintf("osm:%d", el.ID),
			Name:     name,
			Location: model.LatLng{Lat: el.Lat, Lng: el.Lon},
			Types:    types,
			Source:   model.SourceOpenData,
		})
	}
	return places
}
