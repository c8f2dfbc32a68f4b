package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"Meguri-App/internal/domain/model"
	"Meguri-App/internal/domain/repository"
)

const googlePlacesBaseURL = "https://maps.googleapis.com/maps/api/place"

// GooglePlacesProvider はGoogle Places APIを使った一次検索プロバイダ
type GooglePlacesProvider struct {
	apiKey     string
	httpClient *http.Client
}

func NewGooglePlacesProvider(apiKey string) repository.PlacesProvider {
	return &GooglePlacesProvider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type googlePlacesResult struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Types    []string `json:"types"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Rating           float64 `json:"rating,omitempty"`
	UserRatingsTotal int     `json:"user_ratings_total,omitempty"`
	PriceLevel       int     `json:"price_level,omitempty"`
	BusinessStatus   string  `json:"business_status,omitempty"`
	OpeningHours     *struct {
		WeekdayText []string `json:"weekday_text,omitempty"`
	} `json:"opening_hours,omitempty"`
	EditorialSummary *struct {
		Overview string `json:"overview,omitempty"`
	} `json:"editorial_summary,omitempty"`
	Photos []struct {
		PhotoReference string `json:"photo_reference"`
	} `json:"photos,omitempty"`
}

type googlePlacesResponse struct {
	Results []googlePlacesResult `json:"results"`
	Result  *googlePlacesResult  `json:"result,omitempty"` // 詳細取得時のみ
	Status  string               `json:"status"`
}

// SearchByCategory はNearby Search APIでタイプ検索を行う
func (p *GooglePlacesProvider) SearchByCategory(ctx context.Context, location model.LatLng, radiusMeters int, placeType string) ([]*model.Place, error) {
	apiURL := fmt.Sprintf(
		"%s/nearbysearch/json?location=%f,%f&radius=%d&type=%s&key=%s",
		googlePlacesBaseURL, location.Lat, location.Lng, radiusMeters,
		url.QueryEscape(placeType), url.QueryEscape(p.apiKey),
	)
	resp, err := p.do(ctx, apiURL)
	if err != nil {
		return nil, err
	}
	return parseResults(resp.Results), nil
}

// SearchByKeyword はText Search APIでキーワード検索を行う
func (p *GooglePlacesProvider) SearchByKeyword(ctx context.Context, location model.LatLng, radiusMeters int, keyword string) ([]*model.Place, error) {
	apiURL := fmt.Sprintf(
		"%s/textsearch/json?query=%s&location=%f,%f&radius=%d&key=%s",
		googlePlacesBaseURL, url.QueryEscape(keyword),
		location.Lat, location.Lng, radiusMeters, url.QueryEscape(p.apiKey),
	)
	resp, err := p.do(ctx, apiURL)
	if err != nil {
		return nil, err
	}
	return parseResults(resp.Results), nil
}

// GetPlaceDetails はPlace Details APIで詳細情報を取得する
func (p *GooglePlacesProvider) GetPlaceDetails(ctx context.Context, placeID string) (*model.Place, error) {
	// 収集時に付けた "gpl:" プレフィックスを剥がす
	externalID := placeID
	if len(externalID) > 4 && externalID[:4] == "gpl:" {
		externalID = externalID[4:]
	}

	apiURL := fmt.Sprintf(
		"%s/details/json?place_id=%s&fields=place_id,name,geometry,types,rating,user_ratings_total,price_level,business_status,opening_hours,editorial_summary,photos&key=%s",
		googlePlacesBaseURL, url.QueryEscape(externalID), url.QueryEscape(p.apiKey),
	)
	resp, err := p.do(ctx, apiURL)
	if err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("詳細情報が空でした: %s", placeID)
	}
	place := toPlace(*resp.Result)
	place.Enriched = true
	return place, nil
}

func (p *GooglePlacesProvider) do(ctx context.Context, apiURL string) (*googlePlacesResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Google Places APIへのリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Google Places APIがステータス%dを返しました", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var gResp googlePlacesResponse
	if err := json.Unmarshal(body, &gResp); err != nil {
		return nil, fmt.Errorf("レスポンスのパースに失敗: %w", err)
	}
	if gResp.Status != "OK" && gResp.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("Google Places APIエラー: %s", gResp.Status)
	}
	return &gResp, nil
}

func parseResults(results []googlePlacesResult) []*model.Place {
	places := make([]*model.Place, 0, len(results))
	for _, r := range results {
		if r.Name == "" || (r.Geometry.Location.Lat == 0 && r.Geometry.Location.Lng == 0) {
			continue
		}
		places = append(places, toPlace(r))
	}
	return places
}

func toPlace(r googlePlacesResult) *model.Place {
	place := &model.Place{
		ID:             "gpl:" + r.PlaceID,
		Name:           r.Name,
		Location:       model.LatLng{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		Types:          r.Types,
		Rating:         r.Rating,
		ReviewCount:    r.UserRatingsTotal,
		PriceLevel:     r.PriceLevel,
		BusinessStatus: r.BusinessStatus,
		Source:         model.SourcePrimary,
	}
	if r.OpeningHours != nil {
		place.OpeningHours = r.OpeningHours.WeekdayText
	}
	if r.EditorialSummary != nil {
		place.Summary = r.EditorialSummary.Overview
	}
	for _, photo := range r.Photos {
		place.PhotoRefs = append(place.PhotoRefs, photo.PhotoReference)
	}
	return place
}
