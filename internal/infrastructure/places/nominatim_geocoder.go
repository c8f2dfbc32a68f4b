package places

import (
	"context"
	"fmt"
	"strconv"

	"github.com/muesli/gominatim"

	"Meguri-App/internal/domain/model"
	"Meguri-App/internal/domain/repository"
)

const defaultNominatimServer = "https://nominatim.openstreetmap.org"

// NominatimGeocoder は住所文字列を座標に変換するジオコーダ
type NominatimGeocoder struct{}

func NewNominatimGeocoder(server string) repository.Geocoder {
	if server == "" {
		server = defaultNominatimServer
	}
	gominatim.SetServer(server)
	return &NominatimGeocoder{}
}

// Geocode は最上位の検索結果の座標を返す。該当なしはエラー
func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (model.LatLng, error) {
	query := gominatim.SearchQuery{
		Q:     address,
		Limit: 1,
	}
	results, err := query.Get()
	if err != nil {
		return model.LatLng{}, fmt.Errorf("ジオコーディングに失敗 (%q): %w", address, err)
	}
	if len(results) == 0 {
		return model.LatLng{}, fmt.Errorf("住所に該当する場所が見つかりません: %q", address)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return model.LatLng{}, fmt.Errorf("緯度のパースに失敗: %w", err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return model.LatLng{}, fmt.Errorf("経度のパースに失敗: %w", err)
	}
	return model.LatLng{Lat: lat, Lng: lng}, nil
}
