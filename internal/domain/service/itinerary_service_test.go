package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Meguri-App/internal/domain/model"
)

// fakeGeocoder はテスト用のジオコーダ
type fakeGeocoder struct {
	result model.LatLng
	err    error
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) (model.LatLng, error) {
	if f.err != nil {
		return model.LatLng{}, f.err
	}
	return f.result, nil
}

func newTestService(provider *fakeProvider, fallback *fakeFallback, geocoder *fakeGeocoder) ItineraryService {
	scorer := NewPlaceScorer(model.DefaultScoringConfig())
	cache := newFakeCache()
	return NewItineraryService(
		NewCandidateCollector(provider, fallback, cache),
		NewGoalMatcher(scorer),
		NewEnricher(provider, cache),
		NewDeduplicator(),
		NewRouteOptimizer(),
		NewBudgetTrimmer(),
		geocoder,
	)
}

func servicePlace(id, name string, types []string, lat, lng float64) *model.Place {
	return &model.Place{
		ID:          id,
		Name:        name,
		Location:    model.LatLng{Lat: lat, Lng: lng},
		Types:       types,
		Rating:      4.2,
		ReviewCount: 500,
		Source:      model.SourcePrimary,
	}
}

func onsiteRequest(goals []string, minutes int) *model.ItineraryRequest {
	return &model.ItineraryRequest{
		Origin:           &model.Location{Latitude: 52.23, Longitude: 21.01},
		Goals:            goals,
		RequestedMinutes: minutes,
		Scenario:         model.ScenarioOnsite,
	}
}

func TestGenerate_バーと博物館の180分シナリオ(t *testing.T) {
	provider := &fakeProvider{
		byType: map[string][]*model.Place{
			"bar":    {servicePlace("gpl:bar1", "Klar Cocktail Bar", []string{"bar"}, 52.2310, 21.0110)},
			"museum": {servicePlace("gpl:mus1", "Muzeum Narodowe", []string{"museum"}, 52.2320, 21.0090)},
		},
		byKeyword: map[string][]*model.Place{},
	}
	svc := newTestService(provider, &fakeFallback{}, &fakeGeocoder{})

	itinerary, err := svc.Generate(context.Background(), onsiteRequest([]string{model.GoalBars, model.GoalMuseums}, 180))

	require.NoError(t, err)
	assert.True(t, itinerary.Success)
	require.Len(t, itinerary.Stops, 2)
	// 博物館が先、バーは必ず最後
	assert.Equal(t, model.GoalMuseums, itinerary.Stops[0].Place.Goal)
	assert.Equal(t, model.GoalBars, itinerary.Stops[1].Place.Goal)
	assert.LessOrEqual(t, itinerary.TotalMinutes, 180)
	assert.Equal(t, 180, itinerary.RequestedMinutes)
}

func TestGenerate_候補ゼロのゴールは不足として必ず報告される(t *testing.T) {
	provider := &fakeProvider{
		byType: map[string][]*model.Place{
			"bar": {servicePlace("gpl:bar1", "Bar One", []string{"bar"}, 52.2310, 21.0110)},
		},
		byKeyword: map[string][]*model.Place{},
	}
	svc := newTestService(provider, &fakeFallback{}, &fakeGeocoder{})

	itinerary, err := svc.Generate(context.Background(), onsiteRequest([]string{model.GoalBars, model.GoalCoworking}, 180))

	require.NoError(t, err)
	assert.Contains(t, itinerary.InsufficientGoals,
		model.GoalShortfall{Goal: model.GoalCoworking, Have: 0, Need: model.DefaultMinPerGoal})
}

func TestGenerate_全ゴール空振りでも失敗行程を返しエラーにしない(t *testing.T) {
	provider := &fakeProvider{byType: map[string][]*model.Place{}, byKeyword: map[string][]*model.Place{}}
	svc := newTestService(provider, &fakeFallback{}, &fakeGeocoder{})

	itinerary, err := svc.Generate(context.Background(), onsiteRequest([]string{model.GoalMuseums}, 120))

	require.NoError(t, err)
	assert.False(t, itinerary.Success)
	assert.NotEmpty(t, itinerary.Reason)
	assert.Empty(t, itinerary.Stops)
}

func TestGenerate_異なるソースの同一店舗は1件にまとまる(t *testing.T) {
	// 同名・約10m差のスポットが一次ソースとオープンデータの両方から返るケース
	provider := &fakeProvider{
		byType: map[string][]*model.Place{
			"bar": {servicePlace("gpl:dup", "Bar Mleczny", []string{"bar"}, 52.23100, 21.01100)},
		},
		byKeyword: map[string][]*model.Place{},
	}
	osmTwin := servicePlace("osm:dup", "Bar Mleczny", []string{"bar"}, 52.23108, 21.01104)
	osmTwin.Source = model.SourceOpenData
	fallback := &fakeFallback{places: []*model.Place{osmTwin}}
	svc := newTestService(provider, fallback, &fakeGeocoder{})

	itinerary, err := svc.Generate(context.Background(), onsiteRequest([]string{model.GoalBars}, 180))

	require.NoError(t, err)
	require.Len(t, itinerary.Stops, 1)
	assert.Equal(t, "gpl:dup", itinerary.Stops[0].Place.Place.ID)
}

func TestGenerate_別ゴールで選ばれた同一店舗は1件にまとまる(t *testing.T) {
	// 同じ店（同名・約10m差・別の外部ID）がバー枠とローカルフード枠の
	// 両方から選ばれるケース。ゴール別の重複排除だけでは拾えない
	asBar := servicePlace("gpl:dup", "Bar Mleczny Prasowy", []string{"bar"}, 52.23100, 21.01100)
	asBar.ReviewCount = 5000
	asFood := servicePlace("osm:dup", "Bar Mleczny Prasowy", []string{"restaurant"}, 52.23108, 21.01104)
	asFood.ReviewCount = 100
	asFood.Source = model.SourceOpenData
	provider := &fakeProvider{
		byType: map[string][]*model.Place{
			"bar":        {asBar},
			"restaurant": {asFood},
		},
		byKeyword: map[string][]*model.Place{},
	}
	svc := newTestService(provider, &fakeFallback{}, &fakeGeocoder{})

	itinerary, err := svc.Generate(context.Background(),
		onsiteRequest([]string{model.GoalBars, model.GoalLocalFood}, 300))

	require.NoError(t, err)
	require.Len(t, itinerary.Stops, 1)
	// レビュー数の多い方のレコードが残る
	assert.Equal(t, "gpl:dup", itinerary.Stops[0].Place.Place.ID)
}

func TestGenerate_同一入力で同一の行程(t *testing.T) {
	provider := &fakeProvider{
		byType: map[string][]*model.Place{
			"bar": {
				servicePlace("gpl:b1", "Bar One", []string{"bar"}, 52.2310, 21.0110),
				servicePlace("gpl:b2", "Bar Two", []string{"bar"}, 52.2330, 21.0130),
			},
			"museum": {
				servicePlace("gpl:m1", "Museum One", []string{"museum"}, 52.2320, 21.0090),
				servicePlace("gpl:m2", "Museum Two", []string{"museum"}, 52.2340, 21.0070),
			},
		},
		byKeyword: map[string][]*model.Place{},
	}

	var totals []int
	var firstIDs []string
	for i := 0; i < 3; i++ {
		svc := newTestService(provider, &fakeFallback{}, &fakeGeocoder{})
		itinerary, err := svc.Generate(context.Background(), onsiteRequest([]string{model.GoalBars, model.GoalMuseums}, 300))
		require.NoError(t, err)
		totals = append(totals, itinerary.TotalMinutes)
		var ids []string
		for _, stop := range itinerary.Stops {
			ids = append(ids, stop.Place.Place.ID)
		}
		if firstIDs == nil {
			firstIDs = ids
		} else {
			assert.Equal(t, firstIDs, ids)
		}
	}
	assert.Equal(t, totals[0], totals[1])
	assert.Equal(t, totals[1], totals[2])
}

func TestGenerate_住所指定はジオコーディングされる(t *testing.T) {
	provider := &fakeProvider{
		byType: map[string][]*model.Place{
			"museum": {servicePlace("gpl:m1", "Museum", []string{"museum"}, 52.2320, 21.0090)},
		},
		byKeyword: map[string][]*model.Place{},
	}
	geocoder := &fakeGeocoder{result: model.LatLng{Lat: 52.23, Lng: 21.01}}
	svc := newTestService(provider, &fakeFallback{}, geocoder)

	itinerary, err := svc.Generate(context.Background(), &model.ItineraryRequest{
		OriginAddress:    "Warszawa, Plac Defilad 1",
		Goals:            []string{model.GoalMuseums},
		RequestedMinutes: 180,
		Scenario:         model.ScenarioOnsite,
	})

	require.NoError(t, err)
	assert.True(t, itinerary.Success)
}

func TestGenerate_ジオコーディング失敗はエラー(t *testing.T) {
	svc := newTestService(
		&fakeProvider{byType: map[string][]*model.Place{}, byKeyword: map[string][]*model.Place{}},
		&fakeFallback{},
		&fakeGeocoder{err: errors.New("該当なし")})

	_, err := svc.Generate(context.Background(), &model.ItineraryRequest{
		OriginAddress:    "存在しない住所",
		Goals:            []string{model.GoalMuseums},
		RequestedMinutes: 180,
		Scenario:         model.ScenarioOnsite,
	})

	assert.Error(t, err)
}

func TestGenerate_出発地点もゴールも無ければ入力エラー(t *testing.T) {
	svc := newTestService(
		&fakeProvider{byType: map[string][]*model.Place{}, byKeyword: map[string][]*model.Place{}},
		&fakeFallback{}, &fakeGeocoder{})

	_, err := svc.Generate(context.Background(), &model.ItineraryRequest{
		Goals:    nil,
		Scenario: model.ScenarioOnsite,
	})
	assert.ErrorIs(t, err, model.ErrNoGoals)

	_, err = svc.Generate(context.Background(), &model.ItineraryRequest{
		Goals:    []string{model.GoalBars},
		Scenario: model.ScenarioOnsite,
	})
	assert.ErrorIs(t, err, model.ErrOriginRequired)
}

func TestGenerate_複数日モードは日番号付きで分割される(t *testing.T) {
	var parks []*model.Place
	for i := 0; i < 10; i++ {
		parks = append(parks, servicePlace(
			"gpl:p"+string(rune('a'+i)), "Park "+string(rune('A'+i)),
			[]string{"park"}, 52.2310+float64(i)*0.002, 21.0110))
	}
	provider := &fakeProvider{
		byType:    map[string][]*model.Place{"park": parks},
		byKeyword: map[string][]*model.Place{},
	}
	svc := newTestService(provider, &fakeFallback{}, &fakeGeocoder{})

	itinerary, err := svc.Generate(context.Background(), &model.ItineraryRequest{
		Origin:   &model.Location{Latitude: 52.23, Longitude: 21.01},
		Goals:    []string{model.GoalParks},
		Days:     2,
		Scenario: model.ScenarioPlanning,
	})

	require.NoError(t, err)
	assert.True(t, itinerary.Success)
	assert.NotEmpty(t, itinerary.Stops)
	assert.LessOrEqual(t, len(itinerary.Stops), 2*model.DefaultPlacesPerDay)
	for _, stop := range itinerary.Stops {
		assert.GreaterOrEqual(t, stop.Day, 1)
		assert.LessOrEqual(t, stop.Day, 2)
	}
}

func TestGenerate_複数日の再収集でも不足報告の基準は変わらない(t *testing.T) {
	// 候補1件のゴールで複数日モード: 収集予算を拡大した再実行が走るが、
	// 不足報告のneedは利用者の指定した最低確保数のまま
	provider := &fakeProvider{
		byType: map[string][]*model.Place{
			"park": {servicePlace("gpl:p1", "Park Jeden", []string{"park"}, 52.2310, 21.0110)},
		},
		byKeyword: map[string][]*model.Place{},
	}
	svc := newTestService(provider, &fakeFallback{}, &fakeGeocoder{})

	itinerary, err := svc.Generate(context.Background(), &model.ItineraryRequest{
		Origin:   &model.Location{Latitude: 52.23, Longitude: 21.01},
		Goals:    []string{model.GoalParks},
		Days:     2,
		Scenario: model.ScenarioPlanning,
	})

	require.NoError(t, err)
	require.Len(t, itinerary.InsufficientGoals, 1)
	assert.Equal(t,
		model.GoalShortfall{Goal: model.GoalParks, Have: 1, Need: model.DefaultMinPerGoal},
		itinerary.InsufficientGoals[0])
}

func TestGenerate_時間予算と日数の入力検証(t *testing.T) {
	svc := newTestService(
		&fakeProvider{byType: map[string][]*model.Place{}, byKeyword: map[string][]*model.Place{}},
		&fakeFallback{}, &fakeGeocoder{})
	origin := &model.Location{Latitude: 52.23, Longitude: 21.01}

	_, err := svc.Generate(context.Background(), &model.ItineraryRequest{
		Origin:   origin,
		Goals:    []string{model.GoalBars},
		Scenario: model.ScenarioOnsite,
	})
	assert.ErrorIs(t, err, model.ErrInvalidTimeBudget)

	_, err = svc.Generate(context.Background(), &model.ItineraryRequest{
		Origin:   origin,
		Goals:    []string{model.GoalBars},
		Scenario: model.ScenarioPlanning,
	})
	assert.ErrorIs(t, err, model.ErrInvalidDays)
}

func TestGenerate_予算を必ず守る(t *testing.T) {
	provider := &fakeProvider{
		byType: map[string][]*model.Place{
			"museum": {
				servicePlace("gpl:m1", "Museum One", []string{"museum"}, 52.2320, 21.0090),
				servicePlace("gpl:m2", "Museum Two", []string{"museum"}, 52.2340, 21.0070),
				servicePlace("gpl:m3", "Museum Three", []string{"museum"}, 52.2360, 21.0050),
			},
		},
		byKeyword: map[string][]*model.Place{},
	}

	for _, budget := range []int{60, 120, 200, 400} {
		svc := newTestService(provider, &fakeFallback{}, &fakeGeocoder{})
		itinerary, err := svc.Generate(context.Background(), onsiteRequest([]string{model.GoalMuseums}, budget))
		require.NoError(t, err)
		assert.LessOrEqual(t, itinerary.TotalMinutes, budget, "予算%d分を超過", budget)
	}
}
