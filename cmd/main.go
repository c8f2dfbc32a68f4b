package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"Meguri-App/internal/domain/model"
	domainrepo "Meguri-App/internal/domain/repository"
	"Meguri-App/internal/domain/service"
	"Meguri-App/internal/handler"
	"Meguri-App/internal/infrastructure/cache"
	"Meguri-App/internal/infrastructure/database"
	"Meguri-App/internal/infrastructure/firestore"
	"Meguri-App/internal/infrastructure/places"
	repoImpl "Meguri-App/internal/repository"
	"Meguri-App/internal/usecase"
)

const defaultSQLiteCachePath = "data/places_cache.db"

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	apiKey := os.Getenv("GOOGLE_PLACES_API_KEY")
	if apiKey == "" {
		fmt.Println("⚠️  環境変数が設定されていません:")
		fmt.Println("必要な環境変数: GOOGLE_PLACES_API_KEY")
		fmt.Println("任意の環境変数: GCP_PROJECT_ID, DATABASE_URL, PLACES_CACHE_PATH, CACHE_DRIVER, NOMINATIM_SERVER, PORT")
		fmt.Println("\n.envファイルを作成するか、環境変数を設定してください")
		log.Fatal("Environment variables not set")
	}

	ctx := context.Background()

	// キャッシュ層の選択（memory | sqlite | postgres）
	placeCache := buildPlaceCache()

	// 検索プロバイダ
	placesProvider := places.NewGooglePlacesProvider(apiKey)
	fallbackProvider := places.NewOverpassProvider()
	geocoder := places.NewNominatimGeocoder(os.Getenv("NOMINATIM_SERVER"))

	// ドメインサービスの組み立て
	scorer := service.NewPlaceScorer(model.DefaultScoringConfig())
	itineraryService := service.NewItineraryService(
		service.NewCandidateCollector(placesProvider, fallbackProvider, placeCache),
		service.NewGoalMatcher(scorer),
		service.NewEnricher(placesProvider, placeCache),
		service.NewDeduplicator(),
		service.NewRouteOptimizer(),
		service.NewBudgetTrimmer(),
		geocoder,
	)

	// Firestoreは任意（未設定なら保存をスキップして動作する）
	var itineraryRepo domainrepo.ItineraryRepository
	if projectID := os.Getenv("GCP_PROJECT_ID"); projectID != "" {
		fsClient, err := firestore.NewFirestoreClient(ctx, projectID)
		if err != nil {
			log.Printf("⚠️ Firestore初期化失敗（保存なしで継続）: %v", err)
		} else {
			defer fsClient.Close()
			itineraryRepo = repoImpl.NewFirestoreItineraryRepository(fsClient.GetClient(), 72)
		}
	} else {
		log.Println("⚠️ GCP_PROJECT_ID未設定のため行程の保存は無効")
	}

	itineraryUseCase := usecase.NewItineraryUseCase(itineraryService, itineraryRepo)
	itineraryHandler := handler.NewItineraryHandler(itineraryUseCase)

	// Ginルーターのセットアップ
	r := gin.Default()

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "Meguri-App"})
	})

	itineraries := r.Group("/itineraries")
	{
		itineraries.POST("", itineraryHandler.PostItinerary)
		itineraries.GET("/:id", itineraryHandler.GetItinerary)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("Meguri-App server starting on :%s...\n", port)
	log.Fatal(r.Run(":" + port))
}

// buildPlaceCache はCACHE_DRIVERに応じたキャッシュ実装を返す。
// 初期化に失敗した場合はインメモリにフォールバックする
func buildPlaceCache() domainrepo.PlaceCache {
	switch os.Getenv("CACHE_DRIVER") {
	case "postgres":
		pgClient, err := database.NewPostgreSQLClient()
		if err != nil {
			log.Printf("⚠️ PostgreSQL初期化失敗、インメモリキャッシュで継続: %v", err)
			return cache.NewMemoryPlaceCache()
		}
		pgCache, err := repoImpl.NewPostgresPlaceCacheRepository(pgClient)
		if err != nil {
			log.Printf("⚠️ PostgreSQLキャッシュ初期化失敗、インメモリキャッシュで継続: %v", err)
			return cache.NewMemoryPlaceCache()
		}
		log.Println("✅ PostgreSQLキャッシュを使用")
		return pgCache
	case "sqlite":
		dbPath := os.Getenv("PLACES_CACHE_PATH")
		if dbPath == "" {
			dbPath = defaultSQLiteCachePath
		}
		sqliteCache, err := cache.NewSQLitePlaceCache(dbPath)
		if err != nil {
			log.Printf("⚠️ SQLiteキャッシュ初期化失敗、インメモリキャッシュで継続: %v", err)
			return cache.NewMemoryPlaceCache()
		}
		log.Printf("✅ SQLiteキャッシュを使用: %s", dbPath)
		return sqliteCache
	default:
		log.Println("✅ インメモリキャッシュを使用")
		return cache.NewMemoryPlaceCache()
	}
}
