// cmd/api/main.go
// Sitter matching API: bootstrap, routing and graceful shutdown

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imadgeboyega/sitter-backend/internal/auth"
	"github.com/imadgeboyega/sitter-backend/internal/common/database"
	"github.com/imadgeboyega/sitter-backend/internal/common/ratelimit"
	"github.com/imadgeboyega/sitter-backend/internal/config"
	"github.com/imadgeboyega/sitter-backend/internal/marketplace"
	"github.com/imadgeboyega/sitter-backend/internal/matching"
	"github.com/imadgeboyega/sitter-backend/internal/pricing"
	"github.com/imadgeboyega/sitter-backend/internal/recommendations"
	"github.com/imadgeboyega/sitter-backend/internal/trust"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Sitter Matching API")
	log.Println("========================================")

	// 1. Environment
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed: ", err)
	}
	scoring, err := config.LoadScoring(cfg.ScoringConfigFile)
	if err != nil {
		log.Fatal("❌ Scoring configuration invalid: ", err)
	}
	log.Println("✅ Configuration is valid")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. PostgreSQL
	log.Println("\n🗄️  Step 3: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDBFromURL(ctx, cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()
	if err := marketplace.Migrate(ctx, db); err != nil {
		log.Fatal("❌ Migration error: ", err)
	}
	log.Println("✅ Connected to PostgreSQL and schema is up to date")

	// 4. Redis (optional)
	log.Println("\n📮 Step 4: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  %v, continuing without Redis", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis successfully")
		}
	} else {
		log.Println("⚠️  Redis URL not configured, skipping Redis connection")
	}

	// 5. Engines
	log.Println("\n🧮 Step 5: Initializing scoring engines...")
	matcher, err := matching.NewEngine(scoring.MatchWeights, scoring.MatchOptions()...)
	if err != nil {
		log.Fatal("❌ Match engine: ", err)
	}
	trustEngine, err := trust.NewEngine(scoring.TrustWeights)
	if err != nil {
		log.Fatal("❌ Trust engine: ", err)
	}
	demand := pricing.NewRegionalDemand(cfg.DemandCellDegrees)
	engines := marketplace.Engines{
		Matching:        matcher,
		Trust:           trustEngine,
		Pricing:         pricing.NewEngine(demand),
		Demand:          demand,
		Recommendations: recommendations.NewEngine(),
	}
	log.Printf("✅ Engines ready (min match score %.2f)", matcher.MinScore())

	// 6. Marketplace service
	log.Println("\n🧩 Step 6: Initializing marketplace...")
	var (
		cache   marketplace.ResultCache
		counter ratelimit.Counter
	)
	if redisClient != nil {
		cache = marketplace.NewRedisCache(redisClient)
		counter = ratelimit.NewRedisCounter(redisClient)
		log.Println("   ✅ Using Redis for match cache and rate limits")
	} else {
		cache = marketplace.NopCache()
		counter = ratelimit.NewMemoryCounter(nil)
		log.Println("   ⚠️  Match cache disabled, rate limits kept in memory")
	}

	repo := marketplace.NewPostgresRepository(db)
	service := marketplace.NewService(repo, cache, cfg.MatchCacheTTL, engines)
	handler := marketplace.NewHandler(service)

	scheduler := marketplace.NewScheduler(service, cfg.DemandRefreshInterval)
	scheduler.Start(ctx)
	log.Printf("✅ Demand refresh scheduled every %s", cfg.DemandRefreshInterval)

	// 7. Routes
	log.Println("\n🛣️  Step 7: Setting up routes...")
	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)
	limiter := ratelimit.NewLimiter(counter, cfg.RateLimitMax, cfg.RateLimitWindow)
	marketplace.RegisterRoutes(router, handler, authMiddleware, limiter)

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)
	log.Println("✅ Routes registered")

	// 8. HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("\n========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server: ", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n⚠️  Shutdown signal received...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("👋 Server exited")
}
