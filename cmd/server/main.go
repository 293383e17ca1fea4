package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-market/internal/clock"
	"github.com/iliyamo/auction-market/internal/config"
	"github.com/iliyamo/auction-market/internal/database"
	"github.com/iliyamo/auction-market/internal/handler"
	"github.com/iliyamo/auction-market/internal/middleware"
	"github.com/iliyamo/auction-market/internal/queue"
	"github.com/iliyamo/auction-market/internal/repository"
	"github.com/iliyamo/auction-market/internal/router"
	"github.com/iliyamo/auction-market/internal/service"
	"github.com/iliyamo/auction-market/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	uploads, err := storage.NewLocal(cfg.UploadDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	auctionRepo := repository.NewAuctionRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	dashboardRepo := repository.NewDashboardRepo(db)
	likeRepo := repository.NewLikeRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	store := service.NewSQLStore(auctionRepo, categoryRepo, dashboardRepo)
	svc := service.NewAuctionService(store, queue.NewPublisher(), clock.System())

	// Background consumer mirrors bid/close events into logs/auction.log.
	// It reconnects on its own; a dead broker only costs the event log.
	go func() {
		if err := queue.StartAuctionConsumer(); err != nil {
			log.Printf("auction-consumer: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	// Redis is optional: a nil client disables the response cache and the
	// rate limiter, both middlewares degrade to pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis: unavailable, cache and rate limit disabled")
	}
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	ratelimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	auctionHandler := handler.NewAuctionHandler(svc, categoryRepo, uploads)
	likeHandler := handler.NewLikeHandler(likeRepo, clock.System())
	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler)
	router.RegisterPublic(e, auctionHandler, cache)
	router.RegisterProtected(e, auctionHandler, likeHandler, cfg.JWTSecret, ratelimit)
	e.Static("/uploads", uploads.Dir())

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
