package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/exam-seat-booking/internal/config"
	"github.com/iliyamo/exam-seat-booking/internal/database"
	"github.com/iliyamo/exam-seat-booking/internal/engine"
	"github.com/iliyamo/exam-seat-booking/internal/handler"
	"github.com/iliyamo/exam-seat-booking/internal/middleware"
	"github.com/iliyamo/exam-seat-booking/internal/queue"
	"github.com/iliyamo/exam-seat-booking/internal/repository"
	"github.com/iliyamo/exam-seat-booking/internal/router"
	"github.com/iliyamo/exam-seat-booking/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	blobs, err := storage.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rounds := repository.NewRoundRepo(db)
	bookings := repository.NewBookingRepo(db)

	// The engine serializes seat accounting per round.
	eng := engine.New(rounds, bookings, blobs)

	// Redis-backed extras degrade to pass-throughs when Redis is down.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Background consumer that journals verified bookings.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, &handler.PublicHandler{Rounds: rounds}, cache)
	router.RegisterApplicant(e, handler.NewBookingHandler(eng, bookings, rounds), cfg.JWTSecret, limiter)
	router.RegisterAdmin(e,
		handler.NewAdminRoundHandler(rounds),
		handler.NewAdminBookingHandler(eng, bookings, rounds),
		cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
