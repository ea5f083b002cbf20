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

	"arcade/internal/application/usecase"
	"arcade/internal/config"
	"arcade/internal/domain"
	"arcade/internal/infrastructure/cache"
	"arcade/internal/infrastructure/repository"
	"arcade/internal/infrastructure/security"
	"arcade/internal/middleware"
	handlers "arcade/internal/transport/http"
	"arcade/internal/transport/ws"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	// TranslateError нужен, чтобы дубликат username ловился как gorm.ErrDuplicatedKey
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	log.Println("Running migrations...")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Profile{},
		&domain.GameSession{},
		&domain.LeaderboardEntry{},
		&domain.Achievement{},
	); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)

	tokenCache := cache.NewTokenCache(rdb)
	hasher := security.NewPasswordHasher()
	tokenManager := security.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret)

	authUseCase := usecase.NewAuthUseCase(userRepo, profileRepo, tokenCache, hasher, tokenManager)
	rateLimiter := middleware.NewRateLimiter(rdb)

	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := ws.NewHub(rdb)
	go hub.Run(hubCtx)

	router := handlers.NewRouter(
		handlers.NewAuthHandler(authUseCase),
		handlers.NewProfileHandler(profileRepo, userRepo),
		handlers.NewSessionHandler(sessionRepo),
		handlers.NewLeaderboardHandler(leaderboardRepo),
		handlers.NewAchievementHandler(achievementRepo),
		ws.NewChatHandler(hub, authUseCase, userRepo),
		authUseCase,
		rateLimiter,
		cfg.AllowedOrigins,
	)

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Arcade backend running on %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Println("Shutting down server...")
	stopHub()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
