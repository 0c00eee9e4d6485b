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

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"coursehub/config"
	"coursehub/internal/application/usecase"
	"coursehub/internal/infrastructure/cache"
	"coursehub/internal/infrastructure/repository"
	"coursehub/internal/infrastructure/security"
	"coursehub/internal/infrastructure/suggest"
	handlers "coursehub/internal/transport/http"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := db.AutoMigrate(&repository.UserGorm{}, &repository.CourseGorm{}, &repository.EnrollmentGorm{}); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	tokenCache := cache.NewTokenCache(rdb, cfg.RefreshTTL)
	hasher := security.NewPasswordHasher()
	tokenManager := security.NewTokenManager(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)

	suggestProvider := suggest.NewOpenAI(cfg.AIAPIURL, cfg.AIAPIKey, cfg.AIModel)

	authUseCase := usecase.NewAuthUseCase(userRepo, tokenCache, hasher, tokenManager)
	courseUseCase := usecase.NewCourseUseCase(courseRepo, enrollmentRepo, userRepo)
	suggestUseCase := usecase.NewSuggestUseCase(suggestProvider, courseRepo)

	authHandler := handlers.NewAuthHandler(authUseCase)
	courseHandler := handlers.NewCourseHandler(courseUseCase)
	aiHandler := handlers.NewAiHandler(suggestUseCase)
	limiter := handlers.NewRateLimiter(rdb)

	router := handlers.NewRouter(authHandler, courseHandler, aiHandler, limiter, authUseCase, cfg.CORSOriginList())

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	log.Printf("Course catalog server is running on port %s...", cfg.HTTPPort)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
