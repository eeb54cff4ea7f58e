package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/senshuken/championship-system/config"
	"github.com/senshuken/championship-system/db"
	"github.com/senshuken/championship-system/handlers"
	"github.com/senshuken/championship-system/middleware"
	"github.com/senshuken/championship-system/repositories"
	api "github.com/senshuken/championship-system/routes"
	"github.com/senshuken/championship-system/services"
	"github.com/senshuken/championship-system/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Configuration loaded")

	// Подключение к базе данных
	database, err := db.Connect(cfg.DatabaseURL, 10*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("Database connection established")

	// Инициализация подписи загрузок (Cloudflare R2)
	uploadSigner, err := storage.NewCloudflareR2Signer(storage.CloudflareR2SignerConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 signer", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 signer initialized")

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(database)
	championshipRepo := repositories.NewPostgresChampionshipRepository(database)
	answerRepo := repositories.NewPostgresAnswerRepository(database)
	likeRepo := repositories.NewPostgresLikeRepository(database)
	commentRepo := repositories.NewPostgresCommentRepository(database)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	userService := services.NewUserService(userRepo)
	championshipService := services.NewChampionshipService(championshipRepo, userRepo)
	answerService := services.NewAnswerService(answerRepo, championshipRepo, userRepo, uploadSigner)
	interactionService := services.NewInteractionService(answerRepo, likeRepo, commentRepo)
	logger.Info("Services initialized")

	// Аутентификация: проверка токена плюс first-seen регистрация пользователя.
	// Статусы чемпионатов вычисляются при чтении, фоновый планировщик не нужен.
	authenticator := middleware.NewAuthenticator(middleware.NewJWTVerifier(cfg.JWTSecretKey), userService)

	// Инициализация обработчиков HTTP
	championshipHandler := handlers.NewChampionshipHandler(championshipService)
	answerHandler := handlers.NewAnswerHandler(answerService)
	interactionHandler := handlers.NewInteractionHandler(interactionService)
	userHandler := handlers.NewUserHandler(userService, championshipService, answerService)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		championshipHandler,
		answerHandler,
		interactionHandler,
		userHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
