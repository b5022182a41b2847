package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"bazaarlink/internal/adapter/api"
	"bazaarlink/internal/adapter/api/handler"
	apimiddleware "bazaarlink/internal/adapter/api/middleware"
	"bazaarlink/internal/adapter/api/router"
	"bazaarlink/internal/adapter/repository"
	"bazaarlink/internal/infrastructure/firebase"
	"bazaarlink/internal/infrastructure/ratelimit"
	"bazaarlink/internal/infrastructure/realtime"
	"bazaarlink/internal/usecase"
	"bazaarlink/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption

	// Service account from environment variable (for production), file path
	// as fallback (for local development)
	if serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	} else if serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"); serviceAccountPath != "" {
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}
		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opts = append(opts, option.WithCredentialsFile(serviceAccountPath))
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	fbAuthClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	sessionRepo := repository.NewFirestoreSessionRepository(firestoreClient)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)

	authClient := firebase.NewAuthClient(fbAuthClient)

	registry := realtime.NewRegistry()

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	sessionUseCase := usecase.NewSessionUseCase(sessionRepo, rateLimiter)
	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo, registry)
	dispatchUseCase := usecase.NewDispatchUseCase(sessionRepo, sessionUseCase, notificationUseCase, registry, rateLimiter)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)

	sessionHandler := handler.NewSessionHandler(sessionUseCase)
	notificationHandler := handler.NewNotificationHandler(notificationUseCase)
	wsHandler := handler.NewWebSocketHandler(registry, dispatchUseCase, authClient, userRepo, cfg)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	router.Setup(e, sessionHandler, notificationHandler, wsHandler, authMiddleware)

	go func() {
		log.Printf("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Printf("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	registry.Shutdown()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
}
