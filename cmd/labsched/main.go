package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/config"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/api"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/db"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/notification"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/store"
	"github.com/AnthonyMartinHeart/Gestion-Laboratorios-FACE-sub000/internal/sweeper"
)

func main() {
	logger := log.New(os.Stdout, "labsched ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(cfg)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB, cfg.Matcher)
	logger.Println("data store initialized")

	events := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
	events.Start(ctx)

	sweeperSvc := sweeper.NewService(cfg, appStore)
	go sweeperSvc.Run(ctx)

	router := api.NewRouter(appStore, cfg, events, &webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
