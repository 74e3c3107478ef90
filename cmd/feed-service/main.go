package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"auction-house/internal/config"
	redisinfra "auction-house/internal/infrastructure/redis"
	"auction-house/internal/infrastructure/websocket"
	"auction-house/internal/services"
	"auction-house/pkg/logger"
)

func main() {
	log := logger.New()
	log.Info("Starting feed service")

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("Connected to Redis", "address", cfg.Redis.Address)

	connManager := websocket.NewConnectionManager(log)
	feedHandler := websocket.NewFeedHandler(connManager, log)
	feedListener := services.NewFeedListener(connManager, log)
	eventSubscriber := redisinfra.NewRedisEventSubscriber(rdb, log)

	subscriberCtx, stopSubscriber := context.WithCancel(context.Background())
	defer stopSubscriber()

	go func() {
		if err := feedListener.Start(subscriberCtx, eventSubscriber); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Feed listener failed", "error", err)
			os.Exit(1)
		}
	}()

	router := mux.NewRouter()
	router.HandleFunc("/ws/items/{itemID}", feedHandler.HandleConnection)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"feed-service"}`)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Feed.Port),
		Handler: router,
	}

	log.Info("Starting feed server", "address", server.Addr)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Feed server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down feed service...")
	stopSubscriber()

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Feed server forced to shutdown", "error", err)
	}

	log.Info("Feed service stopped")
}
