package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/atelierhq/atelier-admin/internal/api"
	"github.com/atelierhq/atelier-admin/internal/events"
	"github.com/atelierhq/atelier-admin/internal/store"
	"github.com/atelierhq/atelier-admin/internal/websocket"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	// Database configuration
	dbCfg := store.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "atelier"),
		Password: getEnv("DB_PASSWORD", "atelier"),
		Name:     getEnv("DB_NAME", "atelier"),
	}

	// Kafka configuration
	kafkaBrokers := getEnv("KAFKA_BROKERS", "")

	// Service configuration
	port := getEnv("ATELIER_PORT", "8080")
	apiTokens := getEnv("API_TOKENS", "")

	db, err := store.Open(dbCfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	var producer *events.KafkaProducer
	if kafkaBrokers != "" {
		producer, err = events.NewKafkaProducer(kafkaBrokers, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create Kafka producer")
		}
		defer producer.Close()
	} else {
		logger.Info("Kafka brokers not configured - running without event publishing")
	}

	wsHub := websocket.NewHub(logger)
	go wsHub.Run()

	handler := api.NewHandler(db, producerOrNil(producer), logger)
	handler.SetWebSocketHub(wsHub)

	verifier := api.NewStaticTokenVerifier(strings.Split(apiTokens, ","))
	router := api.NewRouter(handler, verifier, wsHub.HandleWebSocket, logger)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("port", port).Info("Starting atelier admin service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server gracefully stopped")
}

// producerOrNil keeps the handler's Publisher interface nil when Kafka is
// not configured; a typed nil pointer would dodge the handler's nil checks.
func producerOrNil(p *events.KafkaProducer) api.Publisher {
	if p == nil {
		return nil
	}
	return p
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
