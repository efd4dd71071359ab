package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/atelierhq/atelier-admin/internal/events"
	"github.com/atelierhq/atelier-admin/internal/notifier"
	"github.com/atelierhq/atelier-admin/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	dbCfg := store.Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "atelier"),
		Password: getEnv("DB_PASSWORD", "atelier"),
		Name:     getEnv("DB_NAME", "atelier"),
	}
	kafkaBrokers := getEnv("KAFKA_BROKERS", "localhost:9092")
	groupID := getEnv("KAFKA_GROUP_ID", "notification-worker")

	db, err := store.Open(dbCfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	handler := notifier.New(db, logger)

	consumer, err := events.NewKafkaConsumer(kafkaBrokers, groupID, handler, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		logger.Info("Shutting down notification worker...")
		cancel()
	}()

	logger.WithField("group_id", groupID).Info("Starting notification worker")
	if err := consumer.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Consumer stopped with error")
	}

	logger.Info("Notification worker stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
