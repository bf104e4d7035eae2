package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/fitloop/plancoach/internal/config"
	"github.com/fitloop/plancoach/internal/worker"
	"github.com/fitloop/plancoach/pkg/database"
	"github.com/fitloop/plancoach/pkg/kafka"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.NewClients(cfg.Database.URL, cfg.Redis.Addr)
	if err != nil {
		slog.Error("Failed to initialize database clients", "error", err)
		os.Exit(1)
	}
	defer db.DB.Close()
	slog.Info("✅ Connected to databases")

	consumer, err := kafka.NewConsumer(cfg.Kafka.Broker, cfg.Kafka.Group)
	if err != nil {
		slog.Error("Failed to create Kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()
	slog.Info("✅ Connected to Kafka")

	w := worker.NewWorker(cfg, db, consumer)
	if err := w.Start(context.Background()); err != nil {
		slog.Error("Worker error", "error", err)
		os.Exit(1)
	}
}
