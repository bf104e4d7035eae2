package main

import (
	"log/slog"
	"os"

	"github.com/fitloop/plancoach/internal/api"
	"github.com/fitloop/plancoach/internal/config"
	"github.com/fitloop/plancoach/internal/pkg/supabase"
	"github.com/fitloop/plancoach/pkg/database"
	"github.com/fitloop/plancoach/pkg/kafka"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize database clients
	db, err := database.NewClients(cfg.Database.URL, cfg.Redis.Addr)
	if err != nil {
		slog.Error("Failed to initialize database clients", "error", err)
		os.Exit(1)
	}
	defer db.DB.Close()
	slog.Info("✅ Connected to databases")

	if err := db.CreateSchema(); err != nil {
		slog.Error("Failed to prepare database schema", "error", err)
		os.Exit(1)
	}

	// Initialize Supabase auth client
	if err := supabase.InitClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey); err != nil {
		slog.Error("Failed to initialize Supabase client", "error", err)
		os.Exit(1)
	}

	// Initialize Kafka producer
	producer, err := kafka.NewProducer(cfg.Kafka.Broker, cfg.Kafka.RetryMax, cfg.Kafka.RetryBackoff)
	if err != nil {
		slog.Error("Failed to create Kafka producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()
	slog.Info("✅ Connected to Kafka")

	// Create and start server
	server, err := api.NewServer(cfg, db, producer)
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}
	if err := server.Start(); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
