package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

type Clients struct {
	DB    *sqlx.DB
	Redis *redis.Client
}

func NewClients(dbURL, redisAddr string) (*Clients, error) {
	// Connect to PostgreSQL
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: "",
		DB:       0,
	})

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Clients{
		DB:    db,
		Redis: redisClient,
	}, nil
}

func (c *Clients) CreateSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id UUID PRIMARY KEY,
		age INT,
		weight_kg NUMERIC,
		height_cm NUMERIC,
		gender TEXT,
		fitness_level TEXT DEFAULT 'beginner',
		fitness_goals TEXT[] DEFAULT '{}',
		available_equipment TEXT[] DEFAULT '{}',
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS exercises (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		muscle_group TEXT NOT NULL,
		equipment TEXT NOT NULL,
		instructions TEXT NOT NULL,
		video_url TEXT
	);

	CREATE TABLE IF NOT EXISTS workout_plans (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL,
		user_prompt TEXT NOT NULL,
		plan_data JSONB NOT NULL,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := c.DB.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	slog.Info("✅ Database schema is ready!")
	return nil
}
