package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/fitloop/plancoach/internal/models"
)

const catalogCacheKey = "exercises:catalog"

// CatalogStore reads the exercise catalog. The catalog is read-only from
// the generator's perspective, so it is cached in Redis with a TTL.
type CatalogStore struct {
	db     *sqlx.DB
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCatalogStore(db *sqlx.DB, redisClient *redis.Client, ttl time.Duration, logger *slog.Logger) *CatalogStore {
	return &CatalogStore{db: db, redis: redisClient, ttl: ttl, logger: logger}
}

// List returns every catalog exercise, served from the Redis cache when
// fresh. Cache failures fall through to Postgres; only a database failure
// is an error.
func (s *CatalogStore) List(ctx context.Context) ([]models.Exercise, error) {
	if cached, err := s.redis.Get(ctx, catalogCacheKey).Bytes(); err == nil {
		var exercises []models.Exercise
		if err := json.Unmarshal(cached, &exercises); err == nil {
			return exercises, nil
		}
		s.logger.Error("discarding unreadable catalog cache entry")
	}

	var exercises []models.Exercise
	query := "SELECT name, type, muscle_group, equipment, instructions, video_url FROM exercises ORDER BY name"
	if err := s.db.SelectContext(ctx, &exercises, query); err != nil {
		return nil, fmt.Errorf("failed to fetch exercises: %w", err)
	}

	if data, err := json.Marshal(exercises); err == nil {
		if err := s.redis.Set(ctx, catalogCacheKey, data, s.ttl).Err(); err != nil {
			s.logger.Error("failed to cache exercise catalog", "error", err)
		}
	}

	return exercises, nil
}
