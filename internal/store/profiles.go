package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fitloop/plancoach/internal/models"
)

// ErrProfileNotFound is returned when a user has no stored profile yet.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileStore reads and upserts user profiles. Profiles are written
// wholesale by their owning user; there are no partial-field updates.
type ProfileStore struct {
	db *sqlx.DB
}

func NewProfileStore(db *sqlx.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) Get(ctx context.Context, userID string) (models.UserProfile, error) {
	var profile models.UserProfile
	query := "SELECT * FROM profiles WHERE id = $1"
	if err := s.db.GetContext(ctx, &profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UserProfile{}, ErrProfileNotFound
		}
		return models.UserProfile{}, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return profile, nil
}

// Upsert replaces the user's profile with the given one and returns the
// stored row.
func (s *ProfileStore) Upsert(ctx context.Context, profile models.UserProfile) (models.UserProfile, error) {
	query := `INSERT INTO profiles (id, age, weight_kg, height_cm, gender, fitness_level, fitness_goals, available_equipment, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			age = EXCLUDED.age,
			weight_kg = EXCLUDED.weight_kg,
			height_cm = EXCLUDED.height_cm,
			gender = EXCLUDED.gender,
			fitness_level = EXCLUDED.fitness_level,
			fitness_goals = EXCLUDED.fitness_goals,
			available_equipment = EXCLUDED.available_equipment,
			updated_at = CURRENT_TIMESTAMP
		RETURNING *`

	var stored models.UserProfile
	err := s.db.GetContext(ctx, &stored, query,
		profile.ID, profile.Age, profile.WeightKg, profile.HeightCm,
		profile.Gender, profile.FitnessLevel, profile.FitnessGoals, profile.AvailableEquipment,
	)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return stored, nil
}
