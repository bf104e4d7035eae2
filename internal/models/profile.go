package models

import (
	"time"

	"github.com/lib/pq"
)

// Fitness levels a profile may declare.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// UserProfile holds the attributes the plan generator personalizes on.
// Every field except the ID is optional; the profile is owned by its user
// and written wholesale, never field by field.
type UserProfile struct {
	ID                 string         `json:"id" db:"id"` // UUID that matches auth.users.id
	Age                *int           `json:"age,omitempty" db:"age"`
	WeightKg           *float64       `json:"weight_kg,omitempty" db:"weight_kg"`
	HeightCm           *float64       `json:"height_cm,omitempty" db:"height_cm"`
	Gender             *string        `json:"gender,omitempty" db:"gender"`
	FitnessLevel       *string        `json:"fitness_level,omitempty" db:"fitness_level"`
	FitnessGoals       pq.StringArray `json:"fitness_goals,omitempty" db:"fitness_goals"`
	AvailableEquipment pq.StringArray `json:"available_equipment,omitempty" db:"available_equipment"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

// ValidFitnessLevel reports whether level is one of the known values.
func ValidFitnessLevel(level string) bool {
	switch level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}
