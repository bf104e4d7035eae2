package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fitloop/plancoach/internal/models"
)

// PlanStore persists workout plans. The history is insert-only: saving
// never mutates an existing row, and saving the same plan twice produces
// two distinct records.
type PlanStore struct {
	db *sqlx.DB
}

func NewPlanStore(db *sqlx.DB) *PlanStore {
	return &PlanStore{db: db}
}

// Insert stores a generated plan and assigns its identity and creation
// timestamp.
func (s *PlanStore) Insert(ctx context.Context, userID, userPrompt string, planData json.RawMessage) (models.WorkoutPlan, error) {
	plan := models.WorkoutPlan{
		ID:         uuid.NewString(),
		UserID:     userID,
		UserPrompt: userPrompt,
		PlanData:   planData,
	}

	query := `INSERT INTO workout_plans (id, user_id, user_prompt, plan_data)
		VALUES ($1, $2, $3, $4) RETURNING created_at`
	var createdAt time.Time
	if err := s.db.QueryRowContext(ctx, query, plan.ID, plan.UserID, plan.UserPrompt, []byte(plan.PlanData)).Scan(&createdAt); err != nil {
		return models.WorkoutPlan{}, fmt.Errorf("failed to insert workout plan: %w", err)
	}

	plan.CreatedAt = createdAt
	return plan, nil
}

// ListByUser returns the user's saved plans, newest first.
func (s *PlanStore) ListByUser(ctx context.Context, userID string) ([]models.WorkoutPlan, error) {
	var plans []models.WorkoutPlan
	query := `SELECT id, user_id, user_prompt, plan_data, created_at FROM workout_plans
		WHERE user_id = $1 ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &plans, query, userID); err != nil {
		return nil, fmt.Errorf("failed to fetch workout plans: %w", err)
	}
	return plans, nil
}
