package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Exercise categories in the catalog.
const (
	TypeStrength   = "Strength"
	TypeCardio     = "Cardio"
	TypeStretching = "Stretching"
)

// FlexValue is a prescription field the model may return either as a number
// or as a range string, e.g. 3 or "8-12". It round-trips both forms.
type FlexValue string

func (v *FlexValue) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*v = ""
		return nil
	}
	if len(s) > 0 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*v = FlexValue(str)
		return nil
	}
	*v = FlexValue(s)
	return nil
}

func (v FlexValue) MarshalJSON() ([]byte, error) {
	if v == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseFloat(string(v), 64); err == nil {
		return []byte(v), nil
	}
	return json.Marshal(string(v))
}

// Exercise is a catalog entry. The (name, type, muscle_group, equipment,
// instructions) tuple is the identity a generated plan must reproduce
// verbatim when it references the catalog. The prescription fields are only
// populated on exercises embedded in a plan.
type Exercise struct {
	Name                   string    `json:"name" db:"name"`
	Type                   string    `json:"type" db:"type"`
	MuscleGroup            string    `json:"muscle_group" db:"muscle_group"`
	Equipment              string    `json:"equipment" db:"equipment"`
	Instructions           string    `json:"instructions" db:"instructions"`
	VideoURL               *string   `json:"video_url,omitempty" db:"video_url"`
	Sets                   FlexValue `json:"sets,omitempty" db:"-"`
	Reps                   FlexValue `json:"reps,omitempty" db:"-"`
	DurationSeconds        *int      `json:"duration_seconds,omitempty" db:"-"`
	RestBetweenSetsSeconds *int      `json:"rest_between_sets_seconds,omitempty" db:"-"`
}

// DailyWorkout is one day of a plan. Exercise order is execution order.
type DailyWorkout struct {
	Day       int        `json:"day"`
	Title     string     `json:"title"`
	Exercises []Exercise `json:"exercises"`
}

// PlanData is the nested structure the completion API must produce.
type PlanData struct {
	DailyWorkouts []DailyWorkout `json:"daily_workouts"`
}

// WorkoutPlan is a generated plan. The ID stays empty until the user
// explicitly saves the plan; persistence assigns the identity.
type WorkoutPlan struct {
	ID         string          `json:"id" db:"id"`
	UserID     string          `json:"user_id" db:"user_id"`
	UserPrompt string          `json:"user_prompt" db:"user_prompt"`
	PlanData   json.RawMessage `json:"plan_data" db:"plan_data"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// GeneratePlanRequest is the inbound body of the generation endpoint. The
// profile is optional; when absent the caller's stored profile is used.
type GeneratePlanRequest struct {
	UserPrompt  string       `json:"user_prompt"`
	UserProfile *UserProfile `json:"user_profile,omitempty"`
}

// SavePlanRequest persists a previously generated plan.
type SavePlanRequest struct {
	UserPrompt string          `json:"user_prompt"`
	PlanData   json.RawMessage `json:"plan_data"`
}

// PlanSavedEvent is published to Kafka whenever a plan is saved.
type PlanSavedEvent struct {
	PlanID    string    `json:"plan_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PlanStats are the per-user aggregates the worker maintains in Redis.
type PlanStats struct {
	SavedPlans int    `json:"saved_plans"`
	LastSaved  string `json:"last_saved,omitempty"`
}
