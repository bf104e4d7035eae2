package planner

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/fitloop/plancoach/internal/models"
)

// catalogKey is the five-field identity tuple a plan exercise must
// reproduce verbatim to count as a catalog entry.
type catalogKey struct {
	Name         string
	Type         string
	MuscleGroup  string
	Equipment    string
	Instructions string
}

// ValidatePlanData parses the raw completion text and checks it against the
// required plan shape. When a catalog is supplied, every exercise must
// exactly match a catalog entry on all identity fields; mismatches are
// rejected, never corrected or dropped. On success it returns the plan data
// unchanged, so the stored value is exactly what the model produced.
func ValidatePlanData(raw string, catalog []models.Exercise) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !gjson.Valid(trimmed) {
		return nil, failf(ErrMalformedResponse, "completion response is not valid JSON")
	}

	root := gjson.Parse(trimmed)
	workouts := root.Get("daily_workouts")
	if !workouts.Exists() || !workouts.IsArray() {
		return nil, failf(ErrMalformedResponse, "completion response is missing daily_workouts")
	}
	days := workouts.Array()
	if len(days) == 0 {
		return nil, failf(ErrMalformedResponse, "completion response contains no daily workouts")
	}

	var allowed map[catalogKey]struct{}
	if catalog != nil {
		allowed = make(map[catalogKey]struct{}, len(catalog))
		for _, e := range catalog {
			allowed[catalogKey{e.Name, e.Type, e.MuscleGroup, e.Equipment, e.Instructions}] = struct{}{}
		}
	}

	for _, dw := range days {
		day := dw.Get("day")
		if day.Type != gjson.Number || day.Int() <= 0 || day.Num != float64(day.Int()) {
			return nil, failf(ErrMalformedResponse, "daily workout has an invalid day index")
		}
		if title := dw.Get("title"); title.Type != gjson.String || title.String() == "" {
			return nil, failf(ErrMalformedResponse, "daily workout %d has no title", day.Int())
		}

		exercises := dw.Get("exercises")
		if !exercises.IsArray() || len(exercises.Array()) == 0 {
			return nil, failf(ErrMalformedResponse, "daily workout %d has no exercises", day.Int())
		}

		for _, ex := range exercises.Array() {
			if err := validateExercise(ex, allowed); err != nil {
				return nil, err
			}
		}
	}

	return json.RawMessage(trimmed), nil
}

func validateExercise(ex gjson.Result, allowed map[catalogKey]struct{}) error {
	name := ex.Get("name").String()
	if name == "" {
		return failf(ErrMalformedResponse, "exercise is missing a name")
	}
	for _, field := range []string{"type", "muscle_group", "equipment", "instructions"} {
		if ex.Get(field).String() == "" {
			return failf(ErrMalformedResponse, "exercise %q is missing %s", name, field)
		}
	}

	// A workout step with no sets, reps, or duration prescribes nothing.
	if !hasPrescription(ex.Get("sets")) && !hasPrescription(ex.Get("reps")) && !hasPrescription(ex.Get("duration_seconds")) {
		return failf(ErrMalformedResponse, "exercise %q has no sets, reps, or duration", name)
	}

	if allowed != nil {
		key := catalogKey{
			Name:         name,
			Type:         ex.Get("type").String(),
			MuscleGroup:  ex.Get("muscle_group").String(),
			Equipment:    ex.Get("equipment").String(),
			Instructions: ex.Get("instructions").String(),
		}
		if _, ok := allowed[key]; !ok {
			return failf(ErrCatalogViolation, "exercise %q is not in the allowed exercise catalog", name)
		}
	}

	return nil
}

func hasPrescription(v gjson.Result) bool {
	switch v.Type {
	case gjson.Number:
		return true
	case gjson.String:
		return v.String() != ""
	}
	return false
}
