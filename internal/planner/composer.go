package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fitloop/plancoach/internal/models"
)

// notSpecified is rendered for every absent profile field so the model
// always sees the full field set in the same order.
const notSpecified = "not specified"

const systemPromptTemplate = `You are an expert personal trainer AI. Your goal is to create a personalized workout plan for a user based on their profile and request.

You MUST build the workout plan using ONLY the exercises from the following list. Do not invent new exercises.
The list is provided as a JSON string.

Exercise Library:
%s

You must respond with only a valid JSON object that matches the following structure. Do not include any other text or formatting.

The JSON object should represent a "WorkoutPlan", containing a list of "DailyWorkouts". Each "DailyWorkout" has a day, a title, and a list of "Exercises". Each "Exercise" has a name, type, muscle group, equipment, instructions, and flexible fields for sets, reps, duration, and rest.
The 'name', 'type', 'muscle_group', 'equipment', and 'instructions' for each exercise in your response MUST EXACTLY MATCH an entry from the provided Exercise Library.

Here is an example of the structure you must follow:
{
  "daily_workouts": [
    {
      "day": 1,
      "title": "Full Body Strength",
      "exercises": [
        {
          "name": "Barbell Squat",
          "type": "Strength",
          "muscle_group": "Legs",
          "equipment": "Barbell",
          "instructions": "Keep your back straight and chest up. Squat until your thighs are parallel to the floor.",
          "video_url": null,
          "sets": "3-4",
          "reps": "8-12",
          "rest_between_sets_seconds": 90
        }
      ]
    }
  ]
}
`

const userPromptTemplate = `Here is the user's profile:
%s

Here is the user's request:
"%s"

Generate a workout plan based on this information, using ONLY exercises from the provided Exercise Library and following the required JSON format.`

// Prompt is one composed instruction payload for the completion API.
type Prompt struct {
	System string
	User   string
}

// Compose builds the system and user instructions for a generation request.
// It never falls back to an unconstrained prompt: an empty prompt or an
// empty catalog aborts with a precondition failure before any upstream call.
func Compose(profile models.UserProfile, userPrompt string, catalog []models.Exercise) (Prompt, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return Prompt{}, failf(ErrPrecondition, "Please enter a prompt.")
	}
	if len(catalog) == 0 {
		return Prompt{}, failf(ErrPrecondition, "no exercises available to build a plan from")
	}

	catalogJSON, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to serialize exercise catalog: %w", err)
	}

	return Prompt{
		System: fmt.Sprintf(systemPromptTemplate, string(catalogJSON)),
		User:   fmt.Sprintf(userPromptTemplate, ProfileSummary(profile), userPrompt),
	}, nil
}

// ProfileSummary renders the profile fields in a stable label order. Absent
// fields render as an explicit placeholder, never omitted.
func ProfileSummary(p models.UserProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Age: %s\n", intField(p.Age))
	fmt.Fprintf(&b, "- Weight: %s kg\n", floatField(p.WeightKg))
	fmt.Fprintf(&b, "- Height: %s cm\n", floatField(p.HeightCm))
	fmt.Fprintf(&b, "- Gender: %s\n", stringField(p.Gender))
	fmt.Fprintf(&b, "- Fitness Level: %s\n", stringField(p.FitnessLevel))
	fmt.Fprintf(&b, "- Goals: %s\n", listField(p.FitnessGoals))
	fmt.Fprintf(&b, "- Available Equipment: %s", listField(p.AvailableEquipment))
	return b.String()
}

func intField(v *int) string {
	if v == nil {
		return notSpecified
	}
	return fmt.Sprintf("%d", *v)
}

func floatField(v *float64) string {
	if v == nil {
		return notSpecified
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.1f", *v), "0"), ".")
}

func stringField(v *string) string {
	if v == nil || *v == "" {
		return notSpecified
	}
	return *v
}

func listField(v []string) string {
	if len(v) == 0 {
		return notSpecified
	}
	return strings.Join(v, ", ")
}
