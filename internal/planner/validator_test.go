package planner

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitloop/plancoach/internal/models"
)

const validPlanResponse = `{
  "daily_workouts": [
    {
      "day": 1,
      "title": "Home Chest Day",
      "exercises": [
        {
          "name": "Push-up",
          "type": "Strength",
          "muscle_group": "Chest",
          "equipment": "Bodyweight",
          "instructions": "Keep your core tight and lower until your chest nearly touches the floor.",
          "video_url": null,
          "sets": 3,
          "reps": "8-12",
          "rest_between_sets_seconds": 60
        }
      ]
    }
  ]
}`

func TestValidatePlanDataRoundTrip(t *testing.T) {
	planData, err := ValidatePlanData(validPlanResponse+"\n", testCatalog())
	require.NoError(t, err)

	// The stored value is exactly what the model produced.
	assert.Equal(t, strings.TrimSpace(validPlanResponse), string(planData))
}

func TestValidatePlanDataInvalidJSON(t *testing.T) {
	_, err := ValidatePlanData("Sure! Here is your plan:", testCatalog())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestValidatePlanDataCatalogViolation(t *testing.T) {
	response := strings.ReplaceAll(validPlanResponse, "Push-up", "Barbell Bench Press")
	_, err := ValidatePlanData(response, testCatalog())
	assert.ErrorIs(t, err, ErrCatalogViolation)
	assert.Contains(t, err.Error(), "Barbell Bench Press")
}

func TestValidatePlanDataIdentityFieldMismatchViolatesCatalog(t *testing.T) {
	// Name matches a catalog entry but the instructions differ, so the
	// five-field identity tuple does not.
	response := strings.ReplaceAll(validPlanResponse, "Keep your core tight", "Keep your back straight")
	_, err := ValidatePlanData(response, testCatalog())
	assert.ErrorIs(t, err, ErrCatalogViolation)
	assert.Contains(t, err.Error(), "Push-up")
}

func TestValidatePlanDataUnconstrainedSkipsCatalogCheck(t *testing.T) {
	response := strings.ReplaceAll(validPlanResponse, "Push-up", "Barbell Bench Press")
	_, err := ValidatePlanData(response, nil)
	assert.NoError(t, err)
}

func TestValidatePlanDataShape(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"missing daily_workouts", `{"workouts": []}`},
		{"daily_workouts not an array", `{"daily_workouts": {"day": 1}}`},
		{"no daily workouts", `{"daily_workouts": []}`},
		{"day zero", strings.Replace(validPlanResponse, `"day": 1`, `"day": 0`, 1)},
		{"day fractional", strings.Replace(validPlanResponse, `"day": 1`, `"day": 1.5`, 1)},
		{"day as string", strings.Replace(validPlanResponse, `"day": 1`, `"day": "1"`, 1)},
		{"empty title", strings.Replace(validPlanResponse, `"Home Chest Day"`, `""`, 1)},
		{"no exercises", `{"daily_workouts": [{"day": 1, "title": "Rest", "exercises": []}]}`},
		{"exercise missing name", strings.Replace(validPlanResponse, `"name": "Push-up"`, `"name": ""`, 1)},
		{"exercise missing muscle group", strings.Replace(validPlanResponse, `"muscle_group": "Chest"`, `"muscle_group": ""`, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePlanData(tt.response, testCatalog())
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestValidatePlanDataRequiresAPrescription(t *testing.T) {
	response := validPlanResponse
	response = strings.Replace(response, `"sets": 3,`, `"sets": null,`, 1)
	response = strings.Replace(response, `"reps": "8-12",`, `"reps": "",`, 1)

	_, err := ValidatePlanData(response, testCatalog())
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Contains(t, err.Error(), "no sets, reps, or duration")
}

func TestValidatePlanDataDurationAloneSuffices(t *testing.T) {
	response := `{
	  "daily_workouts": [
	    {
	      "day": 1,
	      "title": "Cardio",
	      "exercises": [
	        {
	          "name": "Jumping Jacks",
	          "type": "Cardio",
	          "muscle_group": "Full Body",
	          "equipment": "Bodyweight",
	          "instructions": "Jump while spreading your legs and raising your arms overhead.",
	          "duration_seconds": 120
	        }
	      ]
	    }
	  ]
	}`

	_, err := ValidatePlanData(response, testCatalog())
	assert.NoError(t, err)
}

func TestValidatePlanDataTypedDecode(t *testing.T) {
	planData, err := ValidatePlanData(validPlanResponse, testCatalog())
	require.NoError(t, err)

	var decoded models.PlanData
	require.NoError(t, json.Unmarshal(planData, &decoded))
	require.Len(t, decoded.DailyWorkouts, 1)
	day := decoded.DailyWorkouts[0]
	assert.Equal(t, 1, day.Day)
	assert.Equal(t, "Home Chest Day", day.Title)
	require.Len(t, day.Exercises, 1)
	assert.Equal(t, models.FlexValue("3"), day.Exercises[0].Sets)
	assert.Equal(t, models.FlexValue("8-12"), day.Exercises[0].Reps)
}
