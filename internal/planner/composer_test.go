package planner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitloop/plancoach/internal/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func f64Ptr(f float64) *float64 {
	return &f
}

func testCatalog() []models.Exercise {
	return []models.Exercise{
		{
			Name:         "Push-up",
			Type:         models.TypeStrength,
			MuscleGroup:  "Chest",
			Equipment:    "Bodyweight",
			Instructions: "Keep your core tight and lower until your chest nearly touches the floor.",
		},
		{
			Name:         "Jumping Jacks",
			Type:         models.TypeCardio,
			MuscleGroup:  "Full Body",
			Equipment:    "Bodyweight",
			Instructions: "Jump while spreading your legs and raising your arms overhead.",
		},
	}
}

func TestProfileSummaryStableOrder(t *testing.T) {
	profile := models.UserProfile{
		ID:                 "user-1",
		Age:                intPtr(30),
		WeightKg:           f64Ptr(72.5),
		HeightCm:           f64Ptr(180),
		Gender:             strPtr("Male"),
		FitnessLevel:       strPtr(models.LevelBeginner),
		FitnessGoals:       []string{"Lose Weight", "Build Muscle"},
		AvailableEquipment: []string{"Dumbbells Only"},
	}

	summary := ProfileSummary(profile)

	expected := `- Age: 30
- Weight: 72.5 kg
- Height: 180 cm
- Gender: Male
- Fitness Level: beginner
- Goals: Lose Weight, Build Muscle
- Available Equipment: Dumbbells Only`
	assert.Equal(t, expected, summary)
}

func TestProfileSummaryNeverOmitsAbsentFields(t *testing.T) {
	summary := ProfileSummary(models.UserProfile{ID: "user-1"})

	labels := []string{"- Age:", "- Weight:", "- Height:", "- Gender:", "- Fitness Level:", "- Goals:", "- Available Equipment:"}
	last := -1
	for _, label := range labels {
		idx := strings.Index(summary, label)
		assert.GreaterOrEqual(t, idx, 0, "summary should contain %q", label)
		assert.Greater(t, idx, last, "label %q out of order", label)
		last = idx
	}
	assert.Equal(t, len(labels), strings.Count(summary, "not specified"))
}

func TestComposeEmptyPromptFailsPrecondition(t *testing.T) {
	_, err := Compose(models.UserProfile{}, "   ", testCatalog())
	assert.ErrorIs(t, err, ErrPrecondition)
	assert.Equal(t, "Please enter a prompt.", err.Error())
}

func TestComposeEmptyCatalogFailsPrecondition(t *testing.T) {
	_, err := Compose(models.UserProfile{}, "3-day home plan", nil)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestComposeEmbedsCatalogAndRequest(t *testing.T) {
	profile := models.UserProfile{
		Age:          intPtr(30),
		FitnessLevel: strPtr(models.LevelBeginner),
		FitnessGoals: []string{"Lose Weight"},
	}

	prompt, err := Compose(profile, "3-day home plan", testCatalog())
	require.NoError(t, err)

	// The catalog constraint and every catalog entry are in the system
	// instruction.
	assert.Contains(t, prompt.System, "ONLY the exercises from the following list")
	assert.Contains(t, prompt.System, `"Push-up"`)
	assert.Contains(t, prompt.System, `"Jumping Jacks"`)
	assert.Contains(t, prompt.System, `"daily_workouts"`)

	// The user instruction carries the profile summary, the raw request,
	// and the closing directive.
	assert.Contains(t, prompt.User, "- Age: 30")
	assert.Contains(t, prompt.User, "- Weight: not specified kg")
	assert.Contains(t, prompt.User, `"3-day home plan"`)
	assert.Contains(t, prompt.User, "required JSON format")
}

func TestComposeCatalogOmitsPrescriptionFields(t *testing.T) {
	prompt, err := Compose(models.UserProfile{}, "quick plan", testCatalog())
	require.NoError(t, err)

	// Catalog entries carry identity fields only; sets and reps belong to
	// generated plans.
	assert.NotContains(t, prompt.System, `"sets": ""`)
	assert.NotContains(t, prompt.System, `"reps": ""`)
}
