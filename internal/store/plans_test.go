package store

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupPlanStore(t *testing.T) (*PlanStore, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewPlanStore(sqlx.NewDb(mockDB, "sqlmock")), mock
}

const testPlanData = `{"daily_workouts":[{"day":1,"title":"Day 1","exercises":[{"name":"Push-up","type":"Strength","muscle_group":"Chest","equipment":"Bodyweight","instructions":"Keep your core tight.","sets":3,"reps":10}]}]}`

func TestPlanInsertAssignsIdentity(t *testing.T) {
	store, mock := setupPlanStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO workout_plans (id, user_id, user_prompt, plan_data)")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	plan, err := store.Insert(context.Background(), "user-1", "3-day home plan", json.RawMessage(testPlanData))
	require.NoError(t, err)
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, "user-1", plan.UserID)
	assert.Equal(t, "3-day home plan", plan.UserPrompt)
	assert.JSONEq(t, testPlanData, string(plan.PlanData))
	assert.False(t, plan.CreatedAt.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanInsertTwiceYieldsDistinctRecords(t *testing.T) {
	store, mock := setupPlanStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO workout_plans")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO workout_plans")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	first, err := store.Insert(context.Background(), "user-1", "3-day home plan", json.RawMessage(testPlanData))
	require.NoError(t, err)
	second, err := store.Insert(context.Background(), "user-1", "3-day home plan", json.RawMessage(testPlanData))
	require.NoError(t, err)

	// Insert-only history: no dedup, two saves make two records.
	assert.NotEqual(t, first.ID, second.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanListByUser(t *testing.T) {
	store, mock := setupPlanStore(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "user_prompt", "plan_data", "created_at"}).
		AddRow("plan-2", "user-1", "second", []byte(testPlanData), now).
		AddRow("plan-1", "user-1", "first", []byte(testPlanData), now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM workout_plans")).
		WithArgs("user-1").
		WillReturnRows(rows)

	plans, err := store.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "plan-2", plans[0].ID)
	assert.JSONEq(t, testPlanData, string(plans[0].PlanData))

	assert.NoError(t, mock.ExpectationsWereMet())
}
