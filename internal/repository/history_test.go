package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cleberrangel/clickup-task-analyzer/internal/database"
	"github.com/cleberrangel/clickup-task-analyzer/internal/migration"
	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requer TEST_DATABASE_URL apontando para um PostgreSQL descartável
func newTestRepository(t *testing.T) *HistoryRepository {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL não definido")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, database.Config{DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migration.NewMigrator(db).Run(ctx))
	_, err = db.ExecContext(ctx, "TRUNCATE analysis_runs")
	require.NoError(t, err)

	return NewHistoryRepository(db)
}

func TestHistorySaveAndList(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, user := range []int64{1, 2, 1} {
		run := model.AnalysisRun{
			ID:                 uuid.NewString(),
			Username:           "alice",
			UserID:             user,
			TeamID:             "t1",
			DateFrom:           base.AddDate(0, 0, -7),
			DateTo:             base,
			StatusFilter:       []string{"done", "in review"},
			TotalTasks:         3,
			TasksWithEstimates: 2,
			TotalEstimateHours: 4.5,
			DailyBreakdown:     model.DailyEstimate{"2024-02-28": 4.5},
			CreatedAt:          base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Save(ctx, run))
	}

	runs, err := repo.List(ctx, HistoryFilter{UserID: 1})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt), "mais recente primeiro")
	assert.Equal(t, []string{"done", "in review"}, runs[0].StatusFilter)
	assert.Equal(t, 4.5, runs[0].DailyBreakdown["2024-02-28"])

	deleted, err := repo.DeleteOlderThan(ctx, base.Add(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}
