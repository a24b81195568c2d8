package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	repotest "github.com/yungbote/codesheets-backend/internal/data/repos/testutil"
	types "github.com/yungbote/codesheets-backend/internal/domain"
	domainagg "github.com/yungbote/codesheets-backend/internal/domain/aggregates"
)

func TestComputeMetricsExample(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sheet := f.seedSheet(t, "Sheet")
	easy1 := f.seedProblem(t, sheet.ID, 1, types.DifficultyEasy, 0)
	f.seedProblem(t, sheet.ID, 2, types.DifficultyEasy, 0)
	medium := f.seedProblem(t, sheet.ID, 3, types.DifficultyMedium, 0)

	user := uuid.New()
	repotest.SeedProgress(t, ctx, f.db, user, easy1, true, nil)
	repotest.SeedProgress(t, ctx, f.db, user, medium, true, nil)
	// Another user's progress and an uncompleted row must not count.
	repotest.SeedProgress(t, ctx, f.db, uuid.New(), medium, true, nil)

	m, err := f.metrics.ComputeMetrics(userCtx(user), sheet.ID, "")
	require.NoError(t, err)

	assert.Equal(t, 3, m.Overall.TotalProblems)
	assert.Equal(t, 2, m.Overall.CompletedProblems)
	assert.InDelta(t, 66.6667, m.Overall.ProgressPercentage, 0.001)

	assert.Equal(t, types.DifficultyStat{Total: 2, Completed: 1, Percentage: 50}, m.ByDifficulty[types.DifficultyEasy])
	assert.Equal(t, types.DifficultyStat{Total: 1, Completed: 1, Percentage: 100}, m.ByDifficulty[types.DifficultyMedium])
	assert.Equal(t, types.DifficultyStat{}, m.ByDifficulty[types.DifficultyHard])
	assert.Len(t, m.ByDifficulty, 3)
}

func TestComputeMetricsDifficultyFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sheet := f.seedSheet(t, "Sheet")
	easy := f.seedProblem(t, sheet.ID, 1, types.DifficultyEasy, 0)
	f.seedProblem(t, sheet.ID, 2, types.DifficultyHard, 0)
	user := uuid.New()
	repotest.SeedProgress(t, ctx, f.db, user, easy, true, nil)

	m, err := f.metrics.ComputeMetrics(userCtx(user), sheet.ID, "Hard")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Overall.TotalProblems)
	assert.Equal(t, 0, m.Overall.CompletedProblems)
	assert.Equal(t, 0, m.ByDifficulty[types.DifficultyEasy].Total)
}

func TestComputeMetricsUncompletedRowsDoNotCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sheet := f.seedSheet(t, "Sheet")
	p := f.seedProblem(t, sheet.ID, 1, types.DifficultyEasy, 1)
	user := uuid.New()
	repotest.SeedProgress(t, ctx, f.db, user, p, false, []int{1})

	m, err := f.metrics.ComputeMetrics(userCtx(user), sheet.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Overall.CompletedProblems)
	assert.Zero(t, m.Overall.ProgressPercentage)
}

func TestComputeMetricsErrors(t *testing.T) {
	f := newFixture(t)
	sheet := f.seedSheet(t, "Sheet")

	_, err := f.metrics.ComputeMetrics(context.Background(), sheet.ID, "")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeUnauthorized), "got %v", err)

	_, err = f.metrics.ComputeMetrics(userCtx(uuid.New()), uuid.New(), "")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "got %v", err)

	_, err = f.metrics.ComputeMetrics(userCtx(uuid.New()), sheet.ID, "impossible")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)
}

func TestComputeMetricsEmptySheet(t *testing.T) {
	f := newFixture(t)
	sheet := f.seedSheet(t, "Empty")
	m, err := f.metrics.ComputeMetrics(userCtx(uuid.New()), sheet.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Overall.TotalProblems)
	assert.Zero(t, m.Overall.ProgressPercentage)
}
