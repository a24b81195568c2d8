package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/codesheets-backend/internal/domain"
	domainagg "github.com/yungbote/codesheets-backend/internal/domain/aggregates"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
)

func TestDisclosureStateWithoutProgress(t *testing.T) {
	f := newFixture(t)
	sheet := f.seedSheet(t, "Sheet")
	p := f.seedProblem(t, sheet.ID, 1, types.DifficultyMedium, 3)
	user := uuid.New()
	ctx := userCtx(user)

	st, err := f.disclosure.GetDisclosureState(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalHints)
	assert.Equal(t, 1, st.NextHint)
	require.Len(t, st.Hints, 3)
	for i, h := range st.Hints {
		assert.Equal(t, i+1, h.HintNumber)
		assert.False(t, h.IsUnlocked)
		assert.Nil(t, h.Content)
	}
	assert.False(t, st.Solution.IsUnlocked)
	assert.False(t, st.Solution.CanUnlock)
	assert.Nil(t, st.Solution.Content)

	rec, err := f.progress.GetByUserProblem(dbctx.Context{Ctx: ctx}, user, p.ID)
	require.NoError(t, err)
	assert.Nil(t, rec, "reading state must not create a record")
}

func TestDisclosureHintThenSolutionFlow(t *testing.T) {
	f := newFixture(t)
	sheet := f.seedSheet(t, "Sheet")
	p := f.seedProblem(t, sheet.ID, 1, types.DifficultyMedium, 2)
	ctx := userCtx(uuid.New())

	_, err := f.disclosure.UnlockHint(ctx, p.ID, 2)
	require.Error(t, err)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeSequenceViolation))

	h, err := f.disclosure.UnlockHint(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, &HintUnlock{HintNumber: 1, Content: "hint 1"}, h)

	st, err := f.disclosure.GetDisclosureState(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, st.Hints[0].Content)
	assert.Equal(t, "hint 1", *st.Hints[0].Content)
	assert.Nil(t, st.Hints[1].Content)
	assert.Equal(t, 2, st.NextHint)
	assert.False(t, st.Solution.CanUnlock)

	_, err = f.disclosure.UnlockSolution(ctx, p.ID)
	assert.True(t, domainagg.IsCode(err, domainagg.CodePrerequisiteNotMet), "got %v", err)

	_, err = f.disclosure.UnlockHint(ctx, p.ID, 2)
	require.NoError(t, err)
	sol, err := f.disclosure.UnlockSolution(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"go": "package main"}, sol.Code)
	assert.Equal(t, "explained", sol.Explanation)

	st, err = f.disclosure.GetDisclosureState(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, st.NextHint)
	assert.True(t, st.Solution.IsUnlocked)
	assert.True(t, st.Solution.CanUnlock)
	require.NotNil(t, st.Solution.Content)
	assert.Equal(t, "explained", st.Solution.Content.Explanation)

	unlocks := f.counters.Unlocks
	assert.Equal(t, float64(2), testutil.ToFloat64(unlocks.WithLabelValues("hint", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(unlocks.WithLabelValues("hint", string(domainagg.CodeSequenceViolation))))
	assert.Equal(t, float64(1), testutil.ToFloat64(unlocks.WithLabelValues("solution", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(unlocks.WithLabelValues("solution", string(domainagg.CodePrerequisiteNotMet))))
}

func TestDisclosureRequiresUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.disclosure.GetDisclosureState(context.Background(), uuid.New())
	assert.True(t, domainagg.IsCode(err, domainagg.CodeUnauthorized))
	_, err = f.disclosure.UnlockHint(context.Background(), uuid.New(), 1)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeUnauthorized))

	_, err = f.disclosure.GetDisclosureState(userCtx(uuid.New()), uuid.New())
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound))
}
