package aggregates_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/codesheets-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/codesheets-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/codesheets-backend/internal/data/repos"
	repotest "github.com/yungbote/codesheets-backend/internal/data/repos/testutil"
	types "github.com/yungbote/codesheets-backend/internal/domain"
	domainagg "github.com/yungbote/codesheets-backend/internal/domain/aggregates"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
)

func newDisclosure(t *testing.T, db *gorm.DB, hooks aggregates.Hooks) domainagg.DisclosureAggregate {
	t.Helper()
	log := repotest.Logger(t)
	return aggregates.NewDisclosureAggregate(aggregates.DisclosureAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:     db,
			Log:    log,
			Runner: &aggtest.InjectedTxRunner{DB: db},
			Hooks:  hooks,
		},
		Problems: repos.NewProblemRepo(db, log),
		Hints:    repos.NewProblemHintRepo(db, log),
		Progress: repos.NewProgressRecordRepo(db, log),
	})
}

func loadRecord(t *testing.T, db *gorm.DB, userID, problemID uuid.UUID) *types.ProgressRecord {
	t.Helper()
	rec, err := repos.NewProgressRecordRepo(db, repotest.Logger(t)).
		GetByUserProblem(dbctx.Context{Ctx: context.Background()}, userID, problemID)
	if err != nil {
		t.Fatalf("load progress: %v", err)
	}
	return rec
}

func TestDisclosureHintSequenceScenario(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	sheet := repotest.SeedSheet(t, ctx, db, "Blind 75")
	p := repotest.SeedProblem(t, ctx, db, sheet.ID, 1, types.DifficultyMedium, 3)
	user := uuid.New()
	agg := newDisclosure(t, db, nil)

	_, err := agg.UnlockHint(ctx, domainagg.UnlockHintInput{UserID: user, ProblemID: p.ID, HintNumber: 2})
	if !domainagg.IsCode(err, domainagg.CodeSequenceViolation) {
		t.Fatalf("hint 2 before 1: want sequence_violation got %v", err)
	}
	if got := domainagg.DetailsOf(err)["requiredHint"]; got != 1 {
		t.Fatalf("requiredHint: want 1 got %v", got)
	}

	res, err := agg.UnlockHint(ctx, domainagg.UnlockHintInput{UserID: user, ProblemID: p.ID, HintNumber: 1})
	if err != nil {
		t.Fatalf("unlock 1: %v", err)
	}
	if res.Content != "hint 1" || res.AlreadyApplied {
		t.Fatalf("unexpected unlock 1 result: %+v", res)
	}

	_, err = agg.UnlockSolution(ctx, domainagg.UnlockSolutionInput{UserID: user, ProblemID: p.ID})
	if !domainagg.IsCode(err, domainagg.CodePrerequisiteNotMet) {
		t.Fatalf("solution with 1/3 hints: want prerequisite_not_met got %v", err)
	}
	if got := domainagg.DetailsOf(err)["remainingHints"]; got != 2 {
		t.Fatalf("remainingHints: want 2 got %v", got)
	}

	for _, n := range []int{2, 3} {
		if _, err := agg.UnlockHint(ctx, domainagg.UnlockHintInput{UserID: user, ProblemID: p.ID, HintNumber: n}); err != nil {
			t.Fatalf("unlock %d: %v", n, err)
		}
	}

	sol, err := agg.UnlockSolution(ctx, domainagg.UnlockSolutionInput{UserID: user, ProblemID: p.ID})
	if err != nil {
		t.Fatalf("unlock solution: %v", err)
	}
	if sol.Code["go"] != "package main" || sol.Explanation != "explained" {
		t.Fatalf("unexpected solution: %+v", sol)
	}

	rec := loadRecord(t, db, user, p.ID)
	if rec == nil || !rec.SolutionUnlocked || rec.UnlockedAt == nil {
		t.Fatalf("solution not persisted: %+v", rec)
	}
	if got := rec.HintSet(); len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("unlocked hints: %v", got)
	}

	again, err := agg.UnlockSolution(ctx, domainagg.UnlockSolutionInput{UserID: user, ProblemID: p.ID})
	if err != nil || !again.AlreadyApplied {
		t.Fatalf("second solution unlock should be idempotent: res=%+v err=%v", again, err)
	}
	if !again.UnlockedAt.Equal(rec.UnlockedAt.UTC()) {
		t.Fatalf("unlockedAt changed on repeat: first=%v again=%v", rec.UnlockedAt, again.UnlockedAt)
	}
}

func TestDisclosureUnlockHintIsIdempotent(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	sheet := repotest.SeedSheet(t, ctx, db, "Sheet")
	p := repotest.SeedProblem(t, ctx, db, sheet.ID, 1, types.DifficultyEasy, 2)
	user := uuid.New()
	agg := newDisclosure(t, db, nil)

	in := domainagg.UnlockHintInput{UserID: user, ProblemID: p.ID, HintNumber: 1}
	if _, err := agg.UnlockHint(ctx, in); err != nil {
		t.Fatalf("first unlock: %v", err)
	}
	before := loadRecord(t, db, user, p.ID)

	res, err := agg.UnlockHint(ctx, in)
	if err != nil {
		t.Fatalf("repeat unlock: %v", err)
	}
	if !res.AlreadyApplied || res.Content != "hint 1" {
		t.Fatalf("repeat should return content without change: %+v", res)
	}
	after := loadRecord(t, db, user, p.ID)
	if after.Version != before.Version {
		t.Fatalf("repeat unlock wrote a new version: %d -> %d", before.Version, after.Version)
	}
}

func TestDisclosureOutOfRangeAndNoHints(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	sheet := repotest.SeedSheet(t, ctx, db, "Sheet")
	withHints := repotest.SeedProblem(t, ctx, db, sheet.ID, 1, types.DifficultyEasy, 2)
	noHints := repotest.SeedProblem(t, ctx, db, sheet.ID, 2, types.DifficultyHard, 0)
	user := uuid.New()
	agg := newDisclosure(t, db, nil)

	for _, n := range []int{0, 3} {
		_, err := agg.UnlockHint(ctx, domainagg.UnlockHintInput{UserID: user, ProblemID: withHints.ID, HintNumber: n})
		if !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("hint %d: want validation got %v", n, err)
		}
	}

	_, err := agg.UnlockHint(ctx, domainagg.UnlockHintInput{UserID: user, ProblemID: noHints.ID, HintNumber: 1})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("hint on hintless problem: want validation got %v", err)
	}

	if _, err := agg.UnlockSolution(ctx, domainagg.UnlockSolutionInput{UserID: user, ProblemID: noHints.ID}); err != nil {
		t.Fatalf("solution with no hints should be immediately available: %v", err)
	}
}

func TestDisclosureRequiresUserAndProblem(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	agg := newDisclosure(t, db, nil)

	_, err := agg.UnlockHint(ctx, domainagg.UnlockHintInput{ProblemID: uuid.New(), HintNumber: 1})
	if !domainagg.IsCode(err, domainagg.CodeUnauthorized) {
		t.Fatalf("missing user: want unauthorized got %v", err)
	}
	_, err = agg.UnlockSolution(ctx, domainagg.UnlockSolutionInput{UserID: uuid.New(), ProblemID: uuid.New()})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown problem: want not_found got %v", err)
	}
}

func TestDisclosureDoesNotTouchCompletion(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	sheet := repotest.SeedSheet(t, ctx, db, "Sheet")
	p := repotest.SeedProblem(t, ctx, db, sheet.ID, 1, types.DifficultyEasy, 1)
	user := uuid.New()
	repotest.SeedProgress(t, ctx, db, user, p, true, nil)
	agg := newDisclosure(t, db, nil)

	if _, err := agg.UnlockHint(ctx, domainagg.UnlockHintInput{UserID: user, ProblemID: p.ID, HintNumber: 1}); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, err := agg.UnlockSolution(ctx, domainagg.UnlockSolutionInput{UserID: user, ProblemID: p.ID}); err != nil {
		t.Fatalf("unlock solution: %v", err)
	}
	rec := loadRecord(t, db, user, p.ID)
	if !rec.Completed || rec.CompletedAt == nil {
		t.Fatalf("unlocks must not change completion: %+v", rec)
	}

	progress := repos.NewProgressRecordRepo(db, repotest.Logger(t))
	dbc := dbctx.Context{Ctx: ctx}
	if err := progress.UpsertCompletion(dbc, user, p.ID, p.SheetID, false, rec.UpdatedAt); err != nil {
		t.Fatalf("uncomplete: %v", err)
	}
	rec = loadRecord(t, db, user, p.ID)
	if rec.Completed || !rec.SolutionUnlocked || len(rec.HintSet()) != 1 {
		t.Fatalf("completion toggle must not change unlock state: %+v", rec)
	}
}

func TestDisclosureConcurrentDuplicateUnlocksConverge(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	sheet := repotest.SeedSheet(t, ctx, db, "Sheet")
	p := repotest.SeedProblem(t, ctx, db, sheet.ID, 1, types.DifficultyEasy, 2)
	user := uuid.New()
	hooks := &aggtest.HooksRecorder{}
	agg := newDisclosure(t, db, hooks)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := agg.UnlockHint(ctx, domainagg.UnlockHintInput{UserID: user, ProblemID: p.ID, HintNumber: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent unlock: %v", err)
		}
	}
	if got := loadRecord(t, db, user, p.ID).HintSet(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("unlocked hints after concurrent unlocks: %v", got)
	}
	if got := hooks.StatusCounts("Progress.Disclosure.UnlockHint")["success"]; got != 8 {
		t.Fatalf("each unlock should end in exactly one successful attempt, got %d", got)
	}
}

func TestDisclosureRecordsHookOutcome(t *testing.T) {
	db := repotest.DB(t)
	ctx := context.Background()
	sheet := repotest.SeedSheet(t, ctx, db, "Sheet")
	p := repotest.SeedProblem(t, ctx, db, sheet.ID, 1, types.DifficultyEasy, 2)
	hooks := &aggtest.HooksRecorder{}
	agg := newDisclosure(t, db, hooks)

	_, _ = agg.UnlockHint(ctx, domainagg.UnlockHintInput{UserID: uuid.New(), ProblemID: p.ID, HintNumber: 2})
	got := hooks.Statuses("Progress.Disclosure.UnlockHint")
	if len(got) != 1 || got[0] != string(domainagg.CodeSequenceViolation) {
		t.Fatalf("unexpected hook statuses: %v (all: %+v)", got, hooks.Operations)
	}
}
