package aggregates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/codesheets-backend/internal/data/repos"
	types "github.com/yungbote/codesheets-backend/internal/domain"
	domainagg "github.com/yungbote/codesheets-backend/internal/domain/aggregates"
	domainprogress "github.com/yungbote/codesheets-backend/internal/domain/progress"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
)

const progressTable = "problem_progress"

type DisclosureAggregateDeps struct {
	Base BaseDeps

	Problems repos.ProblemRepo
	Hints    repos.ProblemHintRepo
	Progress repos.ProgressRecordRepo
}

type disclosureAggregate struct {
	deps DisclosureAggregateDeps
}

func NewDisclosureAggregate(deps DisclosureAggregateDeps) domainagg.DisclosureAggregate {
	deps.Base = deps.Base.withDefaults()
	return &disclosureAggregate{deps: deps}
}

func (a *disclosureAggregate) Contract() domainagg.Contract {
	return domainagg.DisclosureAggregateContract
}

func (a *disclosureAggregate) validate(op string, userID, problemID uuid.UUID) error {
	if userID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeUnauthorized, op, "authentication required", nil)
	}
	if problemID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing problem_id", nil)
	}
	if a.deps.Problems == nil || a.deps.Hints == nil || a.deps.Progress == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "disclosure aggregate repos not configured", nil)
	}
	return nil
}

// loadState reads the problem, its hint count and the caller's record, creating the record lazily.
func (a *disclosureAggregate) loadState(dbc dbctx.Context, op string, userID, problemID uuid.UUID) (*types.Problem, int, *types.ProgressRecord, error) {
	problem, err := a.deps.Problems.GetByID(dbc, problemID)
	if err != nil {
		return nil, 0, nil, err
	}
	if problem == nil {
		return nil, 0, nil, domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("problem not found: %s", problemID), nil)
	}
	total, err := a.deps.Hints.CountByProblem(dbc, problem.ID)
	if err != nil {
		return nil, 0, nil, err
	}
	rec, err := a.deps.Progress.GetOrCreate(dbc, userID, problem.ID, problem.SheetID)
	if err != nil {
		return nil, 0, nil, err
	}
	if rec == nil {
		return nil, 0, nil, InvariantError("progress record missing after create")
	}
	return problem, total, rec, nil
}

func (a *disclosureAggregate) UnlockHint(ctx context.Context, in domainagg.UnlockHintInput) (domainagg.UnlockHintResult, error) {
	const op = "Progress.Disclosure.UnlockHint"
	var out domainagg.UnlockHintResult
	if err := a.validate(op, in.UserID, in.ProblemID); err != nil {
		return out, err
	}
	if in.HintNumber < 1 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "hint number must be at least 1", nil)
	}

	err := executeContractWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		out = domainagg.UnlockHintResult{HintNumber: in.HintNumber}
		problem, total, rec, err := a.loadState(dbc, op, in.UserID, in.ProblemID)
		if err != nil {
			return err
		}
		unlocked := rec.HintSet()

		already, err := domainprogress.CheckHint(unlocked, in.HintNumber, total)
		if err != nil {
			return hintError(op, err, in.HintNumber, total)
		}

		hint, err := a.deps.Hints.GetByNumber(dbc, problem.ID, in.HintNumber)
		if err != nil {
			return err
		}
		if hint == nil {
			return InvariantError(fmt.Sprintf("hint %d missing for problem %s", in.HintNumber, problem.ID))
		}
		out.Content = hint.Content

		if already {
			out.AlreadyApplied = true
			out.UnlockedHints = unlocked
			return nil
		}

		next := domainprogress.AddHint(unlocked, in.HintNumber)
		if err := a.deps.Base.CASGuard.Apply(dbc, progressTable, rec.ID, rec.Version, map[string]any{
			"unlocked_hints": domainprogress.EncodeHints(next),
		}, "progress record"); err != nil {
			return err
		}
		out.UnlockedHints = next
		return nil
	})
	if err != nil {
		return domainagg.UnlockHintResult{}, err
	}
	return out, nil
}

func hintError(op string, err error, n, total int) error {
	var seq *domainprogress.SequenceViolation
	switch {
	case errors.As(err, &seq):
		return domainagg.WithDetails(
			domainagg.NewError(domainagg.CodeSequenceViolation, op, seq.Error(), err),
			map[string]any{"requiredHint": seq.Required, "nextHint": seq.Next},
		)
	case errors.Is(err, domainprogress.ErrHintOutOfRange):
		msg := fmt.Sprintf("hint number %d out of range 1..%d", n, total)
		if total == 0 {
			msg = "problem has no hints"
		}
		return domainagg.WithDetails(
			domainagg.NewError(domainagg.CodeValidation, op, msg, err),
			map[string]any{"totalHints": total},
		)
	default:
		return err
	}
}

func (a *disclosureAggregate) UnlockSolution(ctx context.Context, in domainagg.UnlockSolutionInput) (domainagg.UnlockSolutionResult, error) {
	const op = "Progress.Disclosure.UnlockSolution"
	var out domainagg.UnlockSolutionResult
	if err := a.validate(op, in.UserID, in.ProblemID); err != nil {
		return out, err
	}

	err := executeContractWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		out = domainagg.UnlockSolutionResult{}
		problem, total, rec, err := a.loadState(dbc, op, in.UserID, in.ProblemID)
		if err != nil {
			return err
		}
		out.Code = problem.SolutionCodeMap()
		out.Explanation = problem.SolutionExplanation

		if rec.SolutionUnlocked {
			out.AlreadyApplied = true
			if rec.UnlockedAt != nil {
				out.UnlockedAt = rec.UnlockedAt.UTC()
			}
			return nil
		}

		unlocked := rec.HintSet()
		if err := domainprogress.CheckSolution(unlocked, total); err != nil {
			var pre *domainprogress.PrerequisiteNotMet
			if errors.As(err, &pre) {
				return domainagg.WithDetails(
					domainagg.NewError(domainagg.CodePrerequisiteNotMet, op, pre.Error(), err),
					map[string]any{
						"remainingHints": pre.Remaining,
						"nextHint":       domainprogress.UnlockedPrefix(unlocked) + 1,
					},
				)
			}
			return err
		}

		now := time.Now().UTC()
		if err := a.deps.Base.CASGuard.Apply(dbc, progressTable, rec.ID, rec.Version, map[string]any{
			"solution_unlocked": true,
			"unlocked_at":       now,
			"updated_at":        now,
		}, "progress record"); err != nil {
			return err
		}
		out.UnlockedAt = now
		return nil
	})
	if err != nil {
		return domainagg.UnlockSolutionResult{}, err
	}
	return out, nil
}
