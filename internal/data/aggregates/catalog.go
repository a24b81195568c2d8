package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yungbote/codesheets-backend/internal/data/repos"
	types "github.com/yungbote/codesheets-backend/internal/domain"
	domainagg "github.com/yungbote/codesheets-backend/internal/domain/aggregates"
	"github.com/yungbote/codesheets-backend/internal/domain/catalog"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
)

type CatalogAggregateDeps struct {
	Base BaseDeps

	Sheets   repos.SheetRepo
	Problems repos.ProblemRepo
	Hints    repos.ProblemHintRepo
	Progress repos.ProgressRecordRepo
	Notes    repos.NoteRepo
}

type catalogAggregate struct {
	deps CatalogAggregateDeps
}

func NewCatalogAggregate(deps CatalogAggregateDeps) domainagg.CatalogAggregate {
	deps.Base = deps.Base.withDefaults()
	return &catalogAggregate{deps: deps}
}

func (a *catalogAggregate) Contract() domainagg.Contract {
	return domainagg.CatalogAggregateContract
}

func (a *catalogAggregate) configured() bool {
	return a.deps.Sheets != nil && a.deps.Problems != nil && a.deps.Hints != nil &&
		a.deps.Progress != nil && a.deps.Notes != nil
}

type normalizedProblem struct {
	title      string
	order      int
	difficulty catalog.Difficulty
	fields     domainagg.ProblemFields
}

func normalizeProblemFields(op string, f domainagg.ProblemFields) (normalizedProblem, error) {
	var out normalizedProblem
	out.title = strings.TrimSpace(f.Title)
	if out.title == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "title is required", nil)
	}
	if f.Order < 1 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "order must be at least 1", nil)
	}
	out.order = f.Order
	d, err := catalog.ParseDifficulty(f.Difficulty)
	if err != nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	if d == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "difficulty is required", nil)
	}
	out.difficulty = d
	out.fields = f
	return out, nil
}

func normalizeHints(op string, hints []string) ([]string, error) {
	out := make([]string, 0, len(hints))
	for i, h := range hints {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, domainagg.NewError(domainagg.CodeValidation, op, fmt.Sprintf("hint %d is empty", i+1), nil)
		}
		out = append(out, h)
	}
	return out, nil
}

func (a *catalogAggregate) CreateProblem(ctx context.Context, in domainagg.CreateProblemInput) (domainagg.CreateProblemResult, error) {
	const op = "Catalog.CreateProblem"
	var out domainagg.CreateProblemResult
	if in.SheetID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing sheet_id", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "catalog aggregate repos not configured", nil)
	}
	norm, err := normalizeProblemFields(op, in.Fields)
	if err != nil {
		return out, err
	}
	hints, err := normalizeHints(op, in.Hints)
	if err != nil {
		return out, err
	}

	err = executeContractWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		sheet, err := a.deps.Sheets.GetByID(dbc, in.SheetID)
		if err != nil {
			return err
		}
		if sheet == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("sheet not found: %s", in.SheetID), nil)
		}
		p := &types.Problem{
			ID:                  uuid.New(),
			SheetID:             sheet.ID,
			Title:               norm.title,
			Order:               norm.order,
			Difficulty:          norm.difficulty,
			Platform:            strings.TrimSpace(norm.fields.Platform),
			Link:                strings.TrimSpace(norm.fields.Link),
			SolutionExplanation: norm.fields.SolutionExplanation,
		}
		p.SetTags(norm.fields.Tags)
		p.SetSolutionCode(norm.fields.SolutionCode)
		if err := a.deps.Problems.Create(dbc, p); err != nil {
			return err
		}
		if _, err := a.deps.Hints.ReplaceForProblem(dbc, p.ID, hints); err != nil {
			return err
		}
		if err := a.deps.Sheets.AdjustTotalProblems(dbc, sheet.ID, 1); err != nil {
			return err
		}
		out = domainagg.CreateProblemResult{
			ProblemID:     p.ID,
			HintCount:     len(hints),
			TotalProblems: sheet.TotalProblems + 1,
		}
		return nil
	})
	if err != nil {
		return domainagg.CreateProblemResult{}, err
	}
	return out, nil
}

func (a *catalogAggregate) UpdateProblem(ctx context.Context, in domainagg.UpdateProblemInput) (domainagg.UpdateProblemResult, error) {
	const op = "Catalog.UpdateProblem"
	var out domainagg.UpdateProblemResult
	if in.ProblemID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing problem_id", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "catalog aggregate repos not configured", nil)
	}
	norm, err := normalizeProblemFields(op, in.Fields)
	if err != nil {
		return out, err
	}
	var hints []string
	if in.Hints != nil {
		if hints, err = normalizeHints(op, *in.Hints); err != nil {
			return out, err
		}
	}

	err = executeContractWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		existing, err := a.deps.Problems.GetByID(dbc, in.ProblemID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("problem not found: %s", in.ProblemID), nil)
		}
		scratch := &types.Problem{}
		scratch.SetTags(norm.fields.Tags)
		scratch.SetSolutionCode(norm.fields.SolutionCode)
		if err := a.deps.Problems.UpdateFields(dbc, existing.ID, map[string]interface{}{
			"title":                norm.title,
			"order_index":          norm.order,
			"difficulty":           norm.difficulty,
			"platform":             strings.TrimSpace(norm.fields.Platform),
			"link":                 strings.TrimSpace(norm.fields.Link),
			"tags":                 scratch.Tags,
			"solution_code":        scratch.SolutionCode,
			"solution_explanation": norm.fields.SolutionExplanation,
		}); err != nil {
			return err
		}
		out = domainagg.UpdateProblemResult{ProblemID: existing.ID}
		if in.Hints == nil {
			n, err := a.deps.Hints.CountByProblem(dbc, existing.ID)
			if err != nil {
				return err
			}
			out.HintCount = n
			return nil
		}
		if _, err := a.deps.Hints.ReplaceForProblem(dbc, existing.ID, hints); err != nil {
			return err
		}
		out.HintCount = len(hints)
		out.HintsReplaced = true
		return nil
	})
	if err != nil {
		return domainagg.UpdateProblemResult{}, err
	}
	return out, nil
}

func (a *catalogAggregate) DeleteProblem(ctx context.Context, in domainagg.DeleteProblemInput) (domainagg.DeleteProblemResult, error) {
	const op = "Catalog.DeleteProblem"
	var out domainagg.DeleteProblemResult
	if in.ProblemID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing problem_id", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "catalog aggregate repos not configured", nil)
	}

	err := executeContractWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		p, err := a.deps.Problems.GetByID(dbc, in.ProblemID)
		if err != nil {
			return err
		}
		if p == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("problem not found: %s", in.ProblemID), nil)
		}
		ids := []uuid.UUID{p.ID}
		out = domainagg.DeleteProblemResult{SheetID: p.SheetID}
		if out.NotesDeleted, err = a.deps.Notes.FullDeleteByProblemIDs(dbc, ids); err != nil {
			return err
		}
		if out.ProgressDeleted, err = a.deps.Progress.FullDeleteByProblemIDs(dbc, ids); err != nil {
			return err
		}
		if _, err = a.deps.Hints.FullDeleteByProblemIDs(dbc, ids); err != nil {
			return err
		}
		n, err := a.deps.Problems.FullDeleteByIDs(dbc, ids)
		if err != nil {
			return err
		}
		if n != 1 {
			return InvariantError(fmt.Sprintf("expected to delete 1 problem, deleted %d", n))
		}
		if err := a.deps.Sheets.AdjustTotalProblems(dbc, p.SheetID, -1); err != nil {
			return err
		}
		sheet, err := a.deps.Sheets.GetByID(dbc, p.SheetID)
		if err != nil {
			return err
		}
		if sheet != nil {
			out.TotalProblems = sheet.TotalProblems
		}
		return nil
	})
	if err != nil {
		return domainagg.DeleteProblemResult{}, fatalUnlessNotFound(op, err)
	}
	return out, nil
}

func (a *catalogAggregate) DeleteSheet(ctx context.Context, in domainagg.DeleteSheetInput) (domainagg.DeleteSheetResult, error) {
	const op = "Catalog.DeleteSheet"
	var out domainagg.DeleteSheetResult
	if in.SheetID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing sheet_id", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "catalog aggregate repos not configured", nil)
	}

	err := executeContractWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		sheet, err := a.deps.Sheets.GetByID(dbc, in.SheetID)
		if err != nil {
			return err
		}
		if sheet == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("sheet not found: %s", in.SheetID), nil)
		}
		ids, err := a.deps.Problems.IDsBySheet(dbc, sheet.ID)
		if err != nil {
			return err
		}
		out = domainagg.DeleteSheetResult{}

		// Children first so a partial failure never leaves orphans behind a missing parent.
		if out.NotesDeleted, err = a.deps.Notes.FullDeleteByProblemIDs(dbc, ids); err != nil {
			return err
		}
		byProblem, err := a.deps.Progress.FullDeleteByProblemIDs(dbc, ids)
		if err != nil {
			return err
		}
		bySheet, err := a.deps.Progress.FullDeleteBySheetID(dbc, sheet.ID)
		if err != nil {
			return err
		}
		out.ProgressDeleted = byProblem + bySheet
		if out.HintsDeleted, err = a.deps.Hints.FullDeleteByProblemIDs(dbc, ids); err != nil {
			return err
		}
		if out.ProblemsDeleted, err = a.deps.Problems.FullDeleteByIDs(dbc, ids); err != nil {
			return err
		}
		n, err := a.deps.Sheets.FullDeleteByID(dbc, sheet.ID)
		if err != nil {
			return err
		}
		if n != 1 {
			return InvariantError(fmt.Sprintf("expected to delete 1 sheet, deleted %d", n))
		}
		return nil
	})
	if err != nil {
		return domainagg.DeleteSheetResult{}, fatalUnlessNotFound(op, err)
	}
	return out, nil
}
