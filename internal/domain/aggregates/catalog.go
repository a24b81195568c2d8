package aggregates

import (
	"context"

	"github.com/google/uuid"
)

var CatalogAggregateContract = Contract{
	Name:             "Catalog.CatalogAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	Concurrency:      ConcurrencyTransactional,
	Notes: "Owns problem membership of a sheet (with the sheet's total problem count) and cascade " +
		"removal of hints, notes and progress rows.",
}

// CatalogAggregate owns structural catalog writes.
//
// Write method failures should return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeFatal, CodeRetryable, CodeInternal.
// Delete failures other than CodeNotFound are reported as CodeFatal.
type CatalogAggregate interface {
	Aggregate

	// CreateProblem inserts a problem with its hints and bumps the sheet's problem count.
	CreateProblem(ctx context.Context, in CreateProblemInput) (CreateProblemResult, error)

	// UpdateProblem overwrites problem fields; a non-nil Hints replaces the hint sequence.
	UpdateProblem(ctx context.Context, in UpdateProblemInput) (UpdateProblemResult, error)

	// DeleteProblem removes a problem with its hints, notes and progress rows.
	DeleteProblem(ctx context.Context, in DeleteProblemInput) (DeleteProblemResult, error)

	// DeleteSheet removes a sheet and everything hanging off its problems.
	DeleteSheet(ctx context.Context, in DeleteSheetInput) (DeleteSheetResult, error)
}

type ProblemFields struct {
	Title               string
	Order               int
	Difficulty          string
	Platform            string
	Link                string
	Tags                []string
	SolutionCode        map[string]string
	SolutionExplanation string
}

type CreateProblemInput struct {
	SheetID uuid.UUID
	Fields  ProblemFields
	Hints   []string
}

type CreateProblemResult struct {
	ProblemID     uuid.UUID
	HintCount     int
	TotalProblems int
}

type UpdateProblemInput struct {
	ProblemID uuid.UUID
	Fields    ProblemFields
	// nil keeps existing hints; an empty slice removes them.
	Hints *[]string
}

type UpdateProblemResult struct {
	ProblemID     uuid.UUID
	HintCount     int
	HintsReplaced bool
}

type DeleteProblemInput struct {
	ProblemID uuid.UUID
}

type DeleteProblemResult struct {
	SheetID         uuid.UUID
	ProgressDeleted int64
	NotesDeleted    int64
	TotalProblems   int
}

type DeleteSheetInput struct {
	SheetID uuid.UUID
}

type DeleteSheetResult struct {
	ProblemsDeleted int64
	HintsDeleted    int64
	ProgressDeleted int64
	NotesDeleted    int64
}
