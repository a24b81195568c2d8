package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var DisclosureAggregateContract = Contract{
	Name:             "Progress.DisclosureAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	Concurrency:      ConcurrencyVersionCAS,
	Notes: "Sole writer of unlocked hints and solution unlock state. Hints unlock as a prefix 1..k; " +
		"the solution unlocks only after all hints and never re-locks.",
}

// DisclosureAggregate owns hint and solution unlock writes.
//
// Write method failures should return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeSequenceViolation, CodePrerequisiteNotMet, CodeRetryable, CodeInternal.
type DisclosureAggregate interface {
	Aggregate

	// UnlockHint adds HintNumber to the caller's unlocked set. Re-unlocking is a no-op success.
	UnlockHint(ctx context.Context, in UnlockHintInput) (UnlockHintResult, error)

	// UnlockSolution marks the solution unlocked once every hint is unlocked.
	UnlockSolution(ctx context.Context, in UnlockSolutionInput) (UnlockSolutionResult, error)
}

type UnlockHintInput struct {
	UserID     uuid.UUID
	ProblemID  uuid.UUID
	HintNumber int
}

type UnlockHintResult struct {
	HintNumber     int
	Content        string
	UnlockedHints  []int
	AlreadyApplied bool
}

type UnlockSolutionInput struct {
	UserID    uuid.UUID
	ProblemID uuid.UUID
}

type UnlockSolutionResult struct {
	Code           map[string]string
	Explanation    string
	UnlockedAt     time.Time
	AlreadyApplied bool
}
