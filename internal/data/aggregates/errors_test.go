package aggregates

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	domainagg "github.com/yungbote/codesheets-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", ConflictError("stale"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_WrappedAggregateErrorPassesThrough(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeSequenceViolation, "op", "unlock hint 1 first", nil)
	out := MapError("other", fmt.Errorf("outer: %w", in))
	if !domainagg.IsCode(out, domainagg.CodeSequenceViolation) {
		t.Fatalf("expected sequence violation to survive wrapping, got %v", out)
	}
}

func TestMapError_SQLiteUniqueConstraint(t *testing.T) {
	err := MapError("op", errors.New("UNIQUE constraint failed: sheet.name"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q", domainagg.CodeOf(err))
	}
}

func TestMapError_PgSerializationFailure(t *testing.T) {
	err := MapError("op", &pgconn.PgError{Code: "40001", Message: "could not serialize access"})
	if !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("expected retryable code, got %q", domainagg.CodeOf(err))
	}
}

func TestFatalUnlessNotFound(t *testing.T) {
	notFound := domainagg.NewError(domainagg.CodeNotFound, "op", "missing", nil)
	if got := fatalUnlessNotFound("op", notFound); !domainagg.IsCode(got, domainagg.CodeNotFound) {
		t.Fatalf("not_found should pass through, got %v", got)
	}
	internal := MapError("op", errors.New("disk full"))
	got := fatalUnlessNotFound("op", internal)
	if !domainagg.IsCode(got, domainagg.CodeFatal) {
		t.Fatalf("expected fatal, got %v", got)
	}
	if !errors.Is(got, internal) {
		t.Fatalf("fatal error should keep the cause")
	}
}
