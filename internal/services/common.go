package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	dataagg "github.com/yungbote/codesheets-backend/internal/data/aggregates"
	"github.com/yungbote/codesheets-backend/internal/data/repos"
	types "github.com/yungbote/codesheets-backend/internal/domain"
	domainagg "github.com/yungbote/codesheets-backend/internal/domain/aggregates"
	"github.com/yungbote/codesheets-backend/internal/platform/ctxutil"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
)

func requireUser(ctx context.Context, op string) (uuid.UUID, error) {
	userID := ctxutil.UserID(ctx)
	if userID == uuid.Nil {
		return uuid.Nil, domainagg.NewError(domainagg.CodeUnauthorized, op, "authentication required", nil)
	}
	return userID, nil
}

func requireAdmin(ctx context.Context, op string) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeUnauthorized, op, "authentication required", nil)
	}
	if !rd.IsAdmin() {
		return domainagg.NewError(domainagg.CodeForbidden, op, "admin role required", nil)
	}
	return nil
}

func validationError(op, msg string) error {
	return domainagg.NewError(domainagg.CodeValidation, op, msg, nil)
}

func notFound(op, what string, id uuid.UUID) error {
	return domainagg.NewError(domainagg.CodeNotFound, op, fmt.Sprintf("%s not found: %s", what, id), nil)
}

// storeError classifies a raw repository error so handlers see a coded failure.
func storeError(op string, err error) error {
	return dataagg.MapError(op, err)
}

func parseDifficulty(op, raw string) (types.Difficulty, error) {
	d, err := types.ParseDifficulty(raw)
	if err != nil {
		return "", domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	return d, nil
}

// loadVisibleSheet returns the sheet when it exists and the caller may see it.
// Inactive sheets are only visible to admins.
func loadVisibleSheet(dbc dbctx.Context, sheets repos.SheetRepo, op string, id uuid.UUID) (*types.Sheet, error) {
	if id == uuid.Nil {
		return nil, validationError(op, "missing sheet id")
	}
	sheet, err := sheets.GetByID(dbc, id)
	if err != nil {
		return nil, storeError(op, err)
	}
	if sheet == nil {
		return nil, notFound(op, "sheet", id)
	}
	if !sheet.IsActive && !ctxutil.GetRequestData(dbc.Ctx).IsAdmin() {
		return nil, notFound(op, "sheet", id)
	}
	return sheet, nil
}

// loadVisibleProblem resolves a problem through its sheet's visibility. A
// problem on an inactive sheet is reported as missing to non-admins.
func loadVisibleProblem(dbc dbctx.Context, sheets repos.SheetRepo, problems repos.ProblemRepo, op string, id uuid.UUID) (*types.Problem, error) {
	if id == uuid.Nil {
		return nil, validationError(op, "missing problem id")
	}
	p, err := problems.GetByID(dbc, id)
	if err != nil {
		return nil, storeError(op, err)
	}
	if p == nil {
		return nil, notFound(op, "problem", id)
	}
	if _, err := loadVisibleSheet(dbc, sheets, op, p.SheetID); err != nil {
		if domainagg.IsCode(err, domainagg.CodeNotFound) {
			return nil, notFound(op, "problem", id)
		}
		return nil, err
	}
	return p, nil
}
