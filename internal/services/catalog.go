package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/codesheets-backend/internal/data/repos"
	types "github.com/yungbote/codesheets-backend/internal/domain"
	domainagg "github.com/yungbote/codesheets-backend/internal/domain/aggregates"
	domainprogress "github.com/yungbote/codesheets-backend/internal/domain/progress"
	"github.com/yungbote/codesheets-backend/internal/observability"
	"github.com/yungbote/codesheets-backend/internal/platform/ctxutil"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

type SheetInput struct {
	Name        string
	Description string
	Icon        string
	// IsActive defaults to true on create and is left unchanged on update when nil.
	IsActive *bool
}

type ProblemInput struct {
	Fields domainagg.ProblemFields
	// Hints replaces the hint sequence when non-nil.
	Hints *[]string
}

// ProblemDetail is the admin view of a problem, including its hidden content.
type ProblemDetail struct {
	*types.Problem
	Hints               []string          `json:"hints"`
	SolutionCode        map[string]string `json:"solutionCode"`
	SolutionExplanation string            `json:"solutionExplanation"`
}

type CatalogService interface {
	ListSheets(ctx context.Context) ([]*types.Sheet, error)
	GetSheet(ctx context.Context, sheetID uuid.UUID) (*types.Sheet, error)
	CreateSheet(ctx context.Context, in SheetInput) (*types.Sheet, error)
	UpdateSheet(ctx context.Context, sheetID uuid.UUID, in SheetInput) (*types.Sheet, error)
	DeleteSheet(ctx context.Context, sheetID uuid.UUID) (*domainagg.DeleteSheetResult, error)

	// ListProblems is the admin listing of a sheet, ordered by order then id.
	ListProblems(ctx context.Context, sheetID uuid.UUID, difficulty string) ([]*types.Problem, error)
	GetProblem(ctx context.Context, problemID uuid.UUID) (*ProblemDetail, error)
	CreateProblem(ctx context.Context, sheetID uuid.UUID, in ProblemInput) (*ProblemDetail, error)
	UpdateProblem(ctx context.Context, problemID uuid.UUID, in ProblemInput) (*ProblemDetail, error)
	DeleteProblem(ctx context.Context, problemID uuid.UUID) (*domainagg.DeleteProblemResult, error)
}

type catalogService struct {
	db        *gorm.DB
	log       *logger.Logger
	sheets    repos.SheetRepo
	problems  repos.ProblemRepo
	hints     repos.ProblemHintRepo
	aggregate domainagg.CatalogAggregate
	metrics   MetricsService
	advisory  AdvisoryStore
	counters  *observability.Metrics
}

func NewCatalogService(
	db *gorm.DB,
	log *logger.Logger,
	sheets repos.SheetRepo,
	problems repos.ProblemRepo,
	hints repos.ProblemHintRepo,
	aggregate domainagg.CatalogAggregate,
	metrics MetricsService,
	advisory AdvisoryStore,
	counters *observability.Metrics,
) CatalogService {
	if advisory == nil {
		advisory = NewNoopAdvisoryStore()
	}
	return &catalogService{
		db:        db,
		log:       log.With("service", "CatalogService"),
		sheets:    sheets,
		problems:  problems,
		hints:     hints,
		aggregate: aggregate,
		metrics:   metrics,
		advisory:  advisory,
		counters:  counters,
	}
}

func (s *catalogService) ListSheets(ctx context.Context) ([]*types.Sheet, error) {
	const op = "Catalog.ListSheets"
	rd := ctxutil.GetRequestData(ctx)
	sheets, err := s.sheets.List(dbctx.Context{Ctx: ctx}, !rd.IsAdmin())
	if err != nil {
		return nil, storeError(op, err)
	}
	for _, sh := range sheets {
		s.overlayAdvisory(ctx, sh)
	}
	return sheets, nil
}

func (s *catalogService) GetSheet(ctx context.Context, sheetID uuid.UUID) (*types.Sheet, error) {
	const op = "Catalog.GetSheet"
	sheet, err := loadVisibleSheet(dbctx.Context{Ctx: ctx}, s.sheets, op, sheetID)
	if err != nil {
		return nil, err
	}
	s.overlayAdvisory(ctx, sheet)
	return sheet, nil
}

// overlayAdvisory fills the viewer's display progress from the cache, computing
// and caching it on a miss. Anonymous viewers see zeros.
func (s *catalogService) overlayAdvisory(ctx context.Context, sheet *types.Sheet) {
	userID := ctxutil.UserID(ctx)
	if sheet == nil || userID == uuid.Nil {
		return
	}
	snap, err := s.advisory.Get(ctx, sheet.ID, userID)
	switch {
	case err != nil:
		s.counters.IncAdvisoryLookup("error")
		s.log.Warn("Advisory lookup failed", "sheet_id", sheet.ID, "error", err)
	case snap != nil:
		s.counters.IncAdvisoryLookup("hit")
		sheet.CompletedProblems = snap.CompletedProblems
		sheet.ProgressPercentage = snap.ProgressPercentage
		return
	default:
		s.counters.IncAdvisoryLookup("miss")
	}
	if s.metrics == nil {
		return
	}
	m, err := s.metrics.ComputeForUser(ctx, sheet.ID, userID, "")
	if err != nil {
		s.log.Warn("Advisory recompute failed", "sheet_id", sheet.ID, "error", err)
		return
	}
	fresh := domainprogress.AdvisoryFromMetrics(*m, time.Now())
	sheet.CompletedProblems = fresh.CompletedProblems
	sheet.ProgressPercentage = fresh.ProgressPercentage
	if err := s.advisory.Put(ctx, sheet.ID, userID, fresh); err != nil {
		s.log.Warn("Advisory store write failed", "sheet_id", sheet.ID, "error", err)
	}
}

func (s *catalogService) invalidate(ctx context.Context, sheetID uuid.UUID) {
	if err := s.advisory.InvalidateSheet(ctx, sheetID); err != nil {
		s.log.Warn("Advisory invalidation failed", "sheet_id", sheetID, "error", err)
	}
}

func normalizeSheetInput(op string, in SheetInput) (SheetInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Icon = strings.TrimSpace(in.Icon)
	if in.Name == "" {
		return in, validationError(op, "sheet name is required")
	}
	return in, nil
}

func (s *catalogService) CreateSheet(ctx context.Context, in SheetInput) (*types.Sheet, error) {
	const op = "Catalog.CreateSheet"
	if err := requireAdmin(ctx, op); err != nil {
		return nil, err
	}
	in, err := normalizeSheetInput(op, in)
	if err != nil {
		return nil, err
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	sheet := &types.Sheet{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: in.Description,
		Icon:        in.Icon,
		IsActive:    active,
	}
	if err := s.sheets.Create(dbctx.Context{Ctx: ctx}, sheet); err != nil {
		return nil, storeError(op, err)
	}
	s.log.Info("Sheet created", "sheet_id", sheet.ID, "name", sheet.Name)
	return sheet, nil
}

func (s *catalogService) UpdateSheet(ctx context.Context, sheetID uuid.UUID, in SheetInput) (*types.Sheet, error) {
	const op = "Catalog.UpdateSheet"
	if err := requireAdmin(ctx, op); err != nil {
		return nil, err
	}
	in, err := normalizeSheetInput(op, in)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	existing, err := loadVisibleSheet(dbc, s.sheets, op, sheetID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"name":        in.Name,
		"description": in.Description,
		"icon":        in.Icon,
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if err := s.sheets.UpdateFields(dbc, existing.ID, updates); err != nil {
		return nil, storeError(op, err)
	}
	return loadVisibleSheet(dbc, s.sheets, op, existing.ID)
}

func (s *catalogService) DeleteSheet(ctx context.Context, sheetID uuid.UUID) (*domainagg.DeleteSheetResult, error) {
	const op = "Catalog.DeleteSheet"
	if err := requireAdmin(ctx, op); err != nil {
		return nil, err
	}
	res, err := s.aggregate.DeleteSheet(ctx, domainagg.DeleteSheetInput{SheetID: sheetID})
	if err != nil {
		if domainagg.IsCode(err, domainagg.CodeFatal) {
			s.log.Error("Sheet cascade delete failed", "sheet_id", sheetID, "error", err)
		}
		return nil, err
	}
	s.invalidate(ctx, sheetID)
	s.log.Info("Sheet deleted",
		"sheet_id", sheetID,
		"problems", res.ProblemsDeleted,
		"progress", res.ProgressDeleted,
		"notes", res.NotesDeleted,
	)
	return &res, nil
}

func (s *catalogService) loadDetail(dbc dbctx.Context, op string, problemID uuid.UUID) (*ProblemDetail, error) {
	p, err := s.problems.GetByID(dbc, problemID)
	if err != nil {
		return nil, storeError(op, err)
	}
	if p == nil {
		return nil, notFound(op, "problem", problemID)
	}
	hints, err := s.hints.ListByProblem(dbc, p.ID)
	if err != nil {
		return nil, storeError(op, err)
	}
	out := &ProblemDetail{
		Problem:             p,
		Hints:               make([]string, 0, len(hints)),
		SolutionCode:        p.SolutionCodeMap(),
		SolutionExplanation: p.SolutionExplanation,
	}
	for _, h := range hints {
		out.Hints = append(out.Hints, h.Content)
	}
	return out, nil
}

func (s *catalogService) ListProblems(ctx context.Context, sheetID uuid.UUID, difficulty string) ([]*types.Problem, error) {
	const op = "Catalog.ListProblems"
	if err := requireAdmin(ctx, op); err != nil {
		return nil, err
	}
	d, err := parseDifficulty(op, difficulty)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := loadVisibleSheet(dbc, s.sheets, op, sheetID); err != nil {
		return nil, err
	}
	out, err := s.problems.ListBySheet(dbc, sheetID, d)
	if err != nil {
		return nil, storeError(op, err)
	}
	return out, nil
}

func (s *catalogService) GetProblem(ctx context.Context, problemID uuid.UUID) (*ProblemDetail, error) {
	const op = "Catalog.GetProblem"
	if err := requireAdmin(ctx, op); err != nil {
		return nil, err
	}
	if problemID == uuid.Nil {
		return nil, validationError(op, "missing problem id")
	}
	return s.loadDetail(dbctx.Context{Ctx: ctx}, op, problemID)
}

func (s *catalogService) CreateProblem(ctx context.Context, sheetID uuid.UUID, in ProblemInput) (*ProblemDetail, error) {
	const op = "Catalog.CreateProblem"
	if err := requireAdmin(ctx, op); err != nil {
		return nil, err
	}
	var hints []string
	if in.Hints != nil {
		hints = *in.Hints
	}
	res, err := s.aggregate.CreateProblem(ctx, domainagg.CreateProblemInput{
		SheetID: sheetID,
		Fields:  in.Fields,
		Hints:   hints,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, sheetID)
	return s.loadDetail(dbctx.Context{Ctx: ctx}, op, res.ProblemID)
}

func (s *catalogService) UpdateProblem(ctx context.Context, problemID uuid.UUID, in ProblemInput) (*ProblemDetail, error) {
	const op = "Catalog.UpdateProblem"
	if err := requireAdmin(ctx, op); err != nil {
		return nil, err
	}
	res, err := s.aggregate.UpdateProblem(ctx, domainagg.UpdateProblemInput{
		ProblemID: problemID,
		Fields:    in.Fields,
		Hints:     in.Hints,
	})
	if err != nil {
		return nil, err
	}
	detail, err := s.loadDetail(dbctx.Context{Ctx: ctx}, op, res.ProblemID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, detail.SheetID)
	return detail, nil
}

func (s *catalogService) DeleteProblem(ctx context.Context, problemID uuid.UUID) (*domainagg.DeleteProblemResult, error) {
	const op = "Catalog.DeleteProblem"
	if err := requireAdmin(ctx, op); err != nil {
		return nil, err
	}
	res, err := s.aggregate.DeleteProblem(ctx, domainagg.DeleteProblemInput{ProblemID: problemID})
	if err != nil {
		if domainagg.IsCode(err, domainagg.CodeFatal) {
			s.log.Error("Problem cascade delete failed", "problem_id", problemID, "error", err)
		}
		return nil, err
	}
	s.invalidate(ctx, res.SheetID)
	return &res, nil
}
