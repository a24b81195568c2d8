package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/codesheets-backend/internal/data/repos"
	domainprogress "github.com/yungbote/codesheets-backend/internal/domain/progress"
	"github.com/yungbote/codesheets-backend/internal/observability"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

type ToggleResult struct {
	ProblemID   uuid.UUID  `json:"problemId"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
}

type ProgressService interface {
	// ToggleComplete overwrites the completion flag. Unlock state is never touched.
	ToggleComplete(ctx context.Context, problemID uuid.UUID, completed bool) (*ToggleResult, error)
}

type progressService struct {
	db       *gorm.DB
	log      *logger.Logger
	sheets   repos.SheetRepo
	problems repos.ProblemRepo
	progress repos.ProgressRecordRepo
	metrics  MetricsService
	advisory AdvisoryStore
	counters *observability.Metrics
}

func NewProgressService(db *gorm.DB, log *logger.Logger, sheets repos.SheetRepo, problems repos.ProblemRepo, progress repos.ProgressRecordRepo, metrics MetricsService, advisory AdvisoryStore, counters *observability.Metrics) ProgressService {
	if advisory == nil {
		advisory = NewNoopAdvisoryStore()
	}
	return &progressService{
		db:       db,
		log:      log.With("service", "ProgressService"),
		sheets:   sheets,
		problems: problems,
		progress: progress,
		metrics:  metrics,
		advisory: advisory,
		counters: counters,
	}
}

func (s *progressService) ToggleComplete(ctx context.Context, problemID uuid.UUID, completed bool) (*ToggleResult, error) {
	const op = "Progress.ToggleComplete"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	problem, err := loadVisibleProblem(dbc, s.sheets, s.problems, op, problemID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.progress.UpsertCompletion(dbc, userID, problem.ID, problem.SheetID, completed, now); err != nil {
		s.log.Warn("Failed to store completion", "problem_id", problem.ID, "error", err)
		return nil, storeError(op, err)
	}
	s.counters.IncCompletion(completed)

	out := &ToggleResult{ProblemID: problem.ID, Completed: completed}
	if completed {
		out.CompletedAt = &now
	}
	s.refreshAdvisory(ctx, problem.SheetID, userID)
	return out, nil
}

// refreshAdvisory recomputes and caches the viewer's sheet summary. Failures are
// logged only; the completion write has already succeeded.
func (s *progressService) refreshAdvisory(ctx context.Context, sheetID, userID uuid.UUID) {
	if s.metrics == nil {
		return
	}
	m, err := s.metrics.ComputeForUser(ctx, sheetID, userID, "")
	if err != nil {
		s.log.Warn("Advisory refresh failed", "sheet_id", sheetID, "error", err)
		return
	}
	snap := domainprogress.AdvisoryFromMetrics(*m, time.Now())
	if err := s.advisory.Put(ctx, sheetID, userID, snap); err != nil {
		s.log.Warn("Advisory store write failed", "sheet_id", sheetID, "error", err)
	}
}

