package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/codesheets-backend/internal/data/repos"
	types "github.com/yungbote/codesheets-backend/internal/domain"
	domainprogress "github.com/yungbote/codesheets-backend/internal/domain/progress"
	"github.com/yungbote/codesheets-backend/internal/observability"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

// MetricsService computes completion statistics from the ledger on every call.
// It never reads the advisory cache.
type MetricsService interface {
	ComputeMetrics(ctx context.Context, sheetID uuid.UUID, difficulty string) (*types.Metrics, error)
	ComputeForUser(ctx context.Context, sheetID, userID uuid.UUID, difficulty types.Difficulty) (*types.Metrics, error)
}

type metricsService struct {
	db       *gorm.DB
	log      *logger.Logger
	sheets   repos.SheetRepo
	problems repos.ProblemRepo
	progress repos.ProgressRecordRepo
}

func NewMetricsService(db *gorm.DB, log *logger.Logger, sheets repos.SheetRepo, problems repos.ProblemRepo, progress repos.ProgressRecordRepo) MetricsService {
	return &metricsService{
		db:       db,
		log:      log.With("service", "MetricsService"),
		sheets:   sheets,
		problems: problems,
		progress: progress,
	}
}

func (s *metricsService) ComputeMetrics(ctx context.Context, sheetID uuid.UUID, difficulty string) (*types.Metrics, error) {
	const op = "Metrics.ComputeMetrics"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	d, err := parseDifficulty(op, difficulty)
	if err != nil {
		return nil, err
	}
	if _, err := loadVisibleSheet(dbctx.Context{Ctx: ctx}, s.sheets, op, sheetID); err != nil {
		return nil, err
	}
	return s.ComputeForUser(ctx, sheetID, userID, d)
}

// ComputeForUser runs the totals and completed-count queries concurrently and
// folds them into per-difficulty and overall stats.
func (s *metricsService) ComputeForUser(ctx context.Context, sheetID, userID uuid.UUID, difficulty types.Difficulty) (*types.Metrics, error) {
	const op = "Metrics.ComputeForUser"
	ctx, span := observability.Tracer().Start(ctx, "MetricsService.ComputeForUser")
	defer span.End()
	span.SetAttributes(
		attribute.String("sheet_id", sheetID.String()),
		attribute.String("difficulty", string(difficulty)),
	)

	start := time.Now()
	var totals, completed map[types.Difficulty]int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.problems.CountByDifficulty(dbctx.Context{Ctx: gctx}, sheetID, difficulty)
		return err
	})
	g.Go(func() error {
		var err error
		completed, err = s.progress.CountCompletedByDifficulty(dbctx.Context{Ctx: gctx}, sheetID, userID, difficulty)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "metrics query failed")
		s.log.Warn("Metrics query failed", "sheet_id", sheetID, "error", err)
		return nil, storeError(op, err)
	}

	m := domainprogress.BuildMetrics(totals, completed)
	s.log.Debug("Computed sheet metrics",
		"sheet_id", sheetID,
		"total", m.Overall.TotalProblems,
		"completed", m.Overall.CompletedProblems,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &m, nil
}
