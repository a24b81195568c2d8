package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/codesheets-backend/internal/data/repos"
	types "github.com/yungbote/codesheets-backend/internal/domain"
	"github.com/yungbote/codesheets-backend/internal/platform/ctxutil"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

const (
	DefaultFeedLimit = 10
	DefaultFeedMax   = 100
)

type FeedQuery struct {
	Page       int
	Limit      int
	Difficulty string
}

// FeedProblem is a listing row. Hint and solution content never appear here.
type FeedProblem struct {
	ID         uuid.UUID        `json:"id"`
	SheetID    uuid.UUID        `json:"sheetId"`
	Title      string           `json:"title"`
	Order      int              `json:"order"`
	Difficulty types.Difficulty `json:"difficulty"`
	Platform   string           `json:"platform"`
	Link       string           `json:"link"`
	Tags       []string         `json:"tags"`
	Completed  bool             `json:"completed"`
	HasNotes   bool             `json:"hasNotes"`
}

type FeedPage struct {
	Problems   []FeedProblem    `json:"problems"`
	Pagination types.Pagination `json:"pagination"`
}

type FeedService interface {
	ListProblems(ctx context.Context, sheetID uuid.UUID, q FeedQuery) (*FeedPage, error)
}

type feedService struct {
	db       *gorm.DB
	log      *logger.Logger
	sheets   repos.SheetRepo
	problems repos.ProblemRepo
	progress repos.ProgressRecordRepo
	notes    repos.NoteRepo
	maxLimit int
}

func NewFeedService(db *gorm.DB, log *logger.Logger, sheets repos.SheetRepo, problems repos.ProblemRepo, progress repos.ProgressRecordRepo, notes repos.NoteRepo, maxLimit int) FeedService {
	if maxLimit <= 0 {
		maxLimit = DefaultFeedMax
	}
	return &feedService{
		db:       db,
		log:      log.With("service", "FeedService"),
		sheets:   sheets,
		problems: problems,
		progress: progress,
		notes:    notes,
		maxLimit: maxLimit,
	}
}

// readSnapshot runs fn in one transaction, read-only repeatable read on
// Postgres. A SQLite transaction already reads from a single snapshot.
func (s *feedService) readSnapshot(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if s.db == nil {
		return fn(dbctx.Context{Ctx: ctx})
	}
	var opts *sql.TxOptions
	if s.db.Dialector != nil && s.db.Dialector.Name() == "postgres" {
		opts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	}, opts)
}

func (s *feedService) ListProblems(ctx context.Context, sheetID uuid.UUID, q FeedQuery) (*FeedPage, error) {
	const op = "Feed.ListProblems"
	if q.Page < 1 {
		return nil, validationError(op, "page must be at least 1")
	}
	if q.Limit < 1 {
		return nil, validationError(op, "limit must be at least 1")
	}
	if q.Limit > s.maxLimit {
		return nil, validationError(op, fmt.Sprintf("limit must be at most %d", s.maxLimit))
	}
	difficulty, err := parseDifficulty(op, q.Difficulty)
	if err != nil {
		return nil, err
	}
	if _, err := loadVisibleSheet(dbctx.Context{Ctx: ctx}, s.sheets, op, sheetID); err != nil {
		return nil, err
	}

	var (
		total int64
		rows  []*types.Problem
	)
	// Count and page read from one snapshot so the total matches the rows.
	err = s.readSnapshot(ctx, func(dbc dbctx.Context) error {
		var err error
		if total, err = s.problems.CountBySheet(dbc, sheetID, difficulty); err != nil {
			return err
		}
		rows, err = s.problems.PageBySheet(dbc, sheetID, difficulty, types.Offset(q.Page, q.Limit), q.Limit)
		return err
	})
	if err != nil {
		return nil, storeError(op, err)
	}

	completed := map[uuid.UUID]bool{}
	withNotes := map[uuid.UUID]bool{}
	if userID := ctxutil.UserID(ctx); userID != uuid.Nil && len(rows) > 0 {
		ids := make([]uuid.UUID, 0, len(rows))
		for _, p := range rows {
			ids = append(ids, p.ID)
		}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			completed, err = s.progress.CompletedByProblemIDs(dbctx.Context{Ctx: gctx}, userID, ids)
			return err
		})
		g.Go(func() error {
			var err error
			withNotes, err = s.notes.ProblemIDsWithNotes(dbctx.Context{Ctx: gctx}, userID, ids)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, storeError(op, err)
		}
	}

	out := &FeedPage{
		Problems:   make([]FeedProblem, 0, len(rows)),
		Pagination: types.NewPagination(q.Page, q.Limit, int(total)),
	}
	for _, p := range rows {
		out.Problems = append(out.Problems, FeedProblem{
			ID:         p.ID,
			SheetID:    p.SheetID,
			Title:      p.Title,
			Order:      p.Order,
			Difficulty: p.Difficulty,
			Platform:   p.Platform,
			Link:       p.Link,
			Tags:       p.TagList(),
			Completed:  completed[p.ID],
			HasNotes:   withNotes[p.ID],
		})
	}
	return out, nil
}
