package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/codesheets-backend/internal/data/repos"
	types "github.com/yungbote/codesheets-backend/internal/domain"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

const MaxNoteLength = 20000

type NoteService interface {
	GetNote(ctx context.Context, problemID uuid.UUID) (*types.ProblemNote, error)
	// SaveNote creates or replaces the caller's note. Empty content is rejected.
	SaveNote(ctx context.Context, problemID uuid.UUID, content string) (*types.ProblemNote, error)
	DeleteNote(ctx context.Context, problemID uuid.UUID) error
}

type noteService struct {
	db       *gorm.DB
	log      *logger.Logger
	sheets   repos.SheetRepo
	problems repos.ProblemRepo
	notes    repos.NoteRepo
}

func NewNoteService(db *gorm.DB, log *logger.Logger, sheets repos.SheetRepo, problems repos.ProblemRepo, notes repos.NoteRepo) NoteService {
	return &noteService{
		db:       db,
		log:      log.With("service", "NoteService"),
		sheets:   sheets,
		problems: problems,
		notes:    notes,
	}
}

func (s *noteService) requireProblem(dbc dbctx.Context, op string, problemID uuid.UUID) (*types.Problem, error) {
	return loadVisibleProblem(dbc, s.sheets, s.problems, op, problemID)
}

func (s *noteService) GetNote(ctx context.Context, problemID uuid.UUID) (*types.ProblemNote, error) {
	const op = "Notes.GetNote"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.requireProblem(dbc, op, problemID); err != nil {
		return nil, err
	}
	n, err := s.notes.Get(dbc, userID, problemID)
	if err != nil {
		return nil, storeError(op, err)
	}
	if n == nil {
		return nil, notFound(op, "note for problem", problemID)
	}
	return n, nil
}

func (s *noteService) SaveNote(ctx context.Context, problemID uuid.UUID, content string) (*types.ProblemNote, error) {
	const op = "Notes.SaveNote"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, validationError(op, "note content is required")
	}
	if utf8.RuneCountInString(content) > MaxNoteLength {
		return nil, validationError(op, fmt.Sprintf("note content exceeds %d characters", MaxNoteLength))
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.requireProblem(dbc, op, problemID); err != nil {
		return nil, err
	}
	if err := s.notes.Upsert(dbc, &types.ProblemNote{
		UserID:    userID,
		ProblemID: problemID,
		Content:   content,
	}); err != nil {
		s.log.Warn("Failed to save note", "problem_id", problemID, "error", err)
		return nil, storeError(op, err)
	}
	n, err := s.notes.Get(dbc, userID, problemID)
	if err != nil {
		return nil, storeError(op, err)
	}
	if n == nil {
		return nil, notFound(op, "note for problem", problemID)
	}
	return n, nil
}

func (s *noteService) DeleteNote(ctx context.Context, problemID uuid.UUID) error {
	const op = "Notes.DeleteNote"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.requireProblem(dbc, op, problemID); err != nil {
		return err
	}
	n, err := s.notes.Delete(dbc, userID, problemID)
	if err != nil {
		return storeError(op, err)
	}
	if n == 0 {
		return notFound(op, "note for problem", problemID)
	}
	return nil
}
