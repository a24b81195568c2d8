package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/codesheets-backend/internal/domain"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

type NoteRepo interface {
	Get(dbc dbctx.Context, userID, problemID uuid.UUID) (*types.ProblemNote, error)
	Upsert(dbc dbctx.Context, row *types.ProblemNote) error
	Delete(dbc dbctx.Context, userID, problemID uuid.UUID) (int64, error)
	ProblemIDsWithNotes(dbc dbctx.Context, userID uuid.UUID, problemIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	FullDeleteByProblemIDs(dbc dbctx.Context, problemIDs []uuid.UUID) (int64, error)
}

type noteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	return &noteRepo{db: db, log: baseLog.With("repo", "NoteRepo")}
}

func (r *noteRepo) Get(dbc dbctx.Context, userID, problemID uuid.UUID) (*types.ProblemNote, error) {
	if userID == uuid.Nil || problemID == uuid.Nil {
		return nil, nil
	}
	var row types.ProblemNote
	err := dbc.DB(r.db).
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *noteRepo) Upsert(dbc dbctx.Context, row *types.ProblemNote) error {
	if row == nil || row.UserID == uuid.Nil || row.ProblemID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "problem_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "updated_at"}),
		}).
		Create(row).Error
}

func (r *noteRepo) Delete(dbc dbctx.Context, userID, problemID uuid.UUID) (int64, error) {
	if userID == uuid.Nil || problemID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Unscoped().
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		Delete(&types.ProblemNote{})
	return res.RowsAffected, res.Error
}

func (r *noteRepo) ProblemIDsWithNotes(dbc dbctx.Context, userID uuid.UUID, problemIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	if userID == uuid.Nil || len(problemIDs) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	err := dbc.DB(r.db).Model(&types.ProblemNote{}).
		Where("user_id = ? AND problem_id IN ?", userID, problemIDs).
		Pluck("problem_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *noteRepo) FullDeleteByProblemIDs(dbc dbctx.Context, problemIDs []uuid.UUID) (int64, error) {
	if len(problemIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Unscoped().Where("problem_id IN ?", problemIDs).Delete(&types.ProblemNote{})
	return res.RowsAffected, res.Error
}
