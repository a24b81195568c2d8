package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/codesheets-backend/internal/domain"
	domainprogress "github.com/yungbote/codesheets-backend/internal/domain/progress"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

type ProgressRecordRepo interface {
	// GetOrCreate inserts a zero-value record when none exists, then returns the stored row.
	GetOrCreate(dbc dbctx.Context, userID, problemID, sheetID uuid.UUID) (*types.ProgressRecord, error)
	GetByUserProblem(dbc dbctx.Context, userID, problemID uuid.UUID) (*types.ProgressRecord, error)
	// UpsertCompletion overwrites only completed/completed_at.
	UpsertCompletion(dbc dbctx.Context, userID, problemID, sheetID uuid.UUID, completed bool, at time.Time) error
	CompletedByProblemIDs(dbc dbctx.Context, userID uuid.UUID, problemIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	CountCompletedByDifficulty(dbc dbctx.Context, sheetID, userID uuid.UUID, difficulty types.Difficulty) (map[types.Difficulty]int, error)
	CountByProblemIDs(dbc dbctx.Context, problemIDs []uuid.UUID) (int64, error)
	FullDeleteByProblemIDs(dbc dbctx.Context, problemIDs []uuid.UUID) (int64, error)
	FullDeleteBySheetID(dbc dbctx.Context, sheetID uuid.UUID) (int64, error)
}

type progressRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRecordRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRecordRepo {
	return &progressRecordRepo{db: db, log: baseLog.With("repo", "ProgressRecordRepo")}
}

func newRecord(userID, problemID, sheetID uuid.UUID) *types.ProgressRecord {
	return &types.ProgressRecord{
		ID:            uuid.New(),
		UserID:        userID,
		ProblemID:     problemID,
		SheetID:       sheetID,
		UnlockedHints: domainprogress.EncodeHints(nil),
	}
}

var userProblemConflict = []clause.Column{{Name: "user_id"}, {Name: "problem_id"}}

func (r *progressRecordRepo) GetOrCreate(dbc dbctx.Context, userID, problemID, sheetID uuid.UUID) (*types.ProgressRecord, error) {
	if userID == uuid.Nil || problemID == uuid.Nil {
		return nil, nil
	}
	t := dbc.DB(r.db)
	row := newRecord(userID, problemID, sheetID)
	if err := t.Clauses(clause.OnConflict{Columns: userProblemConflict, DoNothing: true}).Create(row).Error; err != nil {
		return nil, err
	}
	return r.GetByUserProblem(dbc, userID, problemID)
}

func (r *progressRecordRepo) GetByUserProblem(dbc dbctx.Context, userID, problemID uuid.UUID) (*types.ProgressRecord, error) {
	if userID == uuid.Nil || problemID == uuid.Nil {
		return nil, nil
	}
	var row types.ProgressRecord
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

func (r *progressRecordRepo) UpsertCompletion(dbc dbctx.Context, userID, problemID, sheetID uuid.UUID, completed bool, at time.Time) error {
	if userID == uuid.Nil || problemID == uuid.Nil {
		return nil
	}
	row := newRecord(userID, problemID, sheetID)
	row.Completed = completed
	if completed {
		ts := at.UTC()
		row.CompletedAt = &ts
	}
	row.UpdatedAt = time.Now().UTC()
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   userProblemConflict,
			DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at", "updated_at"}),
		}).
		Create(row).Error
}

func (r *progressRecordRepo) CompletedByProblemIDs(dbc dbctx.Context, userID uuid.UUID, problemIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := map[uuid.UUID]bool{}
	if userID == uuid.Nil || len(problemIDs) == 0 {
		return out, nil
	}
	var ids []uuid.UUID
	err := dbc.DB(r.db).Model(&types.ProgressRecord{}).
		Where("user_id = ? AND problem_id IN ? AND completed = ?", userID, problemIDs, true).
		Pluck("problem_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

type difficultyCount struct {
	Difficulty string
	Count      int
}

// CountCompletedByDifficulty joins completed rows to their problems so the
// bucket comes from the catalog, not from the progress row.
func (r *progressRecordRepo) CountCompletedByDifficulty(dbc dbctx.Context, sheetID, userID uuid.UUID, difficulty types.Difficulty) (map[types.Difficulty]int, error) {
	out := map[types.Difficulty]int{}
	if sheetID == uuid.Nil || userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).
		Table("problem_progress AS pp").
		Select("p.difficulty AS difficulty, COUNT(*) AS count").
		Joins("JOIN problem AS p ON p.id = pp.problem_id").
		Where("p.sheet_id = ? AND pp.user_id = ? AND pp.completed = ?", sheetID, userID, true)
	if difficulty != "" {
		q = q.Where("p.difficulty = ?", difficulty)
	}
	var rows []difficultyCount
	if err := q.Group("p.difficulty").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[types.Difficulty(row.Difficulty)] = row.Count
	}
	return out, nil
}

func (r *progressRecordRepo) CountByProblemIDs(dbc dbctx.Context, problemIDs []uuid.UUID) (int64, error) {
	if len(problemIDs) == 0 {
		return 0, nil
	}
	var n int64
	err := dbc.DB(r.db).Model(&types.ProgressRecord{}).Where("problem_id IN ?", problemIDs).Count(&n).Error
	return n, err
}

func (r *progressRecordRepo) FullDeleteByProblemIDs(dbc dbctx.Context, problemIDs []uuid.UUID) (int64, error) {
	if len(problemIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Unscoped().Where("problem_id IN ?", problemIDs).Delete(&types.ProgressRecord{})
	return res.RowsAffected, res.Error
}

func (r *progressRecordRepo) FullDeleteBySheetID(dbc dbctx.Context, sheetID uuid.UUID) (int64, error) {
	if sheetID == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Unscoped().Where("sheet_id = ?", sheetID).Delete(&types.ProgressRecord{})
	return res.RowsAffected, res.Error
}
