package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/codesheets-backend/internal/domain"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

type ProblemRepo interface {
	Create(dbc dbctx.Context, row *types.Problem) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Problem, error)
	ListBySheet(dbc dbctx.Context, sheetID uuid.UUID, difficulty types.Difficulty) ([]*types.Problem, error)
	PageBySheet(dbc dbctx.Context, sheetID uuid.UUID, difficulty types.Difficulty, offset, limit int) ([]*types.Problem, error)
	CountBySheet(dbc dbctx.Context, sheetID uuid.UUID, difficulty types.Difficulty) (int64, error)
	CountByDifficulty(dbc dbctx.Context, sheetID uuid.UUID, difficulty types.Difficulty) (map[types.Difficulty]int, error)
	IDsBySheet(dbc dbctx.Context, sheetID uuid.UUID) ([]uuid.UUID, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
}

type problemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProblemRepo(db *gorm.DB, baseLog *logger.Logger) ProblemRepo {
	return &problemRepo{db: db, log: baseLog.With("repo", "ProblemRepo")}
}

func (r *problemRepo) Create(dbc dbctx.Context, row *types.Problem) error {
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *problemRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Problem, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Problem
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *problemRepo) sheetScope(dbc dbctx.Context, sheetID uuid.UUID, difficulty types.Difficulty) *gorm.DB {
	q := dbc.DB(r.db).Model(&types.Problem{}).Where("sheet_id = ?", sheetID)
	if difficulty != "" {
		q = q.Where("difficulty = ?", difficulty)
	}
	return q
}

// ListBySheet returns problems in listing order (order_index, then id).
func (r *problemRepo) ListBySheet(dbc dbctx.Context, sheetID uuid.UUID, difficulty types.Difficulty) ([]*types.Problem, error) {
	out := []*types.Problem{}
	if sheetID == uuid.Nil {
		return out, nil
	}
	err := r.sheetScope(dbc, sheetID, difficulty).
		Order("order_index ASC").
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *problemRepo) PageBySheet(dbc dbctx.Context, sheetID uuid.UUID, difficulty types.Difficulty, offset, limit int) ([]*types.Problem, error) {
	out := []*types.Problem{}
	if sheetID == uuid.Nil || limit <= 0 {
		return out, nil
	}
	if offset < 0 {
		offset = 0
	}
	err := r.sheetScope(dbc, sheetID, difficulty).
		Order("order_index ASC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *problemRepo) CountBySheet(dbc dbctx.Context, sheetID uuid.UUID, difficulty types.Difficulty) (int64, error) {
	if sheetID == uuid.Nil {
		return 0, nil
	}
	var n int64
	if err := r.sheetScope(dbc, sheetID, difficulty).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

type difficultyCount struct {
	Difficulty string
	Count      int
}

func (r *problemRepo) CountByDifficulty(dbc dbctx.Context, sheetID uuid.UUID, difficulty types.Difficulty) (map[types.Difficulty]int, error) {
	out := map[types.Difficulty]int{}
	if sheetID == uuid.Nil {
		return out, nil
	}
	var rows []difficultyCount
	err := r.sheetScope(dbc, sheetID, difficulty).
		Select("difficulty AS difficulty, COUNT(*) AS count").
		Group("difficulty").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[types.Difficulty(row.Difficulty)] = row.Count
	}
	return out, nil
}

func (r *problemRepo) IDsBySheet(dbc dbctx.Context, sheetID uuid.UUID) ([]uuid.UUID, error) {
	out := []uuid.UUID{}
	if sheetID == uuid.Nil {
		return out, nil
	}
	if err := r.sheetScope(dbc, sheetID, "").Pluck("id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *problemRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.Problem{}).Where("id = ?", id).Updates(updates).Error
}

func (r *problemRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Unscoped().Where("id IN ?", ids).Delete(&types.Problem{})
	return res.RowsAffected, res.Error
}
