package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/codesheets-backend/internal/domain"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

type SheetRepo interface {
	Create(dbc dbctx.Context, row *types.Sheet) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Sheet, error)
	GetByName(dbc dbctx.Context, name string) (*types.Sheet, error)
	List(dbc dbctx.Context, activeOnly bool) ([]*types.Sheet, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	AdjustTotalProblems(dbc dbctx.Context, id uuid.UUID, delta int) error
	FullDeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error)
}

type sheetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSheetRepo(db *gorm.DB, baseLog *logger.Logger) SheetRepo {
	return &sheetRepo{db: db, log: baseLog.With("repo", "SheetRepo")}
}

func (r *sheetRepo) Create(dbc dbctx.Context, row *types.Sheet) error {
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *sheetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Sheet, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Sheet
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *sheetRepo) GetByName(dbc dbctx.Context, name string) (*types.Sheet, error) {
	if name == "" {
		return nil, nil
	}
	var row types.Sheet
	if err := dbc.DB(r.db).Where("name = ?", name).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *sheetRepo) List(dbc dbctx.Context, activeOnly bool) ([]*types.Sheet, error) {
	q := dbc.DB(r.db).Model(&types.Sheet{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	out := []*types.Sheet{}
	if err := q.Order("created_at ASC").Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sheetRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.Sheet{}).Where("id = ?", id).Updates(updates).Error
}

// AdjustTotalProblems applies delta to the stored counter, clamped at zero.
func (r *sheetRepo) AdjustTotalProblems(dbc dbctx.Context, id uuid.UUID, delta int) error {
	if id == uuid.Nil || delta == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Sheet{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_problems": gorm.Expr("CASE WHEN total_problems + ? < 0 THEN 0 ELSE total_problems + ? END", delta, delta),
			"updated_at":     time.Now().UTC(),
		}).Error
}

func (r *sheetRepo) FullDeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Unscoped().Where("id = ?", id).Delete(&types.Sheet{})
	return res.RowsAffected, res.Error
}
