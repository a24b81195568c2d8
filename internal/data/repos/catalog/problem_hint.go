package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/codesheets-backend/internal/domain"
	"github.com/yungbote/codesheets-backend/internal/platform/dbctx"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

type ProblemHintRepo interface {
	// ReplaceForProblem drops existing hints and writes contents as hints 1..len(contents).
	ReplaceForProblem(dbc dbctx.Context, problemID uuid.UUID, contents []string) ([]*types.ProblemHint, error)
	ListByProblem(dbc dbctx.Context, problemID uuid.UUID) ([]*types.ProblemHint, error)
	GetByNumber(dbc dbctx.Context, problemID uuid.UUID, hintNumber int) (*types.ProblemHint, error)
	CountByProblem(dbc dbctx.Context, problemID uuid.UUID) (int, error)
	FullDeleteByProblemIDs(dbc dbctx.Context, problemIDs []uuid.UUID) (int64, error)
}

type problemHintRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProblemHintRepo(db *gorm.DB, baseLog *logger.Logger) ProblemHintRepo {
	return &problemHintRepo{db: db, log: baseLog.With("repo", "ProblemHintRepo")}
}

func (r *problemHintRepo) ReplaceForProblem(dbc dbctx.Context, problemID uuid.UUID, contents []string) ([]*types.ProblemHint, error) {
	out := []*types.ProblemHint{}
	if problemID == uuid.Nil {
		return out, nil
	}
	t := dbc.DB(r.db)
	if err := t.Unscoped().Where("problem_id = ?", problemID).Delete(&types.ProblemHint{}).Error; err != nil {
		return nil, err
	}
	if len(contents) == 0 {
		return out, nil
	}
	for i, content := range contents {
		out = append(out, &types.ProblemHint{
			ID:         uuid.New(),
			ProblemID:  problemID,
			HintNumber: i + 1,
			Content:    content,
		})
	}
	if err := t.Create(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *problemHintRepo) ListByProblem(dbc dbctx.Context, problemID uuid.UUID) ([]*types.ProblemHint, error) {
	out := []*types.ProblemHint{}
	if problemID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).
		Where("problem_id = ?", problemID).
		Order("hint_number ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *problemHintRepo) GetByNumber(dbc dbctx.Context, problemID uuid.UUID, hintNumber int) (*types.ProblemHint, error) {
	if problemID == uuid.Nil || hintNumber < 1 {
		return nil, nil
	}
	var row types.ProblemHint
	err := dbc.DB(r.db).
		Where("problem_id = ? AND hint_number = ?", problemID, hintNumber).
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

func (r *problemHintRepo) CountByProblem(dbc dbctx.Context, problemID uuid.UUID) (int, error) {
	if problemID == uuid.Nil {
		return 0, nil
	}
	var n int64
	if err := dbc.DB(r.db).Model(&types.ProblemHint{}).Where("problem_id = ?", problemID).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *problemHintRepo) FullDeleteByProblemIDs(dbc dbctx.Context, problemIDs []uuid.UUID) (int64, error) {
	if len(problemIDs) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Unscoped().Where("problem_id IN ?", problemIDs).Delete(&types.ProblemHint{})
	return res.RowsAffected, res.Error
}
