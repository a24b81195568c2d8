package repos

import (
	"github.com/yungbote/codesheets-backend/internal/data/repos/catalog"
	"github.com/yungbote/codesheets-backend/internal/data/repos/progress"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type SheetRepo = catalog.SheetRepo
type ProblemRepo = catalog.ProblemRepo
type ProblemHintRepo = catalog.ProblemHintRepo

type ProgressRecordRepo = progress.ProgressRecordRepo
type NoteRepo = progress.NoteRepo

func NewSheetRepo(db *gorm.DB, baseLog *logger.Logger) SheetRepo {
	return catalog.NewSheetRepo(db, baseLog)
}
func NewProblemRepo(db *gorm.DB, baseLog *logger.Logger) ProblemRepo {
	return catalog.NewProblemRepo(db, baseLog)
}
func NewProblemHintRepo(db *gorm.DB, baseLog *logger.Logger) ProblemHintRepo {
	return catalog.NewProblemHintRepo(db, baseLog)
}

func NewProgressRecordRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRecordRepo {
	return progress.NewProgressRecordRepo(db, baseLog)
}
func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	return progress.NewNoteRepo(db, baseLog)
}
