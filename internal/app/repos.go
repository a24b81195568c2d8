package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/codesheets-backend/internal/data/repos"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

type Repos struct {
	Sheet    repos.SheetRepo
	Problem  repos.ProblemRepo
	Hint     repos.ProblemHintRepo
	Progress repos.ProgressRecordRepo
	Note     repos.NoteRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Sheet:    repos.NewSheetRepo(db, log),
		Problem:  repos.NewProblemRepo(db, log),
		Hint:     repos.NewProblemHintRepo(db, log),
		Progress: repos.NewProgressRecordRepo(db, log),
		Note:     repos.NewNoteRepo(db, log),
	}
}
