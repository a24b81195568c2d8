package db

import (
	types "github.com/yungbote/codesheets-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Catalog
		&types.Sheet{},
		&types.Problem{},
		&types.ProblemHint{},

		// Per-user progress
		&types.ProgressRecord{},
		&types.ProblemNote{},
	)
}
