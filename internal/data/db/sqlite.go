package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

// SQLiteService backs local development and tests with an embedded database.
type SQLiteService struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewSQLiteService opens path, or a private in-memory database when path is
// empty or ":memory:". SQLite allows a single writer so the pool is capped at one.
func NewSQLiteService(logg *logger.Logger, path string, silent bool) (*SQLiteService, error) {
	serviceLog := logg.With("service", "SQLiteService")

	dsn := strings.TrimSpace(path)
	if dsn == "" || dsn == ":memory:" {
		dsn = "file::memory:"
	}
	if !strings.Contains(dsn, "?") {
		dsn += "?_busy_timeout=5000"
	}

	gl := newGormLogger()
	if silent {
		gl = gormLogger.Default.LogMode(gormLogger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gl,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access SQLite pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	serviceLog.Debug("Opened SQLite", "path", dsn)
	return &SQLiteService{db: db, log: serviceLog}, nil
}

func (s *SQLiteService) DB() *gorm.DB { return s.db }

func (s *SQLiteService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
