package testutil

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/codesheets-backend/internal/data/db"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logg, err := logger.New("test")
	if err != nil {
		tb.Fatalf("failed to init logger: %v", err)
	}
	return logg
}

// DB returns a migrated private in-memory SQLite database closed at test end.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	svc, err := db.NewSQLiteService(Logger(tb), "", true)
	if err != nil {
		tb.Fatalf("failed to init test db: %v", err)
	}
	tb.Cleanup(func() { _ = svc.Close() })
	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		tb.Fatalf("failed to migrate test db: %v", err)
	}
	return svc.DB()
}

// FileDB returns a migrated WAL-mode SQLite file under tb.TempDir() with a
// pool of conns connections. Transactions take the write lock on BEGIN, so
// concurrent writers queue on the busy timeout instead of failing their
// snapshot upgrade.
func FileDB(tb testing.TB, conns int) *gorm.DB {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "codesheets.db")
	dsn := "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"
	svc, err := db.NewSQLiteService(Logger(tb), dsn, true)
	if err != nil {
		tb.Fatalf("failed to init file db: %v", err)
	}
	tb.Cleanup(func() { _ = svc.Close() })
	sqlDB, err := svc.DB().DB()
	if err != nil {
		tb.Fatalf("failed to access file db pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		tb.Fatalf("failed to migrate file db: %v", err)
	}
	return svc.DB()
}
