package db

import (
	"testing"

	types "github.com/yungbote/codesheets-backend/internal/domain"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

func TestSQLiteMigrate(t *testing.T) {
	svc, err := NewSQLiteService(logger.NewNop(), "", true)
	if err != nil {
		t.Fatalf("NewSQLiteService: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	for _, model := range []interface{}{&types.Sheet{}, &types.Problem{}, &types.ProblemHint{}, &types.ProgressRecord{}, &types.ProblemNote{}} {
		if !svc.DB().Migrator().HasTable(model) {
			t.Fatalf("missing table for %T", model)
		}
	}
	if !svc.DB().Migrator().HasIndex(&types.ProgressRecord{}, "idx_progress_user_problem") {
		t.Fatalf("missing unique (user_id, problem_id) index")
	}
}

func TestPostgresDSN(t *testing.T) {
	got := PostgresConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "sheets"}.DSN()
	want := "postgres://u:p@db:5432/sheets?sslmode=disable"
	if got != want {
		t.Fatalf("unexpected dsn: got=%q want=%q", got, want)
	}
}
