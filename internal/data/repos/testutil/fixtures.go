package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/codesheets-backend/internal/domain"
	domainprogress "github.com/yungbote/codesheets-backend/internal/domain/progress"
)

func SeedSheet(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Sheet {
	tb.Helper()
	s := &types.Sheet{
		ID:          uuid.New(),
		Name:        name,
		Description: "sheet",
		Icon:        "list",
		IsActive:    true,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed sheet: %v", err)
	}
	return s
}

// SeedProblem creates a problem at order with hintCount hints and bumps the sheet counter.
func SeedProblem(tb testing.TB, ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, order int, difficulty types.Difficulty, hintCount int) *types.Problem {
	tb.Helper()
	p := &types.Problem{
		ID:                  uuid.New(),
		SheetID:             sheetID,
		Title:               fmt.Sprintf("problem %d", order),
		Order:               order,
		Difficulty:          difficulty,
		Platform:            "leetcode",
		Link:                fmt.Sprintf("https://example.com/p/%d", order),
		SolutionExplanation: "explained",
	}
	p.SetTags([]string{"array"})
	p.SetSolutionCode(map[string]string{"go": "package main"})
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed problem: %v", err)
	}
	for i := 1; i <= hintCount; i++ {
		h := &types.ProblemHint{
			ID:         uuid.New(),
			ProblemID:  p.ID,
			HintNumber: i,
			Content:    fmt.Sprintf("hint %d", i),
		}
		if err := tx.WithContext(ctx).Create(h).Error; err != nil {
			tb.Fatalf("seed hint: %v", err)
		}
	}
	if err := tx.WithContext(ctx).Model(&types.Sheet{}).Where("id = ?", sheetID).
		Update("total_problems", gorm.Expr("total_problems + 1")).Error; err != nil {
		tb.Fatalf("bump sheet total: %v", err)
	}
	return p
}

func SeedProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, p *types.Problem, completed bool, hints []int) *types.ProgressRecord {
	tb.Helper()
	r := &types.ProgressRecord{
		ID:            uuid.New(),
		UserID:        userID,
		ProblemID:     p.ID,
		SheetID:       p.SheetID,
		Completed:     completed,
		UnlockedHints: domainprogress.EncodeHints(hints),
	}
	if completed {
		now := time.Now().UTC()
		r.CompletedAt = &now
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return r
}

func SeedNote(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, problemID uuid.UUID, content string) *types.ProblemNote {
	tb.Helper()
	n := &types.ProblemNote{
		ID:        uuid.New(),
		UserID:    userID,
		ProblemID: problemID,
		Content:   content,
	}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		tb.Fatalf("seed note: %v", err)
	}
	return n
}
