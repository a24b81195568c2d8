package domain

import (
	"github.com/yungbote/codesheets-backend/internal/domain/catalog"
	"github.com/yungbote/codesheets-backend/internal/domain/progress"
)

type Difficulty = catalog.Difficulty

const (
	DifficultyEasy   = catalog.DifficultyEasy
	DifficultyMedium = catalog.DifficultyMedium
	DifficultyHard   = catalog.DifficultyHard
)

type Sheet = catalog.Sheet
type Problem = catalog.Problem
type ProblemHint = catalog.ProblemHint
type Pagination = catalog.Pagination

type ProgressRecord = progress.ProgressRecord
type ProblemNote = progress.ProblemNote
type Metrics = progress.Metrics
type DifficultyStat = progress.DifficultyStat
type OverallStat = progress.OverallStat
type AdvisoryProgress = progress.AdvisoryProgress

func ParseDifficulty(raw string) (Difficulty, error) { return catalog.ParseDifficulty(raw) }

func Offset(page, limit int) int { return catalog.Offset(page, limit) }

func NewPagination(page, limit, total int) Pagination { return catalog.NewPagination(page, limit, total) }
