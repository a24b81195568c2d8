package progress

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProgressRecord is the per-(user, problem) completion and disclosure state.
// A missing row is equivalent to the zero value.
type ProgressRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_problem,priority:1;index:idx_progress_sheet_user,priority:2" json:"userId"`
	ProblemID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_problem,priority:2;index" json:"problemId"`
	SheetID   uuid.UUID `gorm:"type:uuid;not null;index:idx_progress_sheet_user,priority:1" json:"sheetId"`

	Completed   bool       `gorm:"column:completed;not null" json:"completed"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`

	// JSON array of hint numbers, always a sorted prefix 1..k.
	UnlockedHints    datatypes.JSON `gorm:"column:unlocked_hints" json:"unlockedHints"`
	SolutionUnlocked bool           `gorm:"column:solution_unlocked;not null" json:"solutionUnlocked"`
	UnlockedAt       *time.Time     `gorm:"column:unlocked_at" json:"unlockedAt,omitempty"`

	// Bumped by every unlock write; guards read-modify-write of the unlock fields.
	Version int `gorm:"column:version;not null" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (ProgressRecord) TableName() string { return "problem_progress" }

func (r *ProgressRecord) HintSet() []int {
	if r == nil || len(r.UnlockedHints) == 0 {
		return []int{}
	}
	var out []int
	if err := json.Unmarshal(r.UnlockedHints, &out); err != nil || out == nil {
		return []int{}
	}
	return normalize(out)
}

func EncodeHints(hints []int) datatypes.JSON {
	b, _ := json.Marshal(normalize(hints))
	return datatypes.JSON(b)
}

func normalize(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, n := range in {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// ProblemNote is free-text content a user keeps for a problem. Content is never empty.
type ProblemNote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_note_user_problem,priority:1" json:"userId"`
	ProblemID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_note_user_problem,priority:2;index" json:"problemId"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (ProblemNote) TableName() string { return "problem_note" }
