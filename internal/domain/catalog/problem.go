package catalog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Problem struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SheetID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_problem_sheet_order,priority:1" json:"sheetId"`
	Title      string     `gorm:"column:title;not null" json:"title"`
	Order      int        `gorm:"column:order_index;not null;index:idx_problem_sheet_order,priority:2" json:"order"`
	Difficulty Difficulty `gorm:"column:difficulty;not null;index" json:"difficulty"`
	Platform   string     `gorm:"column:platform" json:"platform"`
	Link       string     `gorm:"column:link" json:"link"`

	// JSON array of strings.
	Tags datatypes.JSON `gorm:"column:tags" json:"tags"`

	// JSON object language -> code body.
	SolutionCode        datatypes.JSON `gorm:"column:solution_code" json:"-"`
	SolutionExplanation string         `gorm:"column:solution_explanation;type:text" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Problem) TableName() string { return "problem" }

func (p *Problem) TagList() []string {
	if p == nil || len(p.Tags) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(p.Tags, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

func (p *Problem) SetTags(tags []string) {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	p.Tags = datatypes.JSON(b)
}

func (p *Problem) SolutionCodeMap() map[string]string {
	out := map[string]string{}
	if p == nil || len(p.SolutionCode) == 0 {
		return out
	}
	if err := json.Unmarshal(p.SolutionCode, &out); err != nil || out == nil {
		return map[string]string{}
	}
	return out
}

func (p *Problem) SetSolutionCode(code map[string]string) {
	if code == nil {
		code = map[string]string{}
	}
	b, _ := json.Marshal(code)
	p.SolutionCode = datatypes.JSON(b)
}

// ProblemHint is one ordered disclosure unit. HintNumber runs 1..H per problem.
type ProblemHint struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProblemID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_problem_hint_number,priority:1" json:"problemId"`
	HintNumber int       `gorm:"column:hint_number;not null;uniqueIndex:idx_problem_hint_number,priority:2" json:"hintNumber"`
	Content    string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"not null" json:"updatedAt"`
}

func (ProblemHint) TableName() string { return "problem_hint" }
