package catalog

import (
	"time"

	"github.com/google/uuid"
)

type Sheet struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Description   string    `gorm:"column:description;type:text" json:"description"`
	Icon          string    `gorm:"column:icon" json:"icon"`
	IsActive      bool      `gorm:"column:is_active;not null;index" json:"isActive"`
	TotalProblems int       `gorm:"column:total_problems;not null" json:"totalProblems"`

	// Per-viewer display hints. Never persisted and never used for decisions.
	CompletedProblems  int     `gorm:"-" json:"completedProblems"`
	ProgressPercentage float64 `gorm:"-" json:"progressPercentage"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Sheet) TableName() string { return "sheet" }
