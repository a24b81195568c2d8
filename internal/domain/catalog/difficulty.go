package catalog

import (
	"fmt"
	"strings"
)

// Difficulty is the closed set of problem difficulty tags.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists every bucket in display order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

func (d Difficulty) String() string { return string(d) }

// ParseDifficulty normalizes case and whitespace. An empty input yields ("", nil)
// so optional filters can pass straight through.
func ParseDifficulty(raw string) (Difficulty, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", nil
	}
	d := Difficulty(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown difficulty %q", raw)
	}
	return d, nil
}
