package progress

import "github.com/yungbote/codesheets-backend/internal/domain/catalog"

type DifficultyStat struct {
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
}

type OverallStat struct {
	TotalProblems      int     `json:"totalProblems"`
	CompletedProblems  int     `json:"completedProblems"`
	ProgressPercentage float64 `json:"progressPercentage"`
}

// Metrics always carries every difficulty bucket, zero-filled when empty.
type Metrics struct {
	Overall      OverallStat                            `json:"overall"`
	ByDifficulty map[catalog.Difficulty]DifficultyStat `json:"byDifficulty"`
}

func percentage(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// BuildMetrics folds grouped counts into per-bucket and overall stats.
// Unknown difficulty keys are ignored. Percentages are not rounded.
func BuildMetrics(totals, completed map[catalog.Difficulty]int) Metrics {
	m := Metrics{ByDifficulty: make(map[catalog.Difficulty]DifficultyStat, 3)}
	for _, d := range catalog.Difficulties() {
		t := totals[d]
		c := completed[d]
		if c > t {
			c = t
		}
		m.ByDifficulty[d] = DifficultyStat{Total: t, Completed: c, Percentage: percentage(c, t)}
		m.Overall.TotalProblems += t
		m.Overall.CompletedProblems += c
	}
	m.Overall.ProgressPercentage = percentage(m.Overall.CompletedProblems, m.Overall.TotalProblems)
	return m
}
