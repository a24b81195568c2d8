package progress

import "time"

// AdvisoryProgress is a cached per-viewer sheet summary. It may be stale and is
// only ever used for display.
type AdvisoryProgress struct {
	CompletedProblems  int       `json:"completedProblems"`
	ProgressPercentage float64   `json:"progressPercentage"`
	ComputedAt         time.Time `json:"computedAt"`
}

func AdvisoryFromMetrics(m Metrics, at time.Time) AdvisoryProgress {
	return AdvisoryProgress{
		CompletedProblems:  m.Overall.CompletedProblems,
		ProgressPercentage: m.Overall.ProgressPercentage,
		ComputedAt:         at.UTC(),
	}
}
