package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/codesheets-backend/internal/data/aggregates"
)

// HooksRecorder keeps every hook event so tests can assert on the outcome of
// each transaction attempt. Safe for concurrent unlock tests.
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	Conflicts  []string
	Retries    []string
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{Name: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

func (h *HooksRecorder) IncRetry(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, name)
}

// Statuses returns the recorded statuses of op in arrival order.
func (h *HooksRecorder) Statuses(op string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, ev := range h.Operations {
		if ev.Name == op {
			out = append(out, ev.Status)
		}
	}
	return out
}

// StatusCounts tallies attempts of op by status.
func (h *HooksRecorder) StatusCounts(op string) map[string]int {
	out := map[string]int{}
	for _, s := range h.Statuses(op) {
		out[s]++
	}
	return out
}
