package aggregates

import (
	"strings"
	"time"

	domainagg "github.com/yungbote/codesheets-backend/internal/domain/aggregates"
	"github.com/yungbote/codesheets-backend/internal/observability"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

// Hooks receives one ObserveOperation per transaction attempt. status is
// "success" or the aggregate error code of the attempt.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

func operationStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}

type metricsHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks feeds operation latency, version conflicts and retries
// into the Prometheus registry.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return &metricsHooks{metrics: metrics}
}

func (h *metricsHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.metrics.ObserveAggregateOperation(strings.TrimSpace(name), strings.TrimSpace(status), dur)
}

func (h *metricsHooks) IncConflict(name string) {
	h.metrics.IncAggregateConflict(strings.TrimSpace(name))
}

func (h *metricsHooks) IncRetry(name string) {
	h.metrics.IncAggregateRetry(strings.TrimSpace(name))
}

type logHooks struct {
	log *logger.Logger
}

// NewLogHooks logs failed cascades and internal failures at error level and
// slow writes at warn. Client-caused statuses stay silent.
func NewLogHooks(log *logger.Logger) Hooks {
	if log == nil {
		return noopHooks{}
	}
	return &logHooks{log: log.With("component", "AggregateHooks")}
}

const slowWriteThreshold = 500 * time.Millisecond

func (h *logHooks) ObserveOperation(name, status string, dur time.Duration) {
	switch domainagg.ErrorCode(status) {
	case domainagg.CodeFatal, domainagg.CodeInternal, domainagg.CodeInvariantViolation:
		h.log.Error("Aggregate write failed", "op", name, "status", status, "duration_ms", dur.Milliseconds())
		return
	}
	if dur >= slowWriteThreshold {
		h.log.Warn("Slow aggregate write", "op", name, "status", status, "duration_ms", dur.Milliseconds())
	}
}

func (h *logHooks) IncConflict(name string) {
	h.log.Debug("Aggregate version conflict", "op", name)
}

func (h *logHooks) IncRetry(string) {}

type chainHooks []Hooks

// ChainHooks fans every event out to each non-nil hook in order.
func ChainHooks(hooks ...Hooks) Hooks {
	out := make(chainHooks, 0, len(hooks))
	for _, h := range hooks {
		if h == nil {
			continue
		}
		if _, ok := h.(noopHooks); ok {
			continue
		}
		out = append(out, h)
	}
	switch len(out) {
	case 0:
		return noopHooks{}
	case 1:
		return out[0]
	}
	return out
}

func (c chainHooks) ObserveOperation(name, status string, dur time.Duration) {
	for _, h := range c {
		h.ObserveOperation(name, status, dur)
	}
}

func (c chainHooks) IncConflict(name string) {
	for _, h := range c {
		h.IncConflict(name)
	}
}

func (c chainHooks) IncRetry(name string) {
	for _, h := range c {
		h.IncRetry(name)
	}
}
