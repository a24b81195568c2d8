package observability

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

const namespace = "codesheets"

// Metrics owns a private registry so tests and multiple app instances never collide.
// All methods are nil-safe; a nil *Metrics means metrics are disabled.
type Metrics struct {
	registry *prometheus.Registry

	APIRequests *prometheus.CounterVec
	APILatency  *prometheus.HistogramVec
	APIInflight prometheus.Gauge

	AggregateDuration  *prometheus.HistogramVec
	AggregateConflicts *prometheus.CounterVec
	AggregateRetries   *prometheus.CounterVec

	Unlocks         *prometheus.CounterVec
	Completions     *prometheus.CounterVec
	AdvisoryLookups *prometheus.CounterVec

	RedisUp   prometheus.Gauge
	RedisPing prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		APIRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		APILatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request latency in seconds by method/route/status.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		APIInflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "inflight_requests",
			Help:      "In-flight API requests.",
		}),
		AggregateDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "operation_duration_seconds",
			Help:      "Aggregate write latency by operation/status.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation", "status"}),
		AggregateConflicts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "conflicts_total",
			Help:      "Aggregate writes that lost a version race.",
		}, []string{"operation"}),
		AggregateRetries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "retries_total",
			Help:      "Aggregate writes rerun after a conflict or transient failure.",
		}, []string{"operation"}),
		Unlocks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "disclosure",
			Name:      "unlocks_total",
			Help:      "Hint and solution unlock attempts by kind/outcome.",
		}, []string{"kind", "outcome"}),
		Completions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progress",
			Name:      "completion_writes_total",
			Help:      "Completion writes by target state.",
		}, []string{"completed"}),
		AdvisoryLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "advisory",
			Name:      "lookups_total",
			Help:      "Advisory sheet progress lookups by result (hit, miss, error).",
		}, []string{"result"}),
		RedisUp: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "up",
			Help:      "1 when the last redis ping succeeded.",
		}),
		RedisPing: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "ping_seconds",
			Help:      "Latency of the last successful redis ping.",
		}),
	}
}

// RegisterRuntimeCollectors adds Go runtime and process collectors.
func (m *Metrics) RegisterRuntimeCollectors() {
	if m == nil {
		return
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
	)
}

// RegisterDBStats exports database/sql pool statistics for db.
func (m *Metrics) RegisterDBStats(log *logger.Logger, db *gorm.DB, dbName string) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		if log != nil {
			log.Warn("metrics: db stats unavailable", "error", err)
		}
		return
	}
	m.registry.MustRegister(collectors.NewDBStatsCollector(sqlDB, dbName))
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.APIRequests.WithLabelValues(method, route, status).Inc()
	m.APILatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.APIInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.APIInflight.Dec()
}

func (m *Metrics) ObserveAggregateOperation(operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if operation == "" {
		operation = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	m.AggregateDuration.WithLabelValues(operation, status).Observe(dur.Seconds())
}

func (m *Metrics) IncAggregateConflict(operation string) {
	if m == nil {
		return
	}
	m.AggregateConflicts.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncAggregateRetry(operation string) {
	if m == nil {
		return
	}
	m.AggregateRetries.WithLabelValues(operation).Inc()
}

// IncUnlock records an unlock attempt. kind is "hint" or "solution".
func (m *Metrics) IncUnlock(kind, outcome string) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.Unlocks.WithLabelValues(strings.ToLower(kind), outcome).Inc()
}

func (m *Metrics) IncCompletion(completed bool) {
	if m == nil {
		return
	}
	label := "false"
	if completed {
		label = "true"
	}
	m.Completions.WithLabelValues(label).Inc()
}

func (m *Metrics) IncAdvisoryLookup(result string) {
	if m == nil {
		return
	}
	m.AdvisoryLookups.WithLabelValues(result).Inc()
}

// StartRedisCollector pings rdb every interval until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.RedisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.RedisUp.Set(1)
				m.RedisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
