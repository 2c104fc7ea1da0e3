// Package monitoring exposes Prometheus metrics for the environment core.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Session metrics
	StateSaves       *prometheus.CounterVec
	StateSaveErrors  prometheus.Counter
	StateLoads       prometheus.Counter
	RestoreOutcomes  *prometheus.CounterVec
	StoreConnected   prometheus.Gauge
	ScheduledSaves   prometheus.Counter
	SaveDuration     prometheus.Histogram
	Notifications    prometheus.Counter
	AssertionFails   prometheus.Counter
	UncaughtErrors   prometheus.Counter
	OpenLocations    prometheus.Counter
	UpdatesAvailable prometheus.Counter

	startTime time.Time
	Uptime    prometheus.Gauge
}

// NewMetrics creates a metrics collector registered on its own registry,
// so multiple environments can coexist in one process (and in tests).
func NewMetrics() (*Metrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		startTime: time.Now(),

		StateSaves: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "environment_state_saves_total",
			Help: "State saves, partitioned by whether the window was unloading",
		}, []string{"unloading"}),

		StateSaveErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "environment_state_save_errors_total",
			Help: "State saves that failed at the store",
		}),

		StateLoads: factory.NewCounter(prometheus.CounterOpts{
			Name: "environment_state_loads_total",
			Help: "State loads attempted against the store",
		}),

		RestoreOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "environment_restore_outcomes_total",
			Help: "Restoration decisions, partitioned by outcome",
		}, []string{"outcome"}),

		StoreConnected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "environment_store_connected",
			Help: "1 when this window holds store exclusivity, 0 otherwise",
		}),

		ScheduledSaves: factory.NewCounter(prometheus.CounterOpts{
			Name: "environment_scheduled_saves_total",
			Help: "Saves triggered by the idle save scheduler",
		}),

		SaveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "environment_save_duration_seconds",
			Help:    "Duration of state serialization and persistence",
			Buckets: prometheus.DefBuckets,
		}),

		Notifications: factory.NewCounter(prometheus.CounterOpts{
			Name: "environment_error_notifications_total",
			Help: "User-facing error notifications emitted",
		}),

		AssertionFails: factory.NewCounter(prometheus.CounterOpts{
			Name: "environment_assertion_failures_total",
			Help: "Failed runtime assertions",
		}),

		UncaughtErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "environment_uncaught_errors_total",
			Help: "Uncaught errors routed through the error trap",
		}),

		OpenLocations: factory.NewCounter(prometheus.CounterOpts{
			Name: "environment_open_locations_total",
			Help: "Locations opened via the IPC surface",
		}),

		UpdatesAvailable: factory.NewCounter(prometheus.CounterOpts{
			Name: "environment_updates_available_total",
			Help: "Platform update-available events observed",
		}),

		Uptime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "environment_uptime_seconds",
			Help: "Seconds since the environment started",
		}),
	}

	return m, registry
}

// RecordSave records a completed save.
func (m *Metrics) RecordSave(isUnloading bool, duration time.Duration, err error) {
	label := "false"
	if isUnloading {
		label = "true"
	}
	m.StateSaves.WithLabelValues(label).Inc()
	m.SaveDuration.Observe(duration.Seconds())
	if err != nil {
		m.StateSaveErrors.Inc()
	}
}

// RecordRestore records a restoration decision outcome.
func (m *Metrics) RecordRestore(outcome string) {
	m.RestoreOutcomes.WithLabelValues(outcome).Inc()
}

// UpdateUptime refreshes the uptime gauge.
func (m *Metrics) UpdateUptime() {
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}
