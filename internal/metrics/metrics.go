// Package metrics provides Prometheus metrics for the recommendation service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yantodo_recommendations_total",
			Help: "Total number of task recommendations by draw method",
		},
		[]string{"method"},
	)
	EmptyRecommendationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yantodo_empty_recommendations_total",
			Help: "Recommendation requests with no candidate task",
		},
	)
	CategoriesSelected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yantodo_categories_selected_total",
			Help: "Total number of category draws by selected category",
		},
		[]string{"category"},
	)
	TotalWeight = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "yantodo_total_weight",
			Help:    "Total urgency weight of the candidate set at draw time",
			Buckets: []float64{.1, .25, .5, 1, 2, 3, 5, 10, 20, 50, 100},
		},
	)
	StaleSnapshots = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yantodo_stale_snapshots_total",
			Help: "Algorithm status checks that found a stale settings snapshot",
		},
	)
	SettingsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yantodo_settings_rejected_total",
			Help: "Settings updates rejected by validation",
		},
		[]string{"reason"},
	)
	ScheduledCleared = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yantodo_scheduled_cleared_total",
			Help: "Past scheduled dates cleared",
		},
		[]string{"source"},
	)
	ActiveTasks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yantodo_active_tasks",
			Help: "Current number of incomplete todos across all users",
		},
	)
	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "yantodo_sweep_duration_seconds",
			Help:    "Duration of scheduled date sweeps in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yantodo_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yantodo_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func RecordRecommendation(method string, totalWeight float64) {
	RecommendationsTotal.WithLabelValues(method).Inc()
	TotalWeight.Observe(totalWeight)
}

func RecordEmptyRecommendation() {
	EmptyRecommendationsTotal.Inc()
}

func RecordCategorySelected(category int) {
	CategoriesSelected.WithLabelValues(strconv.Itoa(category)).Inc()
}

func RecordStaleSnapshot() {
	StaleSnapshots.Inc()
}

func RecordSettingsRejected(reason string) {
	SettingsRejected.WithLabelValues(reason).Inc()
}

func RecordScheduledCleared(source string, count int) {
	ScheduledCleared.WithLabelValues(source).Add(float64(count))
}

func RecordSweep(duration time.Duration) {
	SweepDuration.Observe(duration.Seconds())
}

func UpdateActiveTasks(count int64) {
	ActiveTasks.Set(float64(count))
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
