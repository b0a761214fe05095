// Package metrics provides the Prometheus registry for the photo sync service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "race_photo_sync"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PhotosCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photos_created_total",
		Help:      "Total number of photos created from detections",
	}, []string{"source"})
	PhotosUpdatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photos_updated_total",
		Help:      "Total number of known photos refreshed from detections",
	}, []string{"source"})
	DetectionsDiscardedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "detections_discarded_total",
		Help:      "Total number of detections discarded because they belong to another event",
	}, []string{"source"})
	SyncErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_errors_total",
		Help:      "Total number of items that failed during a sync pass",
	}, []string{"source"})
	PhotosPushedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photos_pushed_total",
		Help:      "Total number of local photo pairs uploaded and published",
	})
	CapturesUploadedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "captures_uploaded_total",
		Help:      "Total number of captured video clips uploaded to the bucket",
	})
	CorrelationOutcomesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "correlation_outcomes_total",
		Help:      "Correlation results by outcome",
	}, []string{"outcome"})
)

// Gauge metrics
var (
	ServiceRunning = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "service_running",
		Help:      "1 while a sync pass is in progress",
	})
	SettingsCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "settings_cache_hit_ratio",
		Help:      "Hit ratio of the event settings cache",
	})
)

// Histogram metrics
var (
	SyncDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sync_duration_seconds",
		Help:      "Duration of sync passes in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"source"})
	VisionAnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "vision_analysis_duration_seconds",
		Help:      "Duration of image analysis calls in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PhotosCreatedTotal)
		registry.MustRegister(PhotosUpdatedTotal)
		registry.MustRegister(DetectionsDiscardedTotal)
		registry.MustRegister(SyncErrorsTotal)
		registry.MustRegister(PhotosPushedTotal)
		registry.MustRegister(CapturesUploadedTotal)
		registry.MustRegister(CorrelationOutcomesTotal)

		registry.MustRegister(ServiceRunning)
		registry.MustRegister(SettingsCacheHitRatio)

		registry.MustRegister(SyncDuration)
		registry.MustRegister(VisionAnalysisDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSyncPass records the counters and duration of one sync pass.
func RecordSyncPass(source string, created, updated, discarded, errors int, durationSeconds float64) {
	PhotosCreatedTotal.WithLabelValues(source).Add(float64(created))
	PhotosUpdatedTotal.WithLabelValues(source).Add(float64(updated))
	DetectionsDiscardedTotal.WithLabelValues(source).Add(float64(discarded))
	SyncErrorsTotal.WithLabelValues(source).Add(float64(errors))
	SyncDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordPhotoPushed records an uploaded and published photo pair.
func RecordPhotoPushed() {
	PhotosPushedTotal.Inc()
}

// RecordCaptureUploaded records an uploaded video clip.
func RecordCaptureUploaded() {
	CapturesUploadedTotal.Inc()
}

// RecordCorrelation records the outcome of correlating one photo.
func RecordCorrelation(outcome string) {
	CorrelationOutcomesTotal.WithLabelValues(outcome).Inc()
}

// RecordVisionAnalysis records the latency of one image analysis.
func RecordVisionAnalysis(durationSeconds float64) {
	VisionAnalysisDuration.Observe(durationSeconds)
}

// SetServiceRunning updates the service running gauge.
func SetServiceRunning(running bool) {
	if running {
		ServiceRunning.Set(1)
		return
	}
	ServiceRunning.Set(0)
}

// UpdateSettingsCacheHitRatio updates the settings cache hit ratio gauge.
func UpdateSettingsCacheHitRatio(ratio float64) {
	SettingsCacheHitRatio.Set(ratio)
}
