// Package metrics provides Prometheus metrics for the convention site.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes used as label values.
const (
	OutcomeAccepted  = "accepted"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
)

// Manager owns every collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Business
	registrations    *prometheus.CounterVec
	pitches          *prometheus.CounterVec
	delegateChecks   *prometheus.CounterVec
	paymentDecisions *prometheus.CounterVec
	pageViews        prometheus.Counter
	visitorCount     prometheus.Gauge

	// Remote calls
	uploadBytes   *prometheus.CounterVec
	uploadLatency *prometheus.HistogramVec
	storeLatency  *prometheus.HistogramVec
	storeErrors   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	notifyLatency prometheus.Histogram
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueDropped  prometheus.Counter
	workerActive  prometheus.Gauge
	workerLatency prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByComponent   *prometheus.CounterVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package helpers

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // served at /healthz

func init() { //nolint:gochecknoinits // register collectors once per process
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager. Collectors are registered on the
// configured registry (prometheus.DefaultRegisterer unless overridden).
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "convention",
		subsystem:        "site",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, Buckets: buckets, ConstLabels: m.customLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)

	m.registrations = auto.NewCounterVec(m.counterOpts("registrations_total", "Delegate registrations by outcome"), []string{"outcome"})
	m.pitches = auto.NewCounterVec(m.counterOpts("pitches_total", "Business pitch submissions by outcome"), []string{"outcome"})
	m.delegateChecks = auto.NewCounterVec(m.counterOpts("delegate_checks_total", "Pitch UID verifications by result"), []string{"result"})
	m.paymentDecisions = auto.NewCounterVec(m.counterOpts("payment_decisions_total", "Admin payment decisions"), []string{"decision"})
	m.pageViews = auto.NewCounter(m.counterOpts("page_views_total", "Page views counted once per session"))
	m.visitorCount = auto.NewGauge(m.gaugeOpts("visitor_count", "Last visitor counter value read from the store"))

	m.uploadBytes = auto.NewCounterVec(m.counterOpts("upload_bytes_total", "Bytes written to blob storage"), []string{"bucket"})
	m.uploadLatency = auto.NewHistogramVec(m.histogramOpts("upload_latency_milliseconds", "Blob upload latency", m.histogramBuckets), []string{"bucket"})
	m.storeLatency = auto.NewHistogramVec(m.histogramOpts("store_latency_milliseconds", "Database call latency", m.histogramBuckets), []string{"operation"})
	m.storeErrors = auto.NewCounterVec(m.counterOpts("store_errors_total", "Database call errors"), []string{"operation"})
	m.notifications = auto.NewCounterVec(m.counterOpts("notifications_total", "Notifications by kind and result"), []string{"kind", "result"})
	m.notifyLatency = auto.NewHistogram(m.histogramOpts("notify_latency_milliseconds", "Notification delivery latency", m.histogramBuckets))
	m.queueSize = auto.NewGauge(m.gaugeOpts("notify_queue_size", "Notifications waiting for delivery"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("notify_queue_capacity", "Notification queue capacity"))
	m.queueDropped = auto.NewCounter(m.counterOpts("notify_queue_dropped_total", "Notifications dropped because the queue was full or closed"))
	m.workerActive = auto.NewGauge(m.gaugeOpts("notify_workers", "Notification workers running"))
	m.workerLatency = auto.NewHistogram(m.histogramOpts("notify_worker_latency_milliseconds", "Time a worker spends on one notification", m.histogramBuckets))

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration", m.histogramBuckets), []string{"endpoint", "method", "status_code"})
	m.errorsByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component and type"), []string{"component", "error_type"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint"), []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordRegistration counts a registration attempt by outcome.
func RecordRegistration(outcome string) {
	if globalManager.enabled {
		globalManager.registrations.WithLabelValues(outcome).Inc()
	}
}

// RecordPitch counts a pitch submission attempt by outcome.
func RecordPitch(outcome string) {
	if globalManager.enabled {
		globalManager.pitches.WithLabelValues(outcome).Inc()
	}
}

// RecordDelegateCheck counts a UID verification by result.
func RecordDelegateCheck(result string) {
	if globalManager.enabled {
		globalManager.delegateChecks.WithLabelValues(result).Inc()
	}
}

// RecordPaymentDecision counts an admin confirm/reject.
func RecordPaymentDecision(decision string) {
	if globalManager.enabled {
		globalManager.paymentDecisions.WithLabelValues(decision).Inc()
	}
}

// RecordPageView counts a page view that reached the store.
func RecordPageView() {
	if globalManager.enabled {
		globalManager.pageViews.Inc()
	}
}

// UpdateVisitorCount records the last counter value read.
func UpdateVisitorCount(count int64) {
	globalManager.visitorCount.Set(float64(count))
}

// RecordUpload records a completed blob upload.
func RecordUpload(bucket string, bytes int64, latency time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.uploadBytes.WithLabelValues(bucket).Add(float64(bytes))
	globalManager.uploadLatency.WithLabelValues(bucket).Observe(ms(latency))
}

// RecordStoreCall records the latency of a database call and whether it failed.
func RecordStoreCall(operation string, latency time.Duration, err error) {
	if !globalManager.enabled {
		return
	}
	globalManager.storeLatency.WithLabelValues(operation).Observe(ms(latency))
	if err != nil {
		globalManager.storeErrors.WithLabelValues(operation).Inc()
	}
}

// RecordNotification records a delivery attempt.
func RecordNotification(kind, result string, latency time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.notifications.WithLabelValues(kind, result).Inc()
	globalManager.notifyLatency.Observe(ms(latency))
}

// UpdateQueueSize sets the current notification backlog.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the notification queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueDropped counts a notification that could not be enqueued.
func RecordQueueDropped() {
	globalManager.queueDropped.Inc()
}

// UpdateWorkerCount sets the number of running notification workers.
func UpdateWorkerCount(count int) {
	globalManager.workerActive.Set(float64(count))
}

// RecordWorkerLatency records time spent on one queued notification.
func RecordWorkerLatency(latency time.Duration) {
	globalManager.workerLatency.Observe(ms(latency))
}

// RecordHTTPRequest records a finished HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string, duration time.Duration) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(ms(duration))
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an HTTP error.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap bytes allocated.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry served at /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
