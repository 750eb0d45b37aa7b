package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option configures a Manager.
type Option func(*Manager)

// WithNaming replaces the "convention" namespace and "site" subsystem.
// Empty values keep the default.
func WithNaming(namespace, subsystem string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithMetricPrefix prepends prefix_ to every metric name.
func WithMetricPrefix(prefix string) Option {
	return func(m *Manager) { m.metricPrefix = prefix }
}

// WithLatencyBuckets sets the millisecond buckets shared by the upload,
// store, notification and HTTP histograms.
func WithLatencyBuckets(buckets ...float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithoutBusinessMetrics turns the Record* counters into no-ops. Gauges
// still update.
func WithoutBusinessMetrics() Option {
	return func(m *Manager) { m.enabled = false }
}

// WithConstLabels attaches labels such as env or instance to every collector.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		for k, v := range labels {
			m.customLabels[k] = v
		}
	}
}

// WithRegistry registers collectors on r instead of prometheus.DefaultRegisterer.
func WithRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}
