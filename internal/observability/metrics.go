package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sensor_dashboard"

// Metrics holds the Prometheus collectors for the dashboard session and its adapters.
type Metrics struct {
	EventsHandled *prometheus.CounterVec // labels: kind
	WindowUpdates prometheus.Counter

	FilteredPoints prometheus.Gauge
	Regions        prometheus.Gauge

	// Polygon drawing.
	PolygonCommits  prometheus.Counter
	PolygonRejected prometheus.Counter

	// Change event relay.
	EventsPublished      prometheus.Counter
	EventsDropped        prometheus.Counter
	PublishErrors        prometheus.Counter
	PublishBatchDuration prometheus.Histogram
	RelayRunning         prometheus.Gauge
	KafkaEnabled         prometheus.Gauge

	ChartRenderDuration *prometheus.HistogramVec // labels: format={png,svg}
}

func newMetrics() *Metrics {
	return &Metrics{
		EventsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_handled_total",
			Help:      "Dashboard state changes by kind.",
		}, []string{"kind"}),
		WindowUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "window_updates_total",
			Help:      "Time window changes from the slider or the chart brush.",
		}),
		FilteredPoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "filtered_points",
			Help:      "Points passing the current variable and window filter.",
		}),
		Regions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "regions",
			Help:      "Regions currently stored.",
		}),
		PolygonCommits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polygon_commits_total",
			Help:      "Drawn polygons committed to the region store.",
		}),
		PolygonRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polygon_commits_rejected_total",
			Help:      "Commit gestures ignored for having too few vertices.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Change events loaded into the sink.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Change events dropped because the relay queue was full.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed attempts to load a batch of change events.",
		}),
		PublishBatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_batch_duration_seconds",
			Help:      "Duration of a successful change event batch load.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		RelayRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relay_running",
			Help:      "1 when the change event relay is active, 0 when shut down.",
		}),
		KafkaEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "kafka_enabled",
			Help:      "1 when change events are published to Kafka, 0 otherwise.",
		}),
		ChartRenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_render_duration_seconds",
			Help:      "Time spent rendering the timeline chart.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"format"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.EventsHandled,
		m.WindowUpdates,
		m.FilteredPoints,
		m.Regions,
		m.PolygonCommits,
		m.PolygonRejected,
		m.EventsPublished,
		m.EventsDropped,
		m.PublishErrors,
		m.PublishBatchDuration,
		m.RelayRunning,
		m.KafkaEnabled,
		m.ChartRenderDuration,
	}
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}
