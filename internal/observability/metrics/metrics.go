package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "website"

// IntakeMetrics exposes counters/histograms for contact form submissions.
type IntakeMetrics struct {
	submissionsTotal *prometheus.CounterVec
	servicesTotal    *prometheus.CounterVec
	storeLatency     prometheus.Histogram
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "submissions_total",
			Help:      "Contact form submissions by terminal state",
		}, []string{"state"}),
		servicesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "leads_by_service_total",
			Help:      "Persisted leads by requested service category",
		}, []string{"service"}),
		storeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "store_latency_seconds",
			Help:      "Latency of lead inserts",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.servicesTotal, m.storeLatency)
	return m
}

func (m *IntakeMetrics) ObserveSubmission(state string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(state).Inc()
}

func (m *IntakeMetrics) ObserveService(service string) {
	if m == nil {
		return
	}
	m.servicesTotal.WithLabelValues(service).Inc()
}

func (m *IntakeMetrics) ObserveStoreLatency(seconds float64) {
	if m == nil {
		return
	}
	m.storeLatency.Observe(seconds)
}

// ContentMetrics tracks reads of the published catalogue.
type ContentMetrics struct {
	fetchTotal   *prometheus.CounterVec
	fetchLatency *prometheus.HistogramVec
}

func NewContentMetrics(reg prometheus.Registerer) *ContentMetrics {
	m := &ContentMetrics{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "fetch_total",
			Help:      "Content list requests by collection and status",
		}, []string{"collection", "status"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "content",
			Name:      "fetch_latency_seconds",
			Help:      "Latency of content list queries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.fetchTotal, m.fetchLatency)
	return m
}

func (m *ContentMetrics) ObserveFetch(collection, status string, seconds float64) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(collection, status).Inc()
	m.fetchLatency.WithLabelValues(collection).Observe(seconds)
}
