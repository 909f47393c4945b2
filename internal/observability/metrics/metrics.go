package metrics

import "github.com/prometheus/client_golang/prometheus"

// SubmissionMetrics exposes counters/histograms for the lead capture flow.
type SubmissionMetrics struct {
	submissionsTotal *prometheus.CounterVec
	sinkFailures     *prometheus.CounterVec
	sinkLatency      *prometheus.HistogramVec
	embedMountWait   prometheus.Histogram
}

func NewSubmissionMetrics(reg prometheus.Registerer) *SubmissionMetrics {
	m := &SubmissionMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadgate",
			Subsystem: "submission",
			Name:      "total",
			Help:      "Total form submissions by form and outcome",
		}, []string{"form", "outcome"}),
		sinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadgate",
			Subsystem: "sink",
			Name:      "failures_total",
			Help:      "Total sink dispatch failures",
		}, []string{"sink"}),
		sinkLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadgate",
			Subsystem: "sink",
			Name:      "latency_seconds",
			Help:      "Latency of sink dispatches",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sink"}),
		embedMountWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "leadgate",
			Subsystem: "embed",
			Name:      "mount_wait_seconds",
			Help:      "Time until the CRM embed reported mounted",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.sinkFailures, m.sinkLatency, m.embedMountWait)
	return m
}

func (m *SubmissionMetrics) ObserveSubmission(form, outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(form, outcome).Inc()
}

func (m *SubmissionMetrics) ObserveSinkFailure(sink string) {
	if m == nil {
		return
	}
	m.sinkFailures.WithLabelValues(sink).Inc()
}

func (m *SubmissionMetrics) ObserveSinkLatency(sink string, seconds float64) {
	if m == nil {
		return
	}
	m.sinkLatency.WithLabelValues(sink).Observe(seconds)
}

func (m *SubmissionMetrics) ObserveEmbedMountWait(seconds float64) {
	if m == nil {
		return
	}
	m.embedMountWait.Observe(seconds)
}
