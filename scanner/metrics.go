package scanner

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gitlab.com/trackerker/trackerk"
)

// scan outcomes used as the outcome label
const (
	outcomeComplete = "complete"
	outcomePartial  = "partial"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// Metrics for scans. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	scansTotal    *prometheus.CounterVec
	partialsTotal *prometheus.CounterVec
	trackers      prometheus.Histogram
	scanDuration  prometheus.Histogram
}

// NewMetrics registered on their own registry
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackerker_scans_total",
			Help: "Total number of scans by outcome",
		},
		[]string{"outcome"},
	)

	m.partialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackerker_partial_captures_total",
			Help: "Total number of partial captures by reason",
		},
		[]string{"reason"},
	)

	m.trackers = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "trackerker_third_party_domains",
		Help:    "Distinct third party domains observed per scan",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	m.scanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "trackerker_scan_duration_seconds",
		Help:    "Time taken by scans that reached the browser",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
	})

	m.registry.MustRegister(m.scansTotal, m.partialsTotal, m.trackers, m.scanDuration)
	return m
}

// Registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serving the metrics for scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) rejected() {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(outcomeRejected).Inc()
}

func (m *Metrics) failed(started time.Time) {
	if m == nil {
		return
	}
	m.scansTotal.WithLabelValues(outcomeFailed).Inc()
	m.scanDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) scanned(result *trackerk.ScanResult, started time.Time) {
	if m == nil {
		return
	}
	if result.Capture.IsPartial() {
		m.scansTotal.WithLabelValues(outcomePartial).Inc()
		m.partialsTotal.WithLabelValues(result.Capture.Reason).Inc()
	} else {
		m.scansTotal.WithLabelValues(outcomeComplete).Inc()
	}
	m.trackers.Observe(float64(result.TrackerCount))
	m.scanDuration.Observe(time.Since(started).Seconds())
}
