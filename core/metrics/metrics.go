package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Cache fetch outcomes.
const (
	FetchHit      = "hit"
	FetchCold     = "cold"
	FetchNoChange = "nochange"
	FetchRefresh  = "refresh"
	FetchFallback = "fallback"
	FetchL2       = "l2"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	CacheFetches     *prometheus.CounterVec
	QueriesCompiled  *prometheus.CounterVec
	DepthExceeded    prometheus.Counter
	Submissions      *prometheus.CounterVec
	SearchDurationMs *prometheus.HistogramVec
	IndexedDocs      *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which tests use to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dappstore_document_cache_fetches_total",
			Help: "Document cache reads by document and outcome",
		}, []string{"document", "outcome"}),
		QueriesCompiled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dappstore_search_queries_compiled_total",
			Help: "Search queries compiled by mode",
		}, []string{"mode"}),
		DepthExceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dappstore_search_depth_exceeded_total",
			Help: "Search requests rejected for paging past the maximum window",
		}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dappstore_submissions_total",
			Help: "Commit workflow submissions by operation and result kind",
		}, []string{"operation", "result"}),
		SearchDurationMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dappstore_search_duration_ms",
			Help:    "Latency of search backend calls in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"operation"}),
		IndexedDocs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dappstore_indexed_documents_total",
			Help: "Documents bulk-loaded into the search backend",
		}, []string{"index"}),
	}
	if reg != nil {
		reg.MustRegister(m.CacheFetches, m.QueriesCompiled, m.DepthExceeded,
			m.Submissions, m.SearchDurationMs, m.IndexedDocs)
	}
	return m
}

// Nop returns unregistered collectors.
func Nop() *Metrics {
	return New(nil)
}

// OrNop returns m, or unregistered collectors if m is nil.
func OrNop(m *Metrics) *Metrics {
	if m == nil {
		return Nop()
	}
	return m
}
