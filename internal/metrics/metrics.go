// Package metrics exposes eigenlog's Prometheus metrics: records and
// batches shipped per severity, cache depth on the subscriber side, and
// storage submission/query counts on the engine side.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eigenlog/eigenlog/internal/domain"
)

// Registry holds eigenlog's Prometheus collectors. The zero value is not
// usable; construct one with NewRegistry.
type Registry struct {
	RecordsShipped   *prometheus.CounterVec
	BatchesShipped   *prometheus.CounterVec
	ShipErrors       *prometheus.CounterVec
	CacheDepth       *prometheus.GaugeVec
	RecordsSubmitted *prometheus.CounterVec
	QueriesTotal     prometheus.Counter
	QueryHits        prometheus.Histogram
}

// NewRegistry creates and registers eigenlog's metrics against reg. Pass
// prometheus.NewRegistry() for an isolated registry (tests) or nil to use
// the global default registry.
func NewRegistry(reg prometheus.Registerer) *Registry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	r := &Registry{
		RecordsShipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eigenlog_records_shipped_total",
			Help: "Total log records handed off to a sink, by host, app and severity.",
		}, []string{"host", "app", "severity"}),

		BatchesShipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eigenlog_batches_shipped_total",
			Help: "Total batches flushed from the subscriber cache to a sink, by host, app and severity.",
		}, []string{"host", "app", "severity"}),

		ShipErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eigenlog_ship_errors_total",
			Help: "Total batch send failures, by host and app.",
		}, []string{"host", "app"}),

		CacheDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "eigenlog_cache_depth",
			Help: "Current number of buffered records in the subscriber cache, by host, app and severity.",
		}, []string{"host", "app", "severity"}),

		RecordsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eigenlog_records_submitted_total",
			Help: "Total log records accepted by the storage engine, by partition.",
		}, []string{"partition"}),

		QueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "eigenlog_queries_total",
			Help: "Total log queries executed against the storage engine.",
		}),

		QueryHits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "eigenlog_query_hits",
			Help:    "Distribution of hit counts returned per query.",
			Buckets: []float64{0, 1, 10, 100, 1000, 10000},
		}),
	}

	reg.MustRegister(
		r.RecordsShipped,
		r.BatchesShipped,
		r.ShipErrors,
		r.CacheDepth,
		r.RecordsSubmitted,
		r.QueriesTotal,
		r.QueryHits,
	)

	return r
}

// ObserveShip records a successfully sent batch.
func (r *Registry) ObserveShip(host, app string, sev domain.Severity, count int) {
	r.RecordsShipped.WithLabelValues(host, app, sev.String()).Add(float64(count))
	r.BatchesShipped.WithLabelValues(host, app, sev.String()).Inc()
}

// ObserveShipError records a failed send attempt.
func (r *Registry) ObserveShipError(host, app string) {
	r.ShipErrors.WithLabelValues(host, app).Inc()
}

// SetCacheDepth reports the current number of buffered records for a
// host/app/severity bucket.
func (r *Registry) SetCacheDepth(host, app string, sev domain.Severity, depth int) {
	r.CacheDepth.WithLabelValues(host, app, sev.String()).Set(float64(depth))
}

// ObserveSubmit records records accepted into a partition by the storage
// engine.
func (r *Registry) ObserveSubmit(partition string, count int) {
	r.RecordsSubmitted.WithLabelValues(partition).Add(float64(count))
}

// ObserveQuery records a completed query and the number of hits it returned.
func (r *Registry) ObserveQuery(hits int) {
	r.QueriesTotal.Inc()
	r.QueryHits.Observe(float64(hits))
}
