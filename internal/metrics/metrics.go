// Package metrics exposes prometheus collectors for the query surface and
// the ingest consumers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	QueryRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signalboard_query_requests_total", Help: "Query requests served, by action"},
		[]string{"action"},
	)
	QueryErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signalboard_query_errors_total", Help: "Query requests that failed, by action"},
		[]string{"action"},
	)
	SignalsIngested = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "signalboard_signals_ingested_total", Help: "Signal events appended by the ingest consumer"},
	)
	SyncRowsServed = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "signalboard_sync_rows_served_total", Help: "Rows returned by delta sync responses"},
	)
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "signalboard_snapshot_cache_hits_total", Help: "Recent-signal snapshot responses served from cache"},
	)
)

func init() {
	prometheus.MustRegister(QueryRequests, QueryErrors, SignalsIngested, SyncRowsServed, CacheHits)
}
