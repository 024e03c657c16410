// Package metrics defines the Prometheus collectors used by the indexer and
// query CLIs and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector this module populates. Build
// metrics are updated synchronously inside the indexer's document loop;
// query metrics are updated synchronously inside the query CLI's per-line
// loop. Neither introduces concurrency into the core algorithms.
type Metrics struct {
	DocsIndexedTotal   prometheus.Counter
	CorpusFilesMissing prometheus.Counter
	FlushesTotal       prometheus.Counter
	MergeDuration      prometheus.Histogram
	TermTableMemBytes  prometheus.Gauge
	QueriesTotal       prometheus.Counter
	QueryLatency       prometheus.Histogram
	QueryHitCount      prometheus.Histogram
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
}

// New creates and registers all Prometheus collectors.
func New() *Metrics {
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "invidx_docs_indexed_total",
			Help: "Total documents processed by the indexer, including those with a missing corpus file.",
		}),
		CorpusFilesMissing: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "invidx_corpus_files_missing_total",
			Help: "Total manifest entries whose corpus file could not be opened.",
		}),
		FlushesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "invidx_flushes_total",
			Help: "Total term-table flushes to a block file.",
		}),
		MergeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "invidx_merge_duration_seconds",
			Help:    "Duration of the external k-way merge producing lexicon.bin and postings.bin.",
			Buckets: prometheus.DefBuckets,
		}),
		TermTableMemBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "invidx_term_table_mem_bytes",
			Help: "Current approx_mem_bytes() of the in-memory term table.",
		}),
		QueriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "invidx_queries_total",
			Help: "Total query lines evaluated.",
		}),
		QueryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "invidx_query_latency_seconds",
			Help:    "Per-query parse+evaluate latency in seconds.",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}),
		QueryHitCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "invidx_query_hit_count",
			Help:    "Number of hits returned per query.",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 1000},
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "invidx_cache_hits_total",
			Help: "Total query result cache hits.",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "invidx_cache_misses_total",
			Help: "Total query result cache misses.",
		}),
	}

	prometheus.MustRegister(
		m.DocsIndexedTotal,
		m.CorpusFilesMissing,
		m.FlushesTotal,
		m.MergeDuration,
		m.TermTableMemBytes,
		m.QueriesTotal,
		m.QueryLatency,
		m.QueryHitCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
