// Package metrics exposes Prometheus counters for pipeline outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IngestArticles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "readfeed",
		Subsystem: "ingest",
		Name:      "articles_total",
		Help:      "Per-article ingestion outcomes.",
	}, []string{"outcome"})

	IngestBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "readfeed",
		Subsystem: "ingest",
		Name:      "batches_total",
		Help:      "Ingestion batch completions by status.",
	}, []string{"status"})

	ProjectionArticles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "readfeed",
		Subsystem: "projection",
		Name:      "articles_total",
		Help:      "Per-article projection outcomes.",
	}, []string{"outcome"})

	IngestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "readfeed",
		Subsystem: "ingest",
		Name:      "batch_duration_seconds",
		Help:      "Wall time of ingestion batches.",
		Buckets:   prometheus.DefBuckets,
	})
)
