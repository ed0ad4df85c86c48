package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// asksTotal counts answered questions by front end and outcome
	asksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obitos_asks_total",
		Help: "Questions answered by source and outcome",
	}, []string{"source", "outcome"}) // source: menu|text, outcome: ok|error

	askDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "obitos_ask_duration_seconds",
		Help:    "Time to build the context and get an answer",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
	}, []string{"source"})

	exportCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obitos_export_cache_total",
		Help: "CSV export cache lookups by result",
	}, []string{"result"})

	datasetRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "obitos_dataset_records",
		Help: "Records in the dataset currently served",
	})

	datasetReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obitos_dataset_reloads_total",
		Help: "Dataset reloads triggered by file changes",
	}, []string{"result"})
)
