package metrics

import "github.com/prometheus/client_golang/prometheus"

// Ingestion, search and LLM metrics.
var (
	IngestStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_stage_duration_seconds",
			Help:      "Duration of each ingestion stage",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60, 180},
		},
		[]string{"stage", "status"},
	)

	ChunksProducedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_produced_total",
			Help:      "Chunks produced by the chunker",
		},
	)

	ExtractionFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_failures_total",
			Help:      "Chunks whose metadata extraction failed",
		},
	)

	SearchBranchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_branch_duration_seconds",
			Help:      "Duration of the vector and keyword search branches",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"corpus", "branch"},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search requests by corpus, mode and outcome",
		},
		[]string{"corpus", "mode", "outcome"}, // outcome: hits / empty / error
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Language model calls by task, provider and status",
		},
		[]string{"task", "provider", "status"},
	)
)
