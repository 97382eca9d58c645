package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_mutations_total",
		Help: "Total number of committed store mutations",
	}, []string{"op"})

	MutationsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_mutations_failed_total",
		Help: "Total number of rejected store mutations",
	}, []string{"op", "reason"})

	RecomputationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_stock_recomputations_total",
		Help: "Total number of per-SKU stock chain replays",
	})

	RecomputationMismatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_recomputation_mismatches_total",
		Help: "Total number of stock chain mismatches detected on load",
	})

	SaveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_save_latency_seconds",
		Help:    "Latency of atomic data file writes",
		Buckets: prometheus.DefBuckets,
	})

	SaveFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_save_failures_total",
		Help: "Total number of failed data file writes",
	}, []string{"reason"})

	DocumentLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_document_loads_total",
		Help: "Total number of data file loads",
	}, []string{"outcome"})
)
