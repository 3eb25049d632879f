package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ComputeRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compass_compute_runs_total",
			Help: "Total number of compass computations (by outcome).",
		},
		[]string{"outcome"},
	)

	SymbolsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compass_symbols_skipped_total",
			Help: "Symbols left out of a compass result (by reason).",
		},
		[]string{"reason"},
	)

	QuadrantRecords = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "compass_quadrant_records",
			Help: "Records per quadrant in the most recent compass result.",
		},
		[]string{"quadrant"},
	)

	ComputeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "compass_compute_duration_seconds",
			Help:    "Wall time of one compass computation.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
	)

	TradingDays = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "compass_trading_days",
			Help: "Rows in the price table of the most recent computation.",
		},
	)
)

func init() {
	prometheus.MustRegister(ComputeRuns, SymbolsSkipped, QuadrantRecords, ComputeDuration, TradingDays)
}
