package pricing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	quotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_quotes_total",
			Help: "Dynamic price quotes issued, by time band",
		},
		[]string{"band"},
	)

	demandMultipliers = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pricing_demand_multiplier",
			Help:    "Demand multipliers applied to quotes",
			Buckets: prometheus.LinearBuckets(0.9, 0.1, 7),
		},
	)
)

func recordQuote(q *Quote) {
	quotesTotal.WithLabelValues(string(q.TimeBand)).Inc()
	demandMultipliers.Observe(q.DemandMultiplier)
}
