package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_runs_total",
			Help: "Total number of match searches executed",
		},
	)

	candidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_candidates_total",
			Help: "Candidates seen by the match engine, by stage",
		},
		[]string{"stage"},
	)

	overallScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_overall_scores",
			Help:    "Distribution of overall match scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)
)

func recordMatchRun(pool, scored, returned int) {
	matchRunsTotal.Inc()
	candidatesTotal.WithLabelValues("pool").Add(float64(pool))
	candidatesTotal.WithLabelValues("scored").Add(float64(scored))
	candidatesTotal.WithLabelValues("returned").Add(float64(returned))
}

func recordOverallScore(score float64) {
	overallScores.Observe(score)
}
