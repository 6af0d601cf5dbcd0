package trust

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var trustScoresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "trust_scores_total",
		Help: "Trust scores computed, by risk level",
	},
	[]string{"risk_level"},
)

func recordTrustScore(s *TrustScore) {
	trustScoresTotal.WithLabelValues(string(s.RiskLevel)).Inc()
}
