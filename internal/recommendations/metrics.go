// internal/recommendations/metrics.go

package recommendations

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var recommendationsGenerated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "recommendations_generated_total",
		Help: "Booking suggestions returned, by kind",
	},
	[]string{"kind"},
)

func recordRecommendation(kind Kind) {
	recommendationsGenerated.WithLabelValues(string(kind)).Inc()
}
