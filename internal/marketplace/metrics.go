package marketplace

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_match_cache_lookups_total",
			Help: "Match result cache lookups by outcome",
		},
		[]string{"result"},
	)

	demandCells = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketplace_demand_cells",
			Help: "Grid cells in the last demand refresh",
		},
	)

	demandRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_demand_refreshes_total",
			Help: "Completed demand table refreshes",
		},
	)
)

func recordCacheLookup(hit bool) {
	if hit {
		matchCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	matchCacheLookups.WithLabelValues("miss").Inc()
}

func recordDemandRefresh(cells int) {
	demandCells.Set(float64(cells))
	demandRefreshes.Inc()
}
