package pricing

import (
	"math"
	"sync"
	"time"

	"github.com/imadgeboyega/sitter-backend/internal/matching"
)

// DemandModel supplies the demand multiplier for a place and time.
type DemandModel interface {
	Multiplier(loc matching.GeoPoint, at time.Time) float64
}

type ConstantDemand float64

func (d ConstantDemand) Multiplier(matching.GeoPoint, time.Time) float64 {
	return float64(d)
}

const BaselineDemand ConstantDemand = 1.0

const (
	minDemandMultiplier = 0.9
	maxDemandMultiplier = 1.5
	demandSensitivity   = 0.25
)

// MultiplierFor converts open requests per active sitter into a multiplier.
func MultiplierFor(openRequests, activeSitters int) float64 {
	if openRequests <= 0 && activeSitters <= 0 {
		return float64(BaselineDemand)
	}
	ratio := float64(openRequests) / math.Max(1, float64(activeSitters))
	m := 1 + demandSensitivity*(ratio-1)
	return math.Min(maxDemandMultiplier, math.Max(minDemandMultiplier, m))
}

type Cell struct {
	Lat int `json:"lat" db:"cell_lat"`
	Lng int `json:"lng" db:"cell_lng"`
}

type RegionSample struct {
	Cell
	OpenRequests  int `json:"open_requests" db:"open_requests"`
	ActiveSitters int `json:"active_sitters" db:"active_sitters"`
}

// RegionalDemand is a grid of demand multipliers. Each Replace swaps the whole
// table, so cells that disappear from the feed fall back to baseline.
type RegionalDemand struct {
	cellDegrees float64

	mu          sync.RWMutex
	multipliers map[Cell]float64
	updatedAt   time.Time
}

func NewRegionalDemand(cellDegrees float64) *RegionalDemand {
	if cellDegrees <= 0 {
		cellDegrees = 0.5
	}
	return &RegionalDemand{
		cellDegrees: cellDegrees,
		multipliers: make(map[Cell]float64),
	}
}

func (r *RegionalDemand) CellDegrees() float64 { return r.cellDegrees }

func (r *RegionalDemand) CellFor(loc matching.GeoPoint) Cell {
	return Cell{
		Lat: int(math.Floor(loc.Latitude / r.cellDegrees)),
		Lng: int(math.Floor(loc.Longitude / r.cellDegrees)),
	}
}

func (r *RegionalDemand) Multiplier(loc matching.GeoPoint, _ time.Time) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if m, ok := r.multipliers[r.CellFor(loc)]; ok {
		return m
	}
	return float64(BaselineDemand)
}

func (r *RegionalDemand) Replace(samples []RegionSample, at time.Time) {
	next := make(map[Cell]float64, len(samples))
	for _, s := range samples {
		next[s.Cell] = MultiplierFor(s.OpenRequests, s.ActiveSitters)
	}

	r.mu.Lock()
	r.multipliers = next
	r.updatedAt = at
	r.mu.Unlock()
}

func (r *RegionalDemand) UpdatedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updatedAt
}
