// internal/pricing/pricing.go

// Package pricing computes dynamic hourly rates for a sitter and a schedule.
package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/imadgeboyega/sitter-backend/internal/matching"
)

type TimeBand string

const (
	BandPeak     TimeBand = "peak"
	BandMidday   TimeBand = "midday"
	BandStandard TimeBand = "standard"
)

// Time-of-day multipliers.
const (
	PeakAdjustment     = 1.2
	MiddayAdjustment   = 1.1
	StandardAdjustment = 1.0
)

type bonusStep struct {
	threshold float64
	bonus     float64
}

// Steps are checked in order; the first threshold met wins.
var (
	ratingBonusSteps = []bonusStep{
		{threshold: 4.8, bonus: 2.0},
		{threshold: 4.5, bonus: 1.0},
		{threshold: 4.0, bonus: 0.5},
	}
	experienceBonusSteps = []bonusStep{
		{threshold: 10, bonus: 3.0},
		{threshold: 5, bonus: 1.5},
		{threshold: 2, bonus: 0.5},
	}
)

type Quote struct {
	CandidateID      int64     `json:"candidate_id"`
	BaseRate         float64   `json:"base_rate"`
	DemandMultiplier float64   `json:"demand_multiplier"`
	ExperienceBonus  float64   `json:"experience_bonus"`
	RatingBonus      float64   `json:"rating_bonus"`
	TimeBand         TimeBand  `json:"time_band"`
	TimeAdjustment   float64   `json:"time_adjustment"`
	HourlyRate       float64   `json:"hourly_rate"`
	Start            time.Time `json:"start"`
}

type Engine struct {
	demand DemandModel
}

// NewEngine builds a pricing engine. A nil demand model means baseline demand.
func NewEngine(demand DemandModel) *Engine {
	if demand == nil {
		demand = BaselineDemand
	}
	return &Engine{demand: demand}
}

// Calculate returns the adjusted hourly rate rounded to cents.
func (e *Engine) Calculate(c *matching.Candidate, loc matching.GeoPoint, start time.Time) (float64, error) {
	q, err := e.Quote(c, loc, start)
	if err != nil {
		return 0, err
	}
	return q.HourlyRate, nil
}

func (e *Engine) Quote(c *matching.Candidate, loc matching.GeoPoint, start time.Time) (*Quote, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: candidate", matching.ErrNotFound)
	}
	if c.HourlyRate <= 0 {
		return nil, matching.Invalidf("candidate %d has no base rate", c.ID)
	}

	demand := e.demand.Multiplier(loc, start)
	if demand <= 0 || math.IsNaN(demand) || math.IsInf(demand, 0) {
		demand = float64(BaselineDemand)
	}

	band := BandFor(start)
	q := &Quote{
		CandidateID:      c.ID,
		BaseRate:         c.HourlyRate,
		DemandMultiplier: demand,
		ExperienceBonus:  stepBonus(experienceBonusSteps, c.ExperienceYears),
		RatingBonus:      stepBonus(ratingBonusSteps, c.Rating),
		TimeBand:         band,
		TimeAdjustment:   band.Adjustment(),
		Start:            start,
	}

	rate := q.BaseRate * q.DemandMultiplier
	rate += q.ExperienceBonus
	rate += q.RatingBonus
	rate *= q.TimeAdjustment
	q.HourlyRate = roundCents(rate)

	recordQuote(q)
	return q, nil
}

// BandFor classifies a start time in its own location. Weekends and
// 18:00-08:00 are peak, 12:00-17:00 is midday.
func BandFor(t time.Time) TimeBand {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return BandPeak
	}
	switch h := t.Hour(); {
	case h >= 18 || h < 8:
		return BandPeak
	case h >= 12 && h < 17:
		return BandMidday
	default:
		return BandStandard
	}
}

func (b TimeBand) Adjustment() float64 {
	switch b {
	case BandPeak:
		return PeakAdjustment
	case BandMidday:
		return MiddayAdjustment
	default:
		return StandardAdjustment
	}
}

func stepBonus(steps []bonusStep, value *float64) float64 {
	if value == nil {
		return 0
	}
	for _, s := range steps {
		if *value >= s.threshold {
			return s.bonus
		}
	}
	return 0
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
