// internal/trust/trust.go

// Package trust computes a sitter's request-independent reliability score.
package trust

import (
	"fmt"

	"github.com/imadgeboyega/sitter-backend/internal/matching"
)

// Risk tier thresholds on the overall trust score.
const (
	LowRiskThreshold    = 0.8
	MediumRiskThreshold = 0.6
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskFor maps an overall score to its tier.
func RiskFor(score float64) RiskLevel {
	switch {
	case score >= LowRiskThreshold:
		return RiskLow
	case score >= MediumRiskThreshold:
		return RiskMedium
	default:
		return RiskHigh
	}
}

type Weights struct {
	BackgroundCheck   float64 `json:"background_check" koanf:"background_check"`
	ResponseRate      float64 `json:"response_rate" koanf:"response_rate"`
	Reliability       float64 `json:"reliability" koanf:"reliability"`
	Rating            float64 `json:"rating" koanf:"rating"`
	CompletionRate    float64 `json:"completion_rate" koanf:"completion_rate"`
	VerificationLevel float64 `json:"verification_level" koanf:"verification_level"`
}

func DefaultWeights() Weights {
	return Weights{
		BackgroundCheck:   0.25,
		ResponseRate:      0.20,
		Reliability:       0.15,
		Rating:            0.20,
		CompletionRate:    0.15,
		VerificationLevel: 0.05,
	}
}

func (w Weights) values() []float64 {
	return []float64{w.BackgroundCheck, w.ResponseRate, w.Reliability, w.Rating, w.CompletionRate, w.VerificationLevel}
}

func (w Weights) Validate() error {
	var sum float64
	for _, v := range w.values() {
		if v < 0 {
			return matching.Invalidf("trust weights must not be negative")
		}
		sum += v
	}
	return matching.CheckWeightSum("trust", sum)
}

// Factors are the per-signal inputs, each in [0,1]. Bookings is the number
// of non-pending bookings the rates were derived from.
type Factors struct {
	BackgroundCheck   float64 `json:"background_check"`
	ResponseRate      float64 `json:"response_rate"`
	CancellationRate  float64 `json:"cancellation_rate"`
	Rating            float64 `json:"rating"`
	CompletionRate    float64 `json:"completion_rate"`
	VerificationLevel float64 `json:"verification_level"`
	Bookings          int     `json:"bookings"`
	Reviews           int     `json:"reviews"`
}

// Reliability is 1 - cancellation rate, neutral when there is no history.
func (f Factors) Reliability() float64 {
	if f.Bookings == 0 {
		return matching.NeutralScore
	}
	return matching.Clamp01(1 - f.CancellationRate)
}

type TrustScore struct {
	CandidateID     int64     `json:"candidate_id"`
	Overall         float64   `json:"overall"`
	Factors         Factors   `json:"factors"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Recommendations []string  `json:"recommendations"`
}

type Engine struct {
	weights Weights
	rules   []Rule
}

// NewEngine validates the weight set. With no rules the defaults apply.
func NewEngine(weights Weights, rules ...Rule) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{weights: weights, rules: rules}, nil
}

func (e *Engine) Calculate(c *matching.Candidate, history []matching.BookingRecord, reviews []matching.Review) (*TrustScore, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: candidate", matching.ErrNotFound)
	}

	f := ExtractFactors(c, history, reviews)
	w := e.weights
	overall := w.BackgroundCheck*f.BackgroundCheck +
		w.ResponseRate*f.ResponseRate +
		w.Reliability*f.Reliability() +
		w.Rating*f.Rating +
		w.CompletionRate*f.CompletionRate +
		w.VerificationLevel*f.VerificationLevel
	overall = matching.Clamp01(overall)

	score := &TrustScore{
		CandidateID:     c.ID,
		Overall:         overall,
		Factors:         f,
		RiskLevel:       RiskFor(overall),
		Recommendations: []string{},
	}
	for _, rule := range e.rules {
		if rule.Applies(f) {
			score.Recommendations = append(score.Recommendations, rule.Message)
		}
	}

	recordTrustScore(score)
	return score, nil
}

// ExtractFactors derives the trust signals for c. Bookings belonging to other
// sitters are ignored.
func ExtractFactors(c *matching.Candidate, history []matching.BookingRecord, reviews []matching.Review) Factors {
	f := Factors{
		ResponseRate:   matching.NeutralScore,
		Rating:         matching.NeutralScore,
		CompletionRate: matching.NeutralScore,
	}

	v := c.Verification
	if v.BackgroundCheck {
		f.BackgroundCheck = 1
	}
	f.VerificationLevel = (boolScore(v.Email) + boolScore(v.Phone) + boolScore(v.BackgroundCheck)) / 3

	if c.ResponseRate != nil {
		f.ResponseRate = matching.Clamp01(*c.ResponseRate)
	}

	var cancelled, completed, finished int
	for _, b := range history {
		if b.SitterID != 0 && b.SitterID != c.ID {
			continue
		}
		switch b.Status {
		case matching.BookingPending:
			continue
		case matching.BookingCompleted:
			completed++
			finished++
		case matching.BookingCancelled:
			cancelled++
			finished++
		case matching.BookingDisputed:
			finished++
		}
		f.Bookings++
	}
	if f.Bookings > 0 {
		f.CancellationRate = float64(cancelled) / float64(f.Bookings)
	}
	if finished > 0 {
		f.CompletionRate = float64(completed) / float64(finished)
	}

	var total float64
	for _, r := range reviews {
		if r.SitterID != 0 && r.SitterID != c.ID {
			continue
		}
		total += r.Rating
		f.Reviews++
	}
	switch {
	case f.Reviews > 0:
		f.Rating = matching.Clamp01(total / float64(f.Reviews) / 5)
	case c.Rating != nil:
		f.Rating = matching.Clamp01(*c.Rating / 5)
	}

	return f
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
