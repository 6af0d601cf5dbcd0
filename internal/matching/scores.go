// internal/matching/scores.go

package matching

import (
	"math"
	"sort"
	"time"
)

// NeutralScore is substituted whenever the data a calculator needs is missing,
// so sparse profiles stay rankable.
const NeutralScore = 0.5

// DefaultExperienceMargin is how many years beyond the requested minimum a
// sitter needs before the experience score saturates.
const DefaultExperienceMargin = 2.0

// ScoreDimension scores one aspect of a candidate against a request. Every
// implementation must return a value in [0,1].
type ScoreDimension interface {
	Name() Dimension
	Score(c *Candidate, req *MatchRequest) float64
}

type LocationScore struct{}

func (LocationScore) Name() Dimension { return DimensionLocation }

// Score decays linearly from 1.0 at the parent's position to 0 at the
// requested maximum distance.
func (LocationScore) Score(c *Candidate, req *MatchRequest) float64 {
	if c.Location == nil {
		return NeutralScore
	}
	maxKm := req.MaxDistanceKm
	if maxKm <= 0 {
		maxKm = DefaultMaxDistanceKm
	}
	distance := HaversineKm(req.Location, *c.Location)
	return Clamp01(1 - distance/maxKm)
}

type AvailabilityScore struct{}

func (AvailabilityScore) Name() Dimension { return DimensionAvailability }

// Score is the fraction of the requested window covered by the union of the
// candidate's declared slots.
func (AvailabilityScore) Score(c *Candidate, req *MatchRequest) float64 {
	requested := req.Window.Duration()
	if len(c.Availability) == 0 || requested <= 0 {
		return NeutralScore
	}
	return Clamp01(float64(coveredDuration(req.Window, c.Availability)) / float64(requested))
}

func coveredDuration(window TimeWindow, slots []TimeWindow) time.Duration {
	clipped := make([]TimeWindow, 0, len(slots))
	for _, s := range slots {
		start, end := s.Start, s.End
		if start.Before(window.Start) {
			start = window.Start
		}
		if end.After(window.End) {
			end = window.End
		}
		if end.After(start) {
			clipped = append(clipped, TimeWindow{Start: start, End: end})
		}
	}
	if len(clipped) == 0 {
		return 0
	}

	sort.Slice(clipped, func(i, j int) bool {
		return clipped[i].Start.Before(clipped[j].Start)
	})

	var total time.Duration
	current := clipped[0]
	for _, s := range clipped[1:] {
		if !s.Start.After(current.End) {
			if s.End.After(current.End) {
				current.End = s.End
			}
			continue
		}
		total += current.Duration()
		current = s
	}
	return total + current.Duration()
}

type ExperienceScore struct {
	Margin float64
}

func (ExperienceScore) Name() Dimension { return DimensionExperience }

func (s ExperienceScore) Score(c *Candidate, req *MatchRequest) float64 {
	if c.ExperienceYears == nil {
		return NeutralScore
	}
	target := req.MinExperienceYears + s.Margin
	if target <= 0 {
		return 1
	}
	return Clamp01(*c.ExperienceYears / target)
}

type PriceScore struct{}

func (PriceScore) Name() Dimension { return DimensionPrice }

// Score penalises both overshooting and undershooting the budget ceiling.
func (PriceScore) Score(c *Candidate, req *MatchRequest) float64 {
	if c.HourlyRate <= 0 || req.Budget.Max <= 0 {
		return NeutralScore
	}
	return Clamp01(1 - math.Abs(1-req.Budget.Max/c.HourlyRate))
}

type SafetyScore struct {
	Weights SafetyWeights
}

func (SafetyScore) Name() Dimension { return DimensionSafety }

func (s SafetyScore) Score(c *Candidate, req *MatchRequest) float64 {
	w := s.Weights
	var score float64
	if c.Verification.BackgroundCheck {
		score += w.BackgroundCheck
	}
	if c.Verification.Email {
		score += w.Email
	}
	if c.Verification.Phone {
		score += w.Phone
	}

	// Certifications count by presence unless the parent asked for specific ones.
	var certs float64
	if len(req.Certifications) > 0 {
		certs = overlapRatio(req.Certifications, c.Certifications)
		if len(c.Certifications) == 0 {
			certs = 0
		}
	} else if len(c.Certifications) > 0 {
		certs = 1
	}
	score += w.Certifications * certs

	return Clamp01(score)
}

type RatingScore struct{}

func (RatingScore) Name() Dimension { return DimensionRating }

func (RatingScore) Score(c *Candidate, _ *MatchRequest) float64 {
	if c.Rating == nil {
		return NeutralScore
	}
	return Clamp01(*c.Rating / 5)
}

// CompatibilityWeights split the compatibility score.
type CompatibilityWeights struct {
	ResponseRate float64 `json:"response_rate" koanf:"response_rate"`
	Languages    float64 `json:"languages" koanf:"languages"`
	Skills       float64 `json:"skills" koanf:"skills"`
}

func DefaultCompatibilityWeights() CompatibilityWeights {
	return CompatibilityWeights{ResponseRate: 0.5, Languages: 0.3, Skills: 0.2}
}

func (w CompatibilityWeights) Validate() error {
	if w.ResponseRate < 0 || w.Languages < 0 || w.Skills < 0 {
		return invalidf("compatibility weights must not be negative")
	}
	return CheckWeightSum("compatibility", w.ResponseRate+w.Languages+w.Skills)
}

type CompatibilityScore struct {
	Weights CompatibilityWeights
}

func (CompatibilityScore) Name() Dimension { return DimensionCompatibility }

func (s CompatibilityScore) Score(c *Candidate, req *MatchRequest) float64 {
	response := NeutralScore
	if c.ResponseRate != nil {
		response = Clamp01(*c.ResponseRate)
	}
	return Clamp01(s.Weights.ResponseRate*response +
		s.Weights.Languages*overlapRatio(req.Languages, c.Languages) +
		s.Weights.Skills*overlapRatio(req.RequiredSkills, c.Skills))
}

// overlapRatio is the share of required tags the candidate declares. Nothing
// required is a full match; a candidate that declares nothing is neutral.
func overlapRatio(required, have []string) float64 {
	want := normalizeTags(required)
	if len(want) == 0 {
		return 1
	}
	if len(have) == 0 {
		return NeutralScore
	}
	got := normalizeTags(have)
	matched := 0
	for tag := range want {
		if got[tag] {
			matched++
		}
	}
	return float64(matched) / float64(len(want))
}

func sharedTags(required, have []string) []string {
	got := normalizeTags(have)
	var shared []string
	seen := map[string]bool{}
	for _, t := range required {
		key := normalizeTag(t)
		if got[key] && !seen[key] {
			seen[key] = true
			shared = append(shared, t)
		}
	}
	return shared
}

// DefaultDimensions returns the built-in calculators.
func DefaultDimensions() []ScoreDimension {
	return []ScoreDimension{
		LocationScore{},
		AvailabilityScore{},
		ExperienceScore{Margin: DefaultExperienceMargin},
		RatingScore{},
		PriceScore{},
		SafetyScore{Weights: DefaultSafetyWeights()},
		CompatibilityScore{Weights: DefaultCompatibilityWeights()},
	}
}
