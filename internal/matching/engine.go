// internal/matching/engine.go

package matching

import (
	"fmt"
	"sort"
	"strings"
)

const (
	DefaultSearchLimit         = 20
	DefaultRecommendationLimit = 10
	MaxLimit                   = 100

	// DefaultMinScore is the admission threshold: results must score above it.
	DefaultMinScore = 0.3

	DefaultMaxDistanceKm = 25.0
)

type weightedDimension struct {
	dimension ScoreDimension
	weight    float64
}

// Engine ranks candidates against a match request. It holds no per-request
// state and is safe for concurrent use.
type Engine struct {
	weights     Weights
	minScore    float64
	calculators map[Dimension]ScoreDimension
	dimensions  []weightedDimension
}

type Option func(*Engine)

// WithMinScore overrides the admission threshold.
func WithMinScore(score float64) Option {
	return func(e *Engine) {
		if score >= 0 && score < 1 {
			e.minScore = score
		}
	}
}

// WithDimension replaces the calculator registered for d.Name().
func WithDimension(d ScoreDimension) Option {
	return func(e *Engine) {
		if d != nil {
			e.calculators[d.Name()] = d
		}
	}
}

func NewEngine(weights Weights, opts ...Option) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		weights:     weights,
		minScore:    DefaultMinScore,
		calculators: make(map[Dimension]ScoreDimension, len(Dimensions)),
	}
	for _, d := range DefaultDimensions() {
		e.calculators[d.Name()] = d
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, name := range Dimensions {
		e.dimensions = append(e.dimensions, weightedDimension{
			dimension: e.calculators[name],
			weight:    weights.For(name),
		})
	}
	return e, nil
}

func (e *Engine) Weights() Weights { return e.weights }

func (e *Engine) MinScore() float64 { return e.minScore }

// FindBestMatches filters the pool by hard constraints, scores the survivors,
// drops anything at or below the admission threshold and returns the top
// limit results by overall score. Equal scores keep pool order.
func (e *Engine) FindBestMatches(req *MatchRequest, pool []*Candidate, limit int) ([]MatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	criteria := req.withDefaults()
	limit = NormalizeLimit(limit, DefaultSearchLimit)
	box := BoundingBoxAround(criteria.Location, criteria.MaxDistanceKm)

	results := make([]MatchResult, 0, len(pool))
	scored := 0
	for _, c := range pool {
		if c == nil || !Eligible(c, &criteria, box) {
			continue
		}
		scored++
		result := e.Score(c, &criteria)
		recordOverallScore(result.OverallScore)
		if result.OverallScore <= e.minScore {
			continue
		}
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].OverallScore > results[j].OverallScore
	})
	if len(results) > limit {
		results = results[:limit]
	}

	recordMatchRun(len(pool), scored, len(results))
	return results, nil
}

// Score computes the weighted overall score and annotations for one
// candidate. It applies no filtering.
func (e *Engine) Score(c *Candidate, req *MatchRequest) MatchResult {
	scores := make(map[Dimension]float64, len(e.dimensions))
	var overall float64
	for _, wd := range e.dimensions {
		s := Clamp01(wd.dimension.Score(c, req))
		scores[wd.dimension.Name()] = s
		overall += wd.weight * s
	}

	result := MatchResult{
		CandidateID:  c.ID,
		Candidate:    c,
		OverallScore: Clamp01(overall),
		Scores:       scores,
	}
	if c.Location != nil {
		d := HaversineKm(req.Location, *c.Location)
		result.DistanceKm = &d
	}
	result.Warnings, result.Recommendations = annotate(c, req, scores, result.DistanceKm)
	return result
}

// Eligible applies the hard constraints. Unknown location or rate passes, the
// calculators score them neutrally.
func Eligible(c *Candidate, req *MatchRequest, box BoundingBox) bool {
	if c.Role != RoleSitter {
		return false
	}
	if c.Status != StatusActive && c.Status != StatusVerified {
		return false
	}
	if c.HourlyRate > 0 && (c.HourlyRate < req.Budget.Min || c.HourlyRate > req.Budget.Max) {
		return false
	}
	if c.Location != nil && !box.Contains(*c.Location) {
		return false
	}
	return true
}

// NormalizeLimit maps non-positive limits to fallback and caps at MaxLimit.
func NormalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		limit = fallback
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return limit
}

const (
	lowRatingThreshold = 4.0
	topRatingThreshold = 4.8
	highPriority       = 0.8
	weakScoreThreshold = 0.6
	goodPriceThreshold = 0.9
)

func annotate(c *Candidate, req *MatchRequest, scores map[Dimension]float64, distanceKm *float64) (warnings, recommendations []string) {
	warnings = []string{}
	recommendations = []string{}

	if !c.Verification.BackgroundCheck {
		warnings = append(warnings, "Background check not completed")
	}
	switch {
	case c.Rating == nil:
		warnings = append(warnings, "No reviews yet")
	case *c.Rating < lowRatingThreshold:
		warnings = append(warnings, fmt.Sprintf("Average rating %.1f is below %.1f", *c.Rating, lowRatingThreshold))
	case *c.Rating >= topRatingThreshold:
		recommendations = append(recommendations, "Top-rated sitter")
	}

	if len(c.Availability) > 0 {
		if scores[DimensionAvailability] < 1 {
			warnings = append(warnings, "Only partially available for the requested time")
		} else {
			recommendations = append(recommendations, "Fully available for your requested time")
		}
	}

	if distanceKm != nil && c.ServiceRadiusKm != nil && *distanceKm > *c.ServiceRadiusKm {
		warnings = append(warnings, "Outside the sitter's usual service area")
	}

	p := req.Priorities
	if p.Safety >= highPriority && scores[DimensionSafety] < weakScoreThreshold {
		warnings = append(warnings, "Safety credentials are below your stated priority")
	}
	if p.Experience >= highPriority && scores[DimensionExperience] < weakScoreThreshold {
		warnings = append(warnings, "Less experience than your stated priority")
	}
	if p.Availability >= highPriority && scores[DimensionAvailability] < weakScoreThreshold {
		warnings = append(warnings, "Availability is below your stated priority")
	}

	if c.ExperienceYears != nil && *c.ExperienceYears >= req.MinExperienceYears+DefaultExperienceMargin {
		recommendations = append(recommendations, fmt.Sprintf("%.0f+ years of experience", *c.ExperienceYears))
	}
	if langs := sharedTags(req.Languages, c.Languages); len(langs) > 0 {
		recommendations = append(recommendations, "Speaks "+strings.Join(langs, ", "))
	}
	if c.HourlyRate > 0 && scores[DimensionPrice] >= goodPriceThreshold {
		recommendations = append(recommendations, "Rate fits your budget")
	}
	if req.Urgency == UrgencyEmergency {
		recommendations = append(recommendations, "Contact immediately: emergency request")
	}

	return warnings, recommendations
}
