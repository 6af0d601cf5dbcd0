// internal/marketplace/dto.go
package marketplace

import (
	"math"
	"strings"
	"time"

	"github.com/imadgeboyega/sitter-backend/internal/matching"
	"github.com/imadgeboyega/sitter-backend/internal/recommendations"
)

// DTOs for API requests/responses

type LocationDTO struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

func (l LocationDTO) point() matching.GeoPoint {
	return matching.GeoPoint{Latitude: l.Latitude, Longitude: l.Longitude}
}

type PrioritiesDTO struct {
	Safety       float64 `json:"safety" validate:"gte=0,lte=1"`
	Experience   float64 `json:"experience" validate:"gte=0,lte=1"`
	Cost         float64 `json:"cost" validate:"gte=0,lte=1"`
	Availability float64 `json:"availability" validate:"gte=0,lte=1"`
	Personality  float64 `json:"personality" validate:"gte=0,lte=1"`
}

type SearchMatchesDTO struct {
	ChildID            int64         `json:"child_id" validate:"gte=0"`
	Location           LocationDTO   `json:"location"`
	MaxDistanceKm      float64       `json:"max_distance_km" validate:"gte=0,lte=500"`
	StartTime          time.Time     `json:"start_time" validate:"required"`
	EndTime            time.Time     `json:"end_time" validate:"gtfield=StartTime"`
	BudgetMin          float64       `json:"budget_min" validate:"gte=0"`
	BudgetMax          float64       `json:"budget_max" validate:"gt=0,gtefield=BudgetMin"`
	MinExperienceYears float64       `json:"min_experience_years" validate:"gte=0,lte=60"`
	RequiredSkills     []string      `json:"required_skills,omitempty" validate:"max=20"`
	Languages          []string      `json:"languages,omitempty" validate:"max=10"`
	Certifications     []string      `json:"certifications,omitempty" validate:"max=20"`
	Priorities         PrioritiesDTO `json:"priorities"`
	Urgency            string        `json:"urgency,omitempty" validate:"omitempty,oneof=low normal high emergency"`
	Limit              int           `json:"limit,omitempty" validate:"gte=0,lte=100"`
}

func (d *SearchMatchesDTO) toRequest() *matching.MatchRequest {
	return &matching.MatchRequest{
		ChildID:            d.ChildID,
		Location:           d.Location.point(),
		MaxDistanceKm:      d.MaxDistanceKm,
		Window:             matching.TimeWindow{Start: d.StartTime, End: d.EndTime},
		Budget:             matching.Budget{Min: d.BudgetMin, Max: d.BudgetMax},
		MinExperienceYears: d.MinExperienceYears,
		RequiredSkills:     d.RequiredSkills,
		Languages:          d.Languages,
		Certifications:     d.Certifications,
		Priorities: matching.Priorities{
			Safety:       d.Priorities.Safety,
			Experience:   d.Priorities.Experience,
			Cost:         d.Priorities.Cost,
			Availability: d.Priorities.Availability,
			Personality:  d.Priorities.Personality,
		},
		Urgency: matching.Urgency(d.Urgency),
	}
}

type PriceQuoteDTO struct {
	Location  LocationDTO `json:"location"`
	StartTime time.Time   `json:"start_time"`
}

// MatchResultResponse adds a 0-100 percentage to the [0,1] scores.
type MatchResultResponse struct {
	matching.MatchResult
	MatchPercentage float64 `json:"match_percentage"`
}

type SearchMatchesResponse struct {
	Results []MatchResultResponse `json:"results"`
	Count   int                   `json:"count"`
}

func newSearchMatchesResponse(results []matching.MatchResult) SearchMatchesResponse {
	out := make([]MatchResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, MatchResultResponse{
			MatchResult:     r,
			MatchPercentage: Percentage(r.OverallScore),
		})
	}
	return SearchMatchesResponse{Results: out, Count: len(out)}
}

// Percentage converts a [0,1] score to a percentage with one decimal.
func Percentage(score float64) float64 {
	return math.Round(matching.Clamp01(score)*1000) / 10
}

// BehaviorProfileResponse renders weekdays by name.
type BehaviorProfileResponse struct {
	*recommendations.BehaviorProfile
	PreferredDays []string `json:"preferred_days"`
}

func newBehaviorProfileResponse(p *recommendations.BehaviorProfile) BehaviorProfileResponse {
	days := make([]string, 0, len(p.PreferredDays))
	for _, d := range p.PreferredDays {
		days = append(days, strings.ToLower(d.String()))
	}
	return BehaviorProfileResponse{BehaviorProfile: p, PreferredDays: days}
}

type RecommendationsResponse struct {
	ChildID         int64                            `json:"child_id,omitempty"`
	TimeframeDays   int                              `json:"timeframe_days"`
	Recommendations []recommendations.Recommendation `json:"recommendations"`
}
