// internal/matching/models.go

package matching

import (
	"strings"
	"time"
)

type Role string

const (
	RoleParent Role = "parent"
	RoleSitter Role = "sitter"
	RoleAdmin  Role = "admin"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusVerified  Status = "verified"
	StatusSuspended Status = "suspended"
)

type Urgency string

const (
	UrgencyLow       Urgency = "low"
	UrgencyNormal    Urgency = "normal"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingDisputed   BookingStatus = "disputed"
)

type GeoPoint struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

type Budget struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Verification struct {
	Email           bool `json:"email" db:"email_verified"`
	Phone           bool `json:"phone" db:"phone_verified"`
	BackgroundCheck bool `json:"background_check" db:"background_check"`
}

// Candidate is a sitter as seen by the scoring core. Optional attributes are
// pointers so that "unknown" stays distinguishable from zero.
type Candidate struct {
	ID              int64        `json:"id"`
	Name            string       `json:"name"`
	Role            Role         `json:"role"`
	Status          Status       `json:"status"`
	HourlyRate      float64      `json:"hourly_rate"`
	ExperienceYears *float64     `json:"experience_years,omitempty"`
	Verification    Verification `json:"verification"`
	Rating          *float64     `json:"rating,omitempty"`
	ReviewCount     int          `json:"review_count"`
	ResponseRate    *float64     `json:"response_rate,omitempty"`
	Location        *GeoPoint    `json:"location,omitempty"`
	ServiceRadiusKm *float64     `json:"service_radius_km,omitempty"`
	Skills          []string     `json:"skills,omitempty"`
	Languages       []string     `json:"languages,omitempty"`
	Certifications  []string     `json:"certifications,omitempty"`
	Availability    []TimeWindow `json:"availability,omitempty"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Priorities is the parent's stated emphasis, each in [0,1].
type Priorities struct {
	Safety       float64 `json:"safety"`
	Experience   float64 `json:"experience"`
	Cost         float64 `json:"cost"`
	Availability float64 `json:"availability"`
	Personality  float64 `json:"personality"`
}

type MatchRequest struct {
	ChildID            int64      `json:"child_id"`
	Location           GeoPoint   `json:"location"`
	MaxDistanceKm      float64    `json:"max_distance_km"`
	Window             TimeWindow `json:"window"`
	Budget             Budget     `json:"budget"`
	MinExperienceYears float64    `json:"min_experience_years"`
	RequiredSkills     []string   `json:"required_skills,omitempty"`
	Languages          []string   `json:"languages,omitempty"`
	Certifications     []string   `json:"certifications,omitempty"`
	Priorities         Priorities `json:"priorities"`
	Urgency            Urgency    `json:"urgency"`
}

type MatchResult struct {
	CandidateID     int64                 `json:"candidate_id"`
	Candidate       *Candidate            `json:"candidate"`
	OverallScore    float64               `json:"overall_score"`
	Scores          map[Dimension]float64 `json:"scores"`
	DistanceKm      *float64              `json:"distance_km,omitempty"`
	Warnings        []string              `json:"warnings"`
	Recommendations []string              `json:"recommendations"`
}

type BookingRecord struct {
	ID         int64         `json:"id" db:"id"`
	ParentID   int64         `json:"parent_id" db:"parent_id"`
	SitterID   int64         `json:"sitter_id" db:"sitter_id"`
	StartTime  time.Time     `json:"start_time" db:"start_time"`
	EndTime    time.Time     `json:"end_time" db:"end_time"`
	Status     BookingStatus `json:"status" db:"status"`
	Rating     *float64      `json:"rating,omitempty" db:"rating"`
	HourlyRate float64       `json:"hourly_rate" db:"hourly_rate"`
}

func (b BookingRecord) DurationHours() float64 {
	return b.EndTime.Sub(b.StartTime).Hours()
}

type Review struct {
	ID         int64     `json:"id" db:"id"`
	SitterID   int64     `json:"sitter_id" db:"sitter_id"`
	ReviewerID int64     `json:"reviewer_id" db:"reviewer_id"`
	Rating     float64   `json:"rating" db:"rating"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Validate rejects malformed criteria. Missing optional data is not an error.
func (r *MatchRequest) Validate() error {
	if r == nil {
		return invalidf("match request is required")
	}
	if r.Location.Latitude < -90 || r.Location.Latitude > 90 ||
		r.Location.Longitude < -180 || r.Location.Longitude > 180 {
		return invalidf("location (%f, %f) out of range", r.Location.Latitude, r.Location.Longitude)
	}
	if r.MaxDistanceKm < 0 {
		return invalidf("max distance must not be negative")
	}
	if r.Budget.Min < 0 || r.Budget.Max <= 0 {
		return invalidf("budget must be positive")
	}
	if r.Budget.Min > r.Budget.Max {
		return invalidf("budget min %.2f exceeds max %.2f", r.Budget.Min, r.Budget.Max)
	}
	if r.Window.Start.IsZero() {
		return invalidf("time window start is required")
	}
	if !r.Window.End.After(r.Window.Start) {
		return invalidf("time window must end after it starts")
	}
	if r.MinExperienceYears < 0 {
		return invalidf("minimum experience must not be negative")
	}
	p := r.Priorities
	for _, v := range []float64{p.Safety, p.Experience, p.Cost, p.Availability, p.Personality} {
		if v < 0 || v > 1 {
			return invalidf("priority weights must be within [0,1]")
		}
	}
	switch r.Urgency {
	case "", UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyEmergency:
	default:
		return invalidf("unknown urgency %q", r.Urgency)
	}
	return nil
}

func (r MatchRequest) withDefaults() MatchRequest {
	if r.MaxDistanceKm == 0 {
		r.MaxDistanceKm = DefaultMaxDistanceKm
	}
	if r.Urgency == "" {
		r.Urgency = UrgencyNormal
	}
	return r
}

// SearchBox is the bounding box used for the hard location filter once
// defaults are applied.
func (r MatchRequest) SearchBox() BoundingBox {
	criteria := r.withDefaults()
	return BoundingBoxAround(criteria.Location, criteria.MaxDistanceKm)
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

func normalizeTags(tags []string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		if t = normalizeTag(t); t != "" {
			set[t] = true
		}
	}
	return set
}
