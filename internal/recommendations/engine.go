// internal/recommendations/engine.go

package recommendations

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindRecurring Kind = "recurring"
	KindSeasonal  Kind = "seasonal"
	KindDateNight Kind = "date_night"
)

const (
	DefaultHorizonDays = 90
	MaxHorizonDays     = 365
	SeasonalLookahead  = 90
	MaxRecommendations = 10

	upcomingOccurrences = 4
	dateNightHour       = 19
	dateNightDuration   = 4.0
	outdoorStartHour    = 10
	outdoorDuration     = 5.0
)

// Confidence model.
const (
	baseConfidence         = 70.0
	weeklyBonus            = 15.0
	biWeeklyBonus          = 10.0
	reliableBonus          = 10.0
	unreliablePenalty      = 15.0
	reliableCancellation   = 0.05
	unreliableCancellation = 0.2
	weeklyDecay            = 5.0
	imminentUrgency        = 1.5
	soonUrgency            = 1.2
	normalUrgency          = 1.0
	imminentDays           = 3.0
	soonDays               = 7.0
)

// Holiday is a fixed-date occasion that usually needs a sitter.
type Holiday struct {
	Name     string
	Month    time.Month
	Day      int
	Hour     int
	Duration float64
}

// DefaultHolidays returns the built-in fixed-date calendar.
func DefaultHolidays() []Holiday {
	return []Holiday{
		{Name: "Valentine's Day", Month: time.February, Day: 14, Hour: 18, Duration: 4},
		{Name: "Independence Day", Month: time.July, Day: 4, Hour: 17, Duration: 5},
		{Name: "Halloween", Month: time.October, Day: 31, Hour: 17, Duration: 4},
		{Name: "Christmas Eve", Month: time.December, Day: 24, Hour: 18, Duration: 5},
		{Name: "New Year's Eve", Month: time.December, Day: 31, Hour: 20, Duration: 6},
	}
}

// Outdoor season runs from the first of May to the end of September.
var (
	outdoorSeasonStart = time.May
	outdoorSeasonEnd   = time.September
)

type Timeframe struct {
	Days int `json:"days"`
}

func (t Timeframe) days() int {
	switch {
	case t.Days <= 0:
		return DefaultHorizonDays
	case t.Days > MaxHorizonDays:
		return MaxHorizonDays
	default:
		return t.Days
	}
}

type Recommendation struct {
	ID                 string    `json:"id"`
	Kind               Kind      `json:"kind"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	SuggestedStart     time.Time `json:"suggested_start"`
	DurationHours      float64   `json:"duration_hours"`
	SuggestedSitterIDs []int64   `json:"suggested_sitter_ids"`
	Confidence         float64   `json:"confidence"`
	UrgencyMultiplier  float64   `json:"urgency_multiplier"`
	Priority           float64   `json:"priority"`
}

type Engine struct {
	now      func() time.Time
	holidays []Holiday
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithHolidays(holidays []Holiday) Option {
	return func(e *Engine) {
		e.holidays = holidays
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:      time.Now,
		holidays: DefaultHolidays(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenerateRecommendations projects upcoming bookings from a profile. Output is
// a pure function of the profile, the timeframe and the clock.
func (e *Engine) GenerateRecommendations(profile BehaviorProfile, timeframe Timeframe) []Recommendation {
	now := e.now()
	horizon := now.AddDate(0, 0, timeframe.days())

	var recs []Recommendation
	recs = append(recs, e.recurring(profile, now)...)
	recs = append(recs, e.seasonal(profile, now, timeframe.days())...)
	recs = append(recs, e.dateNights(profile, now)...)

	kept := recs[:0]
	for _, r := range recs {
		if r.SuggestedStart.After(horizon) {
			continue
		}
		kept = append(kept, r)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Priority > kept[j].Priority
	})
	if len(kept) > MaxRecommendations {
		kept = kept[:MaxRecommendations]
	}
	for _, r := range kept {
		recordRecommendation(r.Kind)
	}
	return kept
}

func (e *Engine) recurring(profile BehaviorProfile, now time.Time) []Recommendation {
	if len(profile.PreferredDays) == 0 {
		return nil
	}
	day := profile.PreferredDays[0]
	duration := profile.AverageDuration
	if duration <= 0 {
		duration = DefaultAverageDuration
	}

	first := nextWeekday(now, day, startHourFor(profile.PreferredTimeOfDay))
	recs := make([]Recommendation, 0, upcomingOccurrences)
	for i := 0; i < upcomingOccurrences; i++ {
		start := first.AddDate(0, 0, 7*i)
		recs = append(recs, newRecommendation(profile, now, KindRecurring,
			fmt.Sprintf("%s %s sitter", day, profile.PreferredTimeOfDay),
			fmt.Sprintf("You usually book on %ss. Reserve a sitter for %s.", day, start.Format("Jan 2")),
			start, duration))
	}
	return recs
}

func (e *Engine) seasonal(profile BehaviorProfile, now time.Time, days int) []Recommendation {
	lookahead := days
	if lookahead > SeasonalLookahead {
		lookahead = SeasonalLookahead
	}
	limit := now.AddDate(0, 0, lookahead)

	var recs []Recommendation
	for _, h := range e.holidays {
		start := nextDate(now, h.Month, h.Day, h.Hour)
		if start.After(limit) {
			continue
		}
		recs = append(recs, newRecommendation(profile, now, KindSeasonal,
			h.Name,
			fmt.Sprintf("Sitters book up quickly around %s. Plan ahead for %s.", h.Name, start.Format("Jan 2")),
			start, h.Duration))
	}

	if start := nextOutdoorDay(now); !start.After(limit) {
		recs = append(recs, newRecommendation(profile, now, KindSeasonal,
			"Outdoor day out",
			fmt.Sprintf("Outdoor season is on. Book a daytime sitter for %s.", start.Format("Mon Jan 2")),
			start, outdoorDuration))
	}
	return recs
}

func (e *Engine) dateNights(profile BehaviorProfile, now time.Time) []Recommendation {
	first := nextWeekday(now, time.Saturday, dateNightHour)
	recs := make([]Recommendation, 0, upcomingOccurrences)
	for i := 0; i < upcomingOccurrences; i++ {
		start := first.AddDate(0, 0, 7*i)
		recs = append(recs, newRecommendation(profile, now, KindDateNight,
			"Date night",
			fmt.Sprintf("Take a night out on %s.", start.Format("Mon Jan 2")),
			start, dateNightDuration))
	}
	return recs
}

func newRecommendation(profile BehaviorProfile, now time.Time, kind Kind, title, description string, start time.Time, duration float64) Recommendation {
	until := start.Sub(now)
	weeksAhead := int(until / (7 * 24 * time.Hour))
	confidence := Confidence(profile, weeksAhead)
	urgency := UrgencyMultiplier(until)

	sitters := make([]int64, len(profile.PreferredSitters))
	copy(sitters, profile.PreferredSitters)

	return Recommendation{
		ID:                 recommendationID(kind, title, start),
		Kind:               kind,
		Title:              title,
		Description:        description,
		SuggestedStart:     start,
		DurationHours:      duration,
		SuggestedSitterIDs: sitters,
		Confidence:         confidence,
		UrgencyMultiplier:  urgency,
		Priority:           confidence * urgency,
	}
}

// Confidence scores how likely a suggestion is to be taken up, in [0,100].
func Confidence(profile BehaviorProfile, weeksAhead int) float64 {
	c := baseConfidence
	switch profile.Frequency {
	case FrequencyWeekly:
		c += weeklyBonus
	case FrequencyBiWeekly:
		c += biWeeklyBonus
	}
	switch {
	case profile.CancellationRate < reliableCancellation:
		c += reliableBonus
	case profile.CancellationRate > unreliableCancellation:
		c -= unreliablePenalty
	}
	if weeksAhead > 0 {
		c -= weeklyDecay * float64(weeksAhead)
	}
	return math.Max(0, math.Min(100, c))
}

func UrgencyMultiplier(until time.Duration) float64 {
	days := until.Hours() / 24
	switch {
	case days <= imminentDays:
		return imminentUrgency
	case days <= soonDays:
		return soonUrgency
	default:
		return normalUrgency
	}
}

func recommendationID(kind Kind, title string, start time.Time) string {
	name := strings.Join([]string{string(kind), title, start.UTC().Format(time.RFC3339)}, "|")
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func startHourFor(band TimeOfDay) int {
	switch band {
	case Morning:
		return 9
	case Afternoon:
		return 13
	case Night:
		return 21
	default:
		return 18
	}
}

// nextWeekday returns the next occurrence of day strictly after now's date.
func nextWeekday(now time.Time, day time.Weekday, hour int) time.Time {
	ahead := (int(day) - int(now.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	d := now.AddDate(0, 0, ahead)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, now.Location())
}

// nextDate returns the next month/day occurrence after now.
func nextDate(now time.Time, month time.Month, day, hour int) time.Time {
	t := time.Date(now.Year(), month, day, hour, 0, 0, 0, now.Location())
	if !t.After(now) {
		t = t.AddDate(1, 0, 0)
	}
	return t
}

func inOutdoorSeason(t time.Time) bool {
	return t.Month() >= outdoorSeasonStart && t.Month() <= outdoorSeasonEnd
}

// nextOutdoorDay picks the next Saturday inside the outdoor season.
func nextOutdoorDay(now time.Time) time.Time {
	sat := nextWeekday(now, time.Saturday, outdoorStartHour)
	if inOutdoorSeason(sat) {
		return sat
	}
	opening := time.Date(now.Year(), outdoorSeasonStart, 1, outdoorStartHour, 0, 0, 0, now.Location())
	if !opening.After(now) {
		opening = opening.AddDate(1, 0, 0)
	}
	ahead := (int(time.Saturday) - int(opening.Weekday()) + 7) % 7
	return opening.AddDate(0, 0, ahead)
}
