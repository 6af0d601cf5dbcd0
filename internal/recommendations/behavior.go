// internal/recommendations/behavior.go

// Package recommendations derives a parent's booking habits and projects
// upcoming booking suggestions from them.
package recommendations

import (
	"math"
	"sort"
	"time"

	"github.com/imadgeboyega/sitter-backend/internal/matching"
)

type Frequency string

const (
	FrequencyWeekly     Frequency = "weekly"
	FrequencyBiWeekly   Frequency = "bi-weekly"
	FrequencyMonthly    Frequency = "monthly"
	FrequencyOccasional Frequency = "occasional"
)

type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
	Night     TimeOfDay = "night"
)

var timeOfDayOrder = []TimeOfDay{Morning, Afternoon, Evening, Night}

// Cold-start defaults.
const (
	DefaultAverageDuration = 3.0
	DefaultRatingThreshold = 4.5
	defaultBudgetMin       = 15.0
	defaultBudgetMax       = 25.0
	defaultBudgetAverage   = 20.0
)

const (
	preferredDayCount      = 3
	preferredSitterCount   = 3
	preferredSitterMinimum = 2
	recentWindow           = 7 * 24 * time.Hour
)

type BudgetStats struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

type BehaviorProfile struct {
	PreferredDays      []time.Weekday `json:"preferred_days"`
	PreferredTimeOfDay TimeOfDay      `json:"preferred_time_of_day"`
	AverageDuration    float64        `json:"average_duration"`
	Frequency          Frequency      `json:"frequency"`
	PreferredSitters   []int64        `json:"preferred_sitters"`
	Budget             BudgetStats    `json:"budget"`
	CancellationRate   float64        `json:"cancellation_rate"`
	RatingThreshold    float64        `json:"rating_threshold"`
	BookingsAnalyzed   int            `json:"bookings_analyzed"`
	ColdStart          bool           `json:"cold_start"`
}

// DefaultProfile is returned for parents with no booking history.
func DefaultProfile() BehaviorProfile {
	return BehaviorProfile{
		PreferredDays:      []time.Weekday{time.Friday, time.Saturday},
		PreferredTimeOfDay: Evening,
		AverageDuration:    DefaultAverageDuration,
		Frequency:          FrequencyWeekly,
		PreferredSitters:   []int64{},
		Budget: BudgetStats{
			Min:     defaultBudgetMin,
			Max:     defaultBudgetMax,
			Average: defaultBudgetAverage,
		},
		RatingThreshold: DefaultRatingThreshold,
		ColdStart:       true,
	}
}

// AnalyzeUserBehavior summarises a booking history. It never fails; an empty
// history yields DefaultProfile.
func (e *Engine) AnalyzeUserBehavior(history []matching.BookingRecord) BehaviorProfile {
	if len(history) == 0 {
		return DefaultProfile()
	}
	now := e.now()

	profile := BehaviorProfile{
		PreferredDays:      preferredDays(history),
		PreferredTimeOfDay: preferredTimeOfDay(history),
		AverageDuration:    averageDuration(history),
		Frequency:          classifyFrequency(history, now),
		PreferredSitters:   preferredSitters(history),
		Budget:             budgetStats(history),
		RatingThreshold:    ratingThreshold(history),
		BookingsAnalyzed:   len(history),
	}

	cancelled := 0
	for _, b := range history {
		if b.Status == matching.BookingCancelled {
			cancelled++
		}
	}
	profile.CancellationRate = float64(cancelled) / float64(len(history))

	return profile
}

// classifyFrequency is a step function over bookings started in the last
// seven days, falling back to total history size.
func classifyFrequency(history []matching.BookingRecord, now time.Time) Frequency {
	since := now.Add(-recentWindow)
	recent := 0
	for _, b := range history {
		if b.StartTime.After(since) && !b.StartTime.After(now) {
			recent++
		}
	}

	switch {
	case recent >= 2:
		return FrequencyWeekly
	case recent >= 1:
		return FrequencyBiWeekly
	case len(history) >= 3:
		return FrequencyMonthly
	default:
		return FrequencyOccasional
	}
}

func preferredDays(history []matching.BookingRecord) []time.Weekday {
	var counts [7]int
	for _, b := range history {
		counts[b.StartTime.Weekday()]++
	}

	days := make([]time.Weekday, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if counts[d] > 0 {
			days = append(days, d)
		}
	}
	sort.SliceStable(days, func(i, j int) bool {
		return counts[days[i]] > counts[days[j]]
	})
	if len(days) > preferredDayCount {
		days = days[:preferredDayCount]
	}
	return days
}

func timeOfDayFor(t time.Time) TimeOfDay {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return Morning
	case h >= 12 && h < 17:
		return Afternoon
	case h >= 17 && h < 21:
		return Evening
	default:
		return Night
	}
}

func preferredTimeOfDay(history []matching.BookingRecord) TimeOfDay {
	counts := map[TimeOfDay]int{}
	for _, b := range history {
		counts[timeOfDayFor(b.StartTime)]++
	}

	best := Evening
	bestCount := 0
	for _, band := range timeOfDayOrder {
		if counts[band] > bestCount {
			best, bestCount = band, counts[band]
		}
	}
	return best
}

func averageDuration(history []matching.BookingRecord) float64 {
	var total float64
	n := 0
	for _, b := range history {
		if h := b.DurationHours(); h > 0 {
			total += h
			n++
		}
	}
	if n == 0 {
		return DefaultAverageDuration
	}
	return round(total/float64(n), 2)
}

func preferredSitters(history []matching.BookingRecord) []int64 {
	counts := map[int64]int{}
	for _, b := range history {
		if b.Status == matching.BookingCompleted && b.SitterID != 0 {
			counts[b.SitterID]++
		}
	}

	sitters := []int64{}
	for id, n := range counts {
		if n >= preferredSitterMinimum {
			sitters = append(sitters, id)
		}
	}
	sort.Slice(sitters, func(i, j int) bool {
		if counts[sitters[i]] != counts[sitters[j]] {
			return counts[sitters[i]] > counts[sitters[j]]
		}
		return sitters[i] < sitters[j]
	})
	if len(sitters) > preferredSitterCount {
		sitters = sitters[:preferredSitterCount]
	}
	return sitters
}

func budgetStats(history []matching.BookingRecord) BudgetStats {
	stats := BudgetStats{Min: math.Inf(1), Max: math.Inf(-1)}
	var total float64
	n := 0
	for _, b := range history {
		if b.HourlyRate <= 0 {
			continue
		}
		stats.Min = math.Min(stats.Min, b.HourlyRate)
		stats.Max = math.Max(stats.Max, b.HourlyRate)
		total += b.HourlyRate
		n++
	}
	if n == 0 {
		return DefaultProfile().Budget
	}
	stats.Average = round(total/float64(n), 2)
	return stats
}

func ratingThreshold(history []matching.BookingRecord) float64 {
	var total float64
	n := 0
	for _, b := range history {
		if b.Rating != nil {
			total += *b.Rating
			n++
		}
	}
	if n == 0 {
		return DefaultRatingThreshold
	}
	return round(total/float64(n), 1)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
