package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/imadgeboyega/sitter-backend/internal/matching"
)

// Fixture is an offline snapshot of the marketplace.
type Fixture struct {
	Request    *matching.MatchRequest   `json:"request"`
	Candidates []*matching.Candidate    `json:"candidates"`
	Bookings   []matching.BookingRecord `json:"bookings"`
	Reviews    []matching.Review        `json:"reviews"`
}

func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Candidate returns the sitter with the given id.
func (f *Fixture) Candidate(id int64) (*matching.Candidate, error) {
	for _, c := range f.Candidates {
		if c.ID == id && c.Role == matching.RoleSitter {
			return c, nil
		}
	}
	return nil, matching.NotFoundf("sitter %d", id)
}

func (f *Fixture) SitterBookings(sitterID int64) []matching.BookingRecord {
	var out []matching.BookingRecord
	for _, b := range f.Bookings {
		if b.SitterID == sitterID {
			out = append(out, b)
		}
	}
	return out
}

// ParentBookings returns the bookings of one parent, or all of them when
// parentID is 0.
func (f *Fixture) ParentBookings(parentID int64) []matching.BookingRecord {
	if parentID == 0 {
		return f.Bookings
	}
	var out []matching.BookingRecord
	for _, b := range f.Bookings {
		if b.ParentID == parentID {
			out = append(out, b)
		}
	}
	return out
}

func (f *Fixture) SitterReviews(sitterID int64) []matching.Review {
	var out []matching.Review
	for _, r := range f.Reviews {
		if r.SitterID == sitterID {
			out = append(out, r)
		}
	}
	return out
}
