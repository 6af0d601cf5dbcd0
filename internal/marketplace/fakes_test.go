package marketplace

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/sitter-backend/internal/matching"
	"github.com/imadgeboyega/sitter-backend/internal/pricing"
	"github.com/imadgeboyega/sitter-backend/internal/recommendations"
	"github.com/imadgeboyega/sitter-backend/internal/trust"
)

// Wednesday 09:00 UTC.
var testNow = time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

var windowStart = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

var nyc = matching.GeoPoint{Latitude: 40.7128, Longitude: -74.0060}

func ptr[T any](v T) *T { return &v }

func sitter(id int64) *matching.Candidate {
	loc := nyc
	return &matching.Candidate{
		ID:              id,
		Name:            "sitter",
		Role:            matching.RoleSitter,
		Status:          matching.StatusActive,
		HourlyRate:      20,
		ExperienceYears: ptr(3.0),
		Verification:    matching.Verification{Email: true, Phone: true, BackgroundCheck: true},
		Rating:          ptr(4.9),
		ResponseRate:    ptr(0.95),
		Location:        &loc,
		Certifications:  []string{"CPR"},
		Languages:       []string{"English"},
		Availability:    []matching.TimeWindow{{Start: windowStart, End: windowStart.Add(4 * time.Hour)}},
		UpdatedAt:       testNow.Add(-time.Hour),
	}
}

func searchRequest() *matching.MatchRequest {
	return &matching.MatchRequest{
		Location:      nyc,
		MaxDistanceKm: 10,
		Window:        matching.TimeWindow{Start: windowStart, End: windowStart.Add(4 * time.Hour)},
		Budget:        matching.Budget{Min: 15, Max: 20},
	}
}

type fakeRepo struct {
	mu sync.Mutex

	sitters        map[int64]*matching.Candidate
	bookings       map[int64][]matching.BookingRecord
	reviews        map[int64][]matching.Review
	parentBookings map[int64][]matching.BookingRecord
	samples        []pricing.RegionSample
	findErr        error

	findCalls       int
	demandCalls     int
	lastFilters     *CandidateFilters
	lastSince       time.Time
	lastCellDegrees float64
}

func newFakeRepo(sitters ...*matching.Candidate) *fakeRepo {
	r := &fakeRepo{
		sitters:        map[int64]*matching.Candidate{},
		bookings:       map[int64][]matching.BookingRecord{},
		reviews:        map[int64][]matching.Review{},
		parentBookings: map[int64][]matching.BookingRecord{},
	}
	for _, s := range sitters {
		r.sitters[s.ID] = s
	}
	return r
}

func (r *fakeRepo) GetCandidate(_ context.Context, sitterID int64) (*matching.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.sitters[sitterID]
	if !ok {
		return nil, matching.NotFoundf("sitter %d", sitterID)
	}
	return c, nil
}

func (r *fakeRepo) FindCandidates(_ context.Context, filters *CandidateFilters) ([]*matching.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	r.lastFilters = filters
	if r.findErr != nil {
		return nil, r.findErr
	}

	pool := make([]*matching.Candidate, 0, len(r.sitters))
	for _, c := range r.sitters {
		if c.Location != nil && !filters.Box.Contains(*c.Location) {
			continue
		}
		pool = append(pool, c)
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool, nil
}

func (r *fakeRepo) GetSitterBookings(_ context.Context, sitterID int64) ([]matching.BookingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bookings[sitterID], nil
}

func (r *fakeRepo) GetParentBookings(_ context.Context, parentID int64, since time.Time) ([]matching.BookingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSince = since
	return r.parentBookings[parentID], nil
}

func (r *fakeRepo) GetSitterReviews(_ context.Context, sitterID int64) ([]matching.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reviews[sitterID], nil
}

func (r *fakeRepo) RegionDemand(_ context.Context, since time.Time, cellDegrees float64) ([]pricing.RegionSample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.demandCalls++
	r.lastSince = since
	r.lastCellDegrees = cellDegrees
	return r.samples, nil
}

func (r *fakeRepo) demandCallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.demandCalls
}

type memoryCache struct {
	entries map[string][]matching.MatchResult
	hits    int
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]matching.MatchResult{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]matching.MatchResult, bool, error) {
	r, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return r, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, results []matching.MatchResult, _ time.Duration) error {
	c.entries[key] = results
	c.sets++
	return nil
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]matching.MatchResult, bool, error) {
	return nil, false, errors.New("redis down")
}

func (brokenCache) Set(context.Context, string, []matching.MatchResult, time.Duration) error {
	return errors.New("redis down")
}

func testEngines(t *testing.T) Engines {
	t.Helper()
	matcher, err := matching.NewEngine(matching.DefaultWeights())
	require.NoError(t, err)
	trustEngine, err := trust.NewEngine(trust.DefaultWeights())
	require.NoError(t, err)
	demand := pricing.NewRegionalDemand(0.5)

	return Engines{
		Matching:        matcher,
		Trust:           trustEngine,
		Pricing:         pricing.NewEngine(demand),
		Demand:          demand,
		Recommendations: recommendations.NewEngine(recommendations.WithClock(func() time.Time { return testNow })),
	}
}

func newTestService(t *testing.T, repo Repository, cache ResultCache) *service {
	t.Helper()
	svc := NewService(repo, cache, time.Minute, testEngines(t)).(*service)
	svc.now = func() time.Time { return testNow }
	return svc
}
