package marketplace

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/sitter-backend/internal/matching"
	"github.com/imadgeboyega/sitter-backend/internal/pricing"
	"github.com/imadgeboyega/sitter-backend/internal/recommendations"
	"github.com/imadgeboyega/sitter-backend/internal/trust"
)

func TestFindMatches(t *testing.T) {
	weak := sitter(2)
	weak.HourlyRate = 50 // outside the budget band
	repo := newFakeRepo(sitter(1), weak)
	svc := newTestService(t, repo, nil)

	req := searchRequest()
	results, err := svc.FindMatches(context.Background(), req, 0)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].CandidateID)
	assert.Greater(t, results[0].OverallScore, 0.9)

	require.NotNil(t, repo.lastFilters)
	assert.Equal(t, req.SearchBox(), repo.lastFilters.Box)
	assert.Equal(t, 15.0, repo.lastFilters.MinRate)
	assert.Equal(t, 20.0, repo.lastFilters.MaxRate)
}

func TestFindMatchesRejectsInvalidCriteria(t *testing.T) {
	repo := newFakeRepo(sitter(1))
	svc := newTestService(t, repo, nil)

	req := searchRequest()
	req.Budget = matching.Budget{Min: 30, Max: 20}

	_, err := svc.FindMatches(context.Background(), req, 0)
	assert.ErrorIs(t, err, matching.ErrInvalidInput)
	assert.Zero(t, repo.findCalls)
}

func TestFindMatchesRepositoryError(t *testing.T) {
	repo := newFakeRepo()
	repo.findErr = errors.New("connection reset")
	svc := newTestService(t, repo, nil)

	_, err := svc.FindMatches(context.Background(), searchRequest(), 0)
	require.Error(t, err)
	assert.False(t, errors.Is(err, matching.ErrInvalidInput))
	assert.False(t, errors.Is(err, matching.ErrNotFound))
}

func TestFindMatchesUsesCache(t *testing.T) {
	repo := newFakeRepo(sitter(1))
	cache := newMemoryCache()
	svc := newTestService(t, repo, cache)
	ctx := context.Background()

	first, err := svc.FindMatches(ctx, searchRequest(), 5)
	require.NoError(t, err)
	second, err := svc.FindMatches(ctx, searchRequest(), 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 1, cache.sets)

	// A profile update changes the pool snapshot and bypasses the old entry.
	repo.sitters[1].UpdatedAt = testNow
	_, err = svc.FindMatches(ctx, searchRequest(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 2, cache.sets)
}

func TestFindMatchesIgnoresCacheFailures(t *testing.T) {
	svc := newTestService(t, newFakeRepo(sitter(1)), brokenCache{})

	results, err := svc.FindMatches(context.Background(), searchRequest(), 0)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestMatchCacheKey(t *testing.T) {
	pool := []*matching.Candidate{sitter(1), sitter(2)}

	a, err := MatchCacheKey(searchRequest(), 10, pool)
	require.NoError(t, err)
	b, err := MatchCacheKey(searchRequest(), 10, pool)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Contains(t, a, "match:")

	otherLimit, _ := MatchCacheKey(searchRequest(), 11, pool)
	assert.NotEqual(t, a, otherLimit)

	reordered, _ := MatchCacheKey(searchRequest(), 10, []*matching.Candidate{pool[1], pool[0]})
	assert.NotEqual(t, a, reordered)

	req := searchRequest()
	req.Budget.Max = 25
	otherCriteria, _ := MatchCacheKey(req, 10, pool)
	assert.NotEqual(t, a, otherCriteria)
}

func TestFindMatchesAcrossAntimeridian(t *testing.T) {
	east := sitter(1)
	east.Location = &matching.GeoPoint{Latitude: -17, Longitude: -179.98}
	far := sitter(2)
	far.Location = &matching.GeoPoint{Latitude: -17, Longitude: 170}
	repo := newFakeRepo(east, far)
	svc := newTestService(t, repo, nil)

	req := searchRequest()
	req.Location = matching.GeoPoint{Latitude: -17, Longitude: 179.98}
	req.MaxDistanceKm = 25

	results, err := svc.FindMatches(context.Background(), req, 10)
	require.NoError(t, err)
	require.True(t, repo.lastFilters.Box.WrapsAntimeridian())
	require.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].CandidateID)
}

func TestMatchCacheKeyCoversAvailability(t *testing.T) {
	req := searchRequest()
	without := sitter(1)
	without.Availability = nil
	with := sitter(1)
	with.Availability = []matching.TimeWindow{req.Window}

	a, err := MatchCacheKey(req, 10, []*matching.Candidate{without})
	require.NoError(t, err)
	b, err := MatchCacheKey(req, 10, []*matching.Candidate{with})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	shifted := sitter(1)
	shifted.Availability = []matching.TimeWindow{{Start: req.Window.Start.Add(time.Hour), End: req.Window.End}}
	c, err := MatchCacheKey(req, 10, []*matching.Candidate{shifted})
	require.NoError(t, err)
	assert.NotEqual(t, b, c)
}

func TestGetTrustScore(t *testing.T) {
	parent := sitter(3)
	parent.Role = matching.RoleParent
	repo := newFakeRepo(sitter(1), parent)
	repo.bookings[1] = []matching.BookingRecord{
		{SitterID: 1, Status: matching.BookingCompleted},
		{SitterID: 1, Status: matching.BookingCompleted},
	}
	repo.reviews[1] = []matching.Review{{SitterID: 1, Rating: 5}}
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	score, err := svc.GetTrustScore(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), score.CandidateID)
	assert.Equal(t, trust.RiskLow, score.RiskLevel)
	assert.Equal(t, 1.0, score.Factors.Rating)

	_, err = svc.GetTrustScore(ctx, 99)
	assert.ErrorIs(t, err, matching.ErrNotFound)

	_, err = svc.GetTrustScore(ctx, 3)
	assert.ErrorIs(t, err, matching.ErrNotFound)
	assert.ErrorIs(t, err, ErrSitterNotFound)
}

func TestQuotePrice(t *testing.T) {
	noRate := sitter(2)
	noRate.HourlyRate = 0
	repo := newFakeRepo(sitter(1), noRate)
	svc := newTestService(t, repo, nil)
	ctx := context.Background()
	start := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)

	quote, err := svc.QuotePrice(ctx, 1, nyc, start)
	require.NoError(t, err)
	assert.Equal(t, pricing.BandStandard, quote.TimeBand)
	assert.InDelta(t, 22.5, quote.HourlyRate, 1e-9)

	repo.samples = []pricing.RegionSample{{
		Cell:          svc.engines.Demand.CellFor(nyc),
		OpenRequests:  9,
		ActiveSitters: 1,
	}}
	require.NoError(t, svc.RefreshDemand(ctx))

	quote, err = svc.QuotePrice(ctx, 1, nyc, start)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, quote.DemandMultiplier, 1e-9)
	assert.InDelta(t, 32.5, quote.HourlyRate, 1e-9)

	_, err = svc.QuotePrice(ctx, 2, nyc, start)
	assert.ErrorIs(t, err, matching.ErrInvalidInput)
	assert.ErrorIs(t, err, ErrNoBaseRate)

	_, err = svc.QuotePrice(ctx, 42, nyc, start)
	assert.ErrorIs(t, err, matching.ErrNotFound)
}

func TestRefreshDemand(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, nil)

	require.NoError(t, svc.RefreshDemand(context.Background()))

	assert.Equal(t, 1, repo.demandCalls)
	assert.Equal(t, testNow.Add(-DemandWindow), repo.lastSince)
	assert.Equal(t, 0.5, repo.lastCellDegrees)
	assert.Equal(t, testNow, svc.engines.Demand.UpdatedAt())
}

func TestGetBehaviorProfileColdStart(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo, nil)

	profile, err := svc.GetBehaviorProfile(context.Background(), 5)
	require.NoError(t, err)

	assert.True(t, profile.ColdStart)
	assert.Equal(t, testNow.Add(-BehaviorHistoryWindow), repo.lastSince)
}

func TestGetRecommendations(t *testing.T) {
	repo := newFakeRepo()
	repo.parentBookings[5] = []matching.BookingRecord{
		{ParentID: 5, SitterID: 1, StartTime: testNow.AddDate(0, 0, -5), EndTime: testNow.AddDate(0, 0, -5).Add(3 * time.Hour), Status: matching.BookingCompleted, HourlyRate: 20},
	}
	svc := newTestService(t, repo, nil)

	recs, err := svc.GetRecommendations(context.Background(), 5, recommendations.Timeframe{Days: 30})
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	for i := 1; i < len(recs); i++ {
		assert.LessOrEqual(t, recs[i].Priority, recs[i-1].Priority)
	}
}
