package marketplace

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/imadgeboyega/sitter-backend/internal/matching"
	"github.com/imadgeboyega/sitter-backend/internal/pricing"
	"github.com/imadgeboyega/sitter-backend/internal/recommendations"
	"github.com/imadgeboyega/sitter-backend/internal/trust"
)

var (
	ErrSitterNotFound = errors.New("sitter not found")
	ErrNoBaseRate     = errors.New("sitter has no base rate")
)

const (
	// BehaviorHistoryWindow bounds how far back parent history is read.
	BehaviorHistoryWindow = 365 * 24 * time.Hour
	// DemandWindow is how far back pending requests count as open demand.
	DemandWindow = 24 * time.Hour
)

type Service interface {
	FindMatches(ctx context.Context, req *matching.MatchRequest, limit int) ([]matching.MatchResult, error)
	GetTrustScore(ctx context.Context, sitterID int64) (*trust.TrustScore, error)
	QuotePrice(ctx context.Context, sitterID int64, location matching.GeoPoint, start time.Time) (*pricing.Quote, error)
	GetBehaviorProfile(ctx context.Context, parentID int64) (*recommendations.BehaviorProfile, error)
	GetRecommendations(ctx context.Context, parentID int64, timeframe recommendations.Timeframe) ([]recommendations.Recommendation, error)
	RefreshDemand(ctx context.Context) error
}

// Engines are the scoring components the service delegates to.
type Engines struct {
	Matching        *matching.Engine
	Trust           *trust.Engine
	Pricing         *pricing.Engine
	Demand          *pricing.RegionalDemand
	Recommendations *recommendations.Engine
}

type service struct {
	repo     Repository
	cache    ResultCache
	cacheTTL time.Duration
	engines  Engines
	now      func() time.Time
}

func NewService(repo Repository, cache ResultCache, cacheTTL time.Duration, engines Engines) Service {
	if cache == nil || cacheTTL <= 0 {
		cache = NopCache()
	}
	return &service{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		engines:  engines,
		now:      time.Now,
	}
}

func (s *service) FindMatches(ctx context.Context, req *matching.MatchRequest, limit int) ([]matching.MatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	limit = matching.NormalizeLimit(limit, matching.DefaultSearchLimit)

	pool, err := s.repo.FindCandidates(ctx, &CandidateFilters{
		Box:     req.SearchBox(),
		MinRate: req.Budget.Min,
		MaxRate: req.Budget.Max,
	})
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	key, err := MatchCacheKey(req, limit, pool)
	if err != nil {
		return nil, err
	}
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Printf("match cache read failed: %v", err)
	} else if ok {
		recordCacheLookup(true)
		return cached, nil
	}
	recordCacheLookup(false)

	results, err := s.engines.Matching.FindBestMatches(req, pool, limit)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, results, s.cacheTTL); err != nil {
		log.Printf("match cache write failed: %v", err)
	}
	return results, nil
}

func (s *service) getSitter(ctx context.Context, sitterID int64) (*matching.Candidate, error) {
	c, err := s.repo.GetCandidate(ctx, sitterID)
	if err != nil {
		return nil, err
	}
	if c.Role != matching.RoleSitter {
		return nil, fmt.Errorf("%w: %w", matching.ErrNotFound, ErrSitterNotFound)
	}
	return c, nil
}

func (s *service) GetTrustScore(ctx context.Context, sitterID int64) (*trust.TrustScore, error) {
	c, err := s.getSitter(ctx, sitterID)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.GetSitterBookings(ctx, sitterID)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	reviews, err := s.repo.GetSitterReviews(ctx, sitterID)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	return s.engines.Trust.Calculate(c, history, reviews)
}

func (s *service) QuotePrice(ctx context.Context, sitterID int64, location matching.GeoPoint, start time.Time) (*pricing.Quote, error) {
	c, err := s.getSitter(ctx, sitterID)
	if err != nil {
		return nil, err
	}
	if c.HourlyRate <= 0 {
		return nil, fmt.Errorf("%w: %w", matching.ErrInvalidInput, ErrNoBaseRate)
	}
	return s.engines.Pricing.Quote(c, location, start)
}

func (s *service) parentHistory(ctx context.Context, parentID int64) ([]matching.BookingRecord, error) {
	history, err := s.repo.GetParentBookings(ctx, parentID, s.now().Add(-BehaviorHistoryWindow))
	if err != nil {
		return nil, fmt.Errorf("load parent bookings: %w", err)
	}
	return history, nil
}

func (s *service) GetBehaviorProfile(ctx context.Context, parentID int64) (*recommendations.BehaviorProfile, error) {
	history, err := s.parentHistory(ctx, parentID)
	if err != nil {
		return nil, err
	}
	profile := s.engines.Recommendations.AnalyzeUserBehavior(history)
	return &profile, nil
}

func (s *service) GetRecommendations(ctx context.Context, parentID int64, timeframe recommendations.Timeframe) ([]recommendations.Recommendation, error) {
	profile, err := s.GetBehaviorProfile(ctx, parentID)
	if err != nil {
		return nil, err
	}
	recs := s.engines.Recommendations.GenerateRecommendations(*profile, timeframe)
	if recs == nil {
		recs = []recommendations.Recommendation{}
	}
	return recs, nil
}

// RefreshDemand rebuilds the regional demand table from current bookings.
func (s *service) RefreshDemand(ctx context.Context) error {
	if s.engines.Demand == nil {
		return nil
	}
	now := s.now()
	samples, err := s.repo.RegionDemand(ctx, now.Add(-DemandWindow), s.engines.Demand.CellDegrees())
	if err != nil {
		return fmt.Errorf("load region demand: %w", err)
	}
	s.engines.Demand.Replace(samples, now)
	recordDemandRefresh(len(samples))
	return nil
}
