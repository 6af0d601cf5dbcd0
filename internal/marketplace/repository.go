package marketplace

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/imadgeboyega/sitter-backend/internal/matching"
	"github.com/imadgeboyega/sitter-backend/internal/pricing"
)

const (
	maxCandidatePool = 500
	maxHistoryRows   = 500
)

// CandidateFilters narrow the candidate pool before scoring. The engine
// re-applies the same constraints, so these only need to be a superset.
type CandidateFilters struct {
	Box     matching.BoundingBox
	MinRate float64
	MaxRate float64
	Limit   int
}

type Repository interface {
	// Sitters
	GetCandidate(ctx context.Context, sitterID int64) (*matching.Candidate, error)
	FindCandidates(ctx context.Context, filters *CandidateFilters) ([]*matching.Candidate, error)

	// History
	GetSitterBookings(ctx context.Context, sitterID int64) ([]matching.BookingRecord, error)
	GetParentBookings(ctx context.Context, parentID int64, since time.Time) ([]matching.BookingRecord, error)
	GetSitterReviews(ctx context.Context, sitterID int64) ([]matching.Review, error)

	// Demand
	RegionDemand(ctx context.Context, since time.Time, cellDegrees float64) ([]pricing.RegionSample, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

type sitterRow struct {
	ID              int64           `db:"id"`
	Name            string          `db:"name"`
	Role            string          `db:"role"`
	Status          string          `db:"status"`
	HourlyRate      float64         `db:"hourly_rate"`
	ExperienceYears sql.NullFloat64 `db:"experience_years"`
	Rating          sql.NullFloat64 `db:"rating"`
	ReviewCount     int             `db:"review_count"`
	ResponseRate    sql.NullFloat64 `db:"response_rate"`
	Latitude        sql.NullFloat64 `db:"latitude"`
	Longitude       sql.NullFloat64 `db:"longitude"`
	ServiceRadiusKm sql.NullFloat64 `db:"service_radius_km"`
	Skills          pq.StringArray  `db:"skills"`
	Languages       pq.StringArray  `db:"languages"`
	Certifications  pq.StringArray  `db:"certifications"`
	UpdatedAt       time.Time       `db:"updated_at"`
	matching.Verification
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func (r sitterRow) candidate() *matching.Candidate {
	c := &matching.Candidate{
		ID:              r.ID,
		Name:            r.Name,
		Role:            matching.Role(r.Role),
		Status:          matching.Status(r.Status),
		HourlyRate:      r.HourlyRate,
		ExperienceYears: nullable(r.ExperienceYears),
		Verification:    r.Verification,
		Rating:          nullable(r.Rating),
		ReviewCount:     r.ReviewCount,
		ResponseRate:    nullable(r.ResponseRate),
		ServiceRadiusKm: nullable(r.ServiceRadiusKm),
		Skills:          []string(r.Skills),
		Languages:       []string(r.Languages),
		Certifications:  []string(r.Certifications),
		UpdatedAt:       r.UpdatedAt,
	}
	if r.Latitude.Valid && r.Longitude.Valid {
		c.Location = &matching.GeoPoint{Latitude: r.Latitude.Float64, Longitude: r.Longitude.Float64}
	}
	return c
}

const sitterColumns = `
        u.id, u.name, u.role, u.status,
        sp.hourly_rate, sp.experience_years, sp.rating, sp.review_count,
        sp.response_rate, sp.latitude, sp.longitude, sp.service_radius_km,
        sp.skills, sp.languages, sp.certifications,
        sp.email_verified, sp.phone_verified, sp.background_check,
        GREATEST(u.updated_at, sp.updated_at) AS updated_at
    FROM users u
    JOIN sitter_profiles sp ON sp.user_id = u.id`

func (r *postgresRepository) GetCandidate(ctx context.Context, sitterID int64) (*matching.Candidate, error) {
	var row sitterRow
	query := `SELECT` + sitterColumns + `
        WHERE u.id = $1`

	err := r.db.GetContext(ctx, &row, query, sitterID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, matching.NotFoundf("sitter %d", sitterID)
	}
	if err != nil {
		return nil, err
	}

	candidates := []*matching.Candidate{row.candidate()}
	if err := r.attachAvailability(ctx, candidates); err != nil {
		return nil, err
	}
	return candidates[0], nil
}

func (r *postgresRepository) FindCandidates(ctx context.Context, filters *CandidateFilters) ([]*matching.Candidate, error) {
	limit := filters.Limit
	if limit <= 0 || limit > maxCandidatePool {
		limit = maxCandidatePool
	}

	query := `SELECT` + sitterColumns + `
        WHERE u.role = 'sitter'
          AND u.status IN ('active', 'verified')
          AND (sp.hourly_rate <= 0 OR sp.hourly_rate BETWEEN $1 AND $2)
          AND (sp.latitude IS NULL OR sp.longitude IS NULL OR
               (sp.latitude BETWEEN $3 AND $4 AND
                (sp.longitude BETWEEN $5 AND $6 OR
                 ($5::float8 > $6::float8 AND (sp.longitude >= $5 OR sp.longitude <= $6)))))
        ORDER BY u.id
        LIMIT $7`

	var rows []sitterRow
	err := r.db.SelectContext(ctx, &rows, query,
		filters.MinRate, filters.MaxRate,
		filters.Box.MinLat, filters.Box.MaxLat,
		filters.Box.MinLng, filters.Box.MaxLng,
		limit,
	)
	if err != nil {
		return nil, err
	}

	candidates := make([]*matching.Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, row.candidate())
	}
	if err := r.attachAvailability(ctx, candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

type availabilityRow struct {
	SitterID  int64     `db:"sitter_id"`
	StartTime time.Time `db:"start_time"`
	EndTime   time.Time `db:"end_time"`
}

// attachAvailability loads upcoming slots for all candidates in one query.
func (r *postgresRepository) attachAvailability(ctx context.Context, candidates []*matching.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	byID := make(map[int64]*matching.Candidate, len(candidates))
	ids := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}

	query := `
        SELECT sitter_id, start_time, end_time
        FROM sitter_availability
        WHERE sitter_id = ANY($1) AND end_time > NOW()
        ORDER BY sitter_id, start_time`

	var slots []availabilityRow
	if err := r.db.SelectContext(ctx, &slots, query, pq.Array(ids)); err != nil {
		return err
	}
	for _, s := range slots {
		c := byID[s.SitterID]
		c.Availability = append(c.Availability, matching.TimeWindow{Start: s.StartTime, End: s.EndTime})
	}
	return nil
}

const bookingColumns = `
        SELECT id, parent_id, sitter_id, start_time, end_time, status, rating, hourly_rate
        FROM bookings`

func (r *postgresRepository) GetSitterBookings(ctx context.Context, sitterID int64) ([]matching.BookingRecord, error) {
	bookings := []matching.BookingRecord{}
	query := bookingColumns + `
        WHERE sitter_id = $1
        ORDER BY start_time DESC
        LIMIT $2`

	err := r.db.SelectContext(ctx, &bookings, query, sitterID, maxHistoryRows)
	return bookings, err
}

func (r *postgresRepository) GetParentBookings(ctx context.Context, parentID int64, since time.Time) ([]matching.BookingRecord, error) {
	bookings := []matching.BookingRecord{}
	query := bookingColumns + `
        WHERE parent_id = $1 AND start_time >= $2
        ORDER BY start_time DESC
        LIMIT $3`

	err := r.db.SelectContext(ctx, &bookings, query, parentID, since, maxHistoryRows)
	return bookings, err
}

func (r *postgresRepository) GetSitterReviews(ctx context.Context, sitterID int64) ([]matching.Review, error) {
	reviews := []matching.Review{}
	query := `
        SELECT id, sitter_id, reviewer_id, rating, created_at
        FROM reviews
        WHERE sitter_id = $1
        ORDER BY created_at DESC
        LIMIT $2`

	err := r.db.SelectContext(ctx, &reviews, query, sitterID, maxHistoryRows)
	return reviews, err
}

// RegionDemand counts pending requests created since `since` and active
// sitters per grid cell. Cell indexes use the same floor division as
// pricing.RegionalDemand.CellFor.
func (r *postgresRepository) RegionDemand(ctx context.Context, since time.Time, cellDegrees float64) ([]pricing.RegionSample, error) {
	query := `
        WITH open_requests AS (
            SELECT FLOOR(latitude / $2)::int AS cell_lat,
                   FLOOR(longitude / $2)::int AS cell_lng,
                   COUNT(*) AS open_requests
            FROM bookings
            WHERE status = 'pending' AND created_at >= $1
              AND latitude IS NOT NULL AND longitude IS NOT NULL
            GROUP BY 1, 2
        ), supply AS (
            SELECT FLOOR(sp.latitude / $2)::int AS cell_lat,
                   FLOOR(sp.longitude / $2)::int AS cell_lng,
                   COUNT(*) AS active_sitters
            FROM sitter_profiles sp
            JOIN users u ON u.id = sp.user_id
            WHERE u.role = 'sitter' AND u.status IN ('active', 'verified')
              AND sp.latitude IS NOT NULL AND sp.longitude IS NOT NULL
            GROUP BY 1, 2
        )
        SELECT COALESCE(o.cell_lat, s.cell_lat) AS cell_lat,
               COALESCE(o.cell_lng, s.cell_lng) AS cell_lng,
               COALESCE(o.open_requests, 0) AS open_requests,
               COALESCE(s.active_sitters, 0) AS active_sitters
        FROM open_requests o
        FULL OUTER JOIN supply s ON o.cell_lat = s.cell_lat AND o.cell_lng = s.cell_lng`

	samples := []pricing.RegionSample{}
	err := r.db.SelectContext(ctx, &samples, query, since, cellDegrees)
	return samples, err
}
