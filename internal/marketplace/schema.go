package marketplace

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id BIGSERIAL PRIMARY KEY,
        name VARCHAR(255) NOT NULL,
        role VARCHAR(20) NOT NULL CHECK (role IN ('parent', 'sitter', 'admin')),
        status VARCHAR(20) NOT NULL DEFAULT 'pending',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,

	`CREATE TABLE IF NOT EXISTS sitter_profiles (
        user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
        hourly_rate NUMERIC(10, 2) NOT NULL DEFAULT 0,
        experience_years NUMERIC(5, 2),
        rating NUMERIC(3, 2),
        review_count INT NOT NULL DEFAULT 0,
        response_rate NUMERIC(4, 3),
        latitude DOUBLE PRECISION,
        longitude DOUBLE PRECISION,
        service_radius_km DOUBLE PRECISION,
        skills TEXT[] NOT NULL DEFAULT '{}',
        languages TEXT[] NOT NULL DEFAULT '{}',
        certifications TEXT[] NOT NULL DEFAULT '{}',
        email_verified BOOLEAN NOT NULL DEFAULT FALSE,
        phone_verified BOOLEAN NOT NULL DEFAULT FALSE,
        background_check BOOLEAN NOT NULL DEFAULT FALSE,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,

	`CREATE INDEX IF NOT EXISTS idx_sitter_profiles_location ON sitter_profiles(latitude, longitude)`,

	`CREATE TABLE IF NOT EXISTS sitter_availability (
        id BIGSERIAL PRIMARY KEY,
        sitter_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        start_time TIMESTAMPTZ NOT NULL,
        end_time TIMESTAMPTZ NOT NULL CHECK (end_time > start_time)
    )`,

	`CREATE INDEX IF NOT EXISTS idx_sitter_availability_sitter ON sitter_availability(sitter_id, start_time)`,

	`CREATE TABLE IF NOT EXISTS bookings (
        id BIGSERIAL PRIMARY KEY,
        parent_id BIGINT NOT NULL REFERENCES users(id),
        sitter_id BIGINT REFERENCES users(id),
        start_time TIMESTAMPTZ NOT NULL,
        end_time TIMESTAMPTZ NOT NULL,
        status VARCHAR(20) NOT NULL DEFAULT 'pending',
        rating NUMERIC(3, 2),
        hourly_rate NUMERIC(10, 2) NOT NULL DEFAULT 0,
        latitude DOUBLE PRECISION,
        longitude DOUBLE PRECISION,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,

	`CREATE INDEX IF NOT EXISTS idx_bookings_sitter ON bookings(sitter_id, start_time DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_parent ON bookings(parent_id, start_time DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_pending ON bookings(created_at) WHERE status = 'pending'`,

	`CREATE TABLE IF NOT EXISTS reviews (
        id BIGSERIAL PRIMARY KEY,
        sitter_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
        reviewer_id BIGINT NOT NULL REFERENCES users(id),
        rating NUMERIC(3, 2) NOT NULL CHECK (rating BETWEEN 0 AND 5),
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,

	`CREATE INDEX IF NOT EXISTS idx_reviews_sitter ON reviews(sitter_id, created_at DESC)`,
}

// Migrate creates the tables the repository reads from if they are missing
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	log.Printf("   - %d schema statements applied", len(migrations))
	return nil
}
