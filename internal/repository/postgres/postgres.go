package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartcity/routeplanner/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS traffic_samples (
		id                  BIGSERIAL PRIMARY KEY,
		timestamp           TIMESTAMPTZ NOT NULL,
		origin              TEXT NOT NULL,
		destination         TEXT NOT NULL,
		origin_lat          DOUBLE PRECISION NOT NULL,
		origin_lng          DOUBLE PRECISION NOT NULL,
		destination_lat     DOUBLE PRECISION NOT NULL,
		destination_lng     DOUBLE PRECISION NOT NULL,
		travel_time         INTEGER NOT NULL,
		traffic_time        INTEGER NOT NULL,
		hour                SMALLINT NOT NULL,
		day_of_week         SMALLINT NOT NULL,
		distance            DOUBLE PRECISION NOT NULL
	);
	CREATE INDEX IF NOT EXISTS traffic_samples_timestamp_idx ON traffic_samples (timestamp);

	CREATE TABLE IF NOT EXISTS prediction_logs (
		id                  BIGSERIAL PRIMARY KEY,
		origin              TEXT NOT NULL,
		destination         TEXT NOT NULL,
		origin_lat          DOUBLE PRECISION NOT NULL,
		origin_lng          DOUBLE PRECISION NOT NULL,
		destination_lat     DOUBLE PRECISION NOT NULL,
		destination_lng     DOUBLE PRECISION NOT NULL,
		predicted_seconds   DOUBLE PRECISION,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	);
`

// PostgresRepository implements domain.DataRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the tables if they do not exist yet
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: failed to create schema: %w", err)
	}
	return nil
}

// SaveTrafficSample persists a collector observation to PostgreSQL
func (r *PostgresRepository) SaveTrafficSample(ctx context.Context, s domain.TrafficSample) error {
	query := `
		INSERT INTO traffic_samples (
			timestamp, origin, destination, origin_lat, origin_lng,
			destination_lat, destination_lng, travel_time, traffic_time,
			hour, day_of_week, distance
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		s.Timestamp, s.Origin, s.Destination, s.OriginCoords.Latitude, s.OriginCoords.Longitude,
		s.DestinationCoords.Latitude, s.DestinationCoords.Longitude, s.TravelTimeSeconds, s.TrafficTimeSeconds,
		s.Hour, s.DayOfWeek, s.DistanceKm,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save traffic sample: %w", err)
	}

	return nil
}

// GetTrafficSamples retrieves clean samples from PostgreSQL
func (r *PostgresRepository) GetTrafficSamples(ctx context.Context, from, to time.Time) ([]domain.TrafficSample, error) {
	query := `
		SELECT timestamp, origin, destination, origin_lat, origin_lng,
			   destination_lat, destination_lng, travel_time, traffic_time,
			   hour, day_of_week, distance
		FROM traffic_samples
		WHERE timestamp BETWEEN $1 AND $2
		  AND travel_time > 0 AND traffic_time > 0 AND distance > $3
		ORDER BY timestamp DESC
		LIMIT 1000
	`

	rows, err := r.pool.Query(ctx, query, from, to, domain.MinSampleDistanceKm)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query traffic samples: %w", err)
	}
	defer rows.Close()

	var results []domain.TrafficSample
	for rows.Next() {
		var s domain.TrafficSample
		err := rows.Scan(
			&s.Timestamp, &s.Origin, &s.Destination, &s.OriginCoords.Latitude, &s.OriginCoords.Longitude,
			&s.DestinationCoords.Latitude, &s.DestinationCoords.Longitude, &s.TravelTimeSeconds, &s.TrafficTimeSeconds,
			&s.Hour, &s.DayOfWeek, &s.DistanceKm,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan traffic sample row: %w", err)
		}
		results = append(results, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to iterate traffic samples: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

// SavePredictionLog persists a prediction request/response to PostgreSQL
func (r *PostgresRepository) SavePredictionLog(ctx context.Context, req domain.PredictionRequest, resp domain.PredictionResponse) error {
	query := `
		INSERT INTO prediction_logs (
			origin, destination, origin_lat, origin_lng,
			destination_lat, destination_lng, predicted_seconds
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	// predicted_seconds stays NULL when the service returned no value
	_, err := r.pool.Exec(ctx, query,
		req.Origin, req.Destination, req.OriginCoords.Latitude, req.OriginCoords.Longitude,
		req.DestinationCoords.Latitude, req.DestinationCoords.Longitude, resp.PredictedTrafficTime,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save prediction log: %w", err)
	}

	return nil
}
