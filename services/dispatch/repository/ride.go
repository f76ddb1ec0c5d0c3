package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/ridewave/dispatch/internal/pkg/models"
	"github.com/ridewave/dispatch/services/dispatch"
)

// RideRepo owns the ride_requests table.
type RideRepo struct {
	cfg *models.Config
	db  *sqlx.DB
}

// NewRideRepository creates a new ride request repository
func NewRideRepository(cfg *models.Config, db *sqlx.DB) *RideRepo {
	return &RideRepo{cfg: cfg, db: db}
}

const rideColumns = `
	id, rider_id, rider_name,
	pickup_latitude, pickup_longitude, pickup_address,
	dropoff_latitude, dropoff_longitude, dropoff_address,
	vehicle_type, fare, status, driver_id, notified_drivers,
	created_at, updated_at`

// CreateRequest inserts a pending request with its fan-out candidate
// set. The id is the client-supplied booking id; reuse fails on the
// primary key.
func (r *RideRepo) CreateRequest(ctx context.Context, req *models.RideRequest) error {
	query := `
		INSERT INTO ride_requests (
			id, rider_id, rider_name,
			pickup_latitude, pickup_longitude, pickup_address,
			dropoff_latitude, dropoff_longitude, dropoff_address,
			vehicle_type, fare, status, notified_drivers,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	now := time.Now()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	if req.Status == "" {
		req.Status = models.RideStatusPending
	}

	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.RiderID,
		req.RiderName,
		req.Pickup.Latitude,
		req.Pickup.Longitude,
		req.Pickup.Address,
		req.Dropoff.Latitude,
		req.Dropoff.Longitude,
		req.Dropoff.Address,
		req.VehicleType,
		req.Fare,
		req.Status,
		req.NotifiedDrivers,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ride request: %w", err)
	}
	return nil
}

// ClaimRequest atomically transitions the request from pending to
// accepted for the given driver. Exactly one concurrent claim can
// succeed; losers get ErrRideNotAvailable, an unknown booking id gets
// ErrNotFound. The returned request carries the notified set, frozen by
// the transition.
func (r *RideRepo) ClaimRequest(ctx context.Context, bookingID, driverID string) (*models.RideRequest, error) {
	query := `
		UPDATE ride_requests
		SET status = $3, driver_id = $2, updated_at = $4
		WHERE id = $1 AND status = $5
		RETURNING ` + rideColumns

	row := r.db.QueryRowContext(ctx, query,
		bookingID, driverID, models.RideStatusAccepted, time.Now(), models.RideStatusPending)

	req, err := scanRide(row)
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to claim ride request: %w", err)
	}

	// The claim missed: distinguish a lost race from an unknown booking.
	var status string
	err = r.db.QueryRowContext(ctx, `SELECT status FROM ride_requests WHERE id = $1`, bookingID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dispatch.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check ride request status: %w", err)
	}
	return nil, dispatch.ErrRideNotAvailable
}

// RemoveNotifiedDriver drops a declining driver from the notified set of
// a still-pending request. It has no other effect on the request.
func (r *RideRepo) RemoveNotifiedDriver(ctx context.Context, bookingID, driverID string) error {
	query := `
		UPDATE ride_requests
		SET notified_drivers = array_remove(notified_drivers, $2), updated_at = $3
		WHERE id = $1 AND status = $4
	`
	_, err := r.db.ExecContext(ctx, query, bookingID, driverID, time.Now(), models.RideStatusPending)
	if err != nil {
		return fmt.Errorf("failed to remove notified driver: %w", err)
	}
	return nil
}

// GetRequest fetches one request by booking id.
func (r *RideRepo) GetRequest(ctx context.Context, bookingID string) (*models.RideRequest, error) {
	query := `SELECT ` + rideColumns + ` FROM ride_requests WHERE id = $1`
	req, err := scanRide(r.db.QueryRowContext(ctx, query, bookingID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dispatch.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ride request: %w", err)
	}
	return req, nil
}

func scanRide(row *sql.Row) (*models.RideRequest, error) {
	req := &models.RideRequest{}
	var driverID sql.NullString
	var notified pq.StringArray
	err := row.Scan(
		&req.ID,
		&req.RiderID,
		&req.RiderName,
		&req.Pickup.Latitude,
		&req.Pickup.Longitude,
		&req.Pickup.Address,
		&req.Dropoff.Latitude,
		&req.Dropoff.Longitude,
		&req.Dropoff.Address,
		&req.VehicleType,
		&req.Fare,
		&req.Status,
		&driverID,
		&notified,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.DriverID = driverID.String
	req.NotifiedDrivers = notified
	return req, nil
}
