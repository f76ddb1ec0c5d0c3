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

// BookingRepo owns the scheduled bookings table.
type BookingRepo struct {
	cfg *models.Config
	db  *sqlx.DB
}

// NewBookingRepository creates a new scheduled booking repository
func NewBookingRepository(cfg *models.Config, db *sqlx.DB) *BookingRepo {
	return &BookingRepo{cfg: cfg, db: db}
}

const bookingColumns = `
	id, rider_id, rider_name,
	pickup_latitude, pickup_longitude, pickup_address,
	dropoff_latitude, dropoff_longitude, dropoff_address,
	vehicle_type, fare, status, scheduled_at, notification_sent,
	driver_id, matched_drivers, created_at, updated_at`

// CreateBooking inserts a scheduled booking.
func (r *BookingRepo) CreateBooking(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, rider_id, rider_name,
			pickup_latitude, pickup_longitude, pickup_address,
			dropoff_latitude, dropoff_longitude, dropoff_address,
			vehicle_type, fare, status, scheduled_at, notification_sent,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	now := time.Now()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now
	if booking.Status == "" {
		booking.Status = models.BookingStatusScheduled
	}

	_, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.RiderID,
		booking.RiderName,
		booking.Pickup.Latitude,
		booking.Pickup.Longitude,
		booking.Pickup.Address,
		booking.Dropoff.Latitude,
		booking.Dropoff.Longitude,
		booking.Dropoff.Address,
		booking.VehicleType,
		booking.Fare,
		booking.Status,
		booking.ScheduledAt,
		booking.NotificationSent,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// UnnotifiedScheduled returns scheduled bookings that still owe a
// wake-up alert and are not yet bound to a driver.
func (r *BookingRepo) UnnotifiedScheduled(ctx context.Context) ([]*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND notification_sent = false AND driver_id IS NULL
		ORDER BY scheduled_at
	`
	return r.queryBookings(ctx, query, models.BookingStatusScheduled)
}

// MarkNotified freezes the wake-up: the booking will never be re-alerted,
// even when the matched set is empty.
func (r *BookingRepo) MarkNotified(ctx context.Context, bookingID string, matchedDrivers []string) error {
	query := `
		UPDATE bookings
		SET notification_sent = true, matched_drivers = $2, updated_at = $3
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, bookingID, pq.StringArray(matchedDrivers), time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark booking notified: %w", err)
	}
	return nil
}

// ClaimBooking atomically binds a scheduled booking to the accepting
// driver, converting it into an ordinary accepted ride.
func (r *BookingRepo) ClaimBooking(ctx context.Context, bookingID, driverID string) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $3, driver_id = $2, updated_at = $4
		WHERE id = $1 AND status = $5 AND driver_id IS NULL
		RETURNING ` + bookingColumns

	row := r.db.QueryRowContext(ctx, query,
		bookingID, driverID, models.BookingStatusAccepted, time.Now(), models.BookingStatusScheduled)

	booking, err := scanBooking(row)
	if err == nil {
		return booking, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to claim booking: %w", err)
	}

	var status string
	err = r.db.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = $1`, bookingID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, dispatch.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check booking status: %w", err)
	}
	return nil, dispatch.ErrRideNotAvailable
}

// PendingScheduled lists scheduled bookings for diagnostics, soonest
// pickup first.
func (r *BookingRepo) PendingScheduled(ctx context.Context) ([]*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1
		ORDER BY scheduled_at
	`
	return r.queryBookings(ctx, query, models.BookingStatusScheduled)
}

func (r *BookingRepo) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var out []*models.Booking
	for rows.Next() {
		booking, err := scanBookingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		out = append(out, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read bookings: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row *sql.Row) (*models.Booking, error) {
	return scanBookingRow(row)
}

func scanBookingRow(row rowScanner) (*models.Booking, error) {
	booking := &models.Booking{}
	var driverID sql.NullString
	var matched pq.StringArray
	err := row.Scan(
		&booking.ID,
		&booking.RiderID,
		&booking.RiderName,
		&booking.Pickup.Latitude,
		&booking.Pickup.Longitude,
		&booking.Pickup.Address,
		&booking.Dropoff.Latitude,
		&booking.Dropoff.Longitude,
		&booking.Dropoff.Address,
		&booking.VehicleType,
		&booking.Fare,
		&booking.Status,
		&booking.ScheduledAt,
		&booking.NotificationSent,
		&driverID,
		&matched,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.DriverID = driverID.String
	booking.MatchedDrivers = matched
	return booking, nil
}
