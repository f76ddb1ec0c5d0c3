package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ridewave/dispatch/internal/pkg/constants"
	"github.com/ridewave/dispatch/internal/pkg/database"
	"github.com/ridewave/dispatch/internal/pkg/logger"
	"github.com/ridewave/dispatch/internal/pkg/models"
	"github.com/ridewave/dispatch/internal/utils"
	"github.com/ridewave/dispatch/services/dispatch"
)

// geohashPrecision buckets driver positions to roughly street level in
// the metadata hash.
const geohashPrecision = 7

// DriverRepo keeps the live driver index in Redis (geo set restricted to
// eligible drivers, availability set, metadata hash) and the durable
// profile row in Postgres.
type DriverRepo struct {
	cfg         *models.Config
	db          *sqlx.DB
	redisClient *database.RedisClient
}

// NewDriverRepository creates a new driver repository
func NewDriverRepository(cfg *models.Config, db *sqlx.DB, redisClient *database.RedisClient) *DriverRepo {
	return &DriverRepo{
		cfg:         cfg,
		db:          db,
		redisClient: redisClient,
	}
}

// UpsertPresence records a driver coming online: geo index, availability
// set, metadata hash and the Postgres profile row.
func (r *DriverRepo) UpsertPresence(ctx context.Context, driver *models.Driver) error {
	if err := r.redisClient.GeoAdd(ctx, constants.KeyDriverGeo,
		driver.Location.Longitude, driver.Location.Latitude, driver.DriverID); err != nil {
		return fmt.Errorf("failed to index driver location: %w", err)
	}

	if err := r.redisClient.SAdd(ctx, constants.KeyAvailableDriver, driver.DriverID); err != nil {
		return fmt.Errorf("failed to mark driver available: %w", err)
	}

	if err := r.writeMeta(ctx, driver); err != nil {
		return err
	}

	query := `
		INSERT INTO drivers (
			driver_id, user_id, name, status, available, vehicle_type,
			rating, points, tier, connection_id,
			last_latitude, last_longitude, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (driver_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			status = EXCLUDED.status,
			available = EXCLUDED.available,
			connection_id = EXCLUDED.connection_id,
			last_latitude = EXCLUDED.last_latitude,
			last_longitude = EXCLUDED.last_longitude,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		driver.DriverID,
		driver.UserID,
		driver.Name,
		driver.Status,
		driver.Available,
		driver.VehicleType,
		driver.Rating,
		driver.Points,
		driver.Tier,
		driver.ConnectionID,
		driver.Location.Latitude,
		driver.Location.Longitude,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert driver row: %w", err)
	}
	return nil
}

// UpdateLocation refreshes the cached coordinates. Status is left
// untouched. The geo index is only written for drivers still in the
// availability set: a busy or offline driver keeps streaming positions,
// and re-adding it would let it crowd eligible drivers out of the
// radius query.
func (r *DriverRepo) UpdateLocation(ctx context.Context, driverID string, loc models.Location) error {
	available, err := r.redisClient.SIsMember(ctx, constants.KeyAvailableDriver, driverID)
	if err != nil {
		return fmt.Errorf("failed to check driver availability: %w", err)
	}
	if available {
		if err := r.redisClient.GeoAdd(ctx, constants.KeyDriverGeo,
			loc.Longitude, loc.Latitude, driverID); err != nil {
			return fmt.Errorf("failed to update driver location: %w", err)
		}
	}

	metaKey := fmt.Sprintf(constants.KeyDriverMeta, driverID)
	if err := r.redisClient.HSet(ctx, metaKey, map[string]interface{}{
		constants.FieldLatitude:  loc.Latitude,
		constants.FieldLongitude: loc.Longitude,
		constants.FieldGeohash:   utils.EncodeLocation(loc, geohashPrecision),
		constants.FieldUpdatedAt: time.Now().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("failed to update driver metadata: %w", err)
	}

	query := `UPDATE drivers SET last_latitude = $2, last_longitude = $3, updated_at = $4 WHERE driver_id = $1`
	if _, err := r.db.ExecContext(ctx, query, driverID, loc.Latitude, loc.Longitude, time.Now()); err != nil {
		return fmt.Errorf("failed to update driver row: %w", err)
	}
	return nil
}

// MarkOffline removes the driver from the dispatch index and records the
// offline state.
func (r *DriverRepo) MarkOffline(ctx context.Context, driverID string) error {
	if err := r.redisClient.SRem(ctx, constants.KeyAvailableDriver, driverID); err != nil {
		return fmt.Errorf("failed to remove driver availability: %w", err)
	}
	if err := r.redisClient.GeoRemove(ctx, constants.KeyDriverGeo, driverID); err != nil {
		return fmt.Errorf("failed to remove driver from geo index: %w", err)
	}

	metaKey := fmt.Sprintf(constants.KeyDriverMeta, driverID)
	if err := r.redisClient.HSet(ctx, metaKey, map[string]interface{}{
		constants.FieldStatus:    models.DriverStatusOffline,
		constants.FieldAvailable: "false",
	}); err != nil {
		return fmt.Errorf("failed to update driver metadata: %w", err)
	}

	query := `UPDATE drivers SET status = $2, available = false, connection_id = '', updated_at = $3 WHERE driver_id = $1`
	if _, err := r.db.ExecContext(ctx, query, driverID, models.DriverStatusOffline, time.Now()); err != nil {
		return fmt.Errorf("failed to update driver row: %w", err)
	}
	return nil
}

// SetBusy removes the driver from dispatch eligibility after it wins a
// ride.
func (r *DriverRepo) SetBusy(ctx context.Context, driverID string) error {
	if err := r.redisClient.SRem(ctx, constants.KeyAvailableDriver, driverID); err != nil {
		return fmt.Errorf("failed to remove driver availability: %w", err)
	}
	if err := r.redisClient.GeoRemove(ctx, constants.KeyDriverGeo, driverID); err != nil {
		return fmt.Errorf("failed to remove driver from geo index: %w", err)
	}

	metaKey := fmt.Sprintf(constants.KeyDriverMeta, driverID)
	if err := r.redisClient.HSet(ctx, metaKey, map[string]interface{}{
		constants.FieldStatus:    models.DriverStatusBusy,
		constants.FieldAvailable: "false",
	}); err != nil {
		return fmt.Errorf("failed to update driver metadata: %w", err)
	}

	query := `UPDATE drivers SET status = $2, available = false, updated_at = $3 WHERE driver_id = $1`
	if _, err := r.db.ExecContext(ctx, query, driverID, models.DriverStatusBusy, time.Now()); err != nil {
		return fmt.Errorf("failed to update driver row: %w", err)
	}
	return nil
}

// ClearConnection drops the cached connection id after a transport
// disconnect. The status is untouched: an intentional reconnect may
// follow.
func (r *DriverRepo) ClearConnection(ctx context.Context, driverID string) error {
	query := `UPDATE drivers SET connection_id = '', updated_at = $2 WHERE driver_id = $1`
	if _, err := r.db.ExecContext(ctx, query, driverID, time.Now()); err != nil {
		return fmt.Errorf("failed to clear driver connection: %w", err)
	}
	return nil
}

// GetDriver fetches the profile row.
func (r *DriverRepo) GetDriver(ctx context.Context, driverID string) (*models.Driver, error) {
	query := `
		SELECT driver_id, user_id, name, status, available, vehicle_type,
			rating, points, tier, connection_id,
			last_latitude, last_longitude, updated_at
		FROM drivers
		WHERE driver_id = $1
	`
	row := r.db.QueryRowContext(ctx, query, driverID)

	driver := &models.Driver{}
	var userID, connectionID sql.NullString
	var lat, lng sql.NullFloat64
	err := row.Scan(
		&driver.DriverID,
		&userID,
		&driver.Name,
		&driver.Status,
		&driver.Available,
		&driver.VehicleType,
		&driver.Rating,
		&driver.Points,
		&driver.Tier,
		&connectionID,
		&lat,
		&lng,
		&driver.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dispatch.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	driver.UserID = userID.String
	driver.ConnectionID = connectionID.String
	driver.Location = models.Location{Latitude: lat.Float64, Longitude: lng.Float64}
	return driver, nil
}

// FindNearby returns eligible drivers within radiusKm of the point,
// nearest first, at most limit of them. The geo set only ever contains
// eligible drivers; the availability set membership is rechecked to
// guard against a lagging removal.
func (r *DriverRepo) FindNearby(ctx context.Context, point models.Location, radiusKm float64, limit int) ([]*models.NearbyDriver, error) {
	hits, err := r.redisClient.GeoRadius(ctx, constants.KeyDriverGeo,
		point.Longitude, point.Latitude, radiusKm, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to run geo query: %w", err)
	}

	out := make([]*models.NearbyDriver, 0, len(hits))
	for _, hit := range hits {
		available, err := r.redisClient.SIsMember(ctx, constants.KeyAvailableDriver, hit.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check driver availability: %w", err)
		}
		if !available {
			continue
		}

		nd := &models.NearbyDriver{
			Driver: models.Driver{
				DriverID:  hit.Name,
				Status:    models.DriverStatusOnline,
				Available: true,
				Location:  models.Location{Latitude: hit.Latitude, Longitude: hit.Longitude},
			},
			DistanceKm: hit.Dist,
		}

		metaKey := fmt.Sprintf(constants.KeyDriverMeta, hit.Name)
		meta, err := r.redisClient.HGetAll(ctx, metaKey)
		if err != nil {
			logger.Warn("failed to load driver metadata",
				logger.String("driver_id", hit.Name),
				logger.Err(err))
		} else {
			nd.Name = meta[constants.FieldName]
			nd.VehicleType = meta[constants.FieldVehicleType]
			if v, ok := meta[constants.FieldRating]; ok {
				if f, err := strconv.ParseFloat(v, 64); err == nil {
					nd.Rating = f
				}
			}
			// GEORADIUS coordinates come back geohash-perturbed by a
			// fraction of a meter; the hash holds the exact position the
			// driver reported, so distances derived from it stay
			// consistent with what the driver sees.
			lat, latErr := strconv.ParseFloat(meta[constants.FieldLatitude], 64)
			lng, lngErr := strconv.ParseFloat(meta[constants.FieldLongitude], 64)
			if latErr == nil && lngErr == nil {
				nd.Location = models.Location{Latitude: lat, Longitude: lng}
			}
		}

		out = append(out, nd)
	}
	return out, nil
}

// CountAvailable returns the number of online and available drivers.
func (r *DriverRepo) CountAvailable(ctx context.Context) (int, error) {
	n, err := r.redisClient.SCard(ctx, constants.KeyAvailableDriver)
	if err != nil {
		return 0, fmt.Errorf("failed to count available drivers: %w", err)
	}
	return int(n), nil
}

func (r *DriverRepo) writeMeta(ctx context.Context, driver *models.Driver) error {
	metaKey := fmt.Sprintf(constants.KeyDriverMeta, driver.DriverID)
	err := r.redisClient.HSet(ctx, metaKey, map[string]interface{}{
		constants.FieldName:        driver.Name,
		constants.FieldStatus:      driver.Status,
		constants.FieldAvailable:   strconv.FormatBool(driver.Available),
		constants.FieldVehicleType: driver.VehicleType,
		constants.FieldRating:      strconv.FormatFloat(driver.Rating, 'f', -1, 64),
		constants.FieldLatitude:    driver.Location.Latitude,
		constants.FieldLongitude:   driver.Location.Longitude,
		constants.FieldGeohash:     utils.EncodeLocation(driver.Location, geohashPrecision),
		constants.FieldUpdatedAt:   time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to write driver metadata: %w", err)
	}
	return nil
}
