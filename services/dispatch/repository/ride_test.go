package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/ridewave/dispatch/internal/pkg/models"
	"github.com/ridewave/dispatch/services/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rideTestColumns = []string{
	"id", "rider_id", "rider_name",
	"pickup_latitude", "pickup_longitude", "pickup_address",
	"dropoff_latitude", "dropoff_longitude", "dropoff_address",
	"vehicle_type", "fare", "status", "driver_id", "notified_drivers",
	"created_at", "updated_at",
}

func newRideRepoMock(t *testing.T) (*RideRepo, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := sqlx.NewDb(mockDB, "sqlmock")
	return NewRideRepository(&models.Config{}, db), mock
}

func rideRow(bookingID, driverID, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(rideTestColumns).AddRow(
		bookingID, "rider-1", "Rina",
		-6.175392, 106.827153, "Monas",
		-6.244270, 106.800995, "Blok M",
		"car", "25000", status, driverID, "{driver-1,driver-2}",
		now, now,
	)
}

func TestCreateRequest(t *testing.T) {
	repo, mock := newRideRepoMock(t)

	mock.ExpectExec("INSERT INTO ride_requests").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := &models.RideRequest{
		ID:              "booking-1",
		RiderID:         "rider-1",
		RiderName:       "Rina",
		Pickup:          models.Place{Latitude: -6.175392, Longitude: 106.827153, Address: "Monas"},
		Dropoff:         models.Place{Latitude: -6.244270, Longitude: 106.800995, Address: "Blok M"},
		VehicleType:     "car",
		Fare:            "25000",
		NotifiedDrivers: []string{"driver-1", "driver-2"},
	}
	err := repo.CreateRequest(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, models.RideStatusPending, req.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimRequest_Success(t *testing.T) {
	repo, mock := newRideRepoMock(t)

	mock.ExpectQuery("UPDATE ride_requests").
		WithArgs("booking-1", "driver-1", models.RideStatusAccepted, sqlmock.AnyArg(), models.RideStatusPending).
		WillReturnRows(rideRow("booking-1", "driver-1", models.RideStatusAccepted))

	req, err := repo.ClaimRequest(context.Background(), "booking-1", "driver-1")

	require.NoError(t, err)
	assert.Equal(t, "booking-1", req.ID)
	assert.Equal(t, "driver-1", req.DriverID)
	assert.Equal(t, models.RideStatusAccepted, req.Status)
	assert.Equal(t, []string{"driver-1", "driver-2"}, []string(req.NotifiedDrivers))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimRequest_AlreadyTaken(t *testing.T) {
	repo, mock := newRideRepoMock(t)

	mock.ExpectQuery("UPDATE ride_requests").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT status FROM ride_requests").
		WithArgs("booking-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(models.RideStatusAccepted))

	_, err := repo.ClaimRequest(context.Background(), "booking-1", "driver-2")

	assert.ErrorIs(t, err, dispatch.ErrRideNotAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimRequest_UnknownBooking(t *testing.T) {
	repo, mock := newRideRepoMock(t)

	mock.ExpectQuery("UPDATE ride_requests").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT status FROM ride_requests").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ClaimRequest(context.Background(), "missing", "driver-1")

	assert.ErrorIs(t, err, dispatch.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveNotifiedDriver(t *testing.T) {
	repo, mock := newRideRepoMock(t)

	mock.ExpectExec("UPDATE ride_requests").
		WithArgs("booking-1", "driver-2", sqlmock.AnyArg(), models.RideStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.RemoveNotifiedDriver(context.Background(), "booking-1", "driver-2")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRequest_NotFound(t *testing.T) {
	repo, mock := newRideRepoMock(t)

	mock.ExpectQuery("SELECT").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetRequest(context.Background(), "missing")

	assert.ErrorIs(t, err, dispatch.ErrNotFound)
}
