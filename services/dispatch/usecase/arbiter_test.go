package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ridewave/dispatch/internal/pkg/constants"
	"github.com/ridewave/dispatch/internal/pkg/models"
	"github.com/ridewave/dispatch/services/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func claimedRequest(bookingID, driverID string, notified []string) *models.RideRequest {
	return &models.RideRequest{
		ID:              bookingID,
		RiderID:         "rider-1",
		Status:          models.RideStatusAccepted,
		DriverID:        driverID,
		NotifiedDrivers: notified,
	}
}

func TestAcceptRide_Winner(t *testing.T) {
	drivers := newFakeDriverRepo()
	drivers.profiles["driver-1"] = &models.Driver{
		DriverID:    "driver-1",
		Name:        "Budi",
		Rating:      4.8,
		VehicleType: "car",
	}
	rides := &fakeRideRepo{
		claimFn: func(bookingID, driverID string) (*models.RideRequest, error) {
			return claimedRequest(bookingID, driverID, []string{"driver-1", "driver-2", "driver-3"}), nil
		},
	}
	notifier := newFakeNotifier()
	uc, publisher := newTestUC(drivers, rides, newFakeBookingRepo(), notifier)

	result, err := uc.AcceptRide(context.Background(), "driver-1", "booking-1")

	require.NoError(t, err)
	assert.Equal(t, "booking-1", result.BookingID)
	assert.Equal(t, "driver-1", result.DriverID)
	assert.Equal(t, "Budi", result.DriverName)
	assert.Equal(t, "4.8", result.DriverRating)
	assert.Equal(t, "car", result.VehicleType)

	// The winner is taken out of dispatch eligibility.
	assert.Equal(t, []string{"driver-1"}, drivers.busy)

	// The rider hears about it on its own channel.
	riderEvents := notifier.eventsFor("rider-1")
	require.Len(t, riderEvents, 1)
	assert.Equal(t, constants.EventRideAcceptedPrefix+"rider-1", riderEvents[0].Event)

	// The losing notified drivers get ride:taken; the winner does not.
	assert.Empty(t, notifier.eventsFor("driver-1"))
	for _, loser := range []string{"driver-2", "driver-3"} {
		events := notifier.eventsFor(loser)
		require.Len(t, events, 1)
		assert.Equal(t, constants.EventRideTaken, events[0].Event)
	}

	assert.Contains(t, publisher.published, constants.TopicRideAccepted)
}

func TestAcceptRide_LostRace(t *testing.T) {
	rides := &fakeRideRepo{
		claimFn: func(bookingID, driverID string) (*models.RideRequest, error) {
			return nil, dispatch.ErrRideNotAvailable
		},
	}
	notifier := newFakeNotifier()
	uc, _ := newTestUC(newFakeDriverRepo(), rides, newFakeBookingRepo(), notifier)

	_, err := uc.AcceptRide(context.Background(), "driver-2", "booking-1")

	assert.ErrorIs(t, err, dispatch.ErrRideNotAvailable)
	assert.Empty(t, notifier.sent)
}

func TestAcceptRide_ScheduledBookingFallback(t *testing.T) {
	drivers := newFakeDriverRepo()
	rides := &fakeRideRepo{
		claimFn: func(bookingID, driverID string) (*models.RideRequest, error) {
			return nil, dispatch.ErrNotFound
		},
	}
	bookings := newFakeBookingRepo()
	bookings.claimFn = func(bookingID, driverID string) (*models.Booking, error) {
		return &models.Booking{
			ID:             bookingID,
			RiderID:        "rider-9",
			Status:         models.BookingStatusAccepted,
			DriverID:       driverID,
			ScheduledAt:    time.Now().Add(30 * time.Minute),
			MatchedDrivers: []string{"driver-1", "driver-4"},
		}, nil
	}
	notifier := newFakeNotifier()
	uc, _ := newTestUC(drivers, rides, bookings, notifier)

	result, err := uc.AcceptRide(context.Background(), "driver-1", "sched-1")

	require.NoError(t, err)
	assert.Equal(t, "sched-1", result.BookingID)
	assert.Equal(t, []string{"driver-1"}, drivers.busy)

	riderEvents := notifier.eventsFor("rider-9")
	require.Len(t, riderEvents, 1)
	assert.Equal(t, constants.EventRideAcceptedPrefix+"rider-9", riderEvents[0].Event)

	loserEvents := notifier.eventsFor("driver-4")
	require.Len(t, loserEvents, 1)
	assert.Equal(t, constants.EventRideTaken, loserEvents[0].Event)
}

func TestAcceptRide_UnknownBooking(t *testing.T) {
	rides := &fakeRideRepo{
		claimFn: func(bookingID, driverID string) (*models.RideRequest, error) {
			return nil, dispatch.ErrNotFound
		},
	}
	bookings := newFakeBookingRepo()
	bookings.claimFn = func(bookingID, driverID string) (*models.Booking, error) {
		return nil, dispatch.ErrNotFound
	}
	uc, _ := newTestUC(newFakeDriverRepo(), rides, bookings, newFakeNotifier())

	_, err := uc.AcceptRide(context.Background(), "driver-1", "missing")

	assert.ErrorIs(t, err, dispatch.ErrNotFound)
}

func TestAcceptRide_BusyMarkFailureStillSettles(t *testing.T) {
	drivers := newFakeDriverRepo()
	drivers.busyErr = errors.New("redis down")
	rides := &fakeRideRepo{
		claimFn: func(bookingID, driverID string) (*models.RideRequest, error) {
			return claimedRequest(bookingID, driverID, []string{"driver-1"}), nil
		},
	}
	notifier := newFakeNotifier()
	uc, _ := newTestUC(drivers, rides, newFakeBookingRepo(), notifier)

	// The claim already decided the outcome; projection failures must not
	// undo it.
	result, err := uc.AcceptRide(context.Background(), "driver-1", "booking-1")

	require.NoError(t, err)
	assert.Equal(t, "driver-1", result.DriverID)
	require.Len(t, notifier.eventsFor("rider-1"), 1)
}

func TestDeclineRide(t *testing.T) {
	rides := &fakeRideRepo{}
	notifier := newFakeNotifier()
	uc, _ := newTestUC(newFakeDriverRepo(), rides, newFakeBookingRepo(), notifier)

	err := uc.DeclineRide(context.Background(), "driver-2", "booking-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"driver-2"}, rides.declined)
	// A decline never cancels the request or notifies anyone.
	assert.Empty(t, notifier.sent)
}

func TestDeclineRide_StoreFailure(t *testing.T) {
	rides := &fakeRideRepo{removeErr: errors.New("update failed")}
	uc, _ := newTestUC(newFakeDriverRepo(), rides, newFakeBookingRepo(), newFakeNotifier())

	err := uc.DeclineRide(context.Background(), "driver-2", "booking-1")

	assert.Error(t, err)
}
