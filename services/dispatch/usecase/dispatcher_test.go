package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/ridewave/dispatch/internal/pkg/constants"
	"github.com/ridewave/dispatch/internal/pkg/models"
	"github.com/ridewave/dispatch/services/dispatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUC(drivers *fakeDriverRepo, rides *fakeRideRepo, bookings *fakeBookingRepo, notifier *fakeNotifier) (*UC, *fakePublisher) {
	publisher := &fakePublisher{}
	return NewDispatchUC(testConfig(), drivers, rides, bookings, notifier, publisher), publisher
}

func testRideRequestEvent() *models.RideRequestEvent {
	return &models.RideRequestEvent{
		BookingID:   "booking-1",
		UserID:      "rider-1",
		UserName:    "Rina",
		Pickup:      models.Place{Latitude: -6.175392, Longitude: 106.827153, Address: "Monas"},
		Dropoff:     models.Place{Latitude: -6.244270, Longitude: 106.800995, Address: "Blok M"},
		VehicleType: "car",
		Fare:        "25000",
	}
}

func TestRequestRide_Success(t *testing.T) {
	drivers := newFakeDriverRepo()
	drivers.nearby = []*models.NearbyDriver{
		nearbyDriver("driver-1", -6.176, 106.828, 0.13),
		nearbyDriver("driver-2", -6.190, 106.830, 1.65),
	}
	rides := &fakeRideRepo{}
	notifier := newFakeNotifier()
	uc, publisher := newTestUC(drivers, rides, newFakeBookingRepo(), notifier)

	result, err := uc.RequestRide(context.Background(), testRideRequestEvent())

	require.NoError(t, err)
	assert.Equal(t, "booking-1", result.BookingID)
	assert.Equal(t, 2, result.DriversNotified)

	// The request row is persisted with the full candidate set.
	require.Len(t, rides.created, 1)
	assert.Equal(t, "booking-1", rides.created[0].ID)
	assert.Equal(t, models.RideStatusPending, rides.created[0].Status)
	assert.Equal(t, []string{"driver-1", "driver-2"}, []string(rides.created[0].NotifiedDrivers))

	// Each candidate got a personalized alert.
	require.Len(t, notifier.sent, 2)
	for _, e := range notifier.sent {
		assert.Equal(t, constants.EventRideAlert, e.Event)
	}
	alert1 := notifier.eventsFor("driver-1")[0].Payload.(models.RideAlert)
	alert2 := notifier.eventsFor("driver-2")[0].Payload.(models.RideAlert)
	assert.Equal(t, "booking-1", alert1.BookingID)
	assert.NotEqual(t, alert1.DistanceKm, alert2.DistanceKm)
	assert.Greater(t, alert2.EstimatedPickupMinutes, alert1.EstimatedPickupMinutes)

	assert.Contains(t, publisher.published, constants.TopicRideRequested)
}

func TestRequestRide_NoDriversAvailable(t *testing.T) {
	drivers := newFakeDriverRepo()
	rides := &fakeRideRepo{}
	notifier := newFakeNotifier()
	uc, _ := newTestUC(drivers, rides, newFakeBookingRepo(), notifier)

	_, err := uc.RequestRide(context.Background(), testRideRequestEvent())

	assert.ErrorIs(t, err, dispatch.ErrNoDriversAvailable)
	assert.Empty(t, rides.created)
	assert.Empty(t, notifier.sent)
}

func TestRequestRide_UnreachableDriverNotCounted(t *testing.T) {
	drivers := newFakeDriverRepo()
	drivers.nearby = []*models.NearbyDriver{
		nearbyDriver("driver-1", -6.176, 106.828, 0.13),
		nearbyDriver("driver-2", -6.190, 106.830, 1.65),
	}
	rides := &fakeRideRepo{}
	notifier := newFakeNotifier()
	notifier.unreachable["driver-2"] = true
	uc, _ := newTestUC(drivers, rides, newFakeBookingRepo(), notifier)

	result, err := uc.RequestRide(context.Background(), testRideRequestEvent())

	require.NoError(t, err)
	assert.Equal(t, 1, result.DriversNotified)

	// The unreachable driver still counts as notified in the request row:
	// the candidate set is frozen before fan-out.
	assert.Equal(t, []string{"driver-1", "driver-2"}, []string(rides.created[0].NotifiedDrivers))
}

func TestRequestRide_StoreFailureAbortsFanOut(t *testing.T) {
	drivers := newFakeDriverRepo()
	drivers.nearby = []*models.NearbyDriver{
		nearbyDriver("driver-1", -6.176, 106.828, 0.13),
	}
	rides := &fakeRideRepo{createErr: errors.New("insert failed")}
	notifier := newFakeNotifier()
	uc, _ := newTestUC(drivers, rides, newFakeBookingRepo(), notifier)

	_, err := uc.RequestRide(context.Background(), testRideRequestEvent())

	assert.Error(t, err)
	assert.Empty(t, notifier.sent)
}

func TestRequestRide_GeoQueryFailure(t *testing.T) {
	drivers := newFakeDriverRepo()
	drivers.nearbyErr = errors.New("redis down")
	rides := &fakeRideRepo{}
	uc, _ := newTestUC(drivers, rides, newFakeBookingRepo(), newFakeNotifier())

	_, err := uc.RequestRide(context.Background(), testRideRequestEvent())

	assert.Error(t, err)
	assert.NotErrorIs(t, err, dispatch.ErrNoDriversAvailable)
	assert.Empty(t, rides.created)
}
