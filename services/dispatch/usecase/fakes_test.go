package usecase

import (
	"context"

	"github.com/ridewave/dispatch/internal/pkg/models"
	"github.com/ridewave/dispatch/services/dispatch"
)

// In-memory stand-ins for the repository and delivery contracts. Each
// records what was asked of it so tests can assert on interactions.

type fakeDriverRepo struct {
	nearby    []*models.NearbyDriver
	nearbyErr error

	profiles   map[string]*models.Driver
	getErr     error
	upserted   []*models.Driver
	upsertErr  error
	located    map[string]models.Location
	locateErr  error
	offline    []string
	offlineErr error
	busy       []string
	busyErr    error
	cleared    []string
	clearErr   error
	available  int
}

func newFakeDriverRepo() *fakeDriverRepo {
	return &fakeDriverRepo{
		profiles: make(map[string]*models.Driver),
		located:  make(map[string]models.Location),
	}
}

func (f *fakeDriverRepo) UpsertPresence(ctx context.Context, driver *models.Driver) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, driver)
	return nil
}

func (f *fakeDriverRepo) UpdateLocation(ctx context.Context, driverID string, loc models.Location) error {
	if f.locateErr != nil {
		return f.locateErr
	}
	f.located[driverID] = loc
	return nil
}

func (f *fakeDriverRepo) MarkOffline(ctx context.Context, driverID string) error {
	if f.offlineErr != nil {
		return f.offlineErr
	}
	f.offline = append(f.offline, driverID)
	return nil
}

func (f *fakeDriverRepo) SetBusy(ctx context.Context, driverID string) error {
	if f.busyErr != nil {
		return f.busyErr
	}
	f.busy = append(f.busy, driverID)
	return nil
}

func (f *fakeDriverRepo) ClearConnection(ctx context.Context, driverID string) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = append(f.cleared, driverID)
	return nil
}

func (f *fakeDriverRepo) GetDriver(ctx context.Context, driverID string) (*models.Driver, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if d, ok := f.profiles[driverID]; ok {
		return d, nil
	}
	return nil, dispatch.ErrNotFound
}

func (f *fakeDriverRepo) FindNearby(ctx context.Context, point models.Location, radiusKm float64, limit int) ([]*models.NearbyDriver, error) {
	if f.nearbyErr != nil {
		return nil, f.nearbyErr
	}
	if len(f.nearby) > limit {
		return f.nearby[:limit], nil
	}
	return f.nearby, nil
}

func (f *fakeDriverRepo) CountAvailable(ctx context.Context) (int, error) {
	return f.available, nil
}

type fakeRideRepo struct {
	created   []*models.RideRequest
	createErr error
	claimFn   func(bookingID, driverID string) (*models.RideRequest, error)
	declined  []string
	removeErr error
	getFn     func(bookingID string) (*models.RideRequest, error)
}

func (f *fakeRideRepo) CreateRequest(ctx context.Context, req *models.RideRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, req)
	return nil
}

func (f *fakeRideRepo) ClaimRequest(ctx context.Context, bookingID, driverID string) (*models.RideRequest, error) {
	return f.claimFn(bookingID, driverID)
}

func (f *fakeRideRepo) RemoveNotifiedDriver(ctx context.Context, bookingID, driverID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.declined = append(f.declined, driverID)
	return nil
}

func (f *fakeRideRepo) GetRequest(ctx context.Context, bookingID string) (*models.RideRequest, error) {
	return f.getFn(bookingID)
}

type fakeBookingRepo struct {
	due      []*models.Booking
	dueErr   error
	marked   map[string][]string
	markErr  error
	claimFn  func(bookingID, driverID string) (*models.Booking, error)
	pending  []*models.Booking
	created  []*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{marked: make(map[string][]string)}
}

func (f *fakeBookingRepo) CreateBooking(ctx context.Context, booking *models.Booking) error {
	f.created = append(f.created, booking)
	return nil
}

func (f *fakeBookingRepo) UnnotifiedScheduled(ctx context.Context) ([]*models.Booking, error) {
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	return f.due, nil
}

func (f *fakeBookingRepo) MarkNotified(ctx context.Context, bookingID string, matchedDrivers []string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked[bookingID] = matchedDrivers
	return nil
}

func (f *fakeBookingRepo) ClaimBooking(ctx context.Context, bookingID, driverID string) (*models.Booking, error) {
	return f.claimFn(bookingID, driverID)
}

func (f *fakeBookingRepo) PendingScheduled(ctx context.Context) ([]*models.Booking, error) {
	return f.pending, nil
}

type sentEvent struct {
	ID      string
	Event   string
	Payload interface{}
}

type fakeNotifier struct {
	sent        []sentEvent
	unreachable map[string]bool
	connections int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{unreachable: make(map[string]bool)}
}

func (f *fakeNotifier) Send(id string, event string, payload interface{}) bool {
	if f.unreachable[id] {
		return false
	}
	f.sent = append(f.sent, sentEvent{ID: id, Event: event, Payload: payload})
	return true
}

func (f *fakeNotifier) Count() int {
	return f.connections
}

func (f *fakeNotifier) eventsFor(id string) []sentEvent {
	var out []sentEvent
	for _, e := range f.sent {
		if e.ID == id {
			out = append(out, e)
		}
	}
	return out
}

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) Publish(topic string, message interface{}) error {
	f.published = append(f.published, topic)
	return nil
}

func testConfig() *models.Config {
	return &models.Config{
		Dispatch: models.DispatchConfig{
			RadiusKm:      5.0,
			MaxCandidates: 10,
			StoreTimeout:  5,
		},
		Waker: models.WakerConfig{
			IntervalSeconds: 60,
			LeadMinutes:     30,
			BandMinutes:     1,
			RadiusKm:        10.0,
			MaxCandidates:   10,
		},
	}
}

func nearbyDriver(id string, lat, lng, distKm float64) *models.NearbyDriver {
	return &models.NearbyDriver{
		Driver: models.Driver{
			DriverID:  id,
			Status:    models.DriverStatusOnline,
			Available: true,
			Location:  models.Location{Latitude: lat, Longitude: lng},
		},
		DistanceKm: distKm,
	}
}
