package usecase

import (
	"context"
	"math"
	"time"

	"github.com/ridewave/dispatch/internal/pkg/constants"
	"github.com/ridewave/dispatch/internal/pkg/logger"
	"github.com/ridewave/dispatch/internal/pkg/models"
)

// WakeScheduled runs one waker tick: every scheduled booking whose
// pickup falls inside the lead window gets the same fan-out as an
// on-demand request, then is flagged so later ticks skip it. The band
// around the lead time is wide enough that a 60-second tick period
// cannot step over a booking.
func (uc *UC) WakeScheduled(ctx context.Context) (int, error) {
	sctx, cancel := uc.storeCtx(ctx)
	due, err := uc.bookings.UnnotifiedScheduled(sctx)
	cancel()
	if err != nil {
		logger.Error("failed to scan scheduled bookings", logger.Err(err))
		return 0, err
	}

	lead := float64(uc.cfg.Waker.LeadMinutes)
	band := float64(uc.cfg.Waker.BandMinutes)
	now := time.Now()
	woken := 0

	for _, booking := range due {
		minutesUntil := booking.ScheduledAt.Sub(now).Minutes()
		if minutesUntil < lead-band || minutesUntil > lead+band {
			continue
		}

		if err := uc.wakeBooking(ctx, booking, minutesUntil); err != nil {
			// A store failure skips this booking; the rest of the tick
			// continues and the booking stays eligible for the next one.
			logger.Error("failed to wake scheduled booking",
				logger.String("booking_id", booking.ID),
				logger.Err(err))
			continue
		}
		woken++
	}

	return woken, nil
}

func (uc *UC) wakeBooking(ctx context.Context, booking *models.Booking, minutesUntil float64) error {
	sctx, cancel := uc.storeCtx(ctx)
	candidates, err := uc.drivers.FindNearby(sctx, booking.Pickup.Point(),
		uc.cfg.Waker.RadiusKm, uc.cfg.Waker.MaxCandidates)
	cancel()
	if err != nil {
		return err
	}

	alert := models.ScheduledAlert{
		BookingID:          booking.ID,
		UserID:             booking.RiderID,
		UserName:           booking.RiderName,
		Pickup:             booking.Pickup,
		Dropoff:            booking.Dropoff,
		VehicleType:        booking.VehicleType,
		Fare:               booking.Fare,
		ScheduledTime:      booking.ScheduledAt.UTC().Format(time.RFC3339),
		MinutesUntilPickup: int(math.Round(minutesUntil)),
		IsScheduled:        true,
	}

	matched := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if uc.notifier.Send(c.DriverID, constants.EventRideScheduledAlert, alert) {
			matched = append(matched, c.DriverID)
		}
	}

	// The flag is set even when nobody was reachable, so the booking is
	// never re-alerted by later ticks.
	sctx, cancel = uc.storeCtx(ctx)
	err = uc.bookings.MarkNotified(sctx, booking.ID, matched)
	cancel()
	if err != nil {
		return err
	}

	uc.publish(constants.TopicRideScheduled, map[string]interface{}{
		"bookingId":      booking.ID,
		"matchedDrivers": matched,
	})

	logger.Info("scheduled booking woken",
		logger.String("booking_id", booking.ID),
		logger.Int("minutes_until_pickup", alert.MinutesUntilPickup),
		logger.Int("drivers_alerted", len(matched)))
	return nil
}

// Waker drives WakeScheduled on a fixed period until stopped.
type Waker struct {
	uc       *UC
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewWaker creates a waker from the configured interval.
func NewWaker(uc *UC) *Waker {
	interval := time.Duration(uc.cfg.Waker.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Waker{
		uc:       uc,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the tick loop.
func (w *Waker) Start() {
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		logger.Info("scheduled-ride waker started",
			logger.Int64("interval_seconds", int64(w.interval.Seconds())))

		for {
			select {
			case <-ticker.C:
				if _, err := w.uc.WakeScheduled(context.Background()); err != nil {
					logger.Error("waker tick failed", logger.Err(err))
				}
			case <-w.stop:
				return
			}
		}
	}()
}

// Stop halts the loop and waits for the in-flight tick to finish.
func (w *Waker) Stop() {
	close(w.stop)
	<-w.done
}
