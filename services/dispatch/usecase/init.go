package usecase

import (
	"context"
	"time"

	"github.com/ridewave/dispatch/internal/pkg/logger"
	"github.com/ridewave/dispatch/internal/pkg/models"
	"github.com/ridewave/dispatch/services/dispatch"
)

// UC implements dispatch.DispatchUC.
type UC struct {
	cfg      *models.Config
	drivers  dispatch.DriverRepo
	rides    dispatch.RideRepo
	bookings dispatch.BookingRepo
	notifier dispatch.Notifier
	events   dispatch.EventPublisher
}

// NewDispatchUC creates the dispatch usecase. events may be nil when no
// broker is configured.
func NewDispatchUC(
	cfg *models.Config,
	drivers dispatch.DriverRepo,
	rides dispatch.RideRepo,
	bookings dispatch.BookingRepo,
	notifier dispatch.Notifier,
	events dispatch.EventPublisher,
) *UC {
	return &UC{
		cfg:      cfg,
		drivers:  drivers,
		rides:    rides,
		bookings: bookings,
		notifier: notifier,
		events:   events,
	}
}

// storeCtx bounds one store operation. No retry happens inline; the
// caller surfaces the timeout to the originator.
func (uc *UC) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(uc.cfg.Dispatch.StoreTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// publish emits a lifecycle event to the broker. Best-effort: a missing
// broker or a publish failure never aborts dispatch.
func (uc *UC) publish(topic string, payload interface{}) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(topic, payload); err != nil {
		logger.Warn("failed to publish lifecycle event",
			logger.String("topic", topic),
			logger.Err(err))
	}
}
