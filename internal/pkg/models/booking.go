package models

import (
	"time"

	"github.com/lib/pq"
)

// Scheduled booking status values. A claimed booking becomes an ordinary
// accepted ride for the rest of its lifecycle.
const (
	BookingStatusScheduled = "scheduled"
	BookingStatusAccepted  = "accepted"
	BookingStatusCancelled = "cancelled"
)

// Booking is a future-dated trip that must be dispatched near its pickup
// time. Once NotificationSent is set the waker will not re-alert it.
type Booking struct {
	ID               string         `db:"id" json:"bookingId"`
	RiderID          string         `db:"rider_id" json:"userId"`
	RiderName        string         `db:"rider_name" json:"userName"`
	Pickup           Place          `db:"-" json:"pickup"`
	Dropoff          Place          `db:"-" json:"dropoff"`
	VehicleType      string         `db:"vehicle_type" json:"vehicleType"`
	Fare             string         `db:"fare" json:"fare"`
	Status           string         `db:"status" json:"status"`
	ScheduledAt      time.Time      `db:"scheduled_at" json:"scheduledAt"`
	NotificationSent bool           `db:"notification_sent" json:"notificationSent"`
	DriverID         string         `db:"driver_id" json:"driverId,omitempty"`
	MatchedDrivers   pq.StringArray `db:"matched_drivers" json:"matchedDrivers,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}
