package models

import (
	"time"

	"github.com/lib/pq"
)

// RideRequest status values. Transitions out of pending are one-way.
const (
	RideStatusPending   = "pending"
	RideStatusAccepted  = "accepted"
	RideStatusCancelled = "cancelled"
	RideStatusExpired   = "expired"
)

// RideRequest is the persistent record of one on-demand dispatch attempt.
// The ID is the client-supplied booking identifier and is unique.
type RideRequest struct {
	ID              string         `db:"id" json:"bookingId"`
	RiderID         string         `db:"rider_id" json:"userId"`
	RiderName       string         `db:"rider_name" json:"userName"`
	Pickup          Place          `db:"-" json:"pickup"`
	Dropoff         Place          `db:"-" json:"dropoff"`
	VehicleType     string         `db:"vehicle_type" json:"vehicleType"`
	Fare            string         `db:"fare" json:"fare"`
	Status          string         `db:"status" json:"status"`
	DriverID        string         `db:"driver_id" json:"driverId,omitempty"`
	NotifiedDrivers pq.StringArray `db:"notified_drivers" json:"notifiedDrivers"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

// RideRequestEvent is the inbound ride:request payload.
type RideRequestEvent struct {
	BookingID   string `json:"bookingId"`
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	Pickup      Place  `json:"pickup"`
	Dropoff     Place  `json:"dropoff"`
	VehicleType string `json:"vehicleType"`
	Fare        string `json:"fare"`
}

// RideAlert is the personalized fan-out payload sent to each candidate
// driver. DistanceKm is formatted with two decimals.
type RideAlert struct {
	BookingID              string `json:"bookingId"`
	UserID                 string `json:"userId"`
	UserName               string `json:"userName"`
	Pickup                 Place  `json:"pickup"`
	Dropoff                Place  `json:"dropoff"`
	VehicleType            string `json:"vehicleType"`
	Fare                   string `json:"fare"`
	Timestamp              string `json:"timestamp"`
	DistanceKm             string `json:"distanceKm"`
	EstimatedPickupMinutes int    `json:"estimatedPickupMinutes"`
}

// ScheduledAlert is the fan-out payload for a woken scheduled booking.
type ScheduledAlert struct {
	BookingID          string `json:"bookingId"`
	UserID             string `json:"userId"`
	UserName           string `json:"userName"`
	Pickup             Place  `json:"pickup"`
	Dropoff            Place  `json:"dropoff"`
	VehicleType        string `json:"vehicleType"`
	Fare               string `json:"fare"`
	ScheduledTime      string `json:"scheduledTime"`
	MinutesUntilPickup int    `json:"minutesUntilPickup"`
	IsScheduled        bool   `json:"isScheduled"`
}

// AcceptEvent is the inbound ride:accept / ride:decline payload.
type AcceptEvent struct {
	DriverID  string `json:"driverId"`
	BookingID string `json:"bookingId"`
}

// AcceptResult describes a won arbitration: the claimed request plus the
// winning driver's public profile for the rider notification.
type AcceptResult struct {
	BookingID    string `json:"bookingId"`
	RiderID      string `json:"-"`
	DriverID     string `json:"driverId"`
	DriverName   string `json:"driverName"`
	DriverRating string `json:"driverRating"`
	VehicleType  string `json:"vehicleType"`
}

// DispatchResult is what the dispatcher reports back for one request.
type DispatchResult struct {
	BookingID       string `json:"bookingId"`
	DriversNotified int    `json:"driversNotified"`
}
