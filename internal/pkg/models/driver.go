package models

import "time"

// Driver status values
const (
	DriverStatusOnline  = "online"
	DriverStatusOffline = "offline"
	DriverStatusBusy    = "busy"
)

// Driver is the persistent driver projection. The live geo position is
// indexed in Redis; the Postgres row carries the profile and the last
// known state for diagnostics and restarts.
type Driver struct {
	DriverID     string    `db:"driver_id" json:"driverId"`
	UserID       string    `db:"user_id" json:"userId,omitempty"`
	Name         string    `db:"name" json:"name"`
	Status       string    `db:"status" json:"status"`
	Available    bool      `db:"available" json:"available"`
	VehicleType  string    `db:"vehicle_type" json:"vehicleType"`
	Rating       float64   `db:"rating" json:"rating"`
	Points       int       `db:"points" json:"points"`
	Tier         string    `db:"tier" json:"tier"`
	ConnectionID string    `db:"connection_id" json:"-"`
	Location     Location  `db:"-" json:"location"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// NearbyDriver is a geo query hit: a driver plus its distance from the
// query point as reported by the index.
type NearbyDriver struct {
	Driver
	DistanceKm float64 `json:"distanceKm"`
}
