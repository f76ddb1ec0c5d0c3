package models

// Location is a bare coordinate pair as carried by driver events.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is a coordinate pair with a human-readable address, used for
// pickup and dropoff points.
type Place struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// IsValid reports whether the coordinates are inside the WGS84 envelope.
func (l Location) IsValid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

// Point returns the location of the place without its address.
func (p Place) Point() Location {
	return Location{Latitude: p.Latitude, Longitude: p.Longitude}
}
