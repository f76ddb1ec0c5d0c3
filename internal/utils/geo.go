package utils

import (
	"fmt"
	"math"

	"github.com/mmcloughlin/geohash"
	"github.com/ridewave/dispatch/internal/pkg/models"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// CalculateDistanceKm returns the great-circle distance between two
// points in kilometers using the haversine formula.
func CalculateDistanceKm(a, b models.Location) float64 {
	lat1 := a.Latitude * math.Pi / 180.0
	lon1 := a.Longitude * math.Pi / 180.0
	lat2 := b.Latitude * math.Pi / 180.0
	lon2 := b.Longitude * math.Pi / 180.0

	dLat := lat2 - lat1
	dLon := lon2 - lon1
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// FormatDistanceKm renders a distance with two decimals for the wire.
func FormatDistanceKm(km float64) string {
	return fmt.Sprintf("%.2f", km)
}

// EstimatePickupMinutes derives a coarse pickup ETA from the distance:
// two minutes per kilometer, rounded up.
func EstimatePickupMinutes(distanceKm float64) int {
	return int(math.Ceil(distanceKm * 2))
}

// EncodeLocation converts a location to a geohash string for coarse
// bucketing in logs and driver metadata.
func EncodeLocation(location models.Location, precision uint) string {
	return geohash.EncodeWithPrecision(location.Latitude, location.Longitude, precision)
}

// DecodeGeohash converts a geohash string back to coordinates.
func DecodeGeohash(hash string) models.Location {
	lat, lng := geohash.Decode(hash)
	return models.Location{Latitude: lat, Longitude: lng}
}
