package constants

// Redis key formats
const (
	// Driver geo index
	KeyDriverGeo       = "dispatch:drivers:geo"       // GeoHash set of all driver locations
	KeyAvailableDriver = "dispatch:drivers:available" // Set of online+available driver IDs
	KeyDriverMeta      = "dispatch:driver:meta:%s"    // Format: dispatch:driver:meta:{driver_id}
)

// Redis hash fields for driver metadata
const (
	FieldName        = "name"
	FieldStatus      = "status"
	FieldAvailable   = "available"
	FieldVehicleType = "vehicle_type"
	FieldRating      = "rating"
	FieldLatitude    = "lat"
	FieldLongitude   = "lng"
	FieldGeohash     = "geohash"
	FieldUpdatedAt   = "updated_at"
)
