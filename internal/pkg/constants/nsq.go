package constants

// NSQ topics for the dispatch event firehose. Downstream services
// (billing, trip history, analytics) consume these; dispatch only produces.
const (
	TopicRideRequested  = "ride.requested"
	TopicRideAccepted   = "ride.accepted"
	TopicRideScheduled  = "ride.scheduled_alerted"
	TopicDriverStatus   = "driver.status"
	TopicLocationUpdate = "location.update"
)
