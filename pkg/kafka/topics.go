package kafka

import "fmt"

// TopicPrefix is the namespace prefix shared by all topics this service
// publishes to.
const TopicPrefix = "hotel"

// Topic builds a fully qualified topic name of the form
// "<prefix>.<domain>.<action>", e.g. "hotel.reservation.created".
func Topic(domain, action string) string {
	return fmt.Sprintf("%s.%s.%s", TopicPrefix, domain, action)
}
