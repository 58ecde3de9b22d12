package ojp

import "time"

// Leg is one segment of a trip, either a ride on a service or a transfer
// on foot (or another individual mode) between two places.
type Leg struct {
	Mode        TransportMode `json:"mode" groups:"tool"`
	Origin      Location      `json:"origin" groups:"tool"`
	Destination Location      `json:"destination" groups:"tool"`

	// Timestamps are normalised to UTC. Transfer legs have no schedule, so
	// both stay nil there.
	DepartureTime *time.Time `json:"departure_time_utc" groups:"tool"`
	ArrivalTime   *time.Time `json:"arrival_time_utc" groups:"tool"`

	DurationMinutes int `json:"duration_minutes" groups:"tool"`

	LineName  string `json:"line_name,omitempty" groups:"tool"`
	Direction string `json:"direction,omitempty" groups:"tool"`
}

// Trip is a complete itinerary. The headline times and counters are derived
// from the leg sequence, not copied from the service's own summary.
type Trip struct {
	DepartureTime        time.Time `json:"departure_time" groups:"tool"`
	ArrivalTime          time.Time `json:"arrival_time" groups:"tool"`
	TotalDurationMinutes int       `json:"total_duration_minutes" groups:"tool"`
	Transfers            int       `json:"transfers" groups:"tool"`
	Legs                 []Leg     `json:"legs" groups:"tool"`
}
