package ojp

import "fmt"

type LocationType string

const (
	LocationTypeStop    LocationType = "stop"
	LocationTypeAddress LocationType = "address"
	LocationTypePOI     LocationType = "poi"
)

type Coordinates struct {
	Longitude float64 `json:"longitude" groups:"tool"`
	Latitude  float64 `json:"latitude" groups:"tool"`
}

func (c Coordinates) Validate() error {
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %v outside [-180, 180]", c.Longitude)
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %v outside [-90, 90]", c.Latitude)
	}

	return nil
}

// Location is a place returned by a location search or referenced by a trip
// leg. StopPointRef is the protocol-assigned identifier and is empty for
// addresses and points of interest that have none.
type Location struct {
	StopPointRef string       `json:"stop_point_reference,omitempty" groups:"tool"`
	Name         string       `json:"name" groups:"tool"`
	Type         LocationType `json:"type" groups:"tool"`
	Coordinates  *Coordinates `json:"coordinates" groups:"tool"`

	// Probability is the matcher confidence from the search reply. It is
	// internal ranking detail, so it stays out of the tool group.
	Probability float64 `json:"probability,omitempty" groups:"detailed"`
}

// IsStop reports whether the location can be used as a trip endpoint.
func (l *Location) IsStop() bool {
	return l.Type == LocationTypeStop && l.StopPointRef != ""
}
