package ojp

import (
	"encoding/json"
	"time"

	"github.com/liip/sheriff"
)

// Envelope is the uniform result wrapper handed back to callers. Failures
// are carried inside it, so tool callers always receive a well-formed
// document rather than a raised fault.
type Envelope struct {
	Success   bool       `json:"success" groups:"tool"`
	Timestamp time.Time  `json:"timestamp" groups:"tool"`
	Locations []Location `json:"locations,omitempty" groups:"tool"`
	Trips     []Trip     `json:"trips,omitempty" groups:"tool"`
	Error     *ErrorInfo `json:"error,omitempty" groups:"tool"`
}

func SuccessLocations(locations []Location) Envelope {
	if locations == nil {
		locations = []Location{}
	}

	return Envelope{
		Success:   true,
		Timestamp: time.Now().UTC(),
		Locations: locations,
	}
}

func SuccessTrips(trips []Trip) Envelope {
	if trips == nil {
		trips = []Trip{}
	}

	return Envelope{
		Success:   true,
		Timestamp: time.Now().UTC(),
		Trips:     trips,
	}
}

// Failure wraps err into an unsuccessful envelope. Errors that are not
// already an ErrorInfo are classified under the fallback kind.
func Failure(err error, fallback ErrorKind) Envelope {
	return Envelope{
		Success:   false,
		Timestamp: time.Now().UTC(),
		Error:     AsErrorInfo(err, fallback),
	}
}

// ToolView reduces the envelope to the fields tagged for tool callers. The
// collection belonging to the operation survives as an empty array when
// there are no results, so a successful answer always carries its key.
func (e Envelope) ToolView() (interface{}, error) {
	view, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"tool"},
	}, e)
	if err != nil {
		return nil, err
	}

	if fields, ok := view.(map[string]interface{}); ok {
		if e.Locations != nil {
			if _, present := fields["locations"]; !present {
				fields["locations"] = []Location{}
			}
		}
		if e.Trips != nil {
			if _, present := fields["trips"]; !present {
				fields["trips"] = []Trip{}
			}
		}
	}

	return view, nil
}

// ToolJSON renders the tool view as JSON.
func (e Envelope) ToolJSON(indent bool) ([]byte, error) {
	view, err := e.ToolView()
	if err != nil {
		return nil, err
	}

	if indent {
		return json.MarshalIndent(view, "", "  ")
	}

	return json.Marshal(view)
}
