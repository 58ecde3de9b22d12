package journey

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ojpilot/ojpilot/pkg/ojp"
)

// stubClient answers searches from a canned map. The planner searches both
// endpoints concurrently, so the recording needs a lock.
type stubClient struct {
	mutex sync.Mutex

	searchResults map[string]ojp.Envelope
	tripResult    ojp.Envelope

	searchQueries []string
	tripParams    []ojp.TripParams
}

func (s *stubClient) SearchLocations(_ context.Context, query string, _ int) ojp.Envelope {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.searchQueries = append(s.searchQueries, query)

	return s.searchResults[query]
}

func (s *stubClient) PlanTrip(_ context.Context, params ojp.TripParams) ojp.Envelope {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.tripParams = append(s.tripParams, params)

	return s.tripResult
}

func stopLocation(ref string, name string) ojp.Location {
	return ojp.Location{
		StopPointRef: ref,
		Name:         name,
		Type:         ojp.LocationTypeStop,
	}
}

func addressLocation(name string) ojp.Location {
	return ojp.Location{Name: name, Type: ojp.LocationTypeAddress}
}

func TestPlanByName(t *testing.T) {
	departure := time.Date(2024, 12, 25, 14, 30, 0, 0, time.UTC)

	client := &stubClient{
		searchResults: map[string]ojp.Envelope{
			// The first hit is an address; the planner must skip to the
			// first usable stop.
			"Zürich": ojp.SuccessLocations([]ojp.Location{
				addressLocation("Zürichstrasse 1"),
				stopLocation("8503000", "Zürich HB"),
			}),
			"Bern": ojp.SuccessLocations([]ojp.Location{
				stopLocation("8507000", "Bern"),
			}),
		},
		tripResult: ojp.SuccessTrips([]ojp.Trip{{Transfers: 0}}),
	}

	planner := NewPlanner(client)

	envelope := planner.PlanByName(context.Background(), "Zürich", "Bern", Options{
		DepartureTime: &departure,
		Modes:         []ojp.TransportMode{ojp.ModeTrain},
		MaxResults:    3,
	})

	assert.True(t, envelope.Success)
	require.Len(t, envelope.Trips, 1)

	assert.ElementsMatch(t, []string{"Zürich", "Bern"}, client.searchQueries)

	require.Len(t, client.tripParams, 1)
	params := client.tripParams[0]
	assert.Equal(t, "8503000", params.OriginRef)
	assert.Equal(t, "8507000", params.DestinationRef)
	assert.Equal(t, "Zürich HB", params.OriginName)
	assert.Equal(t, "Bern", params.DestinationName)
	require.NotNil(t, params.DepartureTime)
	assert.True(t, params.DepartureTime.Equal(departure))
	assert.Equal(t, []ojp.TransportMode{ojp.ModeTrain}, params.Modes)
	assert.Equal(t, 3, params.MaxResults)
}

func TestPlanByNameDefaultsTripResults(t *testing.T) {
	client := &stubClient{
		searchResults: map[string]ojp.Envelope{
			"Zürich": ojp.SuccessLocations([]ojp.Location{stopLocation("8503000", "Zürich HB")}),
			"Bern":   ojp.SuccessLocations([]ojp.Location{stopLocation("8507000", "Bern")}),
		},
		tripResult: ojp.SuccessTrips(nil),
	}

	planner := NewPlanner(client)
	planner.PlanByName(context.Background(), "Zürich", "Bern", Options{})

	require.Len(t, client.tripParams, 1)
	assert.Equal(t, DefaultTripResults, client.tripParams[0].MaxResults)
}

func TestPlanByNameUnresolvableOrigin(t *testing.T) {
	client := &stubClient{
		searchResults: map[string]ojp.Envelope{
			// Only an address comes back, which cannot anchor a trip.
			"Nowhere": ojp.SuccessLocations([]ojp.Location{addressLocation("Nowhere 1")}),
			"Bern":    ojp.SuccessLocations([]ojp.Location{stopLocation("8507000", "Bern")}),
		},
	}

	planner := NewPlanner(client)
	envelope := planner.PlanByName(context.Background(), "Nowhere", "Bern", Options{})

	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ojp.ErrorKindValidation, envelope.Error.Kind)
	assert.Contains(t, envelope.Error.Message, "origin")
	assert.Contains(t, envelope.Error.Message, "Nowhere")

	assert.Empty(t, client.tripParams)
}

func TestPlanByNameUnresolvableDestination(t *testing.T) {
	client := &stubClient{
		searchResults: map[string]ojp.Envelope{
			"Zürich": ojp.SuccessLocations([]ojp.Location{stopLocation("8503000", "Zürich HB")}),
			"Lost":   ojp.SuccessLocations(nil),
		},
	}

	planner := NewPlanner(client)
	envelope := planner.PlanByName(context.Background(), "Zürich", "Lost", Options{})

	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Contains(t, envelope.Error.Message, "destination")
	assert.Empty(t, client.tripParams)
}

func TestPlanByNamePropagatesSearchFailure(t *testing.T) {
	failure := ojp.Failure(ojp.NewProtocolError("backend down"), ojp.ErrorKindProtocol)

	client := &stubClient{
		searchResults: map[string]ojp.Envelope{
			"Zürich": failure,
			"Bern":   ojp.SuccessLocations([]ojp.Location{stopLocation("8507000", "Bern")}),
		},
	}

	planner := NewPlanner(client)
	envelope := planner.PlanByName(context.Background(), "Zürich", "Bern", Options{})

	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, ojp.ErrorKindProtocol, envelope.Error.Kind)
	assert.Contains(t, envelope.Error.Message, "backend down")
	assert.Empty(t, client.tripParams)
}

func TestPlanByNameEmptyQueries(t *testing.T) {
	client := &stubClient{}
	planner := NewPlanner(client)

	envelope := planner.PlanByName(context.Background(), "  ", "Bern", Options{})
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Contains(t, envelope.Error.Message, "origin")

	envelope = planner.PlanByName(context.Background(), "Zürich", "", Options{})
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Contains(t, envelope.Error.Message, "destination")

	// Nothing was searched or planned.
	assert.Empty(t, client.searchQueries)
	assert.Empty(t, client.tripParams)
}
