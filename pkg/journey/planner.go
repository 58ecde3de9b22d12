package journey

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/ojpilot/ojpilot/pkg/ojp"
)

// Client is the slice of the OJP client the planner depends on.
type Client interface {
	SearchLocations(ctx context.Context, query string, maxResults int) ojp.Envelope
	PlanTrip(ctx context.Context, params ojp.TripParams) ojp.Envelope
}

// Planner answers trip questions posed with place names instead of stop
// point references. It resolves both endpoints with a location search and
// then plans between the matched stops.
type Planner struct {
	Client Client
}

func NewPlanner(client Client) *Planner {
	return &Planner{Client: client}
}

// Options carries the optional trip parameters of a plan-by-name call.
type Options struct {
	// DepartureTime nil means "leave now".
	DepartureTime *time.Time

	// Modes restricts the itineraries, see ojp.ParseModeParam.
	Modes []ojp.TransportMode

	MaxResults int
}

const DefaultTripResults = 5

// candidateResults is how many search hits are fetched per endpoint. The
// matcher orders by probability, so the first stop hit is taken.
const candidateResults = 10

// PlanByName resolves both endpoint names and plans a trip between them.
// The two searches run concurrently; a failure on either side is returned
// as-is so the caller sees which lookup went wrong.
func (p *Planner) PlanByName(ctx context.Context, originQuery string, destinationQuery string, options Options) ojp.Envelope {
	originQuery = strings.TrimSpace(originQuery)
	destinationQuery = strings.TrimSpace(destinationQuery)

	if originQuery == "" {
		return ojp.Failure(ojp.NewValidationError("origin", "must not be empty"), ojp.ErrorKindValidation)
	}
	if destinationQuery == "" {
		return ojp.Failure(ojp.NewValidationError("destination", "must not be empty"), ojp.ErrorKindValidation)
	}

	var originResult ojp.Envelope
	var destinationResult ojp.Envelope

	var searches conc.WaitGroup
	searches.Go(func() {
		originResult = p.Client.SearchLocations(ctx, originQuery, candidateResults)
	})
	searches.Go(func() {
		destinationResult = p.Client.SearchLocations(ctx, destinationQuery, candidateResults)
	})
	searches.Wait()

	origin, failure := resolveStop("origin", originQuery, originResult)
	if failure != nil {
		return *failure
	}

	destination, failure := resolveStop("destination", destinationQuery, destinationResult)
	if failure != nil {
		return *failure
	}

	log.Debug().
		Str("origin", origin.StopPointRef).
		Str("destination", destination.StopPointRef).
		Msg("Resolved trip endpoints")

	maxResults := options.MaxResults
	if maxResults == 0 {
		maxResults = DefaultTripResults
	}

	return p.Client.PlanTrip(ctx, ojp.TripParams{
		OriginRef:       origin.StopPointRef,
		DestinationRef:  destination.StopPointRef,
		OriginName:      origin.Name,
		DestinationName: destination.Name,
		DepartureTime:   options.DepartureTime,
		Modes:           options.Modes,
		MaxResults:      maxResults,
	})
}

// resolveStop picks the first result that can serve as a trip endpoint.
// Addresses and POIs carry no stop point reference and are skipped.
func resolveStop(side string, query string, result ojp.Envelope) (ojp.Location, *ojp.Envelope) {
	if !result.Success {
		return ojp.Location{}, &result
	}

	for _, location := range result.Locations {
		if location.IsStop() {
			return location, nil
		}
	}

	failure := ojp.Failure(
		ojp.NewValidationError(side, "no stop found matching %q", query),
		ojp.ErrorKindValidation)

	return ojp.Location{}, &failure
}
