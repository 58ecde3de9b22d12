package ojp

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ojpilot/ojpilot/pkg/stats"
	"github.com/ojpilot/ojpilot/pkg/util"
)

const bodyExcerptLength = 200

const (
	OperationLocationSearch = "location_search"
	OperationTripRequest    = "trip_request"
)

// Client orchestrates request building, the transport exchange and response
// parsing. Every failure along the way is folded into the returned envelope;
// callers never see a raw error.
type Client struct {
	Transport Transport
	Builder   RequestBuilder
	Collector *stats.Collector
}

func NewClient(transport Transport, requestorRef string, collector *stats.Collector) *Client {
	return &Client{
		Transport: transport,
		Builder:   RequestBuilder{RequestorRef: requestorRef},
		Collector: collector,
	}
}

// SearchLocations looks up stops matching a free-text query.
func (c *Client) SearchLocations(ctx context.Context, query string, maxResults int) Envelope {
	started := time.Now()

	payload, err := c.Builder.LocationRequest(LocationSearchParams{
		Query:      query,
		MaxResults: maxResults,
	})
	if err != nil {
		return c.failure(OperationLocationSearch, started, err, ErrorKindValidation)
	}

	body, failed := c.exchange(ctx, OperationLocationSearch, started, payload)
	if failed != nil {
		return *failed
	}

	locations, faults, err := ParseLocationResponse(body)
	if err != nil {
		return c.failure(OperationLocationSearch, started, err, ErrorKindParse)
	}

	c.reportFaults(OperationLocationSearch, faults)
	c.Collector.ObserveRequest(OperationLocationSearch, "success", time.Since(started).Seconds())

	log.Debug().
		Str("query", query).
		Int("locations", len(locations)).
		Int("skipped", len(faults)).
		Msg("Location search complete")

	return SuccessLocations(locations)
}

// PlanTrip requests itineraries between two stop point references.
func (c *Client) PlanTrip(ctx context.Context, params TripParams) Envelope {
	started := time.Now()

	payload, err := c.Builder.TripRequest(params)
	if err != nil {
		return c.failure(OperationTripRequest, started, err, ErrorKindValidation)
	}

	body, failed := c.exchange(ctx, OperationTripRequest, started, payload)
	if failed != nil {
		return *failed
	}

	trips, faults, err := ParseTripResponse(body)
	if err != nil {
		return c.failure(OperationTripRequest, started, err, ErrorKindParse)
	}

	c.reportFaults(OperationTripRequest, faults)
	c.Collector.ObserveRequest(OperationTripRequest, "success", time.Since(started).Seconds())

	log.Debug().
		Str("origin", params.OriginRef).
		Str("destination", params.DestinationRef).
		Int("trips", len(trips)).
		Int("skipped", len(faults)).
		Msg("Trip request complete")

	return SuccessTrips(trips)
}

// exchange sends the payload and screens the HTTP outcome. On failure it
// returns the ready-made failure envelope instead of a body.
func (c *Client) exchange(ctx context.Context, operation string, started time.Time, payload []byte) ([]byte, *Envelope) {
	status, body, err := c.Transport.Send(ctx, payload)
	if err != nil {
		envelope := c.failure(operation, started, NewConnectionError(time.Since(started), err), ErrorKindConnection)
		return nil, &envelope
	}

	if status < 200 || status > 299 {
		excerpt := util.TrimString(strings.TrimSpace(string(body)), bodyExcerptLength)
		envelope := c.failure(operation, started, NewTransportError(status, excerpt), ErrorKindTransport)
		return nil, &envelope
	}

	return body, nil
}

func (c *Client) failure(operation string, started time.Time, err error, fallback ErrorKind) Envelope {
	envelope := Failure(err, fallback)

	c.Collector.ObserveRequest(operation, outcomeLabel(envelope.Error.Kind), time.Since(started).Seconds())

	log.Warn().
		Str("operation", operation).
		Str("kind", string(envelope.Error.Kind)).
		Msg(envelope.Error.Message)

	return envelope
}

func (c *Client) reportFaults(operation string, faults []EntryFault) {
	for _, fault := range faults {
		c.Collector.CountEntryFault(operation, string(fault.Err.Kind))

		log.Warn().
			Str("operation", operation).
			Int("entry", fault.Index).
			Str("kind", string(fault.Err.Kind)).
			Str("reason", fault.Err.Message).
			Msg("Skipping result entry")
	}
}

func outcomeLabel(kind ErrorKind) string {
	switch kind {
	case ErrorKindValidation:
		return "validation_error"
	case ErrorKindTransport:
		return "transport_error"
	case ErrorKindConnection:
		return "connection_error"
	case ErrorKindProtocol:
		return "protocol_error"
	case ErrorKindParse:
		return "parse_error"
	case ErrorKindUnknownMode:
		return "unknown_mode_error"
	default:
		return "error"
	}
}
