package ojp

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/ojpilot/ojpilot/pkg/util"
)

const (
	ojpNamespace  = "http://www.vdv.de/ojp"
	siriNamespace = "http://www.siri.org.uk/siri"
	ojpVersion    = "2.0"

	// Result ceilings imposed by the endpoint. Larger requests are clamped
	// rather than rejected.
	LocationResultsCeiling = 50
	TripResultsCeiling     = 20
)

// RequestBuilder renders OJP request documents. The zero value is usable;
// Clock exists so tests can pin the request timestamps.
type RequestBuilder struct {
	RequestorRef string
	Clock        func() time.Time
}

type LocationSearchParams struct {
	Query      string
	MaxResults int
}

type TripParams struct {
	OriginRef       string
	DestinationRef  string
	OriginName      string
	DestinationName string

	// DepartureTime nil means "leave now".
	DepartureTime *time.Time

	// Modes restricts results to the given public transport modes. Nil
	// means no restriction. Individual modes carry no filter code and are
	// ignored here.
	Modes []TransportMode

	MaxResults int
}

// Request document layout. Element names carry their prefixes literally so
// the marshalled output matches the namespace layout the endpoint expects.
type requestDocument struct {
	XMLName       xml.Name   `xml:"OJP"`
	Namespace     string     `xml:"xmlns,attr"`
	SiriNamespace string     `xml:"xmlns:siri,attr"`
	Version       string     `xml:"version,attr"`
	Request       ojpRequest `xml:"OJPRequest"`
}

type ojpRequest struct {
	ServiceRequest serviceRequest `xml:"siri:ServiceRequest"`
}

type serviceRequest struct {
	RequestTimestamp string                      `xml:"siri:RequestTimestamp"`
	RequestorRef     string                      `xml:"siri:RequestorRef"`
	LocationRequest  *locationInformationRequest `xml:"OJPLocationInformationRequest,omitempty"`
	TripRequest      *tripRequestElement         `xml:"OJPTripRequest,omitempty"`
}

type locationInformationRequest struct {
	RequestTimestamp  string          `xml:"siri:RequestTimestamp"`
	MessageIdentifier string          `xml:"siri:MessageIdentifier"`
	InitialInput      initialInput    `xml:"InitialInput"`
	Restrictions      lirRestrictions `xml:"Restrictions"`
}

type initialInput struct {
	Name string `xml:"Name"`
}

type lirRestrictions struct {
	Types           []string `xml:"Type"`
	NumberOfResults int      `xml:"NumberOfResults"`
}

type tripRequestElement struct {
	RequestTimestamp  string       `xml:"siri:RequestTimestamp"`
	MessageIdentifier string       `xml:"siri:MessageIdentifier"`
	Origin            placeContext `xml:"Origin"`
	Destination       placeContext `xml:"Destination"`
	Params            tripParams   `xml:"Params"`
}

type placeContext struct {
	PlaceRef   placeRef `xml:"PlaceRef"`
	DepArrTime string   `xml:"DepArrTime,omitempty"`
}

type placeRef struct {
	StopPointRef string       `xml:"siri:StopPointRef"`
	Name         *textElement `xml:"Name,omitempty"`
}

type textElement struct {
	Text string `xml:"Text"`
}

type tripParams struct {
	ModeFilter      *modeFilter `xml:"ModeAndModeOfOperationFilter,omitempty"`
	NumberOfResults int         `xml:"NumberOfResults"`
}

type modeFilter struct {
	Exclude bool     `xml:"Exclude"`
	PtModes []string `xml:"PtMode"`
}

// LocationRequest renders an OJPLocationInformationRequest for a free-text
// stop search.
func (b RequestBuilder) LocationRequest(params LocationSearchParams) ([]byte, error) {
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return nil, NewValidationError("query", "must not be empty")
	}

	maxResults, err := clampResults("max_results", params.MaxResults, LocationResultsCeiling)
	if err != nil {
		return nil, err
	}

	timestamp := b.timestamp()

	return b.render(serviceRequest{
		RequestTimestamp: timestamp,
		RequestorRef:     b.requestorRef(),
		LocationRequest: &locationInformationRequest{
			RequestTimestamp:  timestamp,
			MessageIdentifier: "LIR-1",
			InitialInput:      initialInput{Name: query},
			Restrictions: lirRestrictions{
				Types:           []string{"stop"},
				NumberOfResults: maxResults,
			},
		},
	})
}

// TripRequest renders an OJPTripRequest between two stop point references.
func (b RequestBuilder) TripRequest(params TripParams) ([]byte, error) {
	originRef := strings.TrimSpace(params.OriginRef)
	if originRef == "" {
		return nil, NewValidationError("origin_ref", "must not be empty")
	}

	destinationRef := strings.TrimSpace(params.DestinationRef)
	if destinationRef == "" {
		return nil, NewValidationError("destination_ref", "must not be empty")
	}

	maxResults, err := clampResults("max_results", params.MaxResults, TripResultsCeiling)
	if err != nil {
		return nil, err
	}

	// Absent departure time means leave now.
	departure := b.now()
	if params.DepartureTime != nil {
		departure = params.DepartureTime.UTC()
	}

	timestamp := b.timestamp()

	return b.render(serviceRequest{
		RequestTimestamp: timestamp,
		RequestorRef:     b.requestorRef(),
		TripRequest: &tripRequestElement{
			RequestTimestamp:  timestamp,
			MessageIdentifier: "TR-1",
			Origin: placeContext{
				PlaceRef:   newPlaceRef(originRef, params.OriginName),
				DepArrTime: formatTimestamp(departure),
			},
			Destination: placeContext{
				PlaceRef: newPlaceRef(destinationRef, params.DestinationName),
			},
			Params: tripParams{
				ModeFilter:      newModeFilter(params.Modes),
				NumberOfResults: maxResults,
			},
		},
	})
}

func (b RequestBuilder) render(request serviceRequest) ([]byte, error) {
	document := requestDocument{
		Namespace:     ojpNamespace,
		SiriNamespace: siriNamespace,
		Version:       ojpVersion,
		Request:       ojpRequest{ServiceRequest: request},
	}

	body, err := xml.MarshalIndent(document, "", "    ")
	if err != nil {
		return nil, NewValidationError("request", "could not render document: %s", err)
	}

	return append([]byte(xml.Header), body...), nil
}

func (b RequestBuilder) requestorRef() string {
	if b.RequestorRef == "" {
		return "ojpilot"
	}

	return b.RequestorRef
}

func (b RequestBuilder) now() time.Time {
	if b.Clock != nil {
		return b.Clock().UTC()
	}

	return time.Now().UTC()
}

func (b RequestBuilder) timestamp() string {
	return formatTimestamp(b.now())
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func newPlaceRef(stopPointRef string, name string) placeRef {
	ref := placeRef{StopPointRef: stopPointRef}
	if name != "" {
		ref.Name = &textElement{Text: name}
	}

	return ref
}

func newModeFilter(modes []TransportMode) *modeFilter {
	var codes []string
	for _, mode := range modes {
		code, ok := ptFilterCode(mode)
		if ok && !util.ContainsString(codes, code) {
			codes = append(codes, code)
		}
	}

	if len(codes) == 0 {
		return nil
	}

	return &modeFilter{Exclude: false, PtModes: codes}
}

func clampResults(field string, value int, ceiling int) (int, error) {
	if value <= 0 {
		return 0, NewValidationError(field, "must be positive, got %d", value)
	}

	if value > ceiling {
		return ceiling, nil
	}

	return value, nil
}

// ParseDepartureTime parses a caller-supplied departure time. Accepted
// layouts follow ISO-8601; a timestamp without a zone is read as UTC per
// the OJP convention. The empty string means "not supplied" and returns
// nil without error.
func ParseDepartureTime(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}

	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}

	return nil, NewValidationError("departure_time", "%q is not an ISO-8601 date-time", value)
}
