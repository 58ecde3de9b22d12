package ojp

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	iso8601 "github.com/senseyeio/duration"
	"golang.org/x/net/html/charset"

	"github.com/ojpilot/ojpilot/pkg/util"
)

// EntryFault records one result entry dropped during folding. The rest of
// the result set is unaffected; callers log and count these.
type EntryFault struct {
	Index int
	Err   *ErrorInfo
}

func (f EntryFault) String() string {
	return fmt.Sprintf("entry %d: %s", f.Index, f.Err)
}

// ParseLocationResponse folds an OJP location information reply into
// Locations. Entries that cannot be understood are skipped and reported as
// faults; only an envelope-level problem (unparsable document, missing
// delivery, protocol fault) returns an error.
func ParseLocationResponse(body []byte) ([]Location, []EntryFault, error) {
	document, err := decodeResponse(body)
	if err != nil {
		return nil, nil, err
	}

	delivery := document.ServiceDelivery.LocationDelivery
	if delivery == nil {
		return nil, nil, NewParseError("response contains no OJPLocationInformationDelivery")
	}

	if err := deliveryFault(document.ServiceDelivery.Status, delivery.Status, delivery.ErrorCondition); err != nil {
		return nil, nil, err
	}

	locations := []Location{}
	var faults []EntryFault

	for index, place := range delivery.Places {
		location, err := foldLocation(place)
		if err != nil {
			faults = append(faults, EntryFault{Index: index, Err: AsErrorInfo(err, ErrorKindParse)})
			continue
		}

		locations = append(locations, location)
	}

	return locations, faults, nil
}

// ParseTripResponse folds an OJP trip reply into Trips, enriching leg
// endpoints with coordinates from the response context where the producer
// supplies them.
func ParseTripResponse(body []byte) ([]Trip, []EntryFault, error) {
	document, err := decodeResponse(body)
	if err != nil {
		return nil, nil, err
	}

	delivery := document.ServiceDelivery.TripDelivery
	if delivery == nil {
		return nil, nil, NewParseError("response contains no OJPTripDelivery")
	}

	if err := deliveryFault(document.ServiceDelivery.Status, delivery.Status, delivery.ErrorCondition); err != nil {
		return nil, nil, err
	}

	coordinatesIndex := buildContextIndex(delivery.ResponseContext)

	trips := []Trip{}
	var faults []EntryFault

	for index, result := range delivery.Results {
		trip, err := foldTrip(result, coordinatesIndex)
		if err != nil {
			faults = append(faults, EntryFault{Index: index, Err: AsErrorInfo(err, ErrorKindParse)})
			continue
		}

		trips = append(trips, trip)
	}

	return trips, faults, nil
}

func decodeResponse(body []byte) (*responseDocument, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, NewParseError("response body is empty")
	}

	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.CharsetReader = charset.NewReaderLabel

	var document responseDocument
	if err := decoder.Decode(&document); err != nil {
		return nil, NewParseError("response is not well-formed XML: %s", err)
	}

	// Decode stops at the root's end tag. Only whitespace and comments may
	// follow it; anything else means the body is not a single XML document.
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewParseError("response is not well-formed XML: %s", err)
		}

		switch trailing := token.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(trailing)) > 0 {
				return nil, NewParseError("response carries content after the closing OJP element")
			}
		case xml.Comment:
		default:
			return nil, NewParseError("response carries content after the closing OJP element")
		}
	}

	return &document, nil
}

// deliveryFault maps the protocol's own status and error elements onto a
// ProtocolError. A missing Status counts as success; producers only send
// "false" together with an error condition.
func deliveryFault(serviceStatus string, deliveryStatus string, condition *errorCondition) error {
	failed := serviceStatus == "false" || deliveryStatus == "false" || condition != nil
	if !failed {
		return nil
	}

	return NewProtocolError(condition.message())
}

func foldLocation(result placeResult) (Location, error) {
	place := result.Place
	location := Location{}

	switch {
	case place.StopPlace != nil:
		location.Type = LocationTypeStop
		location.StopPointRef = strings.TrimSpace(place.StopPlace.StopPlaceRef)
		location.Name = util.FirstNonEmpty(place.Name.Text, place.StopPlace.StopPlaceName.Text)
	case place.StopPoint != nil:
		location.Type = LocationTypeStop
		location.StopPointRef = strings.TrimSpace(place.StopPoint.StopPointRef)
		location.Name = util.FirstNonEmpty(place.Name.Text, place.StopPoint.StopPointName.Text)
	case place.Address != nil:
		location.Type = LocationTypeAddress
		location.Name = util.FirstNonEmpty(place.Name.Text, place.Address.Name.Text)
	case place.PointOfInterest != nil:
		location.Type = LocationTypePOI
		location.Name = util.FirstNonEmpty(place.Name.Text, place.PointOfInterest.Name.Text)
	default:
		return Location{}, NewParseError("Place: no StopPlace, StopPoint, Address or PointOfInterest element")
	}

	if location.Name == "" {
		return Location{}, NewParseError("Place/Name: missing display name")
	}

	if location.Type == LocationTypeStop && location.StopPointRef == "" {
		return Location{}, NewParseError("Place: stop carries no stop point reference")
	}

	coordinates, err := parseGeoPosition(place.GeoPosition)
	if err != nil {
		return Location{}, err
	}
	location.Coordinates = coordinates

	if result.Probability != "" {
		probability, err := strconv.ParseFloat(strings.TrimSpace(result.Probability), 64)
		if err != nil {
			return Location{}, NewParseError("PlaceResult/Probability: %q is not a number", result.Probability)
		}
		location.Probability = probability
	}

	return location, nil
}

func foldTrip(result tripResult, coordinatesIndex map[string]Coordinates) (Trip, error) {
	element := result.Trip

	if len(element.Legs) == 0 {
		return Trip{}, NewParseError("Trip: contains no legs")
	}

	legs := make([]Leg, 0, len(element.Legs))
	timedLegCount := 0

	for index, legElm := range element.Legs {
		leg, timed, err := foldLeg(legElm)
		if err != nil {
			info := AsErrorInfo(err, ErrorKindParse)
			return Trip{}, &ErrorInfo{
				Kind:    info.Kind,
				Message: fmt.Sprintf("Leg %d: %s", index+1, info.Message),
			}
		}

		if timed {
			timedLegCount++
		}
		legs = append(legs, leg)
	}

	enrichCoordinates(legs, coordinatesIndex)

	departure, arrival, err := tripEndpoints(legs, element)
	if err != nil {
		return Trip{}, err
	}

	if arrival.Before(departure) {
		return Trip{}, NewParseError("Trip: arrival %s is before departure %s",
			formatTimestamp(arrival), formatTimestamp(departure))
	}

	transfers, err := tripTransfers(timedLegCount, element)
	if err != nil {
		return Trip{}, err
	}

	return Trip{
		DepartureTime:        departure,
		ArrivalTime:          arrival,
		TotalDurationMinutes: int(arrival.Sub(departure).Minutes()),
		Transfers:            transfers,
		Legs:                 legs,
	}, nil
}

// tripEndpoints derives the trip's departure and arrival from the legs,
// falling back to the producer's own summary times only when no leg
// carries a schedule.
func tripEndpoints(legs []Leg, element tripElement) (time.Time, time.Time, error) {
	var departure, arrival *time.Time

	for i := range legs {
		if legs[i].DepartureTime != nil {
			departure = legs[i].DepartureTime
			break
		}
	}
	for i := len(legs) - 1; i >= 0; i-- {
		if legs[i].ArrivalTime != nil {
			arrival = legs[i].ArrivalTime
			break
		}
	}

	if departure == nil && element.StartTime != "" {
		parsed, err := parseTimestamp(element.StartTime)
		if err != nil {
			return time.Time{}, time.Time{}, NewParseError("Trip/StartTime: %s", err)
		}
		departure = &parsed
	}

	if arrival == nil && element.EndTime != "" {
		parsed, err := parseTimestamp(element.EndTime)
		if err != nil {
			return time.Time{}, time.Time{}, NewParseError("Trip/EndTime: %s", err)
		}
		arrival = &parsed
	}

	if departure == nil {
		return time.Time{}, time.Time{}, NewParseError("Trip: no departure time in legs or summary")
	}
	if arrival == nil {
		return time.Time{}, time.Time{}, NewParseError("Trip: no arrival time in legs or summary")
	}

	return *departure, *arrival, nil
}

// tripTransfers counts changes between timed legs. The producer's summary
// is only consulted for itineraries with no timed legs at all.
func tripTransfers(timedLegCount int, element tripElement) (int, error) {
	if timedLegCount > 0 {
		return timedLegCount - 1, nil
	}

	if element.Transfers == "" {
		return 0, nil
	}

	transfers, err := strconv.Atoi(strings.TrimSpace(element.Transfers))
	if err != nil || transfers < 0 {
		return 0, NewParseError("Trip/Transfers: %q is not a non-negative integer", element.Transfers)
	}

	return transfers, nil
}

func foldLeg(element legElement) (Leg, bool, error) {
	switch {
	case element.TimedLeg != nil:
		leg, err := foldTimedLeg(*element.TimedLeg, element.Duration)
		return leg, err == nil, err
	case element.TransferLeg != nil:
		leg, err := foldTransferLeg(*element.TransferLeg, element.Duration)
		return leg, false, err
	case element.ContinuousLeg != nil:
		leg, err := foldContinuousLeg(*element.ContinuousLeg, element.Duration)
		return leg, false, err
	default:
		return Leg{}, false, NewParseError("Leg: no TimedLeg, TransferLeg or ContinuousLeg element")
	}
}

func foldTimedLeg(element timedLegElement, fallbackDuration string) (Leg, error) {
	mode, err := modeForService(element.Service.Mode)
	if err != nil {
		return Leg{}, err
	}

	departure, err := parseOptionalTimestamp(element.Board.ServiceDeparture.best(), "LegBoard/ServiceDeparture")
	if err != nil {
		return Leg{}, err
	}

	arrival, err := parseOptionalTimestamp(element.Alight.ServiceArrival.best(), "LegAlight/ServiceArrival")
	if err != nil {
		return Leg{}, err
	}

	duration := 0
	switch {
	case departure != nil && arrival != nil:
		duration = int(arrival.Sub(*departure).Minutes())
		if duration < 0 {
			return Leg{}, NewParseError("TimedLeg: arrives before it departs")
		}
	case fallbackDuration != "":
		duration, err = parseDurationMinutes(fallbackDuration, "Leg/Duration")
		if err != nil {
			return Leg{}, err
		}
	}

	return Leg{
		Mode:            mode,
		Origin:          stopCallLocation(element.Board),
		Destination:     stopCallLocation(element.Alight),
		DepartureTime:   departure,
		ArrivalTime:     arrival,
		DurationMinutes: duration,
		LineName:        util.FirstNonEmpty(element.Service.PublishedServiceName.Text, element.Service.PublicCode),
		Direction:       element.Service.DestinationText.Text,
	}, nil
}

func foldTransferLeg(element transferElement, fallbackDuration string) (Leg, error) {
	mode, err := modeFromTransferType(element.TransferType)
	if err != nil {
		return Leg{}, err
	}

	origin, err := foldPlaceRef(element.Start, "TransferLeg/LegStart")
	if err != nil {
		return Leg{}, err
	}

	destination, err := foldPlaceRef(element.End, "TransferLeg/LegEnd")
	if err != nil {
		return Leg{}, err
	}

	duration, err := legDuration(element.Duration, fallbackDuration)
	if err != nil {
		return Leg{}, err
	}

	return Leg{
		Mode:            mode,
		Origin:          origin,
		Destination:     destination,
		DurationMinutes: duration,
	}, nil
}

func foldContinuousLeg(element continuousLegElm, fallbackDuration string) (Leg, error) {
	mode, err := modeFromIndividualCode(element.Service.modeCode())
	if err != nil {
		return Leg{}, err
	}

	origin, err := foldPlaceRef(element.Start, "ContinuousLeg/LegStart")
	if err != nil {
		return Leg{}, err
	}

	destination, err := foldPlaceRef(element.End, "ContinuousLeg/LegEnd")
	if err != nil {
		return Leg{}, err
	}

	duration, err := legDuration(element.Duration, fallbackDuration)
	if err != nil {
		return Leg{}, err
	}

	return Leg{
		Mode:            mode,
		Origin:          origin,
		Destination:     destination,
		DurationMinutes: duration,
	}, nil
}

func stopCallLocation(call stopCallElement) Location {
	ref := strings.TrimSpace(call.StopPointRef)

	name := util.FirstNonEmpty(call.StopPointName.Text, ref)
	if name == "" {
		// Producers occasionally send a stop call with neither element;
		// keep the leg usable under a placeholder.
		name = "Unknown"
	}

	return Location{
		StopPointRef: ref,
		Name:         name,
		Type:         LocationTypeStop,
	}
}

func foldPlaceRef(element placeRefElement, context string) (Location, error) {
	coordinates, err := parseGeoPosition(element.GeoPosition)
	if err != nil {
		return Location{}, NewParseError("%s: %s", context, AsErrorInfo(err, ErrorKindParse).Message)
	}

	ref := strings.TrimSpace(element.StopPointRef)
	name := util.FirstNonEmpty(element.Name.Text, ref)
	if name == "" {
		return Location{}, NewParseError("%s: place has neither a name nor a stop point reference", context)
	}

	locationType := LocationTypePOI
	if ref != "" {
		locationType = LocationTypeStop
	}

	return Location{
		StopPointRef: ref,
		Name:         name,
		Type:         locationType,
		Coordinates:  coordinates,
	}, nil
}

func legDuration(durations ...string) (int, error) {
	for _, raw := range durations {
		if raw == "" {
			continue
		}

		return parseDurationMinutes(raw, "Duration")
	}

	return 0, nil
}

func buildContextIndex(context *tripResponseContext) map[string]Coordinates {
	index := map[string]Coordinates{}
	if context == nil {
		return index
	}

	// Context entries are supplementary, so malformed ones are skipped
	// rather than failing any trip.
	for _, place := range context.Places {
		coordinates, err := parseGeoPosition(place.GeoPosition)
		if err != nil || coordinates == nil {
			continue
		}

		if place.StopPlace != nil && place.StopPlace.StopPlaceRef != "" {
			index[strings.TrimSpace(place.StopPlace.StopPlaceRef)] = *coordinates
		}
		if place.StopPoint != nil && place.StopPoint.StopPointRef != "" {
			index[strings.TrimSpace(place.StopPoint.StopPointRef)] = *coordinates
		}
	}

	return index
}

func enrichCoordinates(legs []Leg, index map[string]Coordinates) {
	if len(index) == 0 {
		return
	}

	for i := range legs {
		fillCoordinates(&legs[i].Origin, index)
		fillCoordinates(&legs[i].Destination, index)
	}
}

func fillCoordinates(location *Location, index map[string]Coordinates) {
	if location.Coordinates != nil || location.StopPointRef == "" {
		return
	}

	if coordinates, found := index[location.StopPointRef]; found {
		filled := coordinates
		location.Coordinates = &filled
	}
}

func parseGeoPosition(position *geoPosition) (*Coordinates, error) {
	if position == nil {
		return nil, nil
	}

	longitude, err := strconv.ParseFloat(strings.TrimSpace(position.Longitude), 64)
	if err != nil {
		return nil, NewParseError("GeoPosition/Longitude: %q is not a number", position.Longitude)
	}

	latitude, err := strconv.ParseFloat(strings.TrimSpace(position.Latitude), 64)
	if err != nil {
		return nil, NewParseError("GeoPosition/Latitude: %q is not a number", position.Latitude)
	}

	coordinates := Coordinates{Longitude: longitude, Latitude: latitude}
	if err := coordinates.Validate(); err != nil {
		return nil, NewParseError("GeoPosition: %s", err)
	}

	return &coordinates, nil
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// parseTimestamp reads an ISO-8601 timestamp, interpreting a missing zone
// as UTC per the OJP convention. The result is always in UTC.
func parseTimestamp(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("%q is not an ISO-8601 timestamp", raw)
}

func parseOptionalTimestamp(raw string, context string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	parsed, err := parseTimestamp(raw)
	if err != nil {
		return nil, NewParseError("%s: %s", context, err)
	}

	return &parsed, nil
}

// parseDurationMinutes reads an ISO-8601 duration such as PT6M or PT1H12M
// and reduces it to whole minutes.
func parseDurationMinutes(raw string, context string) (int, error) {
	parsed, err := iso8601.ParseISO8601(strings.TrimSpace(raw))
	if err != nil {
		return 0, NewParseError("%s: %q is not an ISO-8601 duration", context, raw)
	}

	reference := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	shifted := parsed.Shift(reference)

	return int(shifted.Sub(reference).Minutes()), nil
}
