package ojp

// Response document layout. Matching is by local element name, which keeps
// the decoder indifferent to whichever prefixes the producer chose for the
// ojp and siri namespaces.
//
// Every scalar is declared as a string. Timestamps, numbers and coordinates
// are converted during folding so a bad value fails only its own entry
// instead of aborting the whole decode.
type responseDocument struct {
	ServiceDelivery serviceDelivery `xml:"OJPResponse>ServiceDelivery"`
}

type serviceDelivery struct {
	ResponseTimestamp string                       `xml:"ResponseTimestamp"`
	ProducerRef       string                       `xml:"ProducerRef"`
	Status            string                       `xml:"Status"`
	LocationDelivery  *locationInformationDelivery `xml:"OJPLocationInformationDelivery"`
	TripDelivery      *tripDelivery                `xml:"OJPTripDelivery"`
}

type locationInformationDelivery struct {
	ResponseTimestamp string          `xml:"ResponseTimestamp"`
	RequestMessageRef string          `xml:"RequestMessageRef"`
	Status            string          `xml:"Status"`
	ErrorCondition    *errorCondition `xml:"ErrorCondition"`
	Places            []placeResult   `xml:"PlaceResult"`
}

type tripDelivery struct {
	ResponseTimestamp string               `xml:"ResponseTimestamp"`
	RequestMessageRef string               `xml:"RequestMessageRef"`
	Status            string               `xml:"Status"`
	ErrorCondition    *errorCondition      `xml:"ErrorCondition"`
	ResponseContext   *tripResponseContext `xml:"TripResponseContext"`
	Results           []tripResult         `xml:"TripResult"`
}

type errorCondition struct {
	Description string     `xml:"Description"`
	OtherError  otherError `xml:"OtherError"`
}

type otherError struct {
	ErrorText string `xml:"ErrorText"`
}

// message flattens the error condition to its most specific text.
func (e *errorCondition) message() string {
	if e == nil {
		return ""
	}

	if e.Description != "" {
		return e.Description
	}

	return e.OtherError.ErrorText
}

type placeResult struct {
	Place       placeElement `xml:"Place"`
	Complete    string       `xml:"Complete"`
	Probability string       `xml:"Probability"`
}

type placeElement struct {
	StopPlace       *stopPlaceElement `xml:"StopPlace"`
	StopPoint       *stopPointElement `xml:"StopPoint"`
	Address         *namedPlace       `xml:"Address"`
	PointOfInterest *namedPlace       `xml:"PointOfInterest"`
	Name            textContent       `xml:"Name"`
	GeoPosition     *geoPosition      `xml:"GeoPosition"`
}

type stopPlaceElement struct {
	StopPlaceRef  string      `xml:"StopPlaceRef"`
	StopPlaceName textContent `xml:"StopPlaceName"`
}

type stopPointElement struct {
	StopPointRef  string      `xml:"StopPointRef"`
	StopPointName textContent `xml:"StopPointName"`
}

type namedPlace struct {
	Name textContent `xml:"Name"`
}

type geoPosition struct {
	Longitude string `xml:"Longitude"`
	Latitude  string `xml:"Latitude"`
}

type textContent struct {
	Text string `xml:"Text"`
}

type tripResponseContext struct {
	Places []placeElement `xml:"Places>Place"`
}

type tripResult struct {
	ID   string      `xml:"Id"`
	Trip tripElement `xml:"Trip"`
}

type tripElement struct {
	ID        string       `xml:"Id"`
	Duration  string       `xml:"Duration"`
	StartTime string       `xml:"StartTime"`
	EndTime   string       `xml:"EndTime"`
	Transfers string       `xml:"Transfers"`
	Legs      []legElement `xml:"Leg"`
}

type legElement struct {
	ID            string            `xml:"Id"`
	Duration      string            `xml:"Duration"`
	TimedLeg      *timedLegElement  `xml:"TimedLeg"`
	TransferLeg   *transferElement  `xml:"TransferLeg"`
	ContinuousLeg *continuousLegElm `xml:"ContinuousLeg"`
}

type timedLegElement struct {
	Board   stopCallElement `xml:"LegBoard"`
	Alight  stopCallElement `xml:"LegAlight"`
	Service serviceElement  `xml:"Service"`
}

type stopCallElement struct {
	StopPointRef     string           `xml:"StopPointRef"`
	StopPointName    textContent      `xml:"StopPointName"`
	ServiceDeparture *serviceTimePair `xml:"ServiceDeparture"`
	ServiceArrival   *serviceTimePair `xml:"ServiceArrival"`
	Order            string           `xml:"Order"`
}

// serviceTimePair carries the planned time plus the live estimate when the
// producer has one. The estimate wins during folding.
type serviceTimePair struct {
	TimetabledTime string `xml:"TimetabledTime"`
	EstimatedTime  string `xml:"EstimatedTime"`
}

func (p *serviceTimePair) best() string {
	if p == nil {
		return ""
	}

	if p.EstimatedTime != "" {
		return p.EstimatedTime
	}

	return p.TimetabledTime
}

type serviceElement struct {
	Mode                 modeElement `xml:"Mode"`
	PublishedServiceName textContent `xml:"PublishedServiceName"`
	PublicCode           string      `xml:"PublicCode"`
	DestinationText      textContent `xml:"DestinationText"`
	LineRef              string      `xml:"LineRef"`
}

type modeElement struct {
	PtMode      string      `xml:"PtMode"`
	RailSubmode string      `xml:"RailSubmode"`
	BusSubmode  string      `xml:"BusSubmode"`
	TramSubmode string      `xml:"TramSubmode"`
	Name        textContent `xml:"Name"`
}

type transferElement struct {
	TransferType string          `xml:"TransferType"`
	Start        placeRefElement `xml:"LegStart"`
	End          placeRefElement `xml:"LegEnd"`
	Duration     string          `xml:"Duration"`
}

type continuousLegElm struct {
	Start    placeRefElement          `xml:"LegStart"`
	End      placeRefElement          `xml:"LegEnd"`
	Duration string                   `xml:"Duration"`
	Service  continuousServiceElement `xml:"Service"`
}

type continuousServiceElement struct {
	IndividualMode string `xml:"IndividualMode"`
	PersonalMode   string `xml:"PersonalMode"`
}

func (s continuousServiceElement) modeCode() string {
	if s.IndividualMode != "" {
		return s.IndividualMode
	}

	return s.PersonalMode
}

type placeRefElement struct {
	StopPointRef string       `xml:"StopPointRef"`
	Name         textContent  `xml:"Name"`
	GeoPosition  *geoPosition `xml:"GeoPosition"`
}
