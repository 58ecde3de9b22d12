package tools

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/ojpilot/ojpilot/pkg/journey"
	"github.com/ojpilot/ojpilot/pkg/ojp"
	"github.com/ojpilot/ojpilot/pkg/util"
)

// Planner is the slice of the journey planner the plan_trip tool needs.
type Planner interface {
	PlanByName(ctx context.Context, originQuery string, destinationQuery string, options Options) ojp.Envelope
}

// Options aliases the planner options so callers of this package do not
// need a second import for them.
type Options = journey.Options

// Server executes the tool calls. Argument problems are answered as
// validation-failure envelopes so assistants always receive the same
// result shape, successful or not.
type Server struct {
	Client  journey.Client
	Planner Planner
}

func NewServer(client journey.Client, planner Planner) *Server {
	return &Server{Client: client, Planner: planner}
}

func (s *Server) locationSearch(ctx context.Context, args map[string]any) ojp.Envelope {
	query, err := requireStringArg(args, "query")
	if err != nil {
		return ojp.Failure(err, ojp.ErrorKindValidation)
	}

	maxResults, err := intArg(args, "max_results", 10)
	if err != nil {
		return ojp.Failure(err, ojp.ErrorKindValidation)
	}

	return s.Client.SearchLocations(ctx, query, maxResults)
}

func (s *Server) tripRequest(ctx context.Context, args map[string]any) ojp.Envelope {
	originName, err := requireStringArg(args, "origin")
	if err != nil {
		return ojp.Failure(err, ojp.ErrorKindValidation)
	}

	destinationName, err := requireStringArg(args, "destination")
	if err != nil {
		return ojp.Failure(err, ojp.ErrorKindValidation)
	}

	originRef, err := requireStringArg(args, "origin_stop_point_ref")
	if err != nil {
		return ojp.Failure(err, ojp.ErrorKindValidation)
	}

	destinationRef, err := requireStringArg(args, "destination_stop_point_ref")
	if err != nil {
		return ojp.Failure(err, ojp.ErrorKindValidation)
	}

	departureTime, modes, maxResults, err := tripOptionArgs(args)
	if err != nil {
		return ojp.Failure(err, ojp.ErrorKindValidation)
	}

	return s.Client.PlanTrip(ctx, ojp.TripParams{
		OriginRef:       originRef,
		DestinationRef:  destinationRef,
		OriginName:      originName,
		DestinationName: destinationName,
		DepartureTime:   departureTime,
		Modes:           modes,
		MaxResults:      maxResults,
	})
}

func (s *Server) planTrip(ctx context.Context, args map[string]any) ojp.Envelope {
	origin, err := requireStringArg(args, "origin")
	if err != nil {
		return ojp.Failure(err, ojp.ErrorKindValidation)
	}

	destination, err := requireStringArg(args, "destination")
	if err != nil {
		return ojp.Failure(err, ojp.ErrorKindValidation)
	}

	departureTime, modes, maxResults, err := tripOptionArgs(args)
	if err != nil {
		return ojp.Failure(err, ojp.ErrorKindValidation)
	}

	return s.Planner.PlanByName(ctx, origin, destination, Options{
		DepartureTime: departureTime,
		Modes:         modes,
		MaxResults:    maxResults,
	})
}

// tripOptionArgs decodes the optional parameters shared by trip_request
// and plan_trip.
func tripOptionArgs(args map[string]any) (departureTime *time.Time, modes []ojp.TransportMode, maxResults int, err error) {
	rawDeparture, err := stringArg(args, "departure_time")
	if err != nil {
		return nil, nil, 0, err
	}

	departureTime, err = ojp.ParseDepartureTime(rawDeparture)
	if err != nil {
		return nil, nil, 0, err
	}

	rawModes, err := stringSliceArg(args, "transport_modes")
	if err != nil {
		return nil, nil, 0, err
	}

	modes, err = ojp.ParseModeParam(rawModes)
	if err != nil {
		return nil, nil, 0, err
	}

	maxResults, err = intArg(args, "max_results", journey.DefaultTripResults)
	if err != nil {
		return nil, nil, 0, err
	}

	return departureTime, modes, maxResults, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	value, present := args[key]
	if !present || value == nil {
		return "", nil
	}

	text, ok := value.(string)
	if !ok {
		return "", ojp.NewValidationError(key, "must be a string")
	}

	return text, nil
}

func requireStringArg(args map[string]any, key string) (string, error) {
	text, err := stringArg(args, key)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", ojp.NewValidationError(key, "is required")
	}

	return text, nil
}

// intArg reads an integer argument. JSON numbers arrive as float64, and
// assistants occasionally quote them, so numeric strings are accepted too.
func intArg(args map[string]any, key string, fallback int) (int, error) {
	value, present := args[key]
	if !present || value == nil {
		return fallback, nil
	}

	switch typed := value.(type) {
	case float64:
		return int(typed), nil
	case int:
		return typed, nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(typed))
		if err != nil {
			return 0, ojp.NewValidationError(key, "%q is not an integer", typed)
		}

		return parsed, nil
	default:
		return 0, ojp.NewValidationError(key, "must be an integer")
	}
}

// stringSliceArg reads a list-of-strings argument. A plain string is read
// as a comma-separated list, matching the web API's query parameter form.
func stringSliceArg(args map[string]any, key string) ([]string, error) {
	value, present := args[key]
	if !present || value == nil {
		return nil, nil
	}

	switch typed := value.(type) {
	case []string:
		return typed, nil
	case []any:
		values := make([]string, 0, len(typed))
		for _, item := range typed {
			text, ok := item.(string)
			if !ok {
				return nil, ojp.NewValidationError(key, "must be a list of strings")
			}

			values = append(values, text)
		}

		return values, nil
	case string:
		values := strings.Split(typed, ",")
		for i := range values {
			values[i] = strings.TrimSpace(values[i])
		}
		util.InPlaceFilter(&values, func(value string) bool { return value != "" })

		return values, nil
	default:
		return nil, ojp.NewValidationError(key, "must be a list of strings")
	}
}
