package routes

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ojpilot/ojpilot/pkg/journey"
	"github.com/ojpilot/ojpilot/pkg/ojp"
	"github.com/ojpilot/ojpilot/pkg/util"
)

func TripsRouter(router fiber.Router, client *ojp.Client, planner *journey.Planner) {
	router.Get("/plan", planTrips(client))
	router.Get("/plan_by_name", planTripsByName(planner))
}

func planTrips(client *ojp.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query, err := parseTripQuery(c)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		envelope := client.PlanTrip(c.UserContext(), ojp.TripParams{
			OriginRef:      c.Query("origin_ref"),
			DestinationRef: c.Query("destination_ref"),
			DepartureTime:  query.departureTime,
			Modes:          query.modes,
			MaxResults:     query.maxResults,
		})

		return sendEnvelope(c, envelope)
	}
}

func planTripsByName(planner *journey.Planner) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query, err := parseTripQuery(c)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		envelope := planner.PlanByName(c.UserContext(), c.Query("origin"), c.Query("destination"), journey.Options{
			DepartureTime: query.departureTime,
			Modes:         query.modes,
			MaxResults:    query.maxResults,
		})

		return sendEnvelope(c, envelope)
	}
}

type tripQuery struct {
	departureTime *time.Time
	modes         []ojp.TransportMode
	maxResults    int
}

func parseTripQuery(c *fiber.Ctx) (tripQuery, error) {
	maxResults, err := strconv.Atoi(c.Query("max_results", strconv.Itoa(journey.DefaultTripResults)))
	if err != nil {
		return tripQuery{}, errors.New("Parameter max_results should be an integer")
	}

	departureTime, err := ojp.ParseDepartureTime(c.Query("departure_time"))
	if err != nil {
		return tripQuery{}, errors.New("Parameter departure_time should be an ISO 8601 datetime")
	}

	modeNames := strings.Split(c.Query("modes"), ",")
	for i := range modeNames {
		modeNames[i] = strings.TrimSpace(modeNames[i])
	}
	util.InPlaceFilter(&modeNames, func(name string) bool { return name != "" })

	modes, err := ojp.ParseModeParam(modeNames)
	if err != nil {
		return tripQuery{}, err
	}

	return tripQuery{departureTime: departureTime, modes: modes, maxResults: maxResults}, nil
}
