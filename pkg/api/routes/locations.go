package routes

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ojpilot/ojpilot/pkg/ojp"
)

func LocationsRouter(router fiber.Router, client *ojp.Client) {
	router.Get("/search", searchLocations(client))
}

func searchLocations(client *ojp.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		maxResults, err := strconv.Atoi(c.Query("max_results", "10"))
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter max_results should be an integer",
			})
		}

		envelope := client.SearchLocations(c.UserContext(), c.Query("query"), maxResults)

		return sendEnvelope(c, envelope)
	}
}
