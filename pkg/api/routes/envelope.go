package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ojpilot/ojpilot/pkg/ojp"
)

// sendEnvelope renders an envelope through its tool view. Failed lookups
// still answer 200 with success=false so callers only get transport-level
// statuses for transport-level problems.
func sendEnvelope(c *fiber.Ctx, envelope ojp.Envelope) error {
	view, err := envelope.ToolView()
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(view)
}
