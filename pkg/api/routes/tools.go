package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ojpilot/ojpilot/pkg/tools"
)

// ToolCatalog lists the assistant-callable tools with their parameter
// schemas, matching what the MCP server advertises.
func ToolCatalog(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"tools": tools.Catalog(),
	})
}
