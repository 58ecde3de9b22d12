package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ojpilot/ojpilot/pkg/api/routes"
	"github.com/ojpilot/ojpilot/pkg/journey"
	"github.com/ojpilot/ojpilot/pkg/ojp"
)

// NewServer assembles the fiber application with every route attached.
func NewServer(client *ojp.Client, planner *journey.Planner) *fiber.App {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	webApp.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	group := webApp.Group("/core")

	group.Get("version", routes.APIVersion)
	group.Get("tools", routes.ToolCatalog)

	routes.LocationsRouter(group.Group("/locations"), client)
	routes.TripsRouter(group.Group("/trips"), client, planner)

	return webApp
}

func SetupServer(listen string, client *ojp.Client, planner *journey.Planner) error {
	return NewServer(client, planner).Listen(listen)
}
