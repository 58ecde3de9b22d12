package tools

// Tool names as assistants call them.
const (
	ToolLocationSearch = "location_search"
	ToolTripRequest    = "trip_request"
	ToolPlanTrip       = "plan_trip"
)

// Definition describes one callable tool: its name, what it does and a JSON
// Schema for its parameters. The same catalog backs the MCP server and the
// web API's tool listing.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

func Catalog() []Definition {
	return []Definition{
		{
			Name: ToolLocationSearch,
			Description: "Search for locations such as train stations, bus stops, addresses and " +
				"points of interest in Switzerland and neighbouring countries. Returns display " +
				"names, location types, coordinates and the stop point references needed for " +
				"trip planning.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Search text, e.g. a station name, address or point of interest",
					},
					"max_results": map[string]any{
						"type":        "integer",
						"default":     10,
						"description": "Maximum number of locations to return",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name: ToolTripRequest,
			Description: "Plan a journey between two known stops of the Swiss public transport " +
				"network. Requires the stop point references of both endpoints, which " +
				"location_search provides. Returns complete itineraries with per-leg modes, " +
				"times, line names and transfer counts.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"origin": map[string]any{
						"type":        "string",
						"description": "Origin location name",
					},
					"destination": map[string]any{
						"type":        "string",
						"description": "Destination location name",
					},
					"origin_stop_point_ref": map[string]any{
						"type":        "string",
						"description": "Origin stop point reference from location_search",
					},
					"destination_stop_point_ref": map[string]any{
						"type":        "string",
						"description": "Destination stop point reference from location_search",
					},
					"departure_time": map[string]any{
						"type":        "string",
						"description": "Departure time in ISO format (YYYY-MM-DDTHH:MM:SS). Defaults to now.",
					},
					"transport_modes": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"default":     []string{"public_transport"},
						"description": "Transport modes: public_transport, train, bus, tram, walking, cycling, car",
					},
					"max_results": map[string]any{
						"type":        "integer",
						"default":     5,
						"description": "Maximum number of trip results to return",
					},
				},
				"required": []string{"origin", "destination", "origin_stop_point_ref", "destination_stop_point_ref"},
			},
		},
		{
			Name: ToolPlanTrip,
			Description: "Plan a journey between two places given only their names. Resolves both " +
				"names to stops and plans in a single call, which saves the separate " +
				"location_search round trips when the names are unambiguous.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"origin": map[string]any{
						"type":        "string",
						"description": "Origin place name, e.g. \"Zürich HB\"",
					},
					"destination": map[string]any{
						"type":        "string",
						"description": "Destination place name, e.g. \"Bern\"",
					},
					"departure_time": map[string]any{
						"type":        "string",
						"description": "Departure time in ISO format (YYYY-MM-DDTHH:MM:SS). Defaults to now.",
					},
					"transport_modes": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"default":     []string{"public_transport"},
						"description": "Transport modes: public_transport, train, bus, tram, walking, cycling, car",
					},
					"max_results": map[string]any{
						"type":        "integer",
						"default":     5,
						"description": "Maximum number of trip results to return",
					},
				},
				"required": []string{"origin", "destination"},
			},
		},
	}
}
