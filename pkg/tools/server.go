package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/ojpilot/ojpilot/pkg/ojp"
)

const serverName = "ojpilot"
const serverVersion = "0.1.0"

const serverInstructions = "Tools for Swiss public transport. Use location_search to find stops " +
	"and their stop point references, then trip_request to plan between two references, or " +
	"plan_trip to do both in one call from place names."

// MCPServer assembles the MCP server with every tool from the catalog
// registered. Serving is left to RunStdio/RunHTTP.
func (s *Server) MCPServer() *server.MCPServer {
	mcpServer := server.NewMCPServer(serverName, serverVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions),
	)

	handlers := map[string]server.ToolHandlerFunc{
		ToolLocationSearch: s.handleLocationSearch,
		ToolTripRequest:    s.handleTripRequest,
		ToolPlanTrip:       s.handlePlanTrip,
	}

	for _, definition := range Catalog() {
		schema, _ := json.Marshal(definition.Parameters)

		mcpServer.AddTool(
			mcp.NewToolWithRawSchema(definition.Name, definition.Description, schema),
			handlers[definition.Name],
		)
	}

	return mcpServer
}

func (s *Server) handleLocationSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult(s.locationSearch(ctx, request.GetArguments()))
}

func (s *Server) handleTripRequest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult(s.tripRequest(ctx, request.GetArguments()))
}

func (s *Server) handlePlanTrip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult(s.planTrip(ctx, request.GetArguments()))
}

// textResult renders the envelope as a JSON text result. Failed calls stay
// ordinary results with success=false inside; the MCP error path is kept
// for problems with the handler itself.
func textResult(envelope ojp.Envelope) (*mcp.CallToolResult, error) {
	body, err := envelope.ToolJSON(false)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not serialise result: %s", err)), nil
	}

	return mcp.NewToolResultText(string(body)), nil
}

// RunStdio serves MCP on stdin/stdout until the stream closes.
func (s *Server) RunStdio() error {
	log.Info().Msg("Starting MCP server on stdio")

	return server.ServeStdio(s.MCPServer())
}

// RunHTTP serves MCP over the streamable HTTP transport.
func (s *Server) RunHTTP(listen string) error {
	log.Info().Str("listen", listen).Msg("Starting MCP server")

	return server.NewStreamableHTTPServer(s.MCPServer()).Start(listen)
}
