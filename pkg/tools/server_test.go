package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ojpilot/ojpilot/pkg/ojp"
)

func TestCatalog(t *testing.T) {
	catalog := Catalog()
	require.Len(t, catalog, 3)

	names := []string{}
	for _, definition := range catalog {
		names = append(names, definition.Name)

		assert.NotEmpty(t, definition.Description, definition.Name)
		assert.Equal(t, "object", definition.Parameters["type"], definition.Name)

		// Every parameter schema must serialise; the MCP server feeds it
		// to clients verbatim.
		_, err := json.Marshal(definition.Parameters)
		require.NoError(t, err, definition.Name)
	}

	assert.Equal(t, []string{ToolLocationSearch, ToolTripRequest, ToolPlanTrip}, names)
}

func TestCatalogRequiredFields(t *testing.T) {
	for _, definition := range Catalog() {
		required, ok := definition.Parameters["required"].([]string)
		require.True(t, ok, definition.Name)

		switch definition.Name {
		case ToolLocationSearch:
			assert.Equal(t, []string{"query"}, required)
		case ToolTripRequest:
			assert.Contains(t, required, "origin_stop_point_ref")
			assert.Contains(t, required, "destination_stop_point_ref")
		case ToolPlanTrip:
			assert.Equal(t, []string{"origin", "destination"}, required)
		}
	}
}

func TestHandleLocationSearch(t *testing.T) {
	server, _, _ := testServer()

	request := mcp.CallToolRequest{}
	request.Params.Name = ToolLocationSearch
	request.Params.Arguments = map[string]any{"query": "Zürich HB"}

	result, err := server.handleLocationSearch(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	require.Len(t, result.Content, 1)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(textContent.Text), &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.Contains(t, textContent.Text, "8503000")
}

func TestHandleTripRequestFailureStaysTextResult(t *testing.T) {
	server, _, _ := testServer()

	// A bad argument still produces an ordinary JSON result; assistants
	// read the success flag, not the MCP error channel.
	request := mcp.CallToolRequest{}
	request.Params.Name = ToolTripRequest
	request.Params.Arguments = map[string]any{"origin": "Zürich HB"}

	result, err := server.handleTripRequest(context.Background(), request)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	require.Len(t, result.Content, 1)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(textContent.Text), &decoded))
	assert.Equal(t, false, decoded["success"])
}

func TestTextResult(t *testing.T) {
	envelope := ojp.SuccessLocations([]ojp.Location{
		{StopPointRef: "8503000", Name: "Zürich HB", Type: ojp.LocationTypeStop},
	})

	result, err := textResult(envelope)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.True(t, json.Valid([]byte(textContent.Text)))
	assert.Contains(t, textContent.Text, `"stop_point_reference":"8503000"`)
}

func TestMCPServerBuilds(t *testing.T) {
	server, _, _ := testServer()

	assert.NotNil(t, server.MCPServer())
}
