package mcpadapter

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult reports a failed call to the assistant as {"error": msg}
// rather than as a protocol error.
func errorResult(err error) *mcp.CallToolResult {
	data, marshalErr := json.MarshalIndent(map[string]string{"error": err.Error()}, "", "  ")
	if marshalErr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(data))
}
